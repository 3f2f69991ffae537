// Package search filters the cached user list by free text.
package search

import (
	"strings"

	"payroll/internal/console/domain"
)

// fields are the values a query is matched against.
func fields(u domain.User) []string {
	return []string{u.FullName, u.Email, u.Phone, u.Department, u.Position, u.EmergencyContactName}
}

// FilterUsers keeps users where any searchable field contains query,
// ignoring case. A blank query returns users untouched. Order is preserved.
func FilterUsers(users []domain.User, query string) []domain.User {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return users
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		for _, field := range fields(u) {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
