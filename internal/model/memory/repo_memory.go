// Package memory is a process-local Repository used for demos and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"payroll/internal/entity"

	"gorm.io/gorm"
)

type Repository struct {
	mu           sync.RWMutex
	nextUserID   uint
	nextRecordID uint
	users        map[uint]entity.DbUser
	records      map[uint][]entity.DbPayrollRecord

	// now is replaceable so tests get distinct, ordered timestamps.
	now func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		users:   make(map[uint]entity.DbUser),
		records: make(map[uint][]entity.DbPayrollRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source.
func (r *Repository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *Repository) CreateUser(_ context.Context, user *entity.DbUser) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextUserID++
	now := r.now()
	user.ID = r.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	stored.PayrollHistory = nil
	r.users[user.ID] = stored
	return nil
}

func (r *Repository) UpdateUser(_ context.Context, id uint, updates entity.UserUpdates) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for otherID, other := range r.users {
		if otherID == id {
			continue
		}
		if updates.Username != nil && other.Username == *updates.Username {
			return gorm.ErrDuplicatedKey
		}
		if updates.Email != nil && strings.EqualFold(other.Email, *updates.Email) {
			return gorm.ErrDuplicatedKey
		}
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&user.Username, updates.Username)
	apply(&user.Email, updates.Email)
	apply(&user.FullName, updates.FullName)
	apply(&user.Role, updates.Role)
	apply(&user.PasswordHash, updates.PasswordHash)
	apply(&user.ProfilePicture, updates.ProfilePicture)
	apply(&user.Department, updates.Department)
	apply(&user.Position, updates.Position)
	apply(&user.Phone, updates.Phone)
	apply(&user.EmergencyContactName, updates.EmergencyContactName)
	apply(&user.EmergencyContactPhone, updates.EmergencyContactPhone)
	if updates.IsActive != nil {
		user.IsActive = *updates.IsActive
	}
	user.UpdatedAt = r.now()
	r.users[id] = user
	return nil
}

func (r *Repository) GetUserByUsername(_ context.Context, username string) (*entity.DbUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	trimmed := strings.TrimSpace(username)
	for _, user := range r.users {
		if user.Username == trimmed {
			found := user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Repository) GetUserByEmail(_ context.Context, email string) (*entity.DbUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	trimmed := strings.TrimSpace(email)
	for _, user := range r.users {
		if strings.EqualFold(user.Email, trimmed) {
			found := user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Repository) GetUserByID(_ context.Context, id uint) (*entity.DbUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *Repository) ListUsers(_ context.Context) ([]entity.DbUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]entity.DbUser, 0, len(r.users))
	for _, user := range r.users {
		user.PayrollHistory = r.historyLocked(user.ID)
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *Repository) DeleteUser(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	delete(r.records, id)
	return nil
}

func (r *Repository) CountUsers(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *Repository) GetUserByVerificationToken(_ context.Context, token string) (*entity.DbUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	for _, user := range r.users {
		if user.VerificationToken != nil && *user.VerificationToken == token {
			found := user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Repository) MarkEmailVerified(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.EmailPending = false
	user.VerificationToken = nil
	user.VerificationExpiresAt = nil
	user.UpdatedAt = r.now()
	r.users[id] = user
	return nil
}

func (r *Repository) ListPayrollRecords(_ context.Context, userID uint) ([]entity.DbPayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.historyLocked(userID), nil
}

func (r *Repository) GetPayrollRecord(_ context.Context, userID uint, month string) (*entity.DbPayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records[userID] {
		if record.Month == month {
			found := record
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Repository) UpsertPayrollRecord(_ context.Context, record *entity.DbPayrollRecord) error {
	if record == nil || record.UserID == 0 || strings.TrimSpace(record.Month) == "" {
		return fmt.Errorf("invalid payroll record")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	records := r.records[record.UserID]
	for i := range records {
		if records[i].Month != record.Month {
			continue
		}
		existing := records[i]
		existing.BaseSalary = record.BaseSalary
		existing.Allowances = record.Allowances
		existing.Deductions = record.Deductions
		existing.NetSalary = record.NetSalary
		existing.Status = record.Status
		existing.Notes = record.Notes
		existing.UpdatedAt = now
		records[i] = existing
		*record = existing
		return nil
	}

	r.nextRecordID++
	stored := *record
	stored.ID = r.nextRecordID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.records[record.UserID] = append(records, stored)
	*record = stored
	return nil
}

func (r *Repository) historyLocked(userID uint) []entity.DbPayrollRecord {
	records := make([]entity.DbPayrollRecord, len(r.records[userID]))
	copy(records, r.records[userID])
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records
}
