package entity

// UserUpdates holds the columns of a partial user update; nil means unchanged.
type UserUpdates struct {
	Username              *string
	Email                 *string
	FullName              *string
	Role                  *string
	PasswordHash          *string
	IsActive              *bool
	ProfilePicture        *string
	Department            *string
	Position              *string
	Phone                 *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

// ToMap converts the set fields to a gorm column map.
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setString("username", u.Username)
	setString("email", u.Email)
	setString("full_name", u.FullName)
	setString("role", u.Role)
	setString("password_hash", u.PasswordHash)
	setString("profile_picture", u.ProfilePicture)
	setString("department", u.Department)
	setString("position", u.Position)
	setString("phone", u.Phone)
	setString("emergency_contact_name", u.EmergencyContactName)
	setString("emergency_contact_phone", u.EmergencyContactPhone)
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty reports whether no field is set.
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
