package entity

import "time"

const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// DbUser represents a persisted employee account.
type DbUser struct {
	ID                    uint              `gorm:"primarykey" json:"id"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	Username              string            `gorm:"column:username;type:varchar(150);uniqueIndex;not null" json:"username"`
	Email                 string            `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash          string            `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	FullName              string            `gorm:"column:full_name;type:varchar(255)" json:"full_name"`
	Role                  string            `gorm:"column:role;type:varchar(50);index;not null" json:"role"`
	IsActive              bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ProfilePicture        string            `gorm:"column:profile_picture;type:varchar(512)" json:"profile_picture"`
	Department            string            `gorm:"column:department;type:varchar(255)" json:"department"`
	Position              string            `gorm:"column:position;type:varchar(255)" json:"position"`
	Phone                 string            `gorm:"column:phone;type:varchar(64)" json:"phone"`
	EmergencyContactName  string            `gorm:"column:emergency_contact_name;type:varchar(255)" json:"emergency_contact_name"`
	EmergencyContactPhone string            `gorm:"column:emergency_contact_phone;type:varchar(64)" json:"emergency_contact_phone"`
	// EmailPending is set for self registered accounts until the emailed
	// link is opened; such accounts cannot log in.
	EmailPending          bool              `gorm:"column:email_pending;not null;default:false" json:"-"`
	VerificationToken     *string           `gorm:"column:verification_token;type:varchar(64);uniqueIndex" json:"-"`
	VerificationExpiresAt *time.Time        `gorm:"column:verification_expires_at" json:"-"`
	PayrollHistory        []DbPayrollRecord `gorm:"foreignKey:UserID" json:"-"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "users"
}

// UserView is the sanitised user returned to clients; it never carries credentials.
type UserView struct {
	ID                    uint                `json:"id"`
	Username              string              `json:"username"`
	Email                 string              `json:"email"`
	FullName              string              `json:"full_name"`
	Role                  string              `json:"role"`
	IsActive              bool                `json:"is_active"`
	EmailVerified         bool                `json:"email_verified"`
	ProfilePicture        *string             `json:"profile_picture"`
	Department            string              `json:"department"`
	Position              string              `json:"position"`
	Phone                 string              `json:"phone"`
	EmergencyContactName  string              `json:"emergency_contact_name"`
	EmergencyContactPhone string              `json:"emergency_contact_phone"`
	CreatedAt             time.Time           `json:"created_at"`
	PayrollHistory        []PayrollRecordView `json:"payroll_history"`
}

type AuthLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success   bool      `json:"success"`
	Redirect  string    `json:"redirect,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// RegisterRequest is the self service sign up payload. The role is always user.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

type RegisterResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	EmailError *string `json:"email_error"`
}

const (
	VerificationSuccess = "success"
	VerificationInvalid = "invalid"
	VerificationExpired = "expired"
)

type VerifyEmailResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Email   string `json:"email,omitempty"`
}

type UserCreateRequest struct {
	Username              string `json:"username" binding:"required,max=150"`
	Email                 string `json:"email" binding:"required,email"`
	Password              string `json:"password" binding:"required,min=6"`
	FullName              string `json:"full_name"`
	Role                  string `json:"role" binding:"omitempty,oneof=admin user"`
	Department            string `json:"department"`
	Position              string `json:"position"`
	Phone                 string `json:"phone"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
}

type UserUpdateRequest struct {
	Username              *string `json:"username,omitempty"`
	Email                 *string `json:"email,omitempty" binding:"omitempty,email"`
	FullName              *string `json:"full_name,omitempty"`
	Role                  *string `json:"role,omitempty" binding:"omitempty,oneof=admin user"`
	Password              *string `json:"password,omitempty"`
	IsActive              *bool   `json:"is_active,omitempty"`
	Department            *string `json:"department,omitempty"`
	Position              *string `json:"position,omitempty"`
	Phone                 *string `json:"phone,omitempty"`
	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`
}

type UserListResponse struct {
	Users []UserView `json:"users"`
}

// MutationResponse is the envelope of every mutating endpoint.
type MutationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type UserMutationResponse struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	User    *UserView `json:"user,omitempty"`
}

type PictureUploadResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}
