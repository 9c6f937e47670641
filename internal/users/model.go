package users

import "time"

// Roles a user can hold. Publishers may own bootcamps and courses; admins
// bypass ownership checks everywhere.
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RolePublisher || role == RoleAdmin
}

// User is the credential record. The password hash and the reset-token fields
// never serialize; reset tokens are stored only as a sha256 digest alongside
// their expiry.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Name                string     `gorm:"size:100;not null" json:"name"`
	Email               string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"not null" json:"-"`
	Role                string     `gorm:"size:20;default:user" json:"role"`
	ResetPasswordHash   *string    `gorm:"size:64" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
