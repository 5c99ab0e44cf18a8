package account

import (
	"time"
)

// User is a staff or admin account for the management dashboard.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"type:varchar(150);not null;unique" json:"username"`
	Email    string `gorm:"type:varchar(255);not null;unique" json:"email"`

	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	FirstName string `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`
	Phone     string `gorm:"type:varchar(17)" json:"phone"`

	IsActive    bool `gorm:"default:true" json:"is_active"`
	IsStaff     bool `gorm:"default:false" json:"is_staff"`
	IsAdmin     bool `gorm:"default:false" json:"is_admin"`
	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`

	// FailedLoginAttempts and LockedUntil drive the lockout policy. The
	// counter is not reset when the lock is applied; only a successful
	// login or an explicit unlock clears it.
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until,omitempty"`

	LastLogin   *time.Time `json:"last_login,omitempty"`
	LastLoginIP string     `gorm:"type:varchar(45)" json:"last_login_ip"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsLocked reports whether the account is currently inside a lockout window.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// FullName returns the user's display name, falling back to the username.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// CanManage reports whether the user may access the management surface.
func (u *User) CanManage() bool {
	return u.IsStaff || u.IsAdmin || u.IsSuperuser
}

// LoginAttempt is an audit row written for every login attempt, successful or
// not, before the credentials are even checked.
type LoginAttempt struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Username string `gorm:"type:varchar(150);not null;index" json:"username"`
	UserID   *uint  `gorm:"index" json:"user_id,omitempty"`

	IPAddress string `gorm:"type:varchar(45);not null" json:"ip_address"`
	UserAgent string `gorm:"type:varchar(512)" json:"user_agent"`

	Success       bool   `gorm:"default:false" json:"success"`
	FailureReason string `gorm:"type:varchar(100)" json:"failure_reason"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// Failure reasons recorded on login attempts.
const (
	FailureReasonUnknownUser  = "unknown_user"
	FailureReasonBadPassword  = "bad_password"
	FailureReasonLocked       = "account_locked"
	FailureReasonInactive     = "account_inactive"
	FailureReasonAccessDenied = "access_denied"
)
