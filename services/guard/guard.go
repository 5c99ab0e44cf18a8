package guard

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"richman-tours/models/account"
	"richman-tours/utils"

	"gorm.io/gorm"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccessDenied       = errors.New("account does not have management access")
	ErrUserNotFound       = errors.New("user not found")
)

// LockedError reports a login rejected because the account is inside a
// lockout window. Until tells the client when to retry.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.Format(time.RFC3339))
}

// Config holds the lockout policy.
type Config struct {
	// MaxFailedAttempts is the failure count at which the account locks.
	MaxFailedAttempts int
	// LockoutDuration is how long the account stays locked.
	LockoutDuration time.Duration
}

// DefaultConfig returns the production policy: five failures, five minutes.
func DefaultConfig() Config {
	return Config{
		MaxFailedAttempts: 5,
		LockoutDuration:   5 * time.Minute,
	}
}

// ConfigFromEnv reads the policy from LOGIN_ATTEMPT_LIMIT and
// LOGIN_LOCKOUT_MINUTES, falling back to the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOGIN_ATTEMPT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxFailedAttempts = n
		}
	}
	if v := os.Getenv("LOGIN_LOCKOUT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LockoutDuration = time.Duration(n) * time.Minute
		}
	}
	return cfg
}

// Service guards the admin login: every attempt is audited, failures are
// counted per account and too many in a row lock the account for a while.
type Service struct {
	db  *gorm.DB
	cfg Config
}

func NewService(db *gorm.DB, cfg Config) *Service {
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 5 * time.Minute
	}
	return &Service{db: db, cfg: cfg}
}

// Authenticate runs the full login check for the management surface. The
// audit row is written before any credential check, so even probes against
// unknown usernames leave a trace. The order of checks matters: the lockout
// is checked before the password, so a locked account rejects even the
// correct password without leaking that it was correct.
func (s *Service) Authenticate(username, password, ip, userAgent string) (*account.User, error) {
	attempt := account.LoginAttempt{
		Username:  username,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, fmt.Errorf("record login attempt: %w", err)
	}

	var user account.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.finishAttempt(&attempt, nil, false, account.FailureReasonUnknownUser)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked() {
		s.finishAttempt(&attempt, &user, false, account.FailureReasonLocked)
		return nil, &LockedError{Until: *user.LockedUntil}
	}

	if !user.IsActive {
		s.finishAttempt(&attempt, &user, false, account.FailureReasonInactive)
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		s.finishAttempt(&attempt, &user, false, account.FailureReasonBadPassword)
		if err := s.RegisterFailure(&user); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if !user.CanManage() {
		s.finishAttempt(&attempt, &user, false, account.FailureReasonAccessDenied)
		return nil, ErrAccessDenied
	}

	nowT := time.Now()
	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login":            nowT,
		"last_login_ip":         ip,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user on login: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &nowT
	user.LastLoginIP = ip

	s.finishAttempt(&attempt, &user, true, "")
	return &user, nil
}

func (s *Service) finishAttempt(attempt *account.LoginAttempt, user *account.User, success bool, reason string) {
	attempt.Success = success
	attempt.FailureReason = reason
	if user != nil {
		attempt.UserID = &user.ID
	}
	// Audit write failures must not change the login outcome.
	_ = s.db.Save(attempt).Error
}

// RegisterFailure increments the account's failure counter and applies the
// lockout once the limit is reached. The counter is deliberately left at the
// limit while locked; only success or an explicit unlock resets it.
func (s *Service) RegisterFailure(user *account.User) error {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= s.cfg.MaxFailedAttempts {
		until := time.Now().Add(s.cfg.LockoutDuration)
		user.LockedUntil = &until
	}
	return s.db.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": user.FailedLoginAttempts,
		"locked_until":          user.LockedUntil,
	}).Error
}

// Unlock clears the lockout and the failure counter on a user account.
func (s *Service) Unlock(userID uint) (*account.User, error) {
	var user account.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	err := s.db.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
	if err != nil {
		return nil, err
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	return &user, nil
}

// ResetFailedAttempts zeroes the failure counter without touching an active
// lock. Used when an admin wants to forgive failures but keep a lockout
// running its course.
func (s *Service) ResetFailedAttempts(userID uint) (*account.User, error) {
	var user account.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&user).Update("failed_login_attempts", 0).Error; err != nil {
		return nil, err
	}
	user.FailedLoginAttempts = 0
	return &user, nil
}

// RecentAttempts returns the latest login attempts, optionally filtered by
// username, newest first.
func (s *Service) RecentAttempts(username string, limit int) ([]account.LoginAttempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.db.Model(&account.LoginAttempt{}).Order("created_at DESC").Limit(limit)
	if username != "" {
		q = q.Where("username = ?", username)
	}
	var attempts []account.LoginAttempt
	err := q.Find(&attempts).Error
	return attempts, err
}
