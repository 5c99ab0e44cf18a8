package guard

import (
	"errors"
	"testing"
	"time"

	"richman-tours/models/account"
	"richman-tours/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&account.User{}, &account.LoginAttempt{}))
	return db
}

func seedStaffUser(t *testing.T, db *gorm.DB, password string) *account.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := account.User{
		Username:     "admin",
		Email:        "admin@richmantours.co.ke",
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestAuthenticateSuccess(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	seedStaffUser(t, db, "s3cret-pass")

	user, err := svc.Authenticate("admin", "s3cret-pass", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	require.Equal(t, "admin", user.Username)
	require.Equal(t, 0, user.FailedLoginAttempts)
	require.NotNil(t, user.LastLogin)
	require.Equal(t, "10.0.0.1", user.LastLoginIP)

	var attempt account.LoginAttempt
	require.NoError(t, db.Order("id DESC").First(&attempt).Error)
	require.True(t, attempt.Success)
	require.Equal(t, "admin", attempt.Username)
	require.Equal(t, "10.0.0.1", attempt.IPAddress)
}

func TestAuthenticateUnknownUserIsAudited(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())

	_, err := svc.Authenticate("nobody", "whatever", "10.0.0.2", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// The attempt row exists even though the username matched nothing.
	var attempt account.LoginAttempt
	require.NoError(t, db.Order("id DESC").First(&attempt).Error)
	require.False(t, attempt.Success)
	require.Equal(t, "nobody", attempt.Username)
	require.Equal(t, account.FailureReasonUnknownUser, attempt.FailureReason)
}

func TestAuthenticateWrongPasswordIncrementsCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	user := seedStaffUser(t, db, "s3cret-pass")

	_, err := svc.Authenticate("admin", "wrong", "10.0.0.1", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	var reloaded account.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 1, reloaded.FailedLoginAttempts)
	require.Nil(t, reloaded.LockedUntil)
}

func TestFifthFailureLocksAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	user := seedStaffUser(t, db, "s3cret-pass")

	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate("admin", "wrong", "10.0.0.1", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	var reloaded account.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 5, reloaded.FailedLoginAttempts)
	require.NotNil(t, reloaded.LockedUntil)
	require.True(t, reloaded.IsLocked())
}

func TestLockedAccountRejectsCorrectPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	seedStaffUser(t, db, "s3cret-pass")

	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate("admin", "wrong", "10.0.0.1", "")
	}

	_, err := svc.Authenticate("admin", "s3cret-pass", "10.0.0.1", "")
	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	require.True(t, locked.Until.After(time.Now()))

	var attempt account.LoginAttempt
	require.NoError(t, db.Order("id DESC").First(&attempt).Error)
	require.Equal(t, account.FailureReasonLocked, attempt.FailureReason)
}

func TestLockExpiryAllowsLoginAgain(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	user := seedStaffUser(t, db, "s3cret-pass")

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": 5,
		"locked_until":          past,
	}).Error)

	logged, err := svc.Authenticate("admin", "s3cret-pass", "10.0.0.1", "")
	require.NoError(t, err)
	require.Equal(t, 0, logged.FailedLoginAttempts)
	require.Nil(t, logged.LockedUntil)
}

func TestSuccessResetsFailureCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	user := seedStaffUser(t, db, "s3cret-pass")

	for i := 0; i < 3; i++ {
		_, _ = svc.Authenticate("admin", "wrong", "10.0.0.1", "")
	}

	_, err := svc.Authenticate("admin", "s3cret-pass", "10.0.0.1", "")
	require.NoError(t, err)

	var reloaded account.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 0, reloaded.FailedLoginAttempts)
	require.Nil(t, reloaded.LockedUntil)
}

func TestNonStaffUserIsDenied(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	hash, err := utils.HashPassword("customer-pass")
	require.NoError(t, err)
	user := account.User{
		Username:     "customer",
		Email:        "customer@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	_, err = svc.Authenticate("customer", "customer-pass", "10.0.0.1", "")
	require.ErrorIs(t, err, ErrAccessDenied)

	// A correct password that fails the staff check does not count as a
	// credential failure.
	var reloaded account.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 0, reloaded.FailedLoginAttempts)
}

func TestInactiveUserRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	user := seedStaffUser(t, db, "s3cret-pass")
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Authenticate("admin", "s3cret-pass", "10.0.0.1", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUnlockClearsLockAndCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	user := seedStaffUser(t, db, "s3cret-pass")

	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate("admin", "wrong", "10.0.0.1", "")
	}

	unlocked, err := svc.Unlock(user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, unlocked.FailedLoginAttempts)
	require.Nil(t, unlocked.LockedUntil)

	_, err = svc.Authenticate("admin", "s3cret-pass", "10.0.0.1", "")
	require.NoError(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOGIN_ATTEMPT_LIMIT", "3")
	t.Setenv("LOGIN_LOCKOUT_MINUTES", "10")

	cfg := ConfigFromEnv()
	require.Equal(t, 3, cfg.MaxFailedAttempts)
	require.Equal(t, 10*time.Minute, cfg.LockoutDuration)
}

func TestLowerAttemptLimitIsHonoured(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, Config{MaxFailedAttempts: 2, LockoutDuration: time.Minute})
	user := seedStaffUser(t, db, "s3cret-pass")

	_, _ = svc.Authenticate("admin", "wrong", "10.0.0.1", "")
	_, _ = svc.Authenticate("admin", "wrong", "10.0.0.1", "")

	var reloaded account.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.True(t, reloaded.IsLocked())
}

func TestRecentAttempts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig())
	seedStaffUser(t, db, "s3cret-pass")

	_, _ = svc.Authenticate("admin", "wrong", "10.0.0.1", "")
	_, _ = svc.Authenticate("admin", "s3cret-pass", "10.0.0.1", "")
	_, _ = svc.Authenticate("ghost", "wrong", "10.0.0.2", "")

	all, err := svc.RecentAttempts("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)

	admin, err := svc.RecentAttempts("admin", 10)
	require.NoError(t, err)
	require.Len(t, admin, 2)
}
