package auth

import (
	"errors"
	"os"
	"strconv"
	"time"

	"richman-tours/logger"
	"richman-tours/models/account"
	"richman-tours/services/guard"
	"richman-tours/types"
	accountTypes "richman-tours/types/account"
	"richman-tours/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type AuthController struct {
	db             *gorm.DB
	guard          *guard.Service
	loggerInstance *logger.AsyncLogger
}

func NewAuthController(db *gorm.DB, guardService *guard.Service, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{db: db, guard: guardService, loggerInstance: asyncLogger}
}

// Helper function to set secure cookies based on environment
func (h *AuthController) setSecureCookie(c *fiber.Ctx, name, value string, maxAge int) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   isProduction,
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}

// Login authenticates a staff or admin user and returns a bearer token.
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req accountTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing login request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	user, err := h.guard.Authenticate(req.Username, req.Password, utils.ClientIP(c), c.Get("User-Agent"))
	if err != nil {
		var locked *guard.LockedError
		switch {
		case errors.As(err, &locked):
			retryAfter := int(time.Until(locked.Until).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusLocked).JSON(types.ApiResponse{
				Message: "Account temporarily locked due to too many failed attempts",
				Status:  fiber.StatusLocked,
				Data: fiber.Map{
					"locked_until":        locked.Until,
					"retry_after_seconds": retryAfter,
				},
			})
		case errors.Is(err, guard.ErrAccessDenied):
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Message: "This account does not have management access",
				Status:  fiber.StatusForbidden,
			})
		case errors.Is(err, guard.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Invalid username or password",
				Status:  fiber.StatusUnauthorized,
			})
		default:
			logger.Error("Login failed", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Message: "Login failed",
				Status:  fiber.StatusInternalServerError,
			})
		}
	}

	token, err := utils.IssueToken(user)
	if err != nil {
		logger.Error("Failed to issue token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to issue token",
			Status:  fiber.StatusInternalServerError,
		})
	}

	h.setSecureCookie(c, "auth_token", token, 60*60*24)
	logger.Success("User logged in: " + user.Username)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Login successful",
		Status:  fiber.StatusOK,
		Token:   token,
		Data:    userSummary(user),
	})
}

// Logout clears the auth cookie.
func (h *AuthController) Logout(c *fiber.Ctx) error {
	h.setSecureCookie(c, "auth_token", "", -1)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Logged out",
		Status:  fiber.StatusOK,
	})
}

// Profile returns the logged-in user's account.
func (h *AuthController) Profile(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Unauthorized",
			Status:  fiber.StatusUnauthorized,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile fetched",
		Status:  fiber.StatusOK,
		Data:    userSummary(user),
	})
}

// UpdateProfile updates the logged-in user's own contact fields.
func (h *AuthController) UpdateProfile(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Unauthorized",
			Status:  fiber.StatusUnauthorized,
		})
	}

	var req accountTypes.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if err := h.db.Save(user).Error; err != nil {
		logger.Error("Failed to update profile", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to update profile",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile updated",
		Status:  fiber.StatusOK,
		Data:    userSummary(user),
	})
}

// ChangePassword changes the logged-in user's password after verifying the
// current one.
func (h *AuthController) ChangePassword(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Unauthorized",
			Status:  fiber.StatusUnauthorized,
		})
	}

	var req accountTypes.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Current password is incorrect",
			Status:  fiber.StatusUnauthorized,
		})
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to change password",
			Status:  fiber.StatusInternalServerError,
		})
	}
	if err := h.db.Model(user).Update("password_hash", hash).Error; err != nil {
		logger.Error("Failed to save password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to change password",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Password changed",
		Status:  fiber.StatusOK,
	})
}

// ListUsers returns all management users.
func (h *AuthController) ListUsers(c *fiber.Ctx) error {
	var users []account.User
	if err := h.db.Order("created_at DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list users",
			Status:  fiber.StatusInternalServerError,
		})
	}

	summaries := make([]fiber.Map, 0, len(users))
	for i := range users {
		summaries = append(summaries, userSummary(&users[i]))
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Users fetched",
		Status:  fiber.StatusOK,
		Data:    summaries,
	})
}

// UpdateUser applies admin-side changes to another account's flags.
func (h *AuthController) UpdateUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid user id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var req accountTypes.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	var user account.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "User not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to load user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to load user",
			Status:  fiber.StatusInternalServerError,
		})
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := h.db.Save(&user).Error; err != nil {
		logger.Error("Failed to update user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to update user",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "User updated",
		Status:  fiber.StatusOK,
		Data:    userSummary(&user),
	})
}

// UnlockUser clears a lockout on another account.
func (h *AuthController) UnlockUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid user id",
			Status:  fiber.StatusBadRequest,
		})
	}

	user, err := h.guard.Unlock(uint(userID))
	if err != nil {
		if errors.Is(err, guard.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "User not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to unlock user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to unlock user",
			Status:  fiber.StatusInternalServerError,
		})
	}

	logger.Success("Account unlocked: " + user.Username)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Account unlocked",
		Status:  fiber.StatusOK,
		Data:    userSummary(user),
	})
}

// ResetAttempts zeroes another account's failure counter without lifting an
// active lock.
func (h *AuthController) ResetAttempts(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid user id",
			Status:  fiber.StatusBadRequest,
		})
	}

	user, err := h.guard.ResetFailedAttempts(uint(userID))
	if err != nil {
		if errors.Is(err, guard.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "User not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to reset attempts", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to reset attempts",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Failed attempts reset",
		Status:  fiber.StatusOK,
		Data:    userSummary(user),
	})
}

// GetUser returns one user account by id.
func (h *AuthController) GetUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid user id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var user account.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "User not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to load user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to load user",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "User fetched",
		Status:  fiber.StatusOK,
		Data:    userSummary(&user),
	})
}

// SecurityLogs returns recent login attempts, optionally filtered by
// username via query parameter.
func (h *AuthController) SecurityLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	attempts, err := h.guard.RecentAttempts(c.Query("username"), limit)
	if err != nil {
		logger.Error("Failed to load login attempts", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to load login attempts",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Login attempts fetched",
		Status:  fiber.StatusOK,
		Data:    attempts,
	})
}

func (h *AuthController) currentUser(c *fiber.Ctx) (*account.User, error) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return nil, errors.New("no token claims in context")
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return nil, errors.New("token missing username")
	}

	var user account.User
	if err := h.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func userSummary(u *account.User) fiber.Map {
	return fiber.Map{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"phone":        u.Phone,
		"is_active":    u.IsActive,
		"is_staff":     u.IsStaff,
		"is_admin":     u.IsAdmin,
		"is_superuser": u.IsSuperuser,
		"is_locked":    u.IsLocked(),
		"locked_until": u.LockedUntil,
		"last_login":   u.LastLogin,
	}
}
