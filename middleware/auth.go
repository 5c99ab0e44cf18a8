package middleware

import (
	"strings"

	"richman-tours/constants"
	"richman-tours/types"
	"richman-tours/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IsAuthenticated validates the bearer token (header or auth_token cookie)
// and requires one of the given roles. Pass constants.RoleAny to accept any
// authenticated user.
func IsAuthenticated(roles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Missing authentication token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Invalid or expired token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		userRoles := rolesFromClaims(claims)
		if !hasAnyRole(userRoles, roles) {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Message: "You do not have permission to access this resource",
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals("user", claims)
		c.Locals("username", claims["username"])
		c.Locals("roles", userRoles)
		return c.Next()
	}
}

// RequireManagement requires any staff, admin or superuser role.
func RequireManagement() fiber.Handler {
	return IsAuthenticated(constants.ManagementRoles)
}

// RequireAdmin requires the admin or superuser role.
func RequireAdmin() fiber.Handler {
	return IsAuthenticated([]string{constants.RoleAdmin, constants.RoleSuperuser})
}

func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies("auth_token")
}

func rolesFromClaims(claims jwt.MapClaims) map[string]bool {
	roleSet := make(map[string]bool)
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return roleSet
	}
	for _, r := range raw {
		if role, ok := r.(string); ok {
			roleSet[role] = true
		}
	}
	return roleSet
}

func hasAnyRole(userRoles map[string]bool, required []string) bool {
	for _, role := range required {
		if role == constants.RoleAny {
			return true
		}
		if userRoles[role] {
			return true
		}
	}
	return false
}

// Username returns the username stored by IsAuthenticated, or "".
func Username(c *fiber.Ctx) string {
	if username, ok := c.Locals("username").(string); ok {
		return username
	}
	return ""
}
