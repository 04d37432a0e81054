package middleware

import (
	"strings"

	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(jwtManager *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		if status, msg := authenticate(c, authHeader, jwtManager, userRepo); status != 0 {
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}
		return c.Next()
	}
}

// OptionalAuth sets the user locals when a valid token is sent and lets
// anonymous requests through. Public catalog routes use it so owners and
// admins can see unpublished items.
func OptionalAuth(jwtManager *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get("Authorization"); authHeader != "" {
			if status, msg := authenticate(c, authHeader, jwtManager, userRepo); status != 0 {
				return c.Status(status).JSON(fiber.Map{"error": msg})
			}
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, authHeader string, jwtManager *jwt.Manager, userRepo repository.UserRepository) (int, string) {
	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return 401, "Invalid authorization format. Use: Bearer <token>"
	}

	claims, err := jwtManager.ValidateToken(parts[1])
	if err != nil {
		return 401, "Invalid or expired token"
	}

	// Check strict session against DB
	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		return 401, "User not found"
	}
	if !user.IsActive {
		return 401, "User account is inactive"
	}
	if user.TokenVersion != claims.TokenVersion {
		return 401, "Session expired (logged in on another device)"
	}

	// Privileges come from the database so changes apply without a new login.
	privileges := make([]string, len(user.Privileges))
	for i, p := range user.Privileges {
		privileges[i] = p.Code
	}

	c.Locals("user_id", claims.UserID.String())
	c.Locals("user_email", user.Email)
	c.Locals("user_name", user.FullName)
	c.Locals("user_privileges", privileges)
	return 0, ""
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
