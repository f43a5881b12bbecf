package fiber

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/evently/core"
)

const sessionLocalsKey = "session"

// Protected validates the bearer token and stores the session data in the
// context for downstream handlers.
func (a *Adapter) Protected(handler core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return a.writeError(c, err)
		}

		session, err := handler.GetSession(c.Context(), token)
		if err != nil {
			return a.writeError(c, err)
		}

		c.Locals(sessionLocalsKey, session)
		return c.Next()
	}
}

// SessionFrom returns the session stored by Protected, or nil
func SessionFrom(c fiber.Ctx) *core.SessionData {
	session, _ := c.Locals(sessionLocalsKey).(*core.SessionData)
	return session
}

func bearerToken(c fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", core.ErrMissingAuthHeader
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", core.ErrInvalidAuthHeader
	}
	return strings.TrimSpace(token), nil
}
