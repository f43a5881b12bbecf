package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/evently/core"
)

const (
	msgRegistered      = "User registered successfully"
	msgLoggedIn        = "Login successful"
	msgPasscodeSent    = "OTP sent successfully"
	msgPasswordUpdated = "Password updated successfully"
	msgInvalidBody     = "invalid request body"
	msgInternal        = "Internal Server Error"
)

// handleRegister returns a handler for the registration endpoint
func (a *Adapter) handleRegister(h core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.RegisterInput
		if err := c.Bind().Body(&input); err != nil {
			return badBody(c)
		}

		result, err := h.Register(c.Context(), input)
		if err != nil {
			return a.writeError(c, err)
		}

		return c.Status(http.StatusCreated).JSON(core.MessageResponse{
			Message: msgRegistered,
			Token:   result.Token,
		})
	}
}

// handleLogin returns a handler for the login endpoint
func (a *Adapter) handleLogin(h core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.LoginInput
		if err := c.Bind().Body(&input); err != nil {
			return badBody(c)
		}

		result, err := h.Login(c.Context(), input)
		if err != nil {
			return a.writeError(c, err)
		}

		return c.Status(http.StatusOK).JSON(core.MessageResponse{
			Message: msgLoggedIn,
			Token:   result.Token,
		})
	}
}

// handleRequestRecovery returns a handler that mails a recovery passcode
func (a *Adapter) handleRequestRecovery(h core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.RecoveryRequestInput
		if err := c.Bind().Body(&input); err != nil {
			return badBody(c)
		}

		if err := h.RequestRecovery(c.Context(), input); err != nil {
			return a.writeError(c, err)
		}

		return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: msgPasscodeSent})
	}
}

// handleConfirmRecovery returns a handler that resets the password
func (a *Adapter) handleConfirmRecovery(h core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.RecoveryConfirmInput
		if err := c.Bind().Body(&input); err != nil {
			return badBody(c)
		}

		if err := h.ConfirmRecovery(c.Context(), input); err != nil {
			return a.writeError(c, err)
		}

		return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: msgPasswordUpdated})
	}
}

// handleGetSession returns the session resolved by Protected
func (a *Adapter) handleGetSession(_ core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		session := SessionFrom(c)
		if session == nil {
			return a.writeError(c, core.ErrInvalidToken)
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":    "ok",
			"account":   session.Account,
			"expiresAt": session.ExpiresAt,
		})
	}
}

func badBody(c fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(core.ErrorResponse{Error: msgInvalidBody})
}

// writeError maps an error to its status and client-facing message. Server
// errors are logged with their cause and reported generically.
func (a *Adapter) writeError(c fiber.Ctx, err error) error {
	status := StatusFor(err)

	msg := core.PublicMessage(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error(c.Context(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"error", err,
		)
		msg = msgInternal
		if errors.Is(err, core.ErrDelivery) {
			msg = core.ErrDeliveryFailed.Error()
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	return c.Status(status).JSON(core.ErrorResponse{Error: msg})
}

// StatusFor maps an error class to an HTTP status code
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrAuth),
		errors.Is(err, core.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
