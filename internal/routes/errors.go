package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/auth"
	"github.com/paisepay/paisepay/internal/ledger"
	"github.com/paisepay/paisepay/internal/requests"
)

// respondError translates domain errors into HTTP responses. Auth errors
// carry structured payloads so clients can surface the attempt countdown and
// lockout timer.
func respondError(c *fiber.Ctx, err error) error {
	var locked *auth.LockedError
	var invalidPin *auth.InvalidPinError
	switch {
	case errors.As(err, &locked):
		return c.Status(http.StatusLocked).JSON(fiber.Map{
			"error":               "account locked",
			"retry_after_seconds": int(locked.RetryAfter.Seconds()),
		})
	case errors.As(err, &invalidPin):
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error":              "incorrect pin",
			"attempts_remaining": invalidPin.AttemptsRemaining,
		})
	case errors.Is(err, auth.ErrWrongOldPin):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, requests.ErrUnknownRequest):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrAlreadyExists),
		errors.Is(err, requests.ErrAlreadyResolved):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, account.ErrInvalidFormat),
		errors.Is(err, account.ErrMismatch),
		errors.Is(err, ledger.ErrSelfPayment),
		errors.Is(err, ledger.ErrMalformedPayload),
		errors.Is(err, requests.ErrEmptyPayerSet):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
