package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/auth"
	"github.com/paisepay/paisepay/internal/money"
)

// Amounts cross the wire in paise, the smallest currency unit, as plain
// integers. Display strings are included alongside balances for convenience.

type createAccountRequest struct {
	Username       string      `json:"username"`
	DisplayName    string      `json:"display_name"`
	PIN            string      `json:"pin"`
	ConfirmPIN     string      `json:"confirm_pin"`
	InitialDeposit money.Paise `json:"initial_deposit"`
}

type authenticateRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type changePinRequest struct {
	OldPIN     string `json:"old_pin"`
	NewPIN     string `json:"new_pin"`
	ConfirmPIN string `json:"confirm_pin"`
}

// RegisterAccountRoutes wires account lifecycle and authentication endpoints.
func RegisterAccountRoutes(r fiber.Router, store *account.Store, gate *auth.Gate, rateLimiter fiber.Handler) {
	r.Post("/accounts", func(c *fiber.Ctx) error {
		var req createAccountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		snap, err := store.Create(account.CreateInput{
			Username:       req.Username,
			DisplayName:    req.DisplayName,
			PIN:            req.PIN,
			ConfirmPIN:     req.ConfirmPIN,
			InitialDeposit: req.InitialDeposit,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(profileResponse(snap))
	})

	r.Post("/accounts/authenticate", rateLimiter, func(c *fiber.Ctx) error {
		var req authenticateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		if err := gate.Authenticate(req.Username, req.PIN); err != nil {
			return respondError(c, err)
		}
		snap, err := store.Snapshot(req.Username)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"authenticated": true,
			"account":       profileResponse(snap),
		})
	})

	r.Get("/accounts/:username", func(c *fiber.Ctx) error {
		snap, err := store.Snapshot(c.Params("username"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profileResponse(snap))
	})

	r.Post("/accounts/:username/pin", func(c *fiber.Ctx) error {
		var req changePinRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		if err := gate.ChangePin(c.Params("username"), req.OldPIN, req.NewPIN, req.ConfirmPIN); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"status": "pin changed"})
	})
}

func profileResponse(snap account.Snapshot) fiber.Map {
	return fiber.Map{
		"username":        snap.Username,
		"display_name":    snap.DisplayName,
		"balance":         snap.Balance,
		"balance_display": snap.Balance.String(),
		"created_at":      snap.CreatedAt,
	}
}
