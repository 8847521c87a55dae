package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/money"
	"github.com/paisepay/paisepay/internal/requests"
)

type splitRequest struct {
	Requester string      `json:"requester"`
	Total     money.Paise `json:"total"`
	Note      string      `json:"note"`
	Payers    []string    `json:"payers"`
}

type resolveRequest struct {
	Decision string `json:"decision"`
}

// RegisterRequestRoutes wires bill-split creation and resolution. Resolving
// an approval moves money, so it sits behind the idem handler.
func RegisterRequestRoutes(r fiber.Router, store *account.Store, broker *requests.Broker, idem fiber.Handler) {
	r.Post("/requests/split", idem, func(c *fiber.Ctx) error {
		var req splitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		res, err := broker.CreateSplit(c.UserContext(), req.Requester, req.Total, req.Note, req.Payers)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"share":  res.Share,
			"payers": res.Payers,
		})
	})

	r.Post("/accounts/:username/requests/:id/resolve", idem, func(c *fiber.Ctx) error {
		var req resolveRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		resolved, err := broker.Resolve(c.UserContext(), c.Params("username"), c.Params("id"), account.RequestStatus(req.Decision))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"request": resolved})
	})

	r.Get("/accounts/:username/requests", func(c *fiber.Ctx) error {
		snap, err := store.Snapshot(c.Params("username"))
		if err != nil {
			return respondError(c, err)
		}

		pending := make([]account.PaymentRequest, 0, len(snap.PendingRequests))
		for _, pr := range snap.PendingRequests {
			if pr.Status == account.RequestPending {
				pending = append(pending, pr)
			}
		}
		return c.JSON(fiber.Map{"requests": pending})
	})
}
