package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paisepay/paisepay/internal/ledger"
	"github.com/paisepay/paisepay/internal/money"
)

type depositRequest struct {
	Amount money.Paise `json:"amount"`
	Note   string      `json:"note"`
}

type withdrawRequest struct {
	Amount   money.Paise `json:"amount"`
	PIN      string      `json:"pin"`
	Category string      `json:"category"`
}

type transferRequest struct {
	Sender   string      `json:"sender"`
	Receiver string      `json:"receiver"`
	Amount   money.Paise `json:"amount"`
	Note     string      `json:"note"`
	Category string      `json:"category"`
	PIN      string      `json:"pin"`
}

type qrGenerateRequest struct {
	Payee  string      `json:"payee"`
	Amount money.Paise `json:"amount"`
	Note   string      `json:"note"`
}

type qrPayRequest struct {
	Payer    string `json:"payer"`
	Payload  string `json:"payload"`
	Category string `json:"category"`
	PIN      string `json:"pin"`
}

// RegisterLedgerRoutes wires deposits, withdrawals, transfers and QR
// payments. The idem handler runs first on every money-moving route.
func RegisterLedgerRoutes(r fiber.Router, engine *ledger.Engine, idem fiber.Handler) {
	r.Post("/accounts/:username/deposit", idem, func(c *fiber.Ctx) error {
		var req depositRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		receipt, err := engine.Deposit(c.UserContext(), c.Params("username"), req.Amount, req.Note)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(receiptResponse(receipt))
	})

	r.Post("/accounts/:username/withdraw", idem, func(c *fiber.Ctx) error {
		var req withdrawRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		receipt, err := engine.Withdraw(c.UserContext(), c.Params("username"), req.Amount, req.PIN, req.Category)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(receiptResponse(receipt))
	})

	r.Post("/transfers", idem, func(c *fiber.Ctx) error {
		var req transferRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		res, err := engine.Transfer(c.UserContext(), ledger.TransferInput{
			Sender:   req.Sender,
			Receiver: req.Receiver,
			Amount:   req.Amount,
			Note:     req.Note,
			Category: req.Category,
			PIN:      req.PIN,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(transferResponse(res))
	})

	r.Post("/qr/generate", func(c *fiber.Ctx) error {
		var req qrGenerateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		payload, err := ledger.GenerateQRPayload(req.Payee, req.Amount, req.Note)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"payload": string(payload)})
	})

	r.Post("/qr/pay", idem, func(c *fiber.Ctx) error {
		var req qrPayRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		res, err := engine.QRPay(c.UserContext(), req.Payer, []byte(req.Payload), req.Category, req.PIN)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(http.StatusCreated).JSON(transferResponse(res))
	})
}

func receiptResponse(r ledger.Receipt) fiber.Map {
	return fiber.Map{
		"transaction": r.Transaction,
		"balance":     r.Balance,
		"high_value":  r.HighValue,
	}
}

func transferResponse(res ledger.TransferResult) fiber.Map {
	return fiber.Map{
		"transaction":      res.Entry.Outbound(),
		"sender_balance":   res.SenderBalance,
		"receiver_balance": res.ReceiverBalance,
		"high_value":       res.HighValue,
	}
}
