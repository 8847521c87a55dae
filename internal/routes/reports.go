package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/paisepay/paisepay/internal/reports"
)

// RegisterReportRoutes wires transaction history and spending analytics.
func RegisterReportRoutes(r fiber.Router, reporter *reports.Engine) {
	r.Get("/accounts/:username/transactions", func(c *fiber.Ctx) error {
		history, err := reporter.History(c.Params("username"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"transactions": history})
	})

	r.Get("/accounts/:username/reports/categories", func(c *fiber.Ctx) error {
		totals, err := reporter.SpendByCategory(c.Params("username"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"categories": totals})
	})

	r.Get("/accounts/:username/reports/monthly", func(c *fiber.Ctx) error {
		summary, err := reporter.MonthlySummary(c.Params("username"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"months": summary})
	})

	r.Get("/accounts/:username/reports/payees", func(c *fiber.Ctx) error {
		payees, err := reporter.TopPayees(c.Params("username"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"payees": payees})
	})
}
