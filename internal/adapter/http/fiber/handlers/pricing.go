package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

type PricingHandler struct {
	tariff *domain.TariffConfig
}

func NewPricingHandler(tariff *domain.TariffConfig) *PricingHandler {
	return &PricingHandler{tariff: tariff}
}

// Get serves the static pricing configuration.
func (h *PricingHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.tariff)
}

// HourlyRates serves the per-hour weekday/weekend rate table.
func (h *PricingHandler) HourlyRates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"currency": h.tariff.Currency,
		"rates":    h.tariff.HourlyRates(),
	})
}
