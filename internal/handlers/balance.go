package handlers

import (
	"gigpay/internal/models"
	"gigpay/internal/services/ledger"
	"gigpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BalanceHandler struct {
	balances ledger.Service
}

func NewBalanceHandler(balances ledger.Service) *BalanceHandler {
	return &BalanceHandler{balances: balances}
}

// Get returns the caller's available balance per provider. Amounts stay
// labeled with their currency; nothing is converted.
func (h *BalanceHandler) Get(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	balances, err := h.balances.Balances(c.Context(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Balance retrieved", fiber.Map{"balances": balances})
}
