package handlers

import (
	"gigpay/internal/models"
	"gigpay/internal/services/withdrawal"
	"gigpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WithdrawalHandler struct {
	withdrawals withdrawal.Service
}

func NewWithdrawalHandler(withdrawals withdrawal.Service) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// Withdraw issues a payout from the caller's available balance.
func (h *WithdrawalHandler) Withdraw(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		Amount   int64           `json:"amount"`
		Provider models.Provider `json:"provider"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	p, err := h.withdrawals.Withdraw(c.Context(), claims.UserID, withdrawal.Request{
		Amount:   input.Amount,
		Provider: input.Provider,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Withdrawal issued", p)
}
