package handlers

import (
	"strconv"

	"gigpay/internal/models"
	"gigpay/internal/services/payment"
	"gigpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments payment.Service
}

func NewPaymentHandler(payments payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateSession opens or resumes the payment attempt for a contract.
func (h *PaymentHandler) CreateSession(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		ContractID    string          `json:"contract_id"`
		Provider      models.Provider `json:"provider"`
		PaymentMethod string          `json:"payment_method"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.ContractID == "" {
		return response.BadRequest(c, "contract_id is required")
	}

	result, err := h.payments.CreateSession(c.Context(), claims.UserID, payment.SessionRequest{
		ContractID:    input.ContractID,
		Provider:      input.Provider,
		PaymentMethod: input.PaymentMethod,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Payment session created", result)
}

// Confirm reconciles a client-side completion callback against the
// provider's own record of the payment.
func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		PaymentID             uint   `json:"payment_id"`
		ProviderTransactionID string `json:"provider_transaction_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.PaymentID == 0 {
		return response.BadRequest(c, "payment_id is required")
	}

	p, err := h.payments.Confirm(c.Context(), claims.UserID, payment.ConfirmRequest{
		PaymentID:             input.PaymentID,
		ProviderTransactionID: input.ProviderTransactionID,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Payment confirmed", p)
}

// Get returns one payment, visible to its parties only.
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment id")
	}

	p, err := h.payments.Get(c.Context(), claims.UserID, uint(id))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Payment retrieved", p)
}

// Refund reverses a settled payment in full.
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment id")
	}

	p, err := h.payments.Refund(c.Context(), claims.UserID, uint(id))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Payment refunded", p)
}
