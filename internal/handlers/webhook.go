package handlers

import (
	"errors"

	apperr "gigpay/internal/errors"
	"gigpay/internal/services/webhook"
	"gigpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	webhooks webhook.Service
}

func NewWebhookHandler(webhooks webhook.Service) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Stripe ingests card provider events. Only a signature failure earns a
// non-2xx; anything after verification is acknowledged so the provider
// stops redelivering.
func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	err := h.webhooks.HandleStripe(c.Context(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidSignature) {
			return response.BadRequest(c, "invalid signature")
		}
		return response.ServerError(c, "webhook processing failed")
	}
	return c.SendStatus(fiber.StatusOK)
}

// Midtrans ingests bank transfer provider notifications.
func (h *WebhookHandler) Midtrans(c *fiber.Ctx) error {
	err := h.webhooks.HandleMidtrans(c.Context(), c.Body())
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidSignature) {
			return response.BadRequest(c, "invalid signature")
		}
		return response.ServerError(c, "webhook processing failed")
	}
	return c.SendStatus(fiber.StatusOK)
}
