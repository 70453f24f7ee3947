package handlers

import (
	"time"

	"gigpay/internal/models"
	"gigpay/internal/services/reporting"
	"gigpay/internal/utils/pagination"
	"gigpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	reports reporting.Service
}

func NewHistoryHandler(reports reporting.Service) *HistoryHandler {
	return &HistoryHandler{reports: reports}
}

// List returns one page of the caller's payment history merged across
// providers.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	p := pagination.ParseFromRequest(c)

	query := reporting.HistoryQuery{
		Page:     p.Page,
		Limit:    p.Limit,
		Provider: models.Provider(c.Query("provider")),
		Type:     models.PaymentType(c.Query("type")),
		Status:   models.PaymentStatus(c.Query("status")),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		query.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		query.To = &to
	}

	page, err := h.reports.History(c.Context(), claims.UserID, query)
	if err != nil {
		return response.FromError(c, err)
	}

	return c.JSON(pagination.Response(
		pagination.Pagination{Page: page.Page, Limit: page.Limit},
		page.HasMore,
		page.Items,
	))
}

// Earnings summarizes earned, withdrawn, and available amounts per
// provider plus currency-labeled totals.
func (h *HistoryHandler) Earnings(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	summary, err := h.reports.Earnings(c.Context(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Earnings retrieved", summary)
}

// Stats returns per-status payment counts and totals.
func (h *HistoryHandler) Stats(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	stats, err := h.reports.Stats(c.Context(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Statistics retrieved", stats)
}
