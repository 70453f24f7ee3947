package handlers

import (
	"errors"

	"gigpay/internal/gateway"
	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/utils/logger"
	"gigpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	accounts repositories.AccountRepository
	gateways *gateway.Factory
}

func NewAccountHandler(accounts repositories.AccountRepository, gateways *gateway.Factory) *AccountHandler {
	return &AccountHandler{accounts: accounts, gateways: gateways}
}

// Register records the caller's payout destination on one provider. When
// no account id is supplied the provider is asked to create one from the
// caller's profile; either way only the identifier and capability flags
// are stored here.
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input struct {
		Provider  models.Provider `json:"provider"`
		AccountID string          `json:"account_id"`
		Country   string          `json:"country"`
		IsDefault bool            `json:"is_default"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if !input.Provider.Valid() {
		return response.BadRequest(c, "unknown provider")
	}

	g, err := h.gateways.For(input.Provider)
	if err != nil {
		return response.FromError(c, err)
	}

	accountID := input.AccountID
	if accountID == "" {
		accountID, err = g.CreateAccount(c.Context(), gateway.AccountProfile{
			UserID:  claims.UserID,
			Email:   claims.Email,
			Country: input.Country,
		})
		if err != nil {
			return response.FromError(c, err)
		}
	}

	account := &models.ProviderAccount{
		UserID:    claims.UserID,
		Provider:  input.Provider,
		AccountID: accountID,
		IsDefault: input.IsDefault,
	}
	if status, serr := g.GetAccountStatus(c.Context(), accountID); serr == nil {
		account.ChargesEnabled = status.ChargesEnabled
		account.PayoutsEnabled = status.PayoutsEnabled
		account.DetailsSubmitted = status.DetailsSubmitted
	}

	if err := h.accounts.Upsert(c.Context(), account); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Payout account recorded", account)
}

// ProviderBalance proxies the provider-side balance of the caller's
// connected account. This is the provider's own view, distinct from the
// brokered balance derived from settled payments.
func (h *AccountHandler) ProviderBalance(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	provider := models.Provider(c.Params("provider"))
	if !provider.Valid() {
		return response.BadRequest(c, "unknown provider")
	}

	account, err := h.accounts.GetByUserAndProvider(c.Context(), claims.UserID, provider)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return response.Error(c, fiber.StatusNotFound, "no payout account on this provider")
		}
		return response.FromError(c, err)
	}

	g, err := h.gateways.For(provider)
	if err != nil {
		return response.FromError(c, err)
	}

	balance, err := g.GetBalance(c.Context(), account.AccountID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Provider balance retrieved", balance)
}

// Status returns the caller's payout account on one provider, refreshed
// against the provider's own capability flags. Onboarding happens
// elsewhere; this service only records and reads the account.
func (h *AccountHandler) Status(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	provider := models.Provider(c.Params("provider"))
	if !provider.Valid() {
		return response.BadRequest(c, "unknown provider")
	}

	account, err := h.accounts.GetByUserAndProvider(c.Context(), claims.UserID, provider)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return response.Error(c, fiber.StatusNotFound, "no payout account on this provider")
		}
		return response.FromError(c, err)
	}

	g, err := h.gateways.For(provider)
	if err != nil {
		return response.FromError(c, err)
	}

	status, err := g.GetAccountStatus(c.Context(), account.AccountID)
	if err == nil {
		uerr := h.accounts.UpdateCapabilities(c.Context(), account.ID,
			status.ChargesEnabled, status.PayoutsEnabled, status.DetailsSubmitted)
		if uerr != nil {
			logger.Error.Warnf("failed to persist account capabilities for %d: %v", account.ID, uerr)
		}
		account.ChargesEnabled = status.ChargesEnabled
		account.PayoutsEnabled = status.PayoutsEnabled
		account.DetailsSubmitted = status.DetailsSubmitted
	}

	return response.Success(c, "Account status retrieved", account)
}
