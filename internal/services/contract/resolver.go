// Package contract is the boundary to the external matching workflow. The
// payment core only needs to resolve a contract id into its payable terms
// and to notify the owner when a refund cancels a contract.
package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperr "gigpay/internal/errors"
)

// Info is the payable view of a contract: who gets paid and how much.
type Info struct {
	ContractID  string `json:"contract_id"`
	PayerID     uint   `json:"payer_id"`
	PayeeID     uint   `json:"payee_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Resolver resolves a contract id into its payable terms.
type Resolver interface {
	Resolve(ctx context.Context, contractID string) (*Info, error)
	// Cancel tells the contract owner a refund voided the contract.
	Cancel(ctx context.Context, contractID string) error
}

// HTTPResolver talks to the contract service over its internal REST API.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver creates a resolver against the contract service.
func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, contractID string) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/internal/contracts/%s", r.baseURL, contractID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperr.ErrProviderUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.ErrMissingContract.WithMessage("contract %s not found", contractID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("contract service returned %d: %s", resp.StatusCode, body)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode contract: %w", err)
	}
	return &info, nil
}

func (r *HTTPResolver) Cancel(ctx context.Context, contractID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/internal/contracts/%s/cancel", r.baseURL, contractID), nil)
	if err != nil {
		return fmt.Errorf("failed to build cancel request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return apperr.ErrProviderUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("contract cancel returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
