package midtrans

// chargeRequest is the /v2/charge payload for a bank-transfer charge.
type chargeRequest struct {
	PaymentType        string             `json:"payment_type"`
	TransactionDetails transactionDetails `json:"transaction_details"`
	BankTransfer       *bankTransfer      `json:"bank_transfer,omitempty"`
	CustomMetadata     map[string]string  `json:"metadata,omitempty"`
}

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type bankTransfer struct {
	Bank string `json:"bank"`
}

// chargeResponse covers /v2/charge, /v2/{order}/status and
// /v2/{order}/refund, which share one transaction shape.
type chargeResponse struct {
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	RedirectURL       string `json:"redirect_url"`
	VANumbers         []struct {
		Bank     string `json:"bank"`
		VANumber string `json:"va_number"`
	} `json:"va_numbers"`
	RefundChargebackID int64 `json:"refund_chargeback_id"`
}

// payoutRequest is the payout API envelope; the provider accepts batches
// but the withdrawal flow always sends exactly one.
type payoutRequest struct {
	Payouts []payoutItem `json:"payouts"`
}

type payoutItem struct {
	BeneficiaryName    string `json:"beneficiary_name,omitempty"`
	BeneficiaryAccount string `json:"beneficiary_account"`
	BeneficiaryBank    string `json:"beneficiary_bank,omitempty"`
	Amount             string `json:"amount"`
	Notes              string `json:"notes"`
}

type payoutResponse struct {
	Payouts []struct {
		ReferenceNo string `json:"reference_no"`
		Status      string `json:"status"`
	} `json:"payouts"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

type beneficiaryRequest struct {
	Name      string `json:"name"`
	Account   string `json:"account"`
	Bank      string `json:"bank"`
	AliasName string `json:"alias_name"`
	Email     string `json:"email"`
}
