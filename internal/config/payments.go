package config

// FeeConfig holds the platform fee and tax schedule for one provider.
// All business logic receives this struct explicitly; nothing below the
// handlers reads the process environment.
type FeeConfig struct {
	FeePercent float64 // platform cut, fraction of the service amount
	FixedFee   int64   // flat platform fee in minor units
	TaxPercent float64 // provider-side tax on amount + fee
}

// StripeConfig holds provider credentials for the card processor.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// MidtransConfig holds provider credentials for the bank-transfer processor.
type MidtransConfig struct {
	ServerKey    string
	ClientKey    string
	BaseURL      string
	IsProduction bool
	Currency     string
}

// LoadFeeConfig reads the fee schedule for a provider from the environment.
// Both providers currently share one schedule; the prefix keeps divergent
// schedules possible without touching the fee engine.
func LoadFeeConfig(prefix string) FeeConfig {
	return FeeConfig{
		FeePercent: GetFloatEnv(prefix+"_FEE_PERCENT", 0.10),
		FixedFee:   GetInt64Env(prefix+"_FIXED_FEE", 500),
		TaxPercent: GetFloatEnv(prefix+"_TAX_PERCENT", 0.13),
	}
}

// LoadStripeConfig reads Stripe credentials from the environment.
func LoadStripeConfig() StripeConfig {
	return StripeConfig{
		SecretKey:     GetEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret: GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		Currency:      GetEnv("STRIPE_CURRENCY", "usd"),
	}
}

// LoadMidtransConfig reads Midtrans credentials from the environment.
func LoadMidtransConfig() MidtransConfig {
	isProd := GetEnv("MIDTRANS_ENV", "sandbox") == "production"
	base := "https://api.sandbox.midtrans.com"
	if isProd {
		base = "https://api.midtrans.com"
	}
	return MidtransConfig{
		ServerKey:    GetEnv("MIDTRANS_SERVER_KEY", ""),
		ClientKey:    GetEnv("MIDTRANS_CLIENT_KEY", ""),
		BaseURL:      GetEnv("MIDTRANS_BASE_URL", base),
		IsProduction: isProd,
		Currency:     GetEnv("MIDTRANS_CURRENCY", "IDR"),
	}
}
