package midtrans

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Signature computes the provider's webhook signature: the SHA-512 hex
// digest of orderID + statusCode + grossAmount + serverKey.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// ValidSignature verifies a webhook notification signature in constant
// time.
func ValidSignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	expected := Signature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
