package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/money"
)

// qrPayload is the canonical wire format exchanged out-of-band as a QR
// image: a UTF-8 JSON object with the payee, a positive rupee amount and an
// optional note. Image rendering happens outside this module; the payload
// must survive the round trip unchanged.
type qrPayload struct {
	Payee  string  `json:"payee"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// GenerateQRPayload produces the request-for-payment descriptor a payee
// shares with a payer. Pure function, no money moves.
func GenerateQRPayload(payee string, amount money.Paise, note string) ([]byte, error) {
	payee = account.Normalize(payee)
	if payee == "" {
		return nil, fmt.Errorf("%w: payee is required", account.ErrInvalidFormat)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", account.ErrInvalidFormat)
	}
	return json.Marshal(qrPayload{Payee: payee, Amount: amount.Rupees(), Note: note})
}

// DecodeQRPayload parses a payload produced by GenerateQRPayload (or a
// compatible external encoder) back into its parts.
func DecodeQRPayload(raw []byte) (payee string, amount money.Paise, note string, err error) {
	var p qrPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", 0, "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	payee = account.Normalize(p.Payee)
	if payee == "" {
		return "", 0, "", fmt.Errorf("%w: missing payee", ErrMalformedPayload)
	}
	amount = money.FromRupees(p.Amount)
	if amount <= 0 {
		return "", 0, "", fmt.Errorf("%w: amount must be positive", ErrMalformedPayload)
	}
	return payee, amount, p.Note, nil
}
