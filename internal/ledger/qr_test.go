package ledger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/paisepay/paisepay/internal/account"
)

func TestQRPayloadRoundTrip(t *testing.T) {
	raw, err := GenerateQRPayload("Bob", 3050, "lunch")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["payee"] != "bob" {
		t.Fatalf("expected normalized payee, got %v", decoded["payee"])
	}

	payee, amount, note, err := DecodeQRPayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payee != "bob" || amount != 3050 || note != "lunch" {
		t.Fatalf("round trip mismatch: %s %d %q", payee, amount, note)
	}
}

func TestGenerateQRPayloadValidation(t *testing.T) {
	if _, err := GenerateQRPayload("", 100, ""); !errors.Is(err, account.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for empty payee, got %v", err)
	}
	if _, err := GenerateQRPayload("bob", 0, ""); !errors.Is(err, account.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for zero amount, got %v", err)
	}
}

func TestDecodeQRPayloadMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"payee": "bob"`,
		"missing payee":  `{"amount": 10, "note": ""}`,
		"zero amount":    `{"payee": "bob", "amount": 0}`,
		"negative":       `{"payee": "bob", "amount": -5}`,
		"amount as text": `{"payee": "bob", "amount": "ten"}`,
	}
	for name, raw := range cases {
		if _, _, _, err := DecodeQRPayload([]byte(raw)); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("%s: expected ErrMalformedPayload, got %v", name, err)
		}
	}
}

func TestDecodeQRPayloadOptionalNote(t *testing.T) {
	payee, amount, note, err := DecodeQRPayload([]byte(`{"payee": "Alice", "amount": 25.5}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payee != "alice" || amount != 2550 || note != "" {
		t.Fatalf("unexpected decode result: %s %d %q", payee, amount, note)
	}
}
