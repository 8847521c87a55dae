package ledger

import (
	"time"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/archive"
	"github.com/paisepay/paisepay/internal/money"
)

// Entry is a single atomic ledger posting between two accounts. The two
// transaction records an account pair observes are projections of one Entry,
// which makes the pairing invariant structural: both sides always carry the
// same amount and timestamp.
type Entry struct {
	ID        string
	Timestamp time.Time
	OutKind   account.Kind
	InKind    account.Kind
	Amount    money.Paise
	Note      string
	Category  string
	From      string
	To        string
}

// Outbound is the debit projection appended to the source account. The
// category is recorded on this side only; the receiving side has no say in
// how the sender classifies the spend.
func (e Entry) Outbound() account.Transaction {
	return account.Transaction{
		ID:           e.ID + ":out",
		Timestamp:    e.Timestamp,
		Kind:         e.OutKind,
		Amount:       e.Amount,
		Note:         e.Note,
		Category:     e.Category,
		Counterparty: e.To,
	}
}

// Inbound is the credit projection appended to the destination account.
func (e Entry) Inbound() account.Transaction {
	return account.Transaction{
		ID:           e.ID + ":in",
		Timestamp:    e.Timestamp,
		Kind:         e.InKind,
		Amount:       e.Amount,
		Note:         e.Note,
		Counterparty: e.From,
	}
}

func (e Entry) archived() archive.Entry {
	return archive.Entry{
		ID:        e.ID,
		Kind:      string(e.OutKind),
		From:      e.From,
		To:        e.To,
		Amount:    e.Amount,
		Note:      e.Note,
		Category:  e.Category,
		Timestamp: e.Timestamp,
	}
}
