package account

import (
	"sync"
	"time"

	"github.com/paisepay/paisepay/internal/money"
)

// Kind tags a transaction record. Every movement between two accounts
// produces one _out record on the source and one matching _in record on the
// destination.
type Kind string

const (
	KindDeposit     Kind = "deposit"
	KindWithdraw    Kind = "withdraw"
	KindTransferIn  Kind = "transfer_in"
	KindTransferOut Kind = "transfer_out"
	KindQRIn        Kind = "qr_in"
	KindQROut       Kind = "qr_out"
)

// Inbound reports whether the kind credits the account.
func (k Kind) Inbound() bool {
	return k == KindDeposit || k == KindTransferIn || k == KindQRIn
}

// Outbound reports whether the kind debits the account.
func (k Kind) Outbound() bool {
	return k == KindWithdraw || k == KindTransferOut || k == KindQROut
}

// Sentinel counterparties for boundary flows that have no peer account.
const (
	CounterpartySelf = "self"
	CounterpartyCash = "cash"
)

// Categories is the closed set of spending categories accepted by the API.
var Categories = []string{"Food", "Travel", "Bills", "Shopping", "Education", "Health", "Other"}

// ValidCategory reports whether c belongs to the category set. The empty
// string is allowed; it marks an uncategorized transaction.
func ValidCategory(c string) bool {
	if c == "" {
		return true
	}
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is an immutable entry in an account's history.
type Transaction struct {
	ID           string      `json:"id"`
	Timestamp    time.Time   `json:"timestamp"`
	Kind         Kind        `json:"kind"`
	Amount       money.Paise `json:"amount"`
	Note         string      `json:"note"`
	Category     string      `json:"category,omitempty"`
	Counterparty string      `json:"counterparty"`
}

// RequestStatus tracks a payment request's lifecycle. Approved and declined
// are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// PaymentRequest is an IOU created by a requester against the payer whose
// account holds it. It is never deleted; resolution flips its status once.
type PaymentRequest struct {
	ID        string        `json:"id"`
	Requester string        `json:"requester"`
	Amount    money.Paise   `json:"amount"`
	Note      string        `json:"note"`
	Status    RequestStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// Account is the unit of ownership in the store. All fields other than
// Username are mutated only while the account's lock is held via
// Store.WithAccount or Store.WithPair.
type Account struct {
	mu sync.Mutex

	Username        string
	DisplayName     string
	PINHash         []byte
	Balance         money.Paise
	Transactions    []Transaction
	FailedAttempts  int
	LockedUntil     time.Time
	PendingRequests []PaymentRequest
	CreatedAt       time.Time
}

// Append records a transaction and applies its balance effect. Callers must
// hold the account lock and have already validated that an outbound amount
// is covered.
func (a *Account) Append(txn Transaction) {
	if txn.Kind.Inbound() {
		a.Balance += txn.Amount
	} else {
		a.Balance -= txn.Amount
	}
	a.Transactions = append(a.Transactions, txn)
}

// Request returns a pointer to the pending request with the given id, or nil.
// Callers must hold the account lock.
func (a *Account) Request(id string) *PaymentRequest {
	for i := range a.PendingRequests {
		if a.PendingRequests[i].ID == id {
			return &a.PendingRequests[i]
		}
	}
	return nil
}
