// Package ledger implements the money-movement core: deposits, withdrawals,
// direct transfers and QR payments posted atomically against the account
// store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/archive"
	"github.com/paisepay/paisepay/internal/auth"
	"github.com/paisepay/paisepay/internal/metrics"
	"github.com/paisepay/paisepay/internal/money"
	"github.com/paisepay/paisepay/internal/notification"
)

var (
	// ErrInsufficientFunds occurs when the source account lacks balance to
	// cover a requested debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSelfPayment occurs when payer and payee are the same account.
	ErrSelfPayment = errors.New("cannot pay yourself")

	// ErrMalformedPayload occurs when a QR payload cannot be decoded or is
	// missing required fields.
	ErrMalformedPayload = errors.New("malformed qr payload")
)

// DefaultHighValueThreshold is the amount at or above which a transaction
// carries the high-value advisory.
const DefaultHighValueThreshold = money.Paise(300_000) // 3000 rupees

// Config carries the engine's collaborators. Zero values are safe: a nil
// notifier or archiver disables that concern, a nil clock means time.Now.
type Config struct {
	Notifier           notification.Notifier
	Archiver           archive.Archiver
	Logger             *slog.Logger
	Clock              auth.Clock
	HighValueThreshold money.Paise
}

// Engine posts ledger entries against the account store. Every mutating
// operation locks the involved accounts up front, so either both balance
// updates and both history appends commit or none do.
type Engine struct {
	store     *account.Store
	gate      *auth.Gate
	notifier  notification.Notifier
	archiver  archive.Archiver
	logger    *slog.Logger
	clock     auth.Clock
	highValue money.Paise
}

// NewEngine wires the engine over the store and auth gate.
func NewEngine(store *account.Store, gate *auth.Gate, cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.HighValueThreshold <= 0 {
		cfg.HighValueThreshold = DefaultHighValueThreshold
	}
	return &Engine{
		store:     store,
		gate:      gate,
		notifier:  cfg.Notifier,
		archiver:  cfg.Archiver,
		logger:    cfg.Logger,
		clock:     cfg.Clock,
		highValue: cfg.HighValueThreshold,
	}
}

// IsHighValue reports whether the amount triggers the high-value advisory.
func (e *Engine) IsHighValue(amount money.Paise) bool {
	return amount >= e.highValue
}

// Receipt describes the outcome of a single-account operation.
type Receipt struct {
	Transaction account.Transaction
	Balance     money.Paise
	HighValue   bool
}

// Deposit credits the account and records a deposit transaction. It cannot
// fail on balance grounds.
func (e *Engine) Deposit(ctx context.Context, username string, amount money.Paise, note string) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, fmt.Errorf("%w: amount must be positive", account.ErrInvalidFormat)
	}
	if note == "" {
		note = "Self Deposit"
	}

	var receipt Receipt
	err := e.store.WithAccount(username, func(acc *account.Account) error {
		txn := account.Transaction{
			ID:           account.NewTransactionID(),
			Timestamp:    e.clock().UTC(),
			Kind:         account.KindDeposit,
			Amount:       amount,
			Note:         note,
			Counterparty: account.CounterpartySelf,
		}
		acc.Append(txn)
		receipt = Receipt{Transaction: txn, Balance: acc.Balance, HighValue: e.IsHighValue(amount)}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	e.committed(ctx, archive.Entry{
		ID:        receipt.Transaction.ID,
		Kind:      string(account.KindDeposit),
		From:      account.CounterpartySelf,
		To:        account.Normalize(username),
		Amount:    amount,
		Note:      note,
		Timestamp: receipt.Transaction.Timestamp,
	}, receipt.HighValue)
	return receipt, nil
}

// Withdraw debits the account after PIN verification.
func (e *Engine) Withdraw(ctx context.Context, username string, amount money.Paise, pin, category string) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, fmt.Errorf("%w: amount must be positive", account.ErrInvalidFormat)
	}
	if !account.ValidCategory(category) {
		return Receipt{}, fmt.Errorf("%w: unknown category %q", account.ErrInvalidFormat, category)
	}

	var receipt Receipt
	err := e.store.WithAccount(username, func(acc *account.Account) error {
		if err := e.gate.Check(acc, pin); err != nil {
			return err
		}
		if amount > acc.Balance {
			return ErrInsufficientFunds
		}
		txn := account.Transaction{
			ID:           account.NewTransactionID(),
			Timestamp:    e.clock().UTC(),
			Kind:         account.KindWithdraw,
			Amount:       amount,
			Note:         "Cash withdrawal",
			Category:     category,
			Counterparty: account.CounterpartyCash,
		}
		acc.Append(txn)
		receipt = Receipt{Transaction: txn, Balance: acc.Balance, HighValue: e.IsHighValue(amount)}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	e.committed(ctx, archive.Entry{
		ID:        receipt.Transaction.ID,
		Kind:      string(account.KindWithdraw),
		From:      account.Normalize(username),
		To:        account.CounterpartyCash,
		Amount:    amount,
		Note:      receipt.Transaction.Note,
		Category:  category,
		Timestamp: receipt.Transaction.Timestamp,
	}, receipt.HighValue)
	return receipt, nil
}

// TransferInput captures the data needed to move funds between accounts.
type TransferInput struct {
	Sender   string
	Receiver string
	Amount   money.Paise
	Note     string
	Category string
	PIN      string
}

// TransferResult describes a committed two-sided posting.
type TransferResult struct {
	Entry           Entry
	SenderBalance   money.Paise
	ReceiverBalance money.Paise
	HighValue       bool
}

// Transfer moves funds from sender to receiver after verifying the sender's
// PIN. Both accounts are locked in a fixed global order for the duration,
// so no other operation can observe a partially applied transfer.
func (e *Engine) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	res, err := e.pay(ctx, input, account.KindTransferOut, account.KindTransferIn)
	if err != nil {
		return TransferResult{}, err
	}
	e.notify(ctx, notification.Message{
		Kind:        notification.KindTransferReceived,
		Destination: res.Entry.To,
		Body:        fmt.Sprintf("You received %s from %s", res.Entry.Amount, e.store.DisplayName(res.Entry.From)),
	})
	return res, nil
}

// QRPay decodes a QR payload and pays the encoded payee. Amount, payee and
// note come from the payload; category and PIN from the payer.
func (e *Engine) QRPay(ctx context.Context, payer string, payload []byte, category, pin string) (TransferResult, error) {
	payee, amount, note, err := DecodeQRPayload(payload)
	if err != nil {
		return TransferResult{}, err
	}
	res, err := e.pay(ctx, TransferInput{
		Sender:   payer,
		Receiver: payee,
		Amount:   amount,
		Note:     note,
		Category: category,
		PIN:      pin,
	}, account.KindQROut, account.KindQRIn)
	if err != nil {
		return TransferResult{}, err
	}
	e.notify(ctx, notification.Message{
		Kind:        notification.KindQRPaymentReceived,
		Destination: res.Entry.To,
		Body:        fmt.Sprintf("You received %s from %s", res.Entry.Amount, e.store.DisplayName(res.Entry.From)),
	})
	return res, nil
}

func (e *Engine) pay(ctx context.Context, input TransferInput, outKind, inKind account.Kind) (TransferResult, error) {
	if input.Amount <= 0 {
		return TransferResult{}, fmt.Errorf("%w: amount must be positive", account.ErrInvalidFormat)
	}
	if !account.ValidCategory(input.Category) {
		return TransferResult{}, fmt.Errorf("%w: unknown category %q", account.ErrInvalidFormat, input.Category)
	}
	sender := account.Normalize(input.Sender)
	receiver := account.Normalize(input.Receiver)
	if sender == receiver {
		return TransferResult{}, ErrSelfPayment
	}

	var result TransferResult
	err := e.store.WithPair(sender, receiver, func(from, to *account.Account) error {
		if err := e.gate.Check(from, input.PIN); err != nil {
			return err
		}
		entry, err := e.PostLocked(from, to, outKind, inKind, input.Amount, input.Note, input.Category)
		if err != nil {
			return err
		}
		result = TransferResult{
			Entry:           entry,
			SenderBalance:   from.Balance,
			ReceiverBalance: to.Balance,
			HighValue:       e.IsHighValue(input.Amount),
		}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	e.committed(ctx, result.Entry.archived(), result.HighValue)
	return result, nil
}

// PostLocked appends a paired entry to two accounts the caller has locked
// via account.Store.WithPair. Authorization is the caller's responsibility;
// the funds check is not. Used by the request broker to settle approved
// payment requests through the same posting path as direct transfers.
func (e *Engine) PostLocked(from, to *account.Account, outKind, inKind account.Kind, amount money.Paise, note, category string) (Entry, error) {
	if amount > from.Balance {
		return Entry{}, ErrInsufficientFunds
	}
	entry := Entry{
		ID:        account.NewTransactionID(),
		Timestamp: e.clock().UTC(),
		OutKind:   outKind,
		InKind:    inKind,
		Amount:    amount,
		Note:      note,
		Category:  category,
		From:      from.Username,
		To:        to.Username,
	}
	from.Append(entry.Outbound())
	to.Append(entry.Inbound())
	return entry, nil
}

// Committed finalizes an entry posted through PostLocked once the account
// locks are released: metrics and the best-effort archive write.
func (e *Engine) Committed(ctx context.Context, entry Entry, highValue bool) {
	e.committed(ctx, entry.archived(), highValue)
}

func (e *Engine) committed(ctx context.Context, entry archive.Entry, highValue bool) {
	metrics.TransactionsTotal.WithLabelValues(entry.Kind).Inc()
	if highValue {
		metrics.HighValueTotal.Inc()
	}
	if e.archiver == nil {
		return
	}
	if err := e.archiver.Record(ctx, entry); err != nil && e.logger != nil {
		// The in-memory ledger already committed; losing an archive row is
		// acceptable, losing the request is not.
		e.logger.Warn("archive ledger entry", "entry_id", entry.ID, "error", err)
	}
}

func (e *Engine) notify(ctx context.Context, msg notification.Message) {
	if e.notifier == nil {
		return
	}
	_ = e.notifier.Send(ctx, msg)
}
