// Package requests manages the pending payment-request lifecycle: bill-split
// creation and payer approval or decline, settled through the ledger engine.
package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/auth"
	"github.com/paisepay/paisepay/internal/ledger"
	"github.com/paisepay/paisepay/internal/metrics"
	"github.com/paisepay/paisepay/internal/money"
	"github.com/paisepay/paisepay/internal/notification"
)

var (
	// ErrEmptyPayerSet occurs when a split request names no payers.
	ErrEmptyPayerSet = errors.New("at least one payer is required")

	// ErrAlreadyResolved occurs when resolving a request that is no longer
	// pending. Approved and declined are terminal.
	ErrAlreadyResolved = errors.New("request already resolved")

	// ErrUnknownRequest occurs when the payer holds no request with the
	// given id.
	ErrUnknownRequest = errors.New("payment request not found")
)

// settlementCategory is recorded on the payer's outbound transaction when a
// request is approved.
const settlementCategory = "Bills"

// Broker creates and resolves payment requests. Requests live inside the
// payer's account; the broker is the only writer of their status field.
type Broker struct {
	store    *account.Store
	engine   *ledger.Engine
	notifier notification.Notifier
	clock    auth.Clock
}

// NewBroker wires a broker over the store and ledger engine.
func NewBroker(store *account.Store, engine *ledger.Engine, notifier notification.Notifier, clock auth.Clock) *Broker {
	if clock == nil {
		clock = time.Now
	}
	return &Broker{store: store, engine: engine, notifier: notifier, clock: clock}
}

// SplitResult reports the fan-out of a bill-split request.
type SplitResult struct {
	Share  money.Paise
	Payers []string
}

// CreateSplit divides total across the payers plus the requester (who
// absorbs one implicit share) and files a pending request with each payer.
// Shares round half-up to a whole paisa, so the fan-out may drift from the
// exact division by up to one paisa per payer.
func (b *Broker) CreateSplit(ctx context.Context, requester string, total money.Paise, note string, payers []string) (SplitResult, error) {
	requester = account.Normalize(requester)
	if !b.store.Exists(requester) {
		return SplitResult{}, account.ErrNotFound
	}
	if total <= 0 {
		return SplitResult{}, fmt.Errorf("%w: amount must be positive", account.ErrInvalidFormat)
	}

	seen := make(map[string]bool, len(payers))
	normalized := make([]string, 0, len(payers))
	for _, p := range payers {
		p = account.Normalize(p)
		if p == "" || seen[p] {
			continue
		}
		if p == requester {
			return SplitResult{}, fmt.Errorf("%w: requester cannot be their own payer", account.ErrInvalidFormat)
		}
		if !b.store.Exists(p) {
			return SplitResult{}, fmt.Errorf("payer %s: %w", p, account.ErrNotFound)
		}
		seen[p] = true
		normalized = append(normalized, p)
	}
	if len(normalized) == 0 {
		return SplitResult{}, ErrEmptyPayerSet
	}

	share := money.SplitEven(total, len(normalized)+1)
	if share <= 0 {
		return SplitResult{}, fmt.Errorf("%w: total %s is too small to split %d ways", account.ErrInvalidFormat, total, len(normalized)+1)
	}
	now := b.clock().UTC()
	// Payers were all validated above and accounts are never removed, so the
	// sequential fan-out cannot leave a partial request set behind.
	for _, payer := range normalized {
		req := account.PaymentRequest{
			ID:        account.NewRequestID(),
			Requester: requester,
			Amount:    share,
			Note:      note,
			Status:    account.RequestPending,
			Timestamp: now,
		}
		if err := b.store.WithAccount(payer, func(acc *account.Account) error {
			acc.PendingRequests = append(acc.PendingRequests, req)
			return nil
		}); err != nil {
			return SplitResult{}, err
		}
		b.notify(ctx, notification.Message{
			Kind:        notification.KindPaymentRequest,
			Destination: payer,
			Body:        fmt.Sprintf("%s requests %s: %s", b.store.DisplayName(requester), share, note),
		})
	}

	return SplitResult{Share: share, Payers: normalized}, nil
}

// Resolve applies the payer's decision to a pending request. Approval
// settles through the ledger engine's transfer path; insufficient funds
// leaves the request pending so the payer can retry after topping up.
func (b *Broker) Resolve(ctx context.Context, payer, requestID string, decision account.RequestStatus) (account.PaymentRequest, error) {
	if decision != account.RequestApproved && decision != account.RequestDeclined {
		return account.PaymentRequest{}, fmt.Errorf("%w: decision must be approved or declined", account.ErrInvalidFormat)
	}

	payer = account.Normalize(payer)
	if decision == account.RequestDeclined {
		return b.decline(payer, requestID)
	}
	return b.approve(ctx, payer, requestID)
}

func (b *Broker) decline(payer, requestID string) (account.PaymentRequest, error) {
	var resolved account.PaymentRequest
	err := b.store.WithAccount(payer, func(acc *account.Account) error {
		req := acc.Request(requestID)
		if req == nil {
			return ErrUnknownRequest
		}
		if req.Status != account.RequestPending {
			return ErrAlreadyResolved
		}
		req.Status = account.RequestDeclined
		resolved = *req
		return nil
	})
	if err != nil {
		return account.PaymentRequest{}, err
	}
	metrics.RequestResolutionsTotal.WithLabelValues(string(account.RequestDeclined)).Inc()
	return resolved, nil
}

func (b *Broker) approve(ctx context.Context, payer, requestID string) (account.PaymentRequest, error) {
	// Peek at the request to learn the counterparty, then settle under the
	// pair lock, re-checking the status in case of a concurrent resolution.
	var requester string
	if err := b.store.WithAccount(payer, func(acc *account.Account) error {
		req := acc.Request(requestID)
		if req == nil {
			return ErrUnknownRequest
		}
		if req.Status != account.RequestPending {
			return ErrAlreadyResolved
		}
		requester = req.Requester
		return nil
	}); err != nil {
		return account.PaymentRequest{}, err
	}

	var (
		resolved  account.PaymentRequest
		entry     ledger.Entry
		highValue bool
	)
	err := b.store.WithPair(payer, requester, func(from, to *account.Account) error {
		req := from.Request(requestID)
		if req == nil {
			return ErrUnknownRequest
		}
		if req.Status != account.RequestPending {
			return ErrAlreadyResolved
		}
		note := fmt.Sprintf("Payment for: %s", req.Note)
		posted, err := b.engine.PostLocked(from, to,
			account.KindTransferOut, account.KindTransferIn,
			req.Amount, note, settlementCategory)
		if err != nil {
			// The request stays pending; the payer may retry.
			return err
		}
		req.Status = account.RequestApproved
		resolved = *req
		entry = posted
		highValue = b.engine.IsHighValue(req.Amount)
		return nil
	})
	if err != nil {
		return account.PaymentRequest{}, err
	}

	b.engine.Committed(ctx, entry, highValue)
	metrics.RequestResolutionsTotal.WithLabelValues(string(account.RequestApproved)).Inc()
	b.notify(ctx, notification.Message{
		Kind:        notification.KindTransferReceived,
		Destination: requester,
		Body:        fmt.Sprintf("%s paid your request of %s", b.store.DisplayName(payer), resolved.Amount),
	})
	return resolved, nil
}

func (b *Broker) notify(ctx context.Context, msg notification.Message) {
	if b.notifier == nil {
		return
	}
	_ = b.notifier.Send(ctx, msg)
}
