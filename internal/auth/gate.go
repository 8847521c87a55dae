// Package auth implements PIN verification with failed-attempt counting and
// a time-boxed lockout window.
package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/metrics"
)

const (
	// DefaultMaxAttempts is the number of consecutive wrong PINs that
	// triggers a lockout.
	DefaultMaxAttempts = 3
	// DefaultLockout is how long an account stays locked.
	DefaultLockout = 60 * time.Second
)

// ErrWrongOldPin indicates the current PIN supplied to a PIN change is wrong.
var ErrWrongOldPin = errors.New("current pin is incorrect")

// InvalidPinError is returned for a wrong PIN below the lockout threshold.
type InvalidPinError struct {
	AttemptsRemaining int
}

func (e *InvalidPinError) Error() string {
	return fmt.Sprintf("incorrect pin, %d attempts remaining", e.AttemptsRemaining)
}

// LockedError is returned while an account's lockout window is active.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.RetryAfter.Round(time.Second))
}

// Clock supplies the current time. Injectable so lockout expiry is testable
// without sleeping. time.Time values from a real clock carry a monotonic
// reading, so wall-clock skew cannot unlock an account early.
type Clock func() time.Time

// Gate enforces PIN checks and the lockout state machine. It holds no state
// of its own; attempt counters and lockout expiry live on the account and
// are mutated only under the account lock.
type Gate struct {
	store       *account.Store
	clock       Clock
	maxAttempts int
	lockout     time.Duration
}

// NewGate builds a gate over the store. Zero values select the defaults.
func NewGate(store *account.Store, clock Clock, maxAttempts int, lockout time.Duration) *Gate {
	if clock == nil {
		clock = time.Now
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = DefaultLockout
	}
	return &Gate{store: store, clock: clock, maxAttempts: maxAttempts, lockout: lockout}
}

// Authenticate verifies the PIN for the named account.
func (g *Gate) Authenticate(username, pin string) error {
	return g.store.WithAccount(username, func(acc *account.Account) error {
		return g.Check(acc, pin)
	})
}

// Check runs the verification state machine against an account the caller
// has already locked. A wrong PIN increments the attempt counter; reaching
// the threshold starts the lockout window. A correct PIN after an expired
// window resets the counter.
func (g *Gate) Check(acc *account.Account, pin string) error {
	now := g.clock()
	if now.Before(acc.LockedUntil) {
		return &LockedError{RetryAfter: acc.LockedUntil.Sub(now)}
	}

	if bcrypt.CompareHashAndPassword(acc.PINHash, []byte(pin)) == nil {
		acc.FailedAttempts = 0
		return nil
	}

	acc.FailedAttempts++
	if acc.FailedAttempts >= g.maxAttempts {
		acc.LockedUntil = now.Add(g.lockout)
		metrics.LockoutsTotal.Inc()
		return &LockedError{RetryAfter: g.lockout}
	}
	return &InvalidPinError{AttemptsRemaining: g.maxAttempts - acc.FailedAttempts}
}

// ChangePin replaces the account's PIN after verifying the old one. The
// lockout state is left untouched.
func (g *Gate) ChangePin(username, oldPin, newPin, confirmPin string) error {
	return g.store.WithAccount(username, func(acc *account.Account) error {
		if bcrypt.CompareHashAndPassword(acc.PINHash, []byte(oldPin)) != nil {
			return ErrWrongOldPin
		}
		if !account.ValidPIN(newPin) {
			return fmt.Errorf("%w: PIN must be exactly 4 digits", account.ErrInvalidFormat)
		}
		if newPin != confirmPin {
			return account.ErrMismatch
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		acc.PINHash = hash
		return nil
	})
}
