package account

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/paisepay/paisepay/internal/money"
)

// Store owns every account for the process lifetime. All balance and
// security state lives here; mutation happens only through the locked
// accessors so no caller can observe a half-applied transfer.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewStore builds an empty account store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*Account)}
}

// Normalize canonicalizes a username: usernames are compared
// case-insensitively and stored lower-cased.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// CreateInput carries the fields needed to open an account.
type CreateInput struct {
	Username       string
	DisplayName    string
	PIN            string
	ConfirmPIN     string
	InitialDeposit money.Paise
}

// Create validates the input, hashes the PIN and registers the account. A
// positive initial deposit is recorded as the account's first transaction.
func (s *Store) Create(input CreateInput) (Snapshot, error) {
	username := Normalize(input.Username)
	if username == "" || strings.TrimSpace(input.DisplayName) == "" {
		return Snapshot{}, fmt.Errorf("%w: username and display name are required", ErrInvalidFormat)
	}
	if !ValidPIN(input.PIN) {
		return Snapshot{}, fmt.Errorf("%w: PIN must be exactly 4 digits", ErrInvalidFormat)
	}
	if input.PIN != input.ConfirmPIN {
		return Snapshot{}, ErrMismatch
	}
	if input.InitialDeposit < 0 {
		return Snapshot{}, fmt.Errorf("%w: initial deposit cannot be negative", ErrInvalidFormat)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		return Snapshot{}, err
	}

	now := time.Now().UTC()
	acc := &Account{
		Username:    username,
		DisplayName: strings.TrimSpace(input.DisplayName),
		PINHash:     hash,
		CreatedAt:   now,
	}
	if input.InitialDeposit > 0 {
		acc.Append(Transaction{
			ID:           NewTransactionID(),
			Timestamp:    now,
			Kind:         KindDeposit,
			Amount:       input.InitialDeposit,
			Note:         "Initial deposit",
			Counterparty: CounterpartySelf,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[username]; exists {
		return Snapshot{}, ErrAlreadyExists
	}
	s.accounts[username] = acc
	return acc.snapshot(), nil
}

// WithAccount runs fn with the named account locked.
func (s *Store) WithAccount(username string, fn func(*Account) error) error {
	acc, err := s.lookup(username)
	if err != nil {
		return err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return fn(acc)
}

// WithPair runs fn with both accounts locked. Locks are always acquired in
// username order so concurrent transfers between the same pair cannot
// deadlock.
func (s *Store) WithPair(first, second string, fn func(a, b *Account) error) error {
	accA, err := s.lookup(first)
	if err != nil {
		return err
	}
	accB, err := s.lookup(second)
	if err != nil {
		return err
	}
	if accA == accB {
		return fmt.Errorf("pair lock requires two distinct accounts")
	}
	lo, hi := accA, accB
	if lo.Username > hi.Username {
		lo, hi = hi, lo
	}
	lo.mu.Lock()
	defer lo.mu.Unlock()
	hi.mu.Lock()
	defer hi.mu.Unlock()
	return fn(accA, accB)
}

// Snapshot returns a consistent deep copy of the account for read-only use.
func (s *Store) Snapshot(username string) (Snapshot, error) {
	acc, err := s.lookup(username)
	if err != nil {
		return Snapshot{}, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.snapshot(), nil
}

// DisplayName resolves a username to its display name, falling back to the
// username itself when the account is unknown.
func (s *Store) DisplayName(username string) string {
	acc, err := s.lookup(username)
	if err != nil {
		return username
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.DisplayName
}

// Exists reports whether the username is registered.
func (s *Store) Exists(username string) bool {
	_, err := s.lookup(username)
	return err == nil
}

func (s *Store) lookup(username string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[Normalize(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return acc, nil
}

// Snapshot is a point-in-time copy of an account's observable state.
type Snapshot struct {
	Username        string
	DisplayName     string
	Balance         money.Paise
	Transactions    []Transaction
	PendingRequests []PaymentRequest
	FailedAttempts  int
	LockedUntil     time.Time
	CreatedAt       time.Time
}

func (a *Account) snapshot() Snapshot {
	txns := make([]Transaction, len(a.Transactions))
	copy(txns, a.Transactions)
	reqs := make([]PaymentRequest, len(a.PendingRequests))
	copy(reqs, a.PendingRequests)
	return Snapshot{
		Username:        a.Username,
		DisplayName:     a.DisplayName,
		Balance:         a.Balance,
		Transactions:    txns,
		PendingRequests: reqs,
		FailedAttempts:  a.FailedAttempts,
		LockedUntil:     a.LockedUntil,
		CreatedAt:       a.CreatedAt,
	}
}

// ValidPIN reports whether the PIN is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewTransactionID mints a unique transaction identifier.
func NewTransactionID() string {
	return "txn_" + uuid.NewString()
}

// NewRequestID mints a unique payment request identifier.
func NewRequestID() string {
	return "req_" + uuid.NewString()
}
