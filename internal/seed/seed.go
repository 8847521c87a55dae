// Package seed loads the demo accounts used for local development.
package seed

import (
	"errors"
	"fmt"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/money"
)

type demoAccount struct {
	username    string
	displayName string
	pin         string
	balance     money.Paise
}

var demoAccounts = []demoAccount{
	{"alice", "Alice Kumar", "1111", 83_000},
	{"bob", "Bob Singh", "2222", 62_500},
	{"charlie", "Charlie Das", "3333", 30_000},
	{"disha", "Disha Rao", "4444", 10_000},
}

// Demo creates the well-known demo accounts. Accounts that already exist are
// left alone, so calling it on every boot is safe.
func Demo(store *account.Store) error {
	for _, d := range demoAccounts {
		_, err := store.Create(account.CreateInput{
			Username:       d.username,
			DisplayName:    d.displayName,
			PIN:            d.pin,
			ConfirmPIN:     d.pin,
			InitialDeposit: d.balance,
		})
		if err != nil && !errors.Is(err, account.ErrAlreadyExists) {
			return fmt.Errorf("seed %s: %w", d.username, err)
		}
	}
	return nil
}
