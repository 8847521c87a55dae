// Package reports derives read-only views over an account's transaction
// history. Every query works on a snapshot and never mutates the store.
package reports

import (
	"sort"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/money"
)

// Engine answers report queries against the account store.
type Engine struct {
	store *account.Store
}

// NewEngine builds a report engine over the store.
func NewEngine(store *account.Store) *Engine {
	return &Engine{store: store}
}

// CategoryTotal is the spend recorded against one category.
type CategoryTotal struct {
	Category string      `json:"category"`
	Total    money.Paise `json:"total"`
}

// SpendByCategory sums outbound spending (withdrawals, transfers out, QR
// payments out) per category. Uncategorized transactions are skipped.
// Results are sorted by total, descending.
func (e *Engine) SpendByCategory(username string) ([]CategoryTotal, error) {
	snap, err := e.store.Snapshot(username)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]money.Paise)
	for _, txn := range snap.Transactions {
		if !txn.Kind.Outbound() || txn.Category == "" {
			continue
		}
		totals[txn.Category] += txn.Amount
	}
	out := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// MonthlyFlow is the inflow/outflow pair for one calendar month.
type MonthlyFlow struct {
	Month   string      `json:"month"` // "2006-01"
	Inflow  money.Paise `json:"inflow"`
	Outflow money.Paise `json:"outflow"`
}

// MonthlySummary groups transactions by year-month, newest month first.
func (e *Engine) MonthlySummary(username string) ([]MonthlyFlow, error) {
	snap, err := e.store.Snapshot(username)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]*MonthlyFlow)
	for _, txn := range snap.Transactions {
		month := txn.Timestamp.Format("2006-01")
		flow, ok := byMonth[month]
		if !ok {
			flow = &MonthlyFlow{Month: month}
			byMonth[month] = flow
		}
		if txn.Kind.Inbound() {
			flow.Inflow += txn.Amount
		} else {
			flow.Outflow += txn.Amount
		}
	}
	out := make([]MonthlyFlow, 0, len(byMonth))
	for _, flow := range byMonth {
		out = append(out, *flow)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

// Payee aggregates outbound person-to-person payments to one counterparty.
type Payee struct {
	DisplayName string      `json:"display_name"`
	Username    string      `json:"username"`
	Payments    int         `json:"payments"`
	Total       money.Paise `json:"total"`
}

// TopPayees ranks the people the account pays, by total amount descending.
// Withdrawals and deposits are boundary flows and are excluded.
func (e *Engine) TopPayees(username string) ([]Payee, error) {
	snap, err := e.store.Snapshot(username)
	if err != nil {
		return nil, err
	}
	byPayee := make(map[string]*Payee)
	for _, txn := range snap.Transactions {
		if txn.Kind != account.KindTransferOut && txn.Kind != account.KindQROut {
			continue
		}
		p, ok := byPayee[txn.Counterparty]
		if !ok {
			p = &Payee{
				Username:    txn.Counterparty,
				DisplayName: e.store.DisplayName(txn.Counterparty),
			}
			byPayee[txn.Counterparty] = p
		}
		p.Payments++
		p.Total += txn.Amount
	}
	out := make([]Payee, 0, len(byPayee))
	for _, p := range byPayee {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

// History returns the account's transactions, newest first.
func (e *Engine) History(username string) ([]account.Transaction, error) {
	snap, err := e.store.Snapshot(username)
	if err != nil {
		return nil, err
	}
	txns := snap.Transactions
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Timestamp.After(txns[j].Timestamp)
	})
	return txns, nil
}
