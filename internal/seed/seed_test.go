package seed

import (
	"testing"

	"github.com/paisepay/paisepay/internal/account"
)

func TestDemoSeedsKnownAccounts(t *testing.T) {
	store := account.NewStore()

	if err := Demo(store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snap, err := store.Snapshot("alice")
	if err != nil {
		t.Fatalf("snapshot alice: %v", err)
	}
	if snap.Balance != 83_000 {
		t.Fatalf("alice balance %d, want 83000", snap.Balance)
	}
	if len(snap.Transactions) != 1 {
		t.Fatalf("alice should have the opening deposit only, got %d", len(snap.Transactions))
	}

	for _, u := range []string{"bob", "charlie", "disha"} {
		if !store.Exists(u) {
			t.Fatalf("missing demo account %s", u)
		}
	}
}

func TestDemoIsIdempotent(t *testing.T) {
	store := account.NewStore()

	if err := Demo(store); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Demo(store); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	snap, err := store.Snapshot("bob")
	if err != nil {
		t.Fatalf("snapshot bob: %v", err)
	}
	if snap.Balance != 62_500 {
		t.Fatalf("bob balance %d, want 62500", snap.Balance)
	}
	if len(snap.Transactions) != 1 {
		t.Fatalf("re-seeding must not add transactions, got %d", len(snap.Transactions))
	}
}
