package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/memory"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMemoryStoreContract(t *testing.T) {
	suite.Run(t, &storetest.LedgerStoreSuite{
		NewStore: func() portsrepo.LedgerStore { return memory.New() },
	})
}

func seedAccounts(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	audit := domain.AuditFields{CreatedAt: now, LastUpdatedAt: now}
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for i, id := range ids {
			user := domain.User{
				UserID: "user-" + id, Email: id + "@example.com",
				PhoneNumber: "+91 0000" + string(rune('0'+i)), AuditFields: audit,
			}
			if err := tx.InsertUser(ctx, user); err != nil {
				return err
			}
			if err := tx.InsertAccount(ctx, domain.Account{
				AccountID: id, UserID: user.UserID, AccountNumber: "000000000" + string(rune('0'+i)),
				Balance: decimal.Zero, AuditFields: audit,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestLockAccounts_RefusesDescendingAcquisition(t *testing.T) {
	store := memory.New()
	seedAccounts(t, store, "a", "b")

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, "b"); err != nil {
			return err
		}
		_, err := tx.LockAccounts(ctx, "a")
		return err
	})
	assert.ErrorContains(t, err, "out of order")
}

func TestLockAccounts_AfterCardIsRefused(t *testing.T) {
	store := memory.New()
	seedAccounts(t, store, "a")
	card, err := domain.NewCard("card-1", "a", "a", domain.Rupay, domain.DebitCard, time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertCard(ctx, card)
	}))

	err = store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockCard(ctx, "card-1"); err != nil {
			return err
		}
		_, err := tx.LockAccounts(ctx, "a")
		return err
	})
	assert.ErrorContains(t, err, "before cards")
}

func TestWithinTx_WaitingForLockHonoursContext(t *testing.T) {
	store := memory.New()
	seedAccounts(t, store, "a")

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
			if _, err := tx.LockAccounts(ctx, "a"); err != nil {
				return err
			}
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.LockAccounts(ctx, "a")
		return err
	})
	close(done)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithinTx_PanicRollsBackAndReleasesLocks(t *testing.T) {
	store := memory.New()
	seedAccounts(t, store, "a")
	before := store.Committed()

	assert.Panics(t, func() {
		_ = store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
			if _, err := tx.LockAccounts(ctx, "a"); err != nil {
				return err
			}
			if err := tx.SetAccountBalance(ctx, "a", decimal.NewFromInt(9), time.Now()); err != nil {
				return err
			}
			panic("boom")
		})
	})
	assert.Equal(t, before, store.Committed())

	acc, err := store.FindAccountByID(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())

	// The lock was released, so a new unit gets through.
	err = store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.LockAccounts(ctx, "a")
		return err
	})
	assert.NoError(t, err)
}

func TestWithinTx_LocksSerializeReadModifyWrite(t *testing.T) {
	store := memory.New()
	seedAccounts(t, store, "a", "b")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids := []string{"a", "b"}
			if i%2 == 1 {
				ids = []string{"b", "a"}
			}
			err := store.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
				rows, err := tx.LockAccounts(ctx, ids...)
				if err != nil {
					return err
				}
				for _, id := range ids {
					if err := tx.SetAccountBalance(ctx, id, rows[id].Balance.Add(decimal.NewFromInt(1)), time.Now()); err != nil {
						return err
					}
				}
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, id := range []string{"a", "b"} {
		acc, err := store.FindAccountByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "50", acc.Balance.String())
	}
}

func TestDeleteUser_ForgetsRowLocksOfDeletedRows(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedAccounts(t, store, "a", "b")
	card, err := domain.NewCard("card-a", "a", "a", domain.Rupay, domain.DebitCard, time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertCard(ctx, card)
	}))

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, "a", "b"); err != nil {
			return err
		}
		_, err := tx.LockCard(ctx, "card-a")
		return err
	}))
	require.Equal(t, 3, store.RowLockCount())

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.DeleteUser(ctx, "user-a")
	}))
	assert.Equal(t, 1, store.RowLockCount())

	// The survivor's lock still works.
	err = store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.LockAccounts(ctx, "b")
		return err
	})
	assert.NoError(t, err)
}
