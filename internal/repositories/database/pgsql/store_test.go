package pgsql_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/storetest"
	"github.com/SscSPs/ewallet_ledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PGSQL_TEST_URL points at a throwaway database; every table is truncated
// before each test.
const testURLEnv = "PGSQL_TEST_URL"

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(testURLEnv)
	if url == "" {
		t.Skipf("%s not set; skipping PostgreSQL store tests", testURLEnv)
	}

	dir, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(url, "file://"+filepath.ToSlash(dir)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := database.NewPgxPool(ctx, url, true)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		TRUNCATE spending_logs, transactions, cards, income_expenditure_analyses, accounts, users CASCADE;
	`)
	require.NoError(t, err)
}

func TestPostgresStoreContract(t *testing.T) {
	pool := openTestPool(t)
	suite.Run(t, &storetest.LedgerStoreSuite{
		NewStore: func() portsrepo.LedgerStore {
			truncate(t, pool)
			return pgsql.NewLedgerStore(pool, pgsql.WithIsolation("serializable"))
		},
	})
}

func TestRepositoryProviderSharesOneStore(t *testing.T) {
	pool := openTestPool(t)
	truncate(t, pool)

	provider := pgsql.NewRepositoryProvider(pool, pgsql.WithConflictRetries(0))
	require.NotNil(t, provider.TxManager)
	require.NotNil(t, provider.UserRepo)
	require.NotNil(t, provider.ReportingRepo)

	_, err := provider.UserRepo.FindUserByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
