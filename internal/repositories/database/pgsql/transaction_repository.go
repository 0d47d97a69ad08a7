package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/models"
	"github.com/SscSPs/ewallet_ledger/internal/utils/mapping"
	"github.com/SscSPs/ewallet_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `transaction_id, account_id, amount, amount_before, amount_after, transaction_type, subtype, description, reference_id, created_at`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.Amount,
		&m.AmountBefore,
		&m.AmountAfter,
		&m.TransactionType,
		&m.Subtype,
		&m.Description,
		&m.ReferenceID,
		&m.CreatedAt,
	)
	return m, err
}

type transactionRepository struct {
	db querier
}

func newTransactionRepository(db querier) *transactionRepository {
	return &transactionRepository{db: db}
}

var _ portsrepo.TransactionReader = (*transactionRepository)(nil)

func (r *transactionRepository) collect(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", translateError(err))
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", translateError(err))
	}
	return out, nil
}

// ListTransactionsByAccountID retrieves a paginated list of transactions for a specific account using token-based pagination.
// It returns the transactions, a token for the next page, and an error.
func (r *transactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	// (created_at, transaction_id) is unique, so the order is stable.
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`
	args := []any{accountID}

	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	txns, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("account %s: %w", accountID, err)
	}

	var nextTokenVal *string
	if len(txns) > limit {
		// The token points to the last item included in this page.
		last := txns[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		txns = txns[:limit]
	}
	return mapping.ToDomainTransactionSlice(txns), nextTokenVal, nil
}

// FindTransactionsInRange returns the account's rows inside r, oldest first.
func (r *transactionRepository) FindTransactionsInRange(ctx context.Context, accountID string, dr domain.DateRange) ([]domain.Transaction, error) {
	where, args := rangeFilter(accountID, dr)
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + where + ` ORDER BY created_at ASC, transaction_id ASC;`
	txns, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", accountID, err)
	}
	return mapping.ToDomainTransactionSlice(txns), nil
}

// rangeFilter builds the WHERE clause selecting an account's rows inside r.
func rangeFilter(accountID string, r domain.DateRange) (string, []any) {
	conds := []string{"account_id = $1"}
	args := []any{accountID}
	if !r.Start.IsZero() {
		args = append(args, r.Start)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if !r.End.IsZero() {
		args = append(args, r.End)
		conds = append(conds, "created_at < $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func (r *transactionRepository) FindSpendingLogByTransactionID(ctx context.Context, transactionID string) (*domain.SpendingLog, error) {
	query := `SELECT spending_log_id, transaction_id, category, "timestamp" FROM spending_logs WHERE transaction_id = $1;`
	var m models.SpendingLog
	err := r.db.QueryRow(ctx, query, transactionID).Scan(&m.SpendingLogID, &m.TransactionID, &m.Category, &m.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find spending log for transaction %s: %w", transactionID, err)
	}
	l := mapping.ToDomainSpendingLog(m)
	return &l, nil
}

func (r *transactionRepository) insertTransactions(ctx context.Context, txns []domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		m := mapping.ToModelTransaction(t)
		batch.Queue(query,
			m.TransactionID,
			m.AccountID,
			m.Amount,
			m.AmountBefore,
			m.AmountAfter,
			m.TransactionType,
			m.Subtype,
			m.Description,
			m.ReferenceID,
			m.CreatedAt,
		)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := r.db.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to insert transaction %s: %w", txns[i].TransactionID, translateError(err))
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close transaction insert batch: %w", err)
	}
	return batchErr
}

func (r *transactionRepository) insertSpendingLog(ctx context.Context, log domain.SpendingLog) error {
	m := mapping.ToModelSpendingLog(log)
	query := `INSERT INTO spending_logs (spending_log_id, transaction_id, category, "timestamp") VALUES ($1, $2, $3, $4);`
	if _, err := r.db.Exec(ctx, query, m.SpendingLogID, m.TransactionID, m.Category, m.Timestamp); err != nil {
		return fmt.Errorf("failed to save spending log for transaction %s: %w", m.TransactionID, translateError(err))
	}
	return nil
}
