// Package sqlite is the embedded LedgerStore, built on gorm and SQLite.
// The store holds a single connection, so SQLite's own transaction is what
// serialises ledger units. Readers called while a unit is open reuse the
// unit's handle through the context.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/models"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store implements portsrepo.LedgerStore on a gorm handle.
type Store struct {
	db *gorm.DB
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// Option tweaks the gorm configuration used by Open.
type Option func(*gorm.Config)

// WithLogLevel sets gorm's own SQL logging level. The default is Warn.
func WithLogLevel(level logger.LogLevel) Option {
	return func(c *gorm.Config) {
		c.Logger = logger.Default.LogMode(level)
	}
}

// Open connects to the database at path and migrates the schema.
func Open(path string, options ...Option) (*Store, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(cfg)
	}

	db, err := gorm.Open(sqlitedriver.Open(dsn(path)), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	// One connection: units never interleave and an in-memory database lives
	// as long as the store.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	slog.Info("SQLite ledger store ready", slog.String("path", path))
	return &Store{db: db}, nil
}

func dsn(path string) string {
	if path == MemoryPath || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type unitKey struct{}

// conn returns the open unit's handle when ctx carries one, else the store's.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(unitKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// WithinTx runs fn in one SQLite transaction.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	if _, nested := ctx.Value(unitKey{}).(*gorm.DB); nested {
		return fmt.Errorf("ledger units cannot be nested")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uctx := context.WithValue(ctx, unitKey{}, tx)
		if err := fn(uctx, &unit{tx: tx}); err != nil {
			return translateError(err)
		}
		return nil
	})
}

// translateError maps gorm and SQLite failures onto apperrors kinds.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicate, err)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicate, err)
	case strings.Contains(err.Error(), "database is locked"):
		return fmt.Errorf("%w: %v", apperrors.ErrStorageConflict, err)
	}
	return err
}

func utc(t time.Time) time.Time { return t.UTC() }
