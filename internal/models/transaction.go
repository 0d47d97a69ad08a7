package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one persisted ledger row. Rows are insert-only.
type Transaction struct {
	TransactionID   string          `db:"transaction_id" gorm:"column:transaction_id;primaryKey"`
	AccountID       string          `db:"account_id" gorm:"column:account_id;not null;index:idx_transactions_account_created,priority:1"`
	Amount          decimal.Decimal `db:"amount" gorm:"column:amount;type:text;not null"`
	AmountBefore    decimal.Decimal `db:"amount_before" gorm:"column:amount_before;type:text;not null"`
	AmountAfter     decimal.Decimal `db:"amount_after" gorm:"column:amount_after;type:text;not null"`
	TransactionType string          `db:"transaction_type" gorm:"column:transaction_type;not null"`
	Subtype         string          `db:"subtype" gorm:"column:subtype;not null"`
	Description     string          `db:"description" gorm:"column:description;size:50;not null"`
	ReferenceID     string          `db:"reference_id" gorm:"column:reference_id;index;not null"`
	CreatedAt       time.Time       `db:"created_at" gorm:"column:created_at;not null;index:idx_transactions_account_created,priority:2"`
}

func (Transaction) TableName() string { return "transactions" }

// SpendingLog mirrors an expenditure transaction.
type SpendingLog struct {
	SpendingLogID string    `db:"spending_log_id" gorm:"column:spending_log_id;primaryKey"`
	TransactionID string    `db:"transaction_id" gorm:"column:transaction_id;uniqueIndex;not null"`
	Category      string    `db:"category" gorm:"column:category;not null"`
	Timestamp     time.Time `db:"timestamp" gorm:"column:timestamp;not null"`
}

func (SpendingLog) TableName() string { return "spending_logs" }
