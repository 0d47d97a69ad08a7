package models

import "github.com/shopspring/decimal"

// Account is the persisted form of a custodial account.
// Amounts are stored as text in SQLite and NUMERIC(15,2) in Postgres.
type Account struct {
	AccountID     string          `db:"account_id" gorm:"column:account_id;primaryKey"`
	UserID        string          `db:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	Name          string          `db:"name" gorm:"column:name;not null"`
	AccountNumber string          `db:"account_number" gorm:"column:account_number;uniqueIndex;not null"`
	Balance       decimal.Decimal `db:"balance" gorm:"column:balance;type:text;not null"`
	AuditFields
}

func (Account) TableName() string { return "accounts" }
