package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card is the persisted form of a payment card. One card per issuer per account.
type Card struct {
	CardID         string          `db:"card_id" gorm:"column:card_id;primaryKey"`
	AccountID      string          `db:"account_id" gorm:"column:account_id;not null;uniqueIndex:idx_cards_account_issuer,priority:1"`
	Issuer         string          `db:"issuer" gorm:"column:issuer;not null;uniqueIndex:idx_cards_account_issuer,priority:2"`
	CardType       string          `db:"card_type" gorm:"column:card_type;not null"`
	CardNumber     string          `db:"card_number" gorm:"column:card_number;uniqueIndex;not null"`
	CardHolderName string          `db:"card_holder_name" gorm:"column:card_holder_name;not null"`
	ExpiryDate     time.Time       `db:"expiry_date" gorm:"column:expiry_date;not null"`
	CVV            string          `db:"cvv" gorm:"column:cvv;not null"`
	CardBalance    decimal.Decimal `db:"card_balance" gorm:"column:card_balance;type:text;not null"`
	AuditFields
}

func (Card) TableName() string { return "cards" }
