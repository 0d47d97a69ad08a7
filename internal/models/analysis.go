package models

import "github.com/shopspring/decimal"

// Analysis is the persisted income/expenditure cache of one user.
type Analysis struct {
	AnalysisID       string          `db:"analysis_id" gorm:"column:analysis_id;primaryKey"`
	UserID           string          `db:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	TotalIncome      decimal.Decimal `db:"total_income" gorm:"column:total_income;type:text;not null"`
	TotalExpenditure decimal.Decimal `db:"total_expenditure" gorm:"column:total_expenditure;type:text;not null"`
	AuditFields
}

func (Analysis) TableName() string { return "income_expenditure_analyses" }
