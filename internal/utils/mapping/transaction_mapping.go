package mapping

import (
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		AccountID:       d.AccountID,
		Amount:          d.Amount,
		AmountBefore:    d.AmountBefore,
		AmountAfter:     d.AmountAfter,
		TransactionType: string(d.TransactionType),
		Subtype:         string(d.Subtype),
		Description:     d.Description,
		ReferenceID:     d.ReferenceID,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		AmountBefore:    m.AmountBefore,
		AmountAfter:     m.AmountAfter,
		TransactionType: domain.TransactionType(m.TransactionType),
		Subtype:         domain.TransactionSubtype(m.Subtype),
		Description:     m.Description,
		ReferenceID:     m.ReferenceID,
		CreatedAt:       m.CreatedAt,
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainTransaction(m)
	}
	return out
}

func ToModelSpendingLog(d domain.SpendingLog) models.SpendingLog {
	return models.SpendingLog{
		SpendingLogID: d.SpendingLogID,
		TransactionID: d.TransactionID,
		Category:      d.Category,
		Timestamp:     d.Timestamp,
	}
}

func ToDomainSpendingLog(m models.SpendingLog) domain.SpendingLog {
	return domain.SpendingLog{
		SpendingLogID: m.SpendingLogID,
		TransactionID: m.TransactionID,
		Category:      m.Category,
		Timestamp:     m.Timestamp,
	}
}
