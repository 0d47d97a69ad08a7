package mapping

import (
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/models"
)

func ToModelAnalysis(d domain.IncomeExpenditureAnalysis) models.Analysis {
	return models.Analysis{
		AnalysisID:       d.AnalysisID,
		UserID:           d.UserID,
		TotalIncome:      d.TotalIncome,
		TotalExpenditure: d.TotalExpenditure,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainAnalysis(m models.Analysis) domain.IncomeExpenditureAnalysis {
	return domain.IncomeExpenditureAnalysis{
		AnalysisID:       m.AnalysisID,
		UserID:           m.UserID,
		TotalIncome:      m.TotalIncome,
		TotalExpenditure: m.TotalExpenditure,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
