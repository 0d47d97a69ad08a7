package mapping

import (
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/models"
)

func ToModelCard(d domain.Card) models.Card {
	return models.Card{
		CardID:         d.CardID,
		AccountID:      d.AccountID,
		Issuer:         string(d.Issuer),
		CardType:       string(d.CardType),
		CardNumber:     d.CardNumber,
		CardHolderName: d.CardHolderName,
		ExpiryDate:     d.ExpiryDate,
		CVV:            d.CVV,
		CardBalance:    d.CardBalance,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainCard(m models.Card) domain.Card {
	return domain.Card{
		CardID:         m.CardID,
		AccountID:      m.AccountID,
		Issuer:         domain.CardIssuer(m.Issuer),
		CardType:       domain.CardType(m.CardType),
		CardNumber:     m.CardNumber,
		CardHolderName: m.CardHolderName,
		ExpiryDate:     m.ExpiryDate,
		CVV:            m.CVV,
		CardBalance:    m.CardBalance,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCardSlice converts a slice of model Cards to a slice of domain Cards
func ToDomainCardSlice(ms []models.Card) []domain.Card {
	out := make([]domain.Card, len(ms))
	for i, m := range ms {
		out[i] = ToDomainCard(m)
	}
	return out
}
