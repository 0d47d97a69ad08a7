package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type CardServiceTestSuite struct {
	suite.Suite
	f *ledgerFixture
}

func (suite *CardServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
}

func TestCardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CardServiceTestSuite))
}

// issuerOtherThan returns a supported issuer not in taken.
func issuerOtherThan(taken ...domain.Card) domain.CardIssuer {
	used := make(map[domain.CardIssuer]bool)
	for _, c := range taken {
		used[c.Issuer] = true
	}
	for _, i := range domain.CardIssuers {
		if !used[i] {
			return i
		}
	}
	return ""
}

func (suite *CardServiceTestSuite) TestSignupIssuesOneCard() {
	alice, _ := suite.f.createUser(suite.T(), "Alice")

	cards, err := suite.f.cards.ListCards(context.Background(), alice.UserID)
	suite.Require().NoError(err)
	suite.Require().Len(cards, 1)
	card := cards[0]
	suite.True(card.Issuer.IsValid())
	suite.Equal(domain.DebitCard, card.CardType)
	suite.Equal("Alice", card.CardHolderName)
	suite.True(domain.LuhnValid(card.CardNumber))
	suite.Len(card.CardNumber, domain.CardNumberLength)
	suite.True(card.CardBalance.IsZero())
	suite.Equal(card.CreatedAt.Add(domain.CardValidity), card.ExpiryDate)
}

func (suite *CardServiceTestSuite) TestCreateCard_OnePerIssuer() {
	ctx := context.Background()
	alice, _ := suite.f.createUser(suite.T(), "Alice")
	existing, err := suite.f.cards.ListCards(ctx, alice.UserID)
	suite.Require().NoError(err)

	issuer := issuerOtherThan(existing...)
	card, err := suite.f.cards.CreateCard(ctx, alice.UserID, dto.CreateCardRequest{Issuer: issuer, CardType: domain.CreditCard})
	suite.Require().NoError(err)
	suite.Equal(issuer, card.Issuer)
	suite.Equal(domain.CreditCard, card.CardType)
	if issuer == domain.Amex {
		suite.Len(card.CVV, 4)
	} else {
		suite.Len(card.CVV, 3)
	}

	latest, err := suite.f.cards.GetLatestCard(ctx, alice.UserID)
	suite.Require().NoError(err)
	suite.Equal(card.CardID, latest.CardID)

	_, err = suite.f.cards.CreateCard(ctx, alice.UserID, dto.CreateCardRequest{Issuer: issuer})
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	cards, err := suite.f.cards.ListCards(ctx, alice.UserID)
	suite.Require().NoError(err)
	suite.Len(cards, 2)
}

func (suite *CardServiceTestSuite) TestCreateCard_UnknownIssuer() {
	alice, _ := suite.f.createUser(suite.T(), "Alice")
	_, err := suite.f.cards.CreateCard(context.Background(), alice.UserID, dto.CreateCardRequest{Issuer: "diners"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CardServiceTestSuite) TestFundCard_MovesMoneyToCard() {
	ctx := context.Background()
	alice, aliceAcc := suite.f.createUser(suite.T(), "Alice")
	suite.f.credit(suite.T(), alice.UserID, "100.00")
	card, err := suite.f.cards.GetLatestCard(ctx, alice.UserID)
	suite.Require().NoError(err)

	res, err := suite.f.cards.FundCard(ctx, alice.UserID, dto.FundCardRequest{CardID: card.CardID, Amount: dec("40.00")})

	suite.Require().NoError(err)
	suite.Equal("40.00", res.CardBalance.StringFixed(2))
	suite.Equal("60.00", res.AccountBalance.StringFixed(2))
	suite.Equal(domain.Debit, res.Transaction.TransactionType)
	suite.Equal(domain.Transfer, res.Transaction.Subtype)
	suite.Equal(domain.CardFundingDescription, res.Transaction.Description)

	stored, err := suite.f.store.FindCardByID(ctx, card.CardID)
	suite.Require().NoError(err)
	suite.Equal("40.00", stored.CardBalance.StringFixed(2))
	suite.f.requireLedgerComplete(suite.T(), aliceAcc.AccountID)

	// Transfer-subtype rows feed neither side of the analysis.
	totals, err := suite.f.store.FindAnalysisByUserID(ctx, alice.UserID)
	suite.Require().NoError(err)
	suite.Equal("100.00", totals.TotalIncome.StringFixed(2))
	suite.True(totals.TotalExpenditure.IsZero())
	_, err = suite.f.store.FindSpendingLogByTransactionID(ctx, res.Transaction.TransactionID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.Len(suite.f.notifier.eventsOfType(domain.EventCardFunded), 1)
}

func (suite *CardServiceTestSuite) TestFundCard_InsufficientFunds() {
	ctx := context.Background()
	alice, aliceAcc := suite.f.createUser(suite.T(), "Alice")
	suite.f.credit(suite.T(), alice.UserID, "10.00")
	card, err := suite.f.cards.GetLatestCard(ctx, alice.UserID)
	suite.Require().NoError(err)

	_, err = suite.f.cards.FundCard(ctx, alice.UserID, dto.FundCardRequest{CardID: card.CardID, Amount: dec("10.01")})

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	stored, err := suite.f.store.FindCardByID(ctx, card.CardID)
	suite.Require().NoError(err)
	suite.True(stored.CardBalance.IsZero())
	suite.Equal("10.00", suite.f.balance(suite.T(), aliceAcc.AccountID).StringFixed(2))
	suite.Empty(suite.f.notifier.eventsOfType(domain.EventCardFunded))
}

func (suite *CardServiceTestSuite) TestFundCard_RefusesCardBalancePastThirteenDigits() {
	ctx := context.Background()
	alice, aliceAcc := suite.f.createUser(suite.T(), "Alice")
	bob, _ := suite.f.createUser(suite.T(), "Bob")
	suite.f.credit(suite.T(), alice.UserID, "9999999999999.99")
	card, err := suite.f.cards.GetLatestCard(ctx, alice.UserID)
	suite.Require().NoError(err)
	_, err = suite.f.cards.FundCard(ctx, alice.UserID, dto.FundCardRequest{CardID: card.CardID, Amount: dec("9999999999999.99")})
	suite.Require().NoError(err)

	suite.f.credit(suite.T(), bob.UserID, "1.00")
	_, err = suite.f.ledger.Transfer(ctx, bob.UserID, dto.TransferRequest{Destination: alice.UserID, Amount: dec("1.00")})
	suite.Require().NoError(err)

	_, err = suite.f.cards.FundCard(ctx, alice.UserID, dto.FundCardRequest{CardID: card.CardID, Amount: dec("1.00")})

	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	stored, err := suite.f.store.FindCardByID(ctx, card.CardID)
	suite.Require().NoError(err)
	suite.Equal("9999999999999.99", stored.CardBalance.StringFixed(2))
	suite.Equal("1.00", suite.f.balance(suite.T(), aliceAcc.AccountID).StringFixed(2))
	suite.Len(suite.f.notifier.eventsOfType(domain.EventCardFunded), 1)
	suite.f.requireLedgerComplete(suite.T(), aliceAcc.AccountID)
}

func (suite *CardServiceTestSuite) TestFundCard_RejectsForeignCard() {
	ctx := context.Background()
	alice, _ := suite.f.createUser(suite.T(), "Alice")
	bob, _ := suite.f.createUser(suite.T(), "Bob")
	suite.f.credit(suite.T(), alice.UserID, "10.00")
	bobCard, err := suite.f.cards.GetLatestCard(ctx, bob.UserID)
	suite.Require().NoError(err)

	_, err = suite.f.cards.FundCard(ctx, alice.UserID, dto.FundCardRequest{CardID: bobCard.CardID, Amount: dec("1.00")})
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}
