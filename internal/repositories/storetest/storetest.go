// Package storetest holds the behaviour every LedgerStore backend must share.
// Backends run it from their own tests with a constructor for a fresh store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// LedgerStoreSuite exercises a LedgerStore through its public interface only.
type LedgerStoreSuite struct {
	suite.Suite

	// NewStore returns an empty store for each test.
	NewStore func() portsrepo.LedgerStore

	store portsrepo.LedgerStore
	ctx   context.Context
	base  time.Time
	seq   int
}

func (s *LedgerStoreSuite) SetupTest() {
	s.store = s.NewStore()
	s.ctx = context.Background()
	s.base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.seq = 0
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type seeded struct {
	user    domain.User
	account domain.Account
	card    domain.Card
}

// seed creates a user with an account, an analysis row and one card.
func (s *LedgerStoreSuite) seed(name string) seeded {
	s.seq++
	audit := domain.AuditFields{CreatedAt: s.base, LastUpdatedAt: s.base}
	out := seeded{
		user: domain.User{
			UserID:       uuid.NewString(),
			FullName:     name,
			Email:        fmt.Sprintf("%s%d@example.com", name, s.seq),
			PhoneNumber:  fmt.Sprintf("+91 98765 %05d", s.seq),
			PasswordHash: "x",
			AuditFields:  audit,
		},
	}
	out.account = domain.Account{
		AccountID:     uuid.NewString(),
		UserID:        out.user.UserID,
		Name:          domain.AccountNameFor(name),
		AccountNumber: fmt.Sprintf("98765%05d", s.seq),
		Balance:       decimal.Zero,
		AuditFields:   audit,
	}
	card, err := domain.NewCard(uuid.NewString(), out.account.AccountID, name, domain.Visa, domain.DebitCard, s.base, nil)
	s.Require().NoError(err)
	out.card = card

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.InsertUser(ctx, out.user); err != nil {
			return err
		}
		if err := tx.InsertAccount(ctx, out.account); err != nil {
			return err
		}
		if err := tx.InsertAnalysis(ctx, domain.IncomeExpenditureAnalysis{
			AnalysisID: uuid.NewString(), UserID: out.user.UserID,
			TotalIncome: decimal.Zero, TotalExpenditure: decimal.Zero, AuditFields: audit,
		}); err != nil {
			return err
		}
		return tx.InsertCard(ctx, out.card)
	})
	s.Require().NoError(err)
	return out
}

// post writes one movement on accountID through a unit, the way services do.
func (s *LedgerStoreSuite) post(accountID string, typ domain.TransactionType, subtype domain.TransactionSubtype, amount string, at time.Time) domain.Transaction {
	var txn domain.Transaction
	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		rows, err := tx.LockAccounts(ctx, accountID)
		if err != nil {
			return err
		}
		acc := rows[accountID]
		txn = domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       accountID,
			Amount:          dec(amount),
			AmountBefore:    acc.Balance,
			TransactionType: typ,
			Subtype:         subtype,
			ReferenceID:     uuid.NewString(),
			CreatedAt:       at,
		}
		txn.AmountAfter = acc.Balance.Add(txn.Signed())
		if err := tx.InsertTransactions(ctx, txn); err != nil {
			return err
		}
		return tx.SetAccountBalance(ctx, accountID, txn.AmountAfter, at)
	})
	s.Require().NoError(err)
	return txn
}

func (s *LedgerStoreSuite) TestSeededRowsAreReadable() {
	a := s.seed("alice")

	user, err := s.store.FindUserByID(s.ctx, a.user.UserID)
	s.Require().NoError(err)
	s.Equal(a.user.Email, user.Email)

	byEmail, err := s.store.FindUserByEmail(s.ctx, a.user.Email)
	s.Require().NoError(err)
	s.Equal(a.user.UserID, byEmail.UserID)

	acc, err := s.store.FindAccountByUserID(s.ctx, a.user.UserID)
	s.Require().NoError(err)
	s.Equal(a.account.AccountID, acc.AccountID)
	s.Equal(a.account.AccountNumber, acc.AccountNumber)
	s.True(acc.Balance.IsZero())

	card, err := s.store.FindCardByID(s.ctx, a.card.CardID)
	s.Require().NoError(err)
	s.Equal(a.card.CardNumber, card.CardNumber)
	s.Equal(domain.Visa, card.Issuer)
	s.True(card.ExpiryDate.Equal(a.card.ExpiryDate))

	analysis, err := s.store.FindAnalysisByUserID(s.ctx, a.user.UserID)
	s.Require().NoError(err)
	s.True(analysis.TotalIncome.IsZero())
}

func (s *LedgerStoreSuite) TestMissingRowsAreNotFound() {
	missing := uuid.NewString()
	_, err := s.store.FindUserByID(s.ctx, missing)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindAccountByID(s.ctx, missing)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindCardByID(s.ctx, missing)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindLatestCardByAccountID(s.ctx, missing)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindSpendingLogByTransactionID(s.ctx, missing)
	s.ErrorIs(err, apperrors.ErrNotFound)

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.LockAccounts(ctx, missing)
		return err
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerStoreSuite) TestFailedUnitLeavesNoTrace() {
	a := s.seed("alice")
	boom := errors.New("boom")

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		if err := tx.SetAccountBalance(ctx, a.account.AccountID, dec("500.00"), s.base); err != nil {
			return err
		}
		if err := tx.InsertUser(ctx, domain.User{
			UserID: uuid.NewString(), FullName: "ghost", Email: "ghost@example.com",
			PhoneNumber: "+91 90000 00001", PasswordHash: "x",
			AuditFields: domain.AuditFields{CreatedAt: s.base, LastUpdatedAt: s.base},
		}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	acc, err := s.store.FindAccountByID(s.ctx, a.account.AccountID)
	s.Require().NoError(err)
	s.True(acc.Balance.IsZero())
	_, err = s.store.FindUserByEmail(s.ctx, "ghost@example.com")
	s.ErrorIs(err, apperrors.ErrNotFound)

	// The rolled back email is free again.
	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertUser(ctx, domain.User{
			UserID: uuid.NewString(), FullName: "ghost", Email: "ghost@example.com",
			PhoneNumber: "+91 90000 00001", PasswordHash: "x",
			AuditFields: domain.AuditFields{CreatedAt: s.base, LastUpdatedAt: s.base},
		})
	})
	s.NoError(err)
}

func (s *LedgerStoreSuite) TestDuplicatesAreRejected() {
	a := s.seed("alice")
	audit := domain.AuditFields{CreatedAt: s.base, LastUpdatedAt: s.base}

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		dup := a.user
		dup.UserID = uuid.NewString()
		dup.PhoneNumber = "+91 91111 11111"
		return tx.InsertUser(ctx, dup)
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	second, err := domain.NewCard(uuid.NewString(), a.account.AccountID, "alice", domain.Visa, domain.CreditCard, s.base, nil)
	s.Require().NoError(err)
	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertCard(ctx, second)
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertAnalysis(ctx, domain.IncomeExpenditureAnalysis{
			AnalysisID: uuid.NewString(), UserID: a.user.UserID,
			TotalIncome: decimal.Zero, TotalExpenditure: decimal.Zero, AuditFields: audit,
		})
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *LedgerStoreSuite) TestNegativeBalancesAreRefused() {
	a := s.seed("alice")

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		return tx.SetAccountBalance(ctx, a.account.AccountID, dec("-0.01"), s.base)
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		if _, err := tx.LockCard(ctx, a.card.CardID); err != nil {
			return err
		}
		return tx.SetCardBalance(ctx, a.card.CardID, dec("-1.00"), s.base)
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (s *LedgerStoreSuite) TestValuesPastThirteenDigitsAreRefused() {
	a := s.seed("alice")
	tooBig := dec("10000000000000.00")

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		return tx.SetAccountBalance(ctx, a.account.AccountID, tooBig, s.base)
	})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		if _, err := tx.LockCard(ctx, a.card.CardID); err != nil {
			return err
		}
		return tx.SetCardBalance(ctx, a.card.CardID, tooBig, s.base)
	})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		delta := domain.AnalysisDelta{Income: dec("9999999999999.99"), Expenditure: decimal.Zero}
		if err := tx.ApplyAnalysisDelta(ctx, a.user.UserID, delta, s.base); err != nil {
			return err
		}
		return tx.ApplyAnalysisDelta(ctx, a.user.UserID, domain.AnalysisDelta{Income: dec("0.01"), Expenditure: decimal.Zero}, s.base)
	})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		return tx.ReplaceAnalysisTotals(ctx, a.user.UserID, domain.IncomeExpenditure{TotalIncome: decimal.Zero, TotalExpenditure: tooBig}, s.base)
	})
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	acc, err := s.store.FindAccountByID(s.ctx, a.account.AccountID)
	s.Require().NoError(err)
	s.True(acc.Balance.IsZero())
	card, err := s.store.FindLatestCardByAccountID(s.ctx, a.account.AccountID)
	s.Require().NoError(err)
	s.True(card.CardBalance.IsZero())
	got, err := s.store.FindAnalysisByUserID(s.ctx, a.user.UserID)
	s.Require().NoError(err)
	s.True(got.TotalIncome.IsZero())
	s.True(got.TotalExpenditure.IsZero())
}

func (s *LedgerStoreSuite) TestCardBalanceRoundTrip() {
	a := s.seed("alice")
	later := s.base.Add(time.Hour)

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, a.account.AccountID); err != nil {
			return err
		}
		card, err := tx.LockCard(ctx, a.card.CardID)
		if err != nil {
			return err
		}
		return tx.SetCardBalance(ctx, card.CardID, card.CardBalance.Add(dec("12.50")), later)
	})
	s.Require().NoError(err)

	card, err := s.store.FindLatestCardByAccountID(s.ctx, a.account.AccountID)
	s.Require().NoError(err)
	s.Equal("12.50", card.CardBalance.StringFixed(2))
	s.True(card.LastUpdatedAt.Equal(later))
}

func (s *LedgerStoreSuite) TestListTransactionsPagesNewestFirst() {
	a := s.seed("alice")
	var want []string
	for i := 0; i < 5; i++ {
		t := s.post(a.account.AccountID, domain.Deposit, domain.Income, "1.00", s.base.Add(time.Duration(i)*time.Minute))
		want = append([]string{t.TransactionID}, want...)
	}

	var got []string
	var token *string
	for pages := 0; ; pages++ {
		s.Require().Less(pages, 5)
		page, next, err := s.store.ListTransactionsByAccountID(s.ctx, a.account.AccountID, 2, token)
		s.Require().NoError(err)
		for _, t := range page {
			got = append(got, t.TransactionID)
		}
		if next == nil {
			break
		}
		token = next
	}
	s.Equal(want, got)

	bad := "not-a-token"
	_, _, err := s.store.ListTransactionsByAccountID(s.ctx, a.account.AccountID, 2, &bad)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerStoreSuite) TestRangeQueriesAndAggregates() {
	a := s.seed("alice")
	s.post(a.account.AccountID, domain.Deposit, domain.Income, "100.00", time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC))
	s.post(a.account.AccountID, domain.Debit, domain.Expenditure, "30.00", time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC))
	s.post(a.account.AccountID, domain.Debit, domain.Transfer, "20.00", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	s.post(a.account.AccountID, domain.Deposit, domain.Income, "5.00", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	feb := domain.DateRange{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	txns, err := s.store.FindTransactionsInRange(s.ctx, a.account.AccountID, feb)
	s.Require().NoError(err)
	s.Require().Len(txns, 2)
	s.True(txns[0].CreatedAt.Before(txns[1].CreatedAt))

	all, err := s.store.FindTransactionsInRange(s.ctx, a.account.AccountID, domain.DateRange{})
	s.Require().NoError(err)
	s.Len(all, 4)

	months, err := s.store.GetMonthlySummaries(s.ctx, a.account.AccountID, domain.DateRange{}, time.UTC)
	s.Require().NoError(err)
	s.Require().Len(months, 3)
	s.Equal(1, months[0].Month)
	s.Equal("100.00", months[0].TotalDeposits.StringFixed(2))
	s.True(months[0].TotalDebits.IsZero())
	s.Equal(2, months[1].Month)
	s.Equal("50.00", months[1].TotalDebits.StringFixed(2))
	s.Equal(4, months[2].Month)

	// In Athens (UTC+2 in winter) the January deposit lands in February.
	athens, err := time.LoadLocation("Europe/Athens")
	s.Require().NoError(err)
	months, err = s.store.GetMonthlySummaries(s.ctx, a.account.AccountID, domain.DateRange{}, athens)
	s.Require().NoError(err)
	s.Require().Len(months, 2)
	s.Equal(2, months[0].Month)
	s.Equal("100.00", months[0].TotalDeposits.StringFixed(2))

	totals, err := s.store.GetIncomeExpenditure(s.ctx, a.account.AccountID, domain.DateRange{})
	s.Require().NoError(err)
	s.Equal("105.00", totals.TotalIncome.StringFixed(2))
	s.Equal("30.00", totals.TotalExpenditure.StringFixed(2))

	totals, err = s.store.GetIncomeExpenditure(s.ctx, a.account.AccountID, feb)
	s.Require().NoError(err)
	s.True(totals.TotalIncome.IsZero())
	s.Equal("30.00", totals.TotalExpenditure.StringFixed(2))
}

func (s *LedgerStoreSuite) TestAnalysisDeltaAndReplace() {
	a := s.seed("alice")
	later := s.base.Add(time.Hour)

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.ApplyAnalysisDelta(ctx, a.user.UserID, domain.AnalysisDelta{Income: dec("10.00"), Expenditure: dec("2.50")}, later); err != nil {
			return err
		}
		return tx.ApplyAnalysisDelta(ctx, a.user.UserID, domain.AnalysisDelta{Income: decimal.Zero, Expenditure: dec("1.00")}, later)
	})
	s.Require().NoError(err)

	got, err := s.store.FindAnalysisByUserID(s.ctx, a.user.UserID)
	s.Require().NoError(err)
	s.Equal("10.00", got.TotalIncome.StringFixed(2))
	s.Equal("3.50", got.TotalExpenditure.StringFixed(2))
	s.True(got.LastUpdatedAt.Equal(later))

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.ReplaceAnalysisTotals(ctx, a.user.UserID, domain.IncomeExpenditure{TotalIncome: dec("1.00"), TotalExpenditure: dec("0")}, later)
	})
	s.Require().NoError(err)
	got, err = s.store.FindAnalysisByUserID(s.ctx, a.user.UserID)
	s.Require().NoError(err)
	s.Equal("1.00", got.TotalIncome.StringFixed(2))
	s.True(got.TotalExpenditure.IsZero())

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.ApplyAnalysisDelta(ctx, uuid.NewString(), domain.AnalysisDelta{Income: dec("1.00"), Expenditure: decimal.Zero}, later)
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerStoreSuite) TestSpendingLogRoundTrip() {
	a := s.seed("alice")
	s.post(a.account.AccountID, domain.Deposit, domain.Income, "10.00", s.base)

	var txn domain.Transaction
	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		rows, err := tx.LockAccounts(ctx, a.account.AccountID)
		if err != nil {
			return err
		}
		acc := rows[a.account.AccountID]
		txn = domain.Transaction{
			TransactionID: uuid.NewString(), AccountID: acc.AccountID,
			Amount: dec("4.00"), AmountBefore: acc.Balance, AmountAfter: acc.Balance.Sub(dec("4.00")),
			TransactionType: domain.Debit, Subtype: domain.Expenditure, Description: "lunch",
			ReferenceID: uuid.NewString(), CreatedAt: s.base.Add(time.Minute),
		}
		if err := tx.InsertTransactions(ctx, txn); err != nil {
			return err
		}
		log, ok := domain.SpendingLogFor(uuid.NewString(), txn)
		if !ok {
			return errors.New("expenditure row produced no spending log")
		}
		if err := tx.InsertSpendingLog(ctx, log); err != nil {
			return err
		}
		return tx.SetAccountBalance(ctx, acc.AccountID, txn.AmountAfter, txn.CreatedAt)
	})
	s.Require().NoError(err)

	log, err := s.store.FindSpendingLogByTransactionID(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal("lunch", log.Category)
	s.True(log.Timestamp.Equal(txn.CreatedAt))
}

func (s *LedgerStoreSuite) TestInvalidTransactionsAreRejected() {
	a := s.seed("alice")
	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertTransactions(ctx, domain.Transaction{
			TransactionID: uuid.NewString(), AccountID: a.account.AccountID,
			Amount: dec("5.00"), AmountBefore: decimal.Zero, AmountAfter: dec("4.00"),
			TransactionType: domain.Deposit, Subtype: domain.Income,
			ReferenceID: uuid.NewString(), CreatedAt: s.base,
		})
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerStoreSuite) TestDeleteUserCascades() {
	a := s.seed("alice")
	b := s.seed("bob")
	s.post(a.account.AccountID, domain.Deposit, domain.Income, "10.00", s.base)
	s.post(b.account.AccountID, domain.Deposit, domain.Income, "7.00", s.base)

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.DeleteUser(ctx, a.user.UserID)
	})
	s.Require().NoError(err)

	_, err = s.store.FindUserByID(s.ctx, a.user.UserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindAccountByID(s.ctx, a.account.AccountID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindCardByID(s.ctx, a.card.CardID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.store.FindAnalysisByUserID(s.ctx, a.user.UserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	txns, err := s.store.FindTransactionsInRange(s.ctx, a.account.AccountID, domain.DateRange{})
	s.Require().NoError(err)
	s.Empty(txns)

	acc, err := s.store.FindAccountByID(s.ctx, b.account.AccountID)
	s.Require().NoError(err)
	s.Equal("7.00", acc.Balance.StringFixed(2))

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.DeleteUser(ctx, a.user.UserID)
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}
