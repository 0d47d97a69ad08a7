package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/core/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// tickClock advances by step on every reading so rows get distinct timestamps.
type tickClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func (c *tickClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// MockNotifier is a mock type for the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event domain.LedgerEvent) {
	m.Called(ctx, event)
}

func (m *MockNotifier) eventsOfType(typ domain.EventType) []domain.LedgerEvent {
	var out []domain.LedgerEvent
	for _, c := range m.Calls {
		if e, ok := c.Arguments.Get(1).(domain.LedgerEvent); ok && e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// ledgerFixture wires every service over one in-memory store.
type ledgerFixture struct {
	store     *memory.Store
	repos     portsrepo.RepositoryProvider
	clock     *tickClock
	notifier  *MockNotifier
	users     portssvc.UserSvcFacade
	accounts  portssvc.AccountSvcFacade
	ledger    portssvc.LedgerSvcFacade
	cards     portssvc.CardSvcFacade
	reporting portssvc.ReportingService
	phoneSeq  int
}

func newLedgerFixture(start time.Time) *ledgerFixture {
	store := memory.New()
	repos := portsrepo.ProviderFromStore(store)
	clock := &tickClock{t: start, step: time.Second}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return()

	f := &ledgerFixture{store: store, repos: repos, clock: clock, notifier: notifier}
	f.accounts = services.NewAccountService(repos.AccountRepo, repos.UserRepo)
	f.users = services.NewUserService(repos, services.WithUserClock(clock.Now), services.WithUserNotifier(notifier))
	f.ledger = services.NewLedgerService(repos, f.accounts,
		services.WithLedgerClock(clock.Now), services.WithLedgerNotifier(notifier))
	f.cards = services.NewCardService(repos, services.WithCardClock(clock.Now), services.WithCardNotifier(notifier))
	f.reporting = services.NewReportingService(repos,
		services.WithReportingClock(clock.Now), services.WithReportingCalendar(time.UTC, time.Monday))
	return f
}

func (f *ledgerFixture) createUser(t *testing.T, name string) (*domain.User, *domain.Account) {
	t.Helper()
	f.phoneSeq++
	user, err := f.users.CreateUser(context.Background(), dto.CreateUserRequest{
		FullName:    name,
		Email:       fmt.Sprintf("user%d@example.com", f.phoneSeq),
		PhoneNumber: fmt.Sprintf("+91 98765 %05d", f.phoneSeq),
		Password:    "correct-horse",
	})
	require.NoError(t, err)
	acc, err := f.accounts.GetAccountForUser(context.Background(), user.UserID)
	require.NoError(t, err)
	return user, acc
}

func (f *ledgerFixture) credit(t *testing.T, userID, amount string) {
	t.Helper()
	_, err := f.ledger.Credit(context.Background(), userID, dto.AccountMovementRequest{Amount: dec(amount), Description: "top up"})
	require.NoError(t, err)
}

func (f *ledgerFixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := f.store.FindAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	return acc.Balance
}

func (f *ledgerFixture) allTransactions(t *testing.T, accountID string) []domain.Transaction {
	t.Helper()
	txns, err := f.store.FindTransactionsInRange(context.Background(), accountID, domain.DateRange{})
	require.NoError(t, err)
	return txns
}

// requireLedgerComplete checks that the balance equals the signed sum of
// the account's ledger rows and that every row is internally consistent.
func (f *ledgerFixture) requireLedgerComplete(t *testing.T, accountID string) {
	t.Helper()
	sum := decimal.Zero
	for _, txn := range f.allTransactions(t, accountID) {
		require.NoError(t, txn.Validate())
		sum = sum.Add(txn.Signed())
	}
	require.True(t, sum.Equal(f.balance(t, accountID)),
		"ledger sums to %s, balance is %s", sum.String(), f.balance(t, accountID).String())
}
