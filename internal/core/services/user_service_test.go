package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/core/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/SscSPs/ewallet_ledger/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockTxManager is a mock type for the TransactionManager interface
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// UserServiceMockSuite covers paths that never reach the store.
type UserServiceMockSuite struct {
	suite.Suite
	mockUserRepo  *MockUserRepository
	mockTxManager *MockTxManager
	userService   portssvc.UserSvcFacade
}

func (suite *UserServiceMockSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockTxManager = new(MockTxManager)
	suite.userService = services.NewUserService(portsrepo.RepositoryProvider{
		UserRepo:  suite.mockUserRepo,
		TxManager: suite.mockTxManager,
	})
}

func (suite *UserServiceMockSuite) TearDownTest() {
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockTxManager.AssertExpectations(suite.T())
}

func TestUserServiceMockSuite(t *testing.T) {
	suite.Run(t, new(UserServiceMockSuite))
}

func (suite *UserServiceMockSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	stored := &domain.User{UserID: "u-1", Email: "alice@example.com", PasswordHash: hash}
	suite.mockUserRepo.On("FindUserByEmail", ctx, "alice@example.com").Return(stored, nil).Once()

	user, err := suite.userService.AuthenticateUser(ctx, "  Alice@Example.com ", "correct-horse")

	suite.Require().NoError(err)
	suite.Equal("u-1", user.UserID)
}

func (suite *UserServiceMockSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	suite.mockUserRepo.On("FindUserByEmail", ctx, "alice@example.com").
		Return(&domain.User{UserID: "u-1", PasswordHash: hash}, nil).Once()

	_, err = suite.userService.AuthenticateUser(ctx, "alice@example.com", "battery-staple")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceMockSuite) TestAuthenticateUser_UnknownEmail() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.userService.AuthenticateUser(ctx, "ghost@example.com", "whatever1")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceMockSuite) TestAuthenticateUser_Blocked() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	suite.mockUserRepo.On("FindUserByEmail", ctx, "alice@example.com").
		Return(&domain.User{UserID: "u-1", PasswordHash: hash, IsBlocked: true}, nil).Once()

	_, err = suite.userService.AuthenticateUser(ctx, "alice@example.com", "correct-horse")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceMockSuite) TestDeleteUser_OtherUserWithoutSuperuser() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByID", ctx, "u-2").Return(&domain.User{UserID: "u-2"}, nil).Once()

	err := suite.userService.DeleteUser(ctx, "u-1", "u-2")

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockTxManager.AssertNotCalled(suite.T(), "WithinTx", mock.Anything, mock.Anything)
}

func (suite *UserServiceMockSuite) TestCreateUser_StorageFailureIsWrapped() {
	ctx := context.Background()
	suite.mockTxManager.On("WithinTx", ctx, mock.Anything).Return(apperrors.ErrStorageConflict).Once()

	_, err := suite.userService.CreateUser(ctx, dto.CreateUserRequest{
		FullName:    "Alice",
		Email:       "alice@example.com",
		PhoneNumber: "+91 98765 43210",
		Password:    "correct-horse",
	})
	suite.ErrorIs(err, apperrors.ErrStorageConflict)
}

// UserServiceTestSuite runs the user lifecycle against the in-memory store.
type UserServiceTestSuite struct {
	suite.Suite
	f *ledgerFixture
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestCreateUser_ProvisionsAccount() {
	ctx := context.Background()
	user, err := suite.f.users.CreateUser(ctx, dto.CreateUserRequest{
		FullName:    "Alice Smith",
		Email:       "Alice@Example.com",
		PhoneNumber: "+91 98765-43210",
		Password:    "correct-horse",
	})
	suite.Require().NoError(err)
	suite.Equal("alice@example.com", user.Email)
	suite.NotEqual("correct-horse", user.PasswordHash)

	acc, err := suite.f.accounts.GetAccountForUser(ctx, user.UserID)
	suite.Require().NoError(err)
	suite.Equal("9876543210", acc.AccountNumber)
	suite.Equal(domain.AccountNameFor("Alice Smith"), acc.Name)
	suite.True(acc.Balance.IsZero())

	analysis, err := suite.f.store.FindAnalysisByUserID(ctx, user.UserID)
	suite.Require().NoError(err)
	suite.True(analysis.TotalIncome.IsZero())
	suite.True(analysis.TotalExpenditure.IsZero())

	cards, err := suite.f.store.ListCardsByAccountID(ctx, acc.AccountID)
	suite.Require().NoError(err)
	suite.Len(cards, 1)

	suite.Len(suite.f.notifier.eventsOfType(domain.EventUserCreated), 1)
}

func (suite *UserServiceTestSuite) TestCreateUser_SuperuserHasNoAccount() {
	ctx := context.Background()
	admin, err := suite.f.users.CreateUser(ctx, dto.CreateUserRequest{
		FullName:    "Root",
		Email:       "root@example.com",
		PhoneNumber: "+91 90000 00000",
		Password:    "correct-horse",
		IsSuperuser: true,
	})
	suite.Require().NoError(err)
	suite.True(admin.IsSuperuser)

	_, err = suite.f.accounts.GetAccountForUser(ctx, admin.UserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.f.store.FindAnalysisByUserID(ctx, admin.UserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	suite.f.createUser(suite.T(), "Alice")

	_, err := suite.f.users.CreateUser(ctx, dto.CreateUserRequest{
		FullName:    "Impostor",
		Email:       "USER1@example.com",
		PhoneNumber: "+91 91111 11111",
		Password:    "correct-horse",
	})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestCreateUser_ShortPhoneLeavesNothingBehind() {
	ctx := context.Background()
	_, err := suite.f.users.CreateUser(ctx, dto.CreateUserRequest{
		FullName:    "Shorty",
		Email:       "shorty@example.com",
		PhoneNumber: "12345",
		Password:    "correct-horse",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.store.FindUserByEmail(ctx, "shorty@example.com")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestCreateUser_PasswordTooLong() {
	_, err := suite.f.users.CreateUser(context.Background(), dto.CreateUserRequest{
		FullName:    "Verbose",
		Email:       "verbose@example.com",
		PhoneNumber: "+91 92222 22222",
		Password:    string(make([]byte, 80)),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestDeleteUser_CascadesEverything() {
	ctx := context.Background()
	alice, aliceAcc := suite.f.createUser(suite.T(), "Alice")
	bob, bobAcc := suite.f.createUser(suite.T(), "Bob")
	suite.f.credit(suite.T(), alice.UserID, "50.00")
	_, err := suite.f.ledger.Transfer(ctx, alice.UserID, dto.TransferRequest{Destination: bob.UserID, Amount: dec("20.00")})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.f.users.DeleteUser(ctx, alice.UserID, alice.UserID))

	_, err = suite.f.users.GetUserByID(ctx, alice.UserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.f.store.FindAccountByID(ctx, aliceAcc.AccountID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.f.store.FindAnalysisByUserID(ctx, alice.UserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	cards, err := suite.f.store.ListCardsByAccountID(ctx, aliceAcc.AccountID)
	suite.Require().NoError(err)
	suite.Empty(cards)
	suite.Empty(suite.f.allTransactions(suite.T(), aliceAcc.AccountID))

	// The counterparty keeps its own leg.
	suite.Equal("20.00", suite.f.balance(suite.T(), bobAcc.AccountID).StringFixed(2))
	suite.f.requireLedgerComplete(suite.T(), bobAcc.AccountID)

	// The email is free again.
	_, err = suite.f.users.CreateUser(ctx, dto.CreateUserRequest{
		FullName:    "Alice Again",
		Email:       alice.Email,
		PhoneNumber: alice.PhoneNumber,
		Password:    "correct-horse",
	})
	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestDeleteUser_SuperuserMayDeleteOthers() {
	ctx := context.Background()
	alice, _ := suite.f.createUser(suite.T(), "Alice")
	admin, err := suite.f.users.CreateUser(ctx, dto.CreateUserRequest{
		FullName:    "Root",
		Email:       "root@example.com",
		PhoneNumber: "+91 90000 00000",
		Password:    "correct-horse",
		IsSuperuser: true,
	})
	suite.Require().NoError(err)
	bob, _ := suite.f.createUser(suite.T(), "Bob")

	suite.ErrorIs(suite.f.users.DeleteUser(ctx, alice.UserID, bob.UserID), apperrors.ErrUnauthorized)
	suite.NoError(suite.f.users.DeleteUser(ctx, alice.UserID, admin.UserID))
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_AgainstStore() {
	ctx := context.Background()
	alice, _ := suite.f.createUser(suite.T(), "Alice")

	user, err := suite.f.users.AuthenticateUser(ctx, alice.Email, "correct-horse")
	suite.Require().NoError(err)
	suite.Equal(alice.UserID, user.UserID)

	_, err = suite.f.users.AuthenticateUser(ctx, alice.Email, "wrong-horse")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}
