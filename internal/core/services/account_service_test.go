package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	f *ledgerFixture
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (suite *AccountServiceTestSuite) TestResolveDestination_ByCustomerID() {
	bob, bobAcc := suite.f.createUser(suite.T(), "Bob")

	acc, err := suite.f.accounts.ResolveDestination(context.Background(), "  "+bob.UserID+"\n")

	suite.Require().NoError(err)
	suite.Equal(bobAcc.AccountID, acc.AccountID)
}

func (suite *AccountServiceTestSuite) TestResolveDestination_ByIdentityPayload() {
	ctx := context.Background()
	bob, bobAcc := suite.f.createUser(suite.T(), "Bob")

	payload, err := suite.f.accounts.IdentityPayload(ctx, bob.UserID)
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(payload, "User ID: "+bob.UserID))
	suite.Contains(payload, "Full Name: Bob")
	suite.Contains(payload, "Email: "+bob.Email)

	acc, err := suite.f.accounts.ResolveDestination(ctx, payload)
	suite.Require().NoError(err)
	suite.Equal(bobAcc.AccountID, acc.AccountID)
}

func (suite *AccountServiceTestSuite) TestResolveDestination_Errors() {
	ctx := context.Background()

	_, err := suite.f.accounts.ResolveDestination(ctx, "bob")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.accounts.ResolveDestination(ctx, "User ID: not-a-uuid\n")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.accounts.ResolveDestination(ctx, "6f1c1a52-0b59-4c8e-9d43-2a3cfb6f9a10")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestScanIdentity() {
	ctx := context.Background()
	bob, _ := suite.f.createUser(suite.T(), "Bob")
	payload, err := suite.f.accounts.IdentityPayload(ctx, bob.UserID)
	suite.Require().NoError(err)

	// Only the user id line is trusted.
	tampered := strings.Replace(payload, "Full Name: Bob", "Full Name: Mallory", 1)
	user, err := suite.f.accounts.ScanIdentity(ctx, tampered)
	suite.Require().NoError(err)
	suite.Equal(bob.UserID, user.UserID)
	suite.Equal("Bob", user.FullName)

	_, err = suite.f.accounts.ScanIdentity(ctx, "Full Name: Bob\n")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestGetAccountForUser_Unknown() {
	_, err := suite.f.accounts.GetAccountForUser(context.Background(), "6f1c1a52-0b59-4c8e-9d43-2a3cfb6f9a10")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}
