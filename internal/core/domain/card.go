package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CardIssuer identifies the network a card belongs to.
type CardIssuer string

const (
	Visa       CardIssuer = "visa"
	Mastercard CardIssuer = "mastercard"
	Amex       CardIssuer = "amex"
	Discover   CardIssuer = "discover"
	Rupay      CardIssuer = "rupay"
)

// CardIssuers lists every supported issuer.
var CardIssuers = []CardIssuer{Visa, Mastercard, Amex, Discover, Rupay}

// IsValid reports whether i is a supported issuer.
func (i CardIssuer) IsValid() bool {
	for _, known := range CardIssuers {
		if i == known {
			return true
		}
	}
	return false
}

// CardType distinguishes debit from credit cards.
type CardType string

const (
	DebitCard  CardType = "debit"
	CreditCard CardType = "credit"
)

const (
	CardNumberLength = 16
	CardValidity     = 365 * 24 * time.Hour
)

// Card is a payment card bound to an account, holding its own sub-balance.
type Card struct {
	CardID         string          `json:"cardID"`    // Primary Key (UUID)
	AccountID      string          `json:"accountID"` // FK -> accounts.account_id
	Issuer         CardIssuer      `json:"issuer"`
	CardType       CardType        `json:"cardType"`
	CardNumber     string          `json:"cardNumber"` // 16 digits, Luhn valid, unique
	CardHolderName string          `json:"cardHolderName"`
	ExpiryDate     time.Time       `json:"expiryDate"`
	CVV            string          `json:"cvv"`
	CardBalance    decimal.Decimal `json:"cardBalance"` // Never negative
	AuditFields
}

// LastFour returns the last four digits of the card number.
func (c Card) LastFour() string {
	if len(c.CardNumber) < 4 {
		return c.CardNumber
	}
	return c.CardNumber[len(c.CardNumber)-4:]
}

// NewCard builds a card for accountID with a generated number, expiry and CVV.
// r supplies randomness; pass nil to use crypto/rand.
func NewCard(cardID, accountID, holderName string, issuer CardIssuer, cardType CardType, issuedAt time.Time, r io.Reader) (Card, error) {
	if !issuer.IsValid() {
		return Card{}, fmt.Errorf("unknown card issuer %q", issuer)
	}
	if cardType == "" {
		cardType = DebitCard
	}
	if cardType != DebitCard && cardType != CreditCard {
		return Card{}, fmt.Errorf("unknown card type %q", cardType)
	}
	number, err := GenerateCardNumber(issuer, r)
	if err != nil {
		return Card{}, err
	}
	cvv, err := GenerateCVV(issuer, r)
	if err != nil {
		return Card{}, err
	}
	return Card{
		CardID:         cardID,
		AccountID:      accountID,
		Issuer:         issuer,
		CardType:       cardType,
		CardNumber:     number,
		CardHolderName: holderName,
		ExpiryDate:     issuedAt.Add(CardValidity),
		CVV:            cvv,
		CardBalance:    decimal.Zero,
		AuditFields:    AuditFields{CreatedAt: issuedAt, LastUpdatedAt: issuedAt},
	}, nil
}

// RandomIssuer picks one of CardIssuers uniformly.
func RandomIssuer(r io.Reader) (CardIssuer, error) {
	n, err := randInt(r, int64(len(CardIssuers)))
	if err != nil {
		return "", err
	}
	return CardIssuers[n], nil
}

// GenerateCardNumber returns a 16-digit, Luhn-valid number carrying the issuer prefix.
func GenerateCardNumber(issuer CardIssuer, r io.Reader) (string, error) {
	prefix, err := issuerPrefix(issuer, r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(prefix)
	for b.Len() < CardNumberLength-1 {
		d, err := randInt(r, 10)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d))
	}
	partial := b.String()
	return partial + strconv.Itoa(int(LuhnCheckDigit(partial))), nil
}

// GenerateCVV returns a 4-digit CVV for amex and a 3-digit CVV otherwise.
func GenerateCVV(issuer CardIssuer, r io.Reader) (string, error) {
	if issuer == Amex {
		n, err := randInt(r, 9000)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(1000+n, 10), nil
	}
	n, err := randInt(r, 900)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(100+n, 10), nil
}

// LuhnCheckDigit computes the digit that makes partial+digit pass the Luhn check.
func LuhnCheckDigit(partial string) byte {
	sum := 0
	double := true
	for i := len(partial) - 1; i >= 0; i-- {
		d := int(partial[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte((10 - sum%10) % 10)
}

// LuhnValid reports whether number is all digits and passes the Luhn check.
func LuhnValid(number string) bool {
	if len(number) < 2 {
		return false
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
	}
	last := number[len(number)-1] - '0'
	return LuhnCheckDigit(number[:len(number)-1]) == last
}

func issuerPrefix(issuer CardIssuer, r io.Reader) (string, error) {
	switch issuer {
	case Visa:
		return "4", nil
	case Mastercard:
		n, err := randInt(r, 5)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(51+n, 10), nil
	case Amex:
		return "34", nil
	case Discover:
		return "6011", nil
	case Rupay:
		return "65", nil
	default:
		return "", fmt.Errorf("unknown card issuer %q", issuer)
	}
}

func randInt(r io.Reader, max int64) (int64, error) {
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, big.NewInt(max))
	if err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return n.Int64(), nil
}
