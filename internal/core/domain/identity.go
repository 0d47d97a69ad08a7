package domain

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const identityUserIDPrefix = "User ID:"

// BuildIdentityPayload renders the text a user's identity QR code encodes.
func BuildIdentityPayload(u User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User ID: %s\n", u.UserID)
	fmt.Fprintf(&b, "Full Name: %s\n", u.FullName)
	fmt.Fprintf(&b, "Email: %s\n", u.Email)
	fmt.Fprintf(&b, "Phone Number: %s\n", u.PhoneNumber)
	return b.String()
}

// ParseIdentityPayload extracts the user id from a scanned identity payload.
// Only the user id line is trusted; the remaining lines are informational.
func ParseIdentityPayload(payload string) (string, error) {
	sc := bufio.NewScanner(strings.NewReader(payload))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, identityUserIDPrefix) {
			continue
		}
		id := strings.TrimSpace(strings.TrimPrefix(line, identityUserIDPrefix))
		if _, err := uuid.Parse(id); err != nil {
			return "", fmt.Errorf("identity payload carries an invalid user id")
		}
		return id, nil
	}
	return "", fmt.Errorf("identity payload has no user id line")
}

// IsIdentityPayload reports whether selector looks like a scanned payload
// rather than a bare customer id.
func IsIdentityPayload(selector string) bool {
	return strings.Contains(selector, identityUserIDPrefix)
}
