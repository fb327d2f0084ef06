package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// absentIdentity is the canonical placeholder for a missing user or
// guest identifier, so anonymous actors hash into a stable token.
const absentIdentity = "none"

// tokenLength is the number of hex characters retained from the digest.
const tokenLength = 16

// Anonymize derives a one-way, day-bounded pseudonym from an actor
// identity. Identical inputs on the same calendar date always produce
// the same token; the token rolls over at each UTC date boundary, which
// bounds cross-session linkability to a single day. There is no reverse
// mapping and none may be built.
func Anonymize(userID *int64, guestID *string, asOf time.Time) string {
	user := absentIdentity
	if userID != nil {
		user = fmt.Sprintf("%d", *userID)
	}
	guest := absentIdentity
	if guestID != nil && *guestID != "" {
		guest = *guestID
	}

	canonical := fmt.Sprintf("%s:%s:%s", user, guest, asOf.UTC().Format("2006-01-02"))
	digest := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(digest[:])[:tokenLength]
}
