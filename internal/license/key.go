package license

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// NewID returns an opaque record id. UUIDv7 carries a millisecond timestamp
// followed by random bits, so ids are unique and roughly creation-ordered.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewKey generates a readable placeholder license key such as
// "LIC-ABCD-EFGH-IJKL-MNOP" for licenses entered without one.
func NewKey() (string, error) {
	// 10 bytes => 16 base32 chars (no padding)
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	s := strings.ToUpper(enc.EncodeToString(b))
	var parts []string
	for i := 0; i < len(s); i += 4 {
		end := i + 4
		if end > len(s) {
			end = len(s)
		}
		parts = append(parts, s[i:end])
	}
	return "LIC-" + strings.Join(parts, "-"), nil
}
