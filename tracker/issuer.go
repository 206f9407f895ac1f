package tracker

import (
	"fmt"

	"github.com/lithammer/shortuuid/v4"
)

const (
	idLength         = 8
	maxIssueAttempts = 5
)

// ExistsFunc reports whether an identifier has already been issued.
type ExistsFunc func(id string) bool

// Issuer produces short opaque tracking identifiers. It keeps no state of
// its own; callers inject the existence probe and, in tests, the source.
type Issuer struct {
	exists ExistsFunc
	newID  func() string
}

func NewIssuer(exists ExistsFunc) *Issuer {
	return &Issuer{exists: exists, newID: shortuuid.New}
}

// Issue returns a fresh 8-character identifier. Eight characters of
// shortuuid's base57 alphabet carry about 46 bits, so collisions are
// vanishingly rare; when the probe reports one anyway, a bounded number of
// retries runs before giving up.
func (i *Issuer) Issue() (string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		id := i.newID()[:idLength]
		if i.exists != nil && i.exists(id) {
			continue
		}
		return id, nil
	}
	return "", fmt.Errorf("no unique identifier after %d attempts", maxIssueAttempts)
}
