package syncer

import (
	"errors"
	"fmt"

	"github.com/actual-spliit/syncd/pkg/actual"
)

// AmbiguousMatchError reports that the mirror existence search found more
// than one candidate. Creation is skipped in that case: ambiguous matches
// favor under-creation over over-creation of financial records.
type AmbiguousMatchError struct {
	SourceID string
	Notes    string
	Matches  int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("found %d existing mirror candidates for %q (source %s), skipping creation",
		e.Matches, e.Notes, e.SourceID)
}

// IsAmbiguousMatch reports whether err is an AmbiguousMatchError.
func IsAmbiguousMatch(err error) bool {
	var ambiguous *AmbiguousMatchError
	return errors.As(err, &ambiguous)
}

// IsFatal reports whether err should stop a poller's loop instead of being
// retried on the next cycle. Authentication failures spin forever if retried,
// so they are fatal; everything else is treated as transient.
func IsFatal(err error) bool {
	return actual.IsAuthError(err)
}
