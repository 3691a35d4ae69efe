// Package runid generates collision-resistant branch/run identifiers.
package runid

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

const suffixLen = 4

// New builds a run identity for a mode. The branch name combines the
// mode, a second-resolution timestamp and a random lowercase suffix, e.g.
// "auto-fix-bugs/20260823-141503-kqzx". Clock and randomness are passed
// in so tests can pin them; rnd exhaustion is the only failure mode.
func New(mode string, now time.Time, rnd io.Reader) (domain.RunIdentity, error) {
	suffix, err := randomSuffix(rnd)
	if err != nil {
		return domain.RunIdentity{}, fmt.Errorf("generating run suffix: %w", err)
	}

	prefix := strings.ReplaceAll(mode, "_", "-")
	branch := fmt.Sprintf("auto-%s/%s-%s", prefix, now.Format("20060102-150405"), suffix)

	return domain.RunIdentity{
		Mode:      mode,
		Branch:    branch,
		StartedAt: now,
	}, nil
}

func randomSuffix(rnd io.Reader) (string, error) {
	b := make([]byte, suffixLen)
	if _, err := io.ReadFull(rnd, b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = 'a' + b[i]%26
	}
	return string(b), nil
}
