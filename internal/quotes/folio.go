package quotes

import (
	"context"
	"fmt"
	"time"
)

// folioProbes is how many consecutive candidates are tried before giving up
// on the sequential form.
const folioProbes = 10

// FolioSource is the read surface the generator needs.
type FolioSource interface {
	MaxFolioNumber(ctx context.Context, prefix string) (int, error)
	FolioExists(ctx context.Context, folio string) (bool, error)
}

// GenerateFolio produces the next sequential folio ("PTCH-0042"). It scans the
// current maximum, probes the next ten candidates against existing rows, and
// falls back to a timestamp folio when all probes collide. The unique index on
// quotes.folio remains the real guarantee against concurrent duplicates.
func GenerateFolio(ctx context.Context, src FolioSource, prefix string, now time.Time) (string, error) {
	maxN, err := src.MaxFolioNumber(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("scanning folio max: %w", err)
	}

	for i := 1; i <= folioProbes; i++ {
		candidate := fmt.Sprintf("%s-%04d", prefix, maxN+i)
		exists, err := src.FolioExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probing folio %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s-%s", prefix, now.UTC().Format("20060102150405")), nil
}
