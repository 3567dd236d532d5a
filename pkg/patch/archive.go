package patch

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/errors"
)

// Report summarizes one ApplyArchive call
type Report struct {
	// Applied lists the patched entries in archive order
	Applied []string
	// Unmatched lists targets with no entry in the archive, sorted
	Unmatched []string
}

// ApplyArchive copies in to out, patching every entry the set has a patch
// for. Every conflict is collected before failing; on failure out is removed
// and the error carries the conflicting entries under "conflicts".
func (s Set) ApplyArchive(ctx context.Context, in, out string, logger zerolog.Logger) (*Report, error) {
	report := &Report{}
	applied := make(map[string]bool, len(s))
	var conflicts []string
	var first error

	err := archive.Rewrite(ctx, in, out, func(e *archive.Entry) (archive.Result, error) {
		if e.IsDir() {
			return archive.Keep(), nil
		}
		p, ok := s[e.Name()]
		if !ok {
			return archive.Keep(), nil
		}
		applied[e.Name()] = true

		data, err := e.ReadAll()
		if err != nil {
			return archive.Result{}, errors.Wrapf(err, errors.ErrArchive, "failed to read %s", e.Name())
		}
		text, err := p.ApplyText(e.Name(), string(data))
		if err != nil {
			logger.Error().Err(err).Str("entry", e.Name()).Msg("Patch does not apply")
			conflicts = append(conflicts, e.Name())
			if first == nil {
				first = err
			}
			return archive.Keep(), nil
		}
		report.Applied = append(report.Applied, e.Name())
		return archive.Replace([]byte(text)), nil
	})
	if err != nil {
		return nil, err
	}

	if len(conflicts) > 0 {
		_ = os.Remove(out)
		return nil, errors.Wrapf(first, errors.ErrPatchConflict, "%d patches do not apply", len(conflicts)).
			WithDetail("conflicts", conflicts)
	}

	for _, target := range s.Targets() {
		if !applied[target] {
			report.Unmatched = append(report.Unmatched, target)
		}
	}
	return report, nil
}
