package classifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reviewstation/engine/pkg/models"
)

// ClassifyAll runs the static engine over every hunk, then the AI fallback
// over whatever the static engine left unclassified, and folds both into
// existing per-hunk state honoring provenance rules (spec.md §4.4 last
// paragraph): a manual label is never overwritten; a static label is
// overwritten by AI only if the AI result is non-empty; static rules never
// retract a label once assigned.
func ClassifyAll(ctx context.Context, hunks []*models.Hunk, extByPath map[string]string, existing map[string]models.HunkState, tax *Taxonomy, cfg AIConfig, log zerolog.Logger, onProgress ProgressFunc) (map[string]models.HunkState, error) {
	out := make(map[string]models.HunkState, len(hunks))
	for id, st := range existing {
		out[id] = st
	}

	var needsAI []*models.Hunk
	for _, h := range hunks {
		prior, hasPrior := out[h.ID]
		if hasPrior && prior.ClassifiedVia != nil && *prior.ClassifiedVia == models.ViaManual {
			continue
		}

		ext := extByPath[h.FilePath]
		result := StaticClassify(h, ext)
		if result != nil {
			via := models.ViaStatic
			out[h.ID] = models.HunkState{
				Label:         result.Label,
				Reasoning:     result.Reasoning,
				Status:        carryStatus(prior),
				ClassifiedVia: &via,
			}
			continue
		}

		// A previously static-assigned label is never retracted just
		// because this pass's deterministic rule didn't fire again.
		if hasPrior && prior.ClassifiedVia != nil && *prior.ClassifiedVia == models.ViaStatic && len(prior.Label) > 0 {
			continue
		}

		needsAI = append(needsAI, h)
	}

	if len(needsAI) == 0 {
		return out, nil
	}

	aiResults, err := AIBatch(ctx, needsAI, tax, cfg, log, onProgress)
	if err != nil {
		return out, err
	}

	for _, h := range needsAI {
		cr, ok := aiResults[h.ID]
		if !ok || cr == nil || len(cr.Label) == 0 {
			continue
		}
		via := models.ViaAI
		out[h.ID] = models.HunkState{
			Label:         cr.Label,
			Reasoning:     cr.Reasoning,
			Status:        carryStatus(out[h.ID]),
			ClassifiedVia: &via,
		}
	}

	return out, nil
}

func carryStatus(st models.HunkState) *models.ReviewStatus {
	return st.Status
}
