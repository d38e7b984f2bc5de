package markov

import (
	"errors"
	"fmt"

	"github.com/clickchain/clickchain/internal/model"
)

// ErrMissingSourceTotal indicates a pair was counted without its source
// being counted. A well-formed tally makes this unreachable (a source
// appears in the pair counts only after being incremented in the totals),
// so hitting it means a programming error upstream, not bad input.
var ErrMissingSourceTotal = errors.New("missing source total")

// Normalize divides each pair's count by its source's total, yielding
// the conditional transition probabilities.
//
// Division by zero cannot occur with consistent inputs: any source
// present in counts has a total of at least one. Probabilities use
// float64 division; per-source values sum to 1 within floating-point
// tolerance.
func Normalize(counts model.TransitionCounts, totals model.SourceTotals) (model.TransitionProbs, error) {
	probs := make(model.TransitionProbs, len(counts))
	for tr, n := range counts {
		total, ok := totals[tr.From]
		if !ok || total <= 0 {
			return nil, fmt.Errorf("%w: source %q (pair %s)", ErrMissingSourceTotal, tr.From, tr)
		}
		probs[tr] = float64(n) / float64(total)
	}
	return probs, nil
}
