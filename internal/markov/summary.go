package markov

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/clickchain/clickchain/internal/model"
)

// Summarize computes descriptive statistics over a finished analysis.
// It reads the counting maps and the derived report rows, so it must run
// after the entry and bounce tables are built (and before any top-N
// truncation, which would bias the statistics).
func Summarize(a *model.Analysis) model.Summary {
	s := model.Summary{
		RecordsRead:       a.RecordsRead,
		RecordsSkipped:    a.RecordsSkipped,
		Transitions:       a.Counts.Total(),
		DistinctPairs:     len(a.Counts),
		DistinctSources:   len(a.Totals),
		EntryDestinations: len(a.EntryPoints),
		BouncePages:       len(a.BounceRates),
	}

	if len(a.EntryPoints) > 0 {
		dist := make([]float64, len(a.EntryPoints))
		for i, e := range a.EntryPoints {
			dist[i] = e.Probability
		}
		// stat.Entropy uses natural log; report in bits.
		s.EntryEntropyBits = stat.Entropy(dist) / math.Ln2
	}

	if len(a.BounceRates) > 0 {
		rates := make([]float64, len(a.BounceRates))
		for i, b := range a.BounceRates {
			rates[i] = b.Probability
			if b.Probability > s.BounceMax {
				s.BounceMax = b.Probability
				s.BounceMaxPage = b.Source
			}
		}

		mean, std := stat.MeanStdDev(rates, nil)
		s.BounceMean = mean
		// Sample stddev is undefined for a single page.
		if len(rates) > 1 {
			s.BounceStdDev = std
		}
	}

	return s
}
