package markov

import (
	"errors"
	"fmt"
	"sort"

	"github.com/clickchain/clickchain/internal/model"
)

// Order selects the deterministic ordering of report rows.
//
// Design decision: the underlying maps have no iteration order, and the
// computation itself guarantees none. Rather than leak incidental hash
// order into the output, every report is sorted explicitly so identical
// inputs always produce identical reports.
type Order string

const (
	// OrderByProbability sorts rows by probability descending, breaking
	// ties by page identifier ascending. This is the default: the most
	// likely entry pages and the worst bounce pages come first.
	OrderByProbability Order = "prob"

	// OrderByPage sorts rows by page identifier ascending
	// (lexicographic, since identifiers are opaque text).
	OrderByPage Order = "page"
)

// ErrUnknownOrder is returned by ParseOrder for unrecognized names.
var ErrUnknownOrder = errors.New("unknown sort order")

// ParseOrder converts an order name (as given on the command line or in
// a config file) into an Order. An empty name selects OrderByProbability.
func ParseOrder(name string) (Order, error) {
	switch Order(name) {
	case OrderByProbability, "":
		return OrderByProbability, nil
	case OrderByPage:
		return OrderByPage, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: prob, page)", ErrUnknownOrder, name)
	}
}

// EntryDistribution filters the probabilities to transitions whose source
// is the entry sentinel and returns one row per entry destination.
//
// The rows form a probability distribution: their probabilities sum to 1
// across all destinations, because the entry sentinel's total is the sum
// of its own transition counts.
func EntryDistribution(probs model.TransitionProbs, counts model.TransitionCounts, sentinels model.Sentinels, order Order) []model.EntryPoint {
	var rows []model.EntryPoint
	for tr, p := range probs {
		if tr.From != sentinels.Entry {
			continue
		}
		rows = append(rows, model.EntryPoint{
			Destination: tr.To,
			Count:       counts[tr],
			Probability: p,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if order == OrderByPage {
			return rows[i].Destination < rows[j].Destination
		}
		if rows[i].Probability != rows[j].Probability {
			return rows[i].Probability > rows[j].Probability
		}
		return rows[i].Destination < rows[j].Destination
	})

	return rows
}

// BounceTable filters the probabilities to transitions whose destination
// is the bounce sentinel and returns one row per bouncing source page.
//
// Each row is P(bounce | currently on page), an independent conditional
// probability. Unlike the entry distribution, these values are not
// required to sum to 1 across pages.
func BounceTable(probs model.TransitionProbs, counts model.TransitionCounts, sentinels model.Sentinels, order Order) []model.BounceRate {
	var rows []model.BounceRate
	for tr, p := range probs {
		if tr.To != sentinels.Bounce {
			continue
		}
		rows = append(rows, model.BounceRate{
			Source:      tr.From,
			Count:       counts[tr],
			Probability: p,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if order == OrderByPage {
			return rows[i].Source < rows[j].Source
		}
		if rows[i].Probability != rows[j].Probability {
			return rows[i].Probability > rows[j].Probability
		}
		return rows[i].Source < rows[j].Source
	})

	return rows
}
