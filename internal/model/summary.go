package model

// Summary holds descriptive statistics of a finished run. It is derived
// from the counting maps and the two report tables after normalization,
// and is included in every output format.
type Summary struct {
	// RecordsRead is the number of input lines consumed.
	RecordsRead int `json:"records_read"`

	// RecordsSkipped is the number of malformed lines skipped.
	RecordsSkipped int `json:"records_skipped"`

	// Transitions is the total number of counted navigation events.
	// Equals RecordsRead minus RecordsSkipped.
	Transitions int `json:"transitions"`

	// DistinctPairs is the number of distinct (source, destination) pairs.
	DistinctPairs int `json:"distinct_pairs"`

	// DistinctSources is the number of distinct source pages.
	DistinctSources int `json:"distinct_sources"`

	// EntryDestinations is the number of distinct entry destinations.
	EntryDestinations int `json:"entry_destinations"`

	// EntryEntropyBits is the Shannon entropy of the entry-point
	// distribution in bits. Zero when every session enters on the same
	// page, log2(n) when entries are uniform over n pages.
	EntryEntropyBits float64 `json:"entry_entropy_bits"`

	// BouncePages is the number of pages with at least one bounce.
	BouncePages int `json:"bounce_pages"`

	// BounceMean is the mean bounce probability across bounce pages.
	BounceMean float64 `json:"bounce_mean"`

	// BounceStdDev is the sample standard deviation of bounce
	// probabilities. Zero when fewer than two pages have bounces.
	BounceStdDev float64 `json:"bounce_std_dev"`

	// BounceMax is the highest bounce probability observed.
	BounceMax float64 `json:"bounce_max"`

	// BounceMaxPage is the page with the highest bounce probability.
	BounceMaxPage PageID `json:"bounce_max_page,omitempty"`
}
