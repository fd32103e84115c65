package profile

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/leapstack-labs/starform/internal/table"
)

// DefaultUniquenessThreshold is the minimum distinct-value ratio for a
// column (or pair) to qualify as a candidate key. The boundary is closed:
// a ratio of exactly 0.95 qualifies.
const DefaultUniquenessThreshold = 0.95

// KeyOptions configures candidate-key detection.
type KeyOptions struct {
	// UniquenessThreshold defaults to DefaultUniquenessThreshold when zero.
	UniquenessThreshold float64
	// MaxCompositeColumns caps the column count for the pairwise composite
	// scan, which is quadratic in columns. Tables wider than the cap skip
	// the scan. Zero means no cap; negative disables the scan entirely.
	MaxCompositeColumns int
}

func (o KeyOptions) threshold() float64 {
	if o.UniquenessThreshold == 0 {
		return DefaultUniquenessThreshold
	}
	return o.UniquenessThreshold
}

// DetectCandidateKeys finds single and two-column candidate keys whose
// uniqueness ratio meets the threshold, ranked descending by uniqueness.
// Ties keep scan order (singles before composites of equal score is not
// guaranteed beyond stable-sort order).
func DetectCandidateKeys(tbl *table.Table, opts KeyOptions) []CandidateKey {
	var candidates []CandidateKey
	total := tbl.NumRows()
	threshold := opts.threshold()
	names := tbl.ColumnNames()

	for _, name := range names {
		col, _ := tbl.Column(name)
		distinct := distinctCount(col)
		uniqueness := ratio(distinct, total)
		if uniqueness >= threshold {
			nulls := 0
			for _, v := range col.Values() {
				if v.Null {
					nulls++
				}
			}
			candidates = append(candidates, CandidateKey{
				Columns:       []string{name},
				Uniqueness:    round4(uniqueness),
				DistinctCount: distinct,
				NullCount:     nulls,
			})
		}
	}

	scanPairs := opts.MaxCompositeColumns >= 0 &&
		(opts.MaxCompositeColumns == 0 || len(names) <= opts.MaxCompositeColumns)
	if scanPairs {
		for i, a := range names {
			for _, b := range names[i+1:] {
				distinct := pairDistinctCount(tbl, a, b)
				uniqueness := ratio(distinct, total)
				if uniqueness >= threshold {
					candidates = append(candidates, CandidateKey{
						Columns:       []string{a, b},
						Composite:     true,
						Uniqueness:    round4(uniqueness),
						DistinctCount: distinct,
					})
				}
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Uniqueness > candidates[j].Uniqueness
	})
	return candidates
}

// pairDistinctCount counts distinct (a, b) tuples with a single combined
// hash per row instead of materializing concatenated strings.
func pairDistinctCount(tbl *table.Table, a, b string) int {
	colA, _ := tbl.Column(a)
	colB, _ := tbl.Column(b)
	seen := make(map[uint64]struct{}, tbl.NumRows())
	for row := 0; row < tbl.NumRows(); row++ {
		h := fnv.New64a()
		writeCell(h, colA.Value(row))
		h.Write([]byte{0x1f})
		writeCell(h, colB.Value(row))
		seen[h.Sum64()] = struct{}{}
	}
	return len(seen)
}

func writeCell(h interface{ Write([]byte) (int, error) }, v table.Value) {
	if v.Null {
		h.Write([]byte{0x00})
		return
	}
	h.Write([]byte{0x01})
	h.Write([]byte(v.Raw))
}

// DetectGrain infers the dataset grain from column names, short-circuiting
// at the first rule satisfied: a transaction id column means transaction
// grain; dates plus ids mean event grain; everything else is row level.
func DetectGrain(tbl *table.Table) string {
	for _, name := range tbl.ColumnNames() {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "transaction") && strings.Contains(lower, "id") {
			return GrainTransaction
		}
	}

	hasDate, hasID := false, false
	for _, name := range tbl.ColumnNames() {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
			hasDate = true
		}
		if strings.Contains(lower, "_id") || lower == "id" {
			hasID = true
		}
	}
	if hasDate && hasID {
		return GrainEvent
	}
	return GrainRowLevel
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
