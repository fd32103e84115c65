package profile

import (
	"math"
	"sort"

	"github.com/leapstack-labs/starform/internal/table"
)

// ProfileColumn computes the full statistics for one column. The source is
// never mutated; coercion failures count as null or invalid, never errors.
// A zero-row column yields zero percentages rather than failing.
func ProfileColumn(col *table.Column, typ SemanticType) *ColumnProfile {
	total := col.Len()
	nonNull := 0
	for _, v := range col.Values() {
		if !v.Null {
			nonNull++
		}
	}
	nullCount := total - nonNull

	p := &ColumnProfile{
		Column:        col.Name,
		Type:          typ,
		TotalRows:     total,
		NonNullCount:  nonNull,
		NullCount:     nullCount,
		DistinctCount: distinctCount(col),
	}
	if total > 0 {
		p.NullPercentage = round2(float64(nullCount) / float64(total) * 100)
		p.DistinctPercentage = round2(float64(p.DistinctCount) / float64(total) * 100)
	}

	switch typ {
	case TypeInteger, TypeFloat:
		p.Numeric = numericStats(col)
	case TypeDate:
		p.Date = dateStats(col)
	case TypeString, TypeID:
		p.String = stringStats(col)
	case TypeBoolean:
		p.Boolean = booleanStats(col)
	}
	return p
}

// distinctCount counts distinct non-null raw values.
func distinctCount(col *table.Column) int {
	seen := make(map[string]struct{})
	for _, v := range col.Values() {
		if v.Null {
			continue
		}
		seen[v.Raw] = struct{}{}
	}
	return len(seen)
}

func numericStats(col *table.Column) *NumericStats {
	var nums []float64
	for _, v := range col.Values() {
		if f, ok := table.ParseFloat(v); ok {
			nums = append(nums, f)
		}
	}
	stats := &NumericStats{}
	if len(nums) == 0 {
		return stats
	}

	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	minV := sorted[0]
	maxV := sorted[len(sorted)-1]
	mean := sum(nums) / float64(len(nums))
	median := quantile(sorted, 0.5)
	stats.Min = &minV
	stats.Max = &maxV
	stats.Mean = &mean
	stats.Median = &median

	if len(nums) > 1 {
		var ss float64
		for _, n := range nums {
			d := n - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(nums)-1))
		stats.StdDev = &std
	}

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	for _, n := range nums {
		if n < lower || n > upper {
			stats.OutlierCount++
		}
	}
	if col.Len() > 0 {
		stats.OutlierPercentage = round2(float64(stats.OutlierCount) / float64(col.Len()) * 100)
	}
	return stats
}

// quantile computes the q-th quantile of sorted data using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func dateStats(col *table.Column) *DateStats {
	stats := &DateStats{}
	for _, v := range col.Values() {
		if v.Null {
			stats.InvalidCount++
			continue
		}
		t, ok := table.ParseTime(v)
		if !ok {
			stats.InvalidCount++
			continue
		}
		stats.ValidCount++
		if stats.Min == nil || t.Before(*stats.Min) {
			tc := t
			stats.Min = &tc
		}
		if stats.Max == nil || t.After(*stats.Max) {
			tc := t
			stats.Max = &tc
		}
	}
	return stats
}

func stringStats(col *table.Column) *StringStats {
	stats := &StringStats{TopValues: topValues(col, 10)}
	nonNull := 0
	totalLen := 0
	for _, v := range col.Values() {
		if v.Null {
			continue
		}
		nonNull++
		totalLen += len(v.Raw)
		if len(v.Raw) > stats.MaxLength {
			stats.MaxLength = len(v.Raw)
		}
	}
	if nonNull > 0 {
		stats.AvgLength = round2(float64(totalLen) / float64(nonNull))
	}
	return stats
}

func booleanStats(col *table.Column) *BooleanStats {
	return &BooleanStats{Counts: topValues(col, 0)}
}

// topValues builds a value histogram over non-null cells, sorted by count
// descending with ties kept in first-encountered order. A limit of 0 keeps
// every value.
func topValues(col *table.Column, limit int) []ValueCount {
	counts := make(map[string]int)
	var order []string
	firstSeen := make(map[string]int)
	for _, v := range col.Values() {
		if v.Null {
			continue
		}
		if _, ok := counts[v.Raw]; !ok {
			firstSeen[v.Raw] = len(order)
			order = append(order, v.Raw)
		}
		counts[v.Raw]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	out := make([]ValueCount, len(order))
	for i, v := range order {
		out[i] = ValueCount{Value: v, Count: counts[v]}
	}
	return out
}

func sum(nums []float64) float64 {
	var s float64
	for _, n := range nums {
		s += n
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
