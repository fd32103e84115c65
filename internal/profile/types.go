// Package profile analyzes a tabular source: it assigns semantic column
// types, computes per-column statistics, detects candidate keys and dataset
// grain, and partitions columns into dimension/fact/id/date entity sets.
// The resulting Profile is the sole input to model inference.
package profile

import "time"

// SemanticType is the inferred meaning of a column, distinct from its
// declared storage type.
type SemanticType string

const (
	TypeID      SemanticType = "ID"
	TypeDate    SemanticType = "DATE"
	TypeInteger SemanticType = "INTEGER"
	TypeFloat   SemanticType = "FLOAT"
	TypeBoolean SemanticType = "BOOLEAN"
	TypeString  SemanticType = "STRING"
)

// ValueCount is one entry of a value histogram.
type ValueCount struct {
	Value string
	Count int
}

// NumericStats holds type-specific metrics for INTEGER and FLOAT columns.
// Aggregates are nil when the column has no coercible non-null values.
type NumericStats struct {
	Min    *float64
	Max    *float64
	Mean   *float64
	Median *float64
	StdDev *float64
	// Outliers are values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
	OutlierCount      int
	OutlierPercentage float64
}

// DateStats holds type-specific metrics for DATE columns.
type DateStats struct {
	ValidCount   int
	InvalidCount int
	Min          *time.Time
	Max          *time.Time
}

// StringStats holds type-specific metrics for STRING columns.
type StringStats struct {
	// TopValues are the 10 most frequent values, ties broken by
	// first-encountered order.
	TopValues []ValueCount
	AvgLength float64
	MaxLength int
}

// BooleanStats holds the full value histogram for BOOLEAN columns.
type BooleanStats struct {
	Counts []ValueCount
}

// ColumnProfile is the complete set of statistics for one source column.
type ColumnProfile struct {
	Column             string
	Type               SemanticType
	TotalRows          int
	NonNullCount       int
	NullCount          int
	NullPercentage     float64
	DistinctCount      int
	DistinctPercentage float64

	Numeric *NumericStats
	Date    *DateStats
	String  *StringStats
	Boolean *BooleanStats
}

// CandidateKey is a column or column pair whose distinct-value ratio meets
// the uniqueness threshold. Keys are ranked descending by uniqueness; the
// first entry is the default primary-key choice.
type CandidateKey struct {
	Columns       []string
	Composite     bool
	Uniqueness    float64
	DistinctCount int
	// NullCount is populated for single-column keys only.
	NullCount int
}

// Entities is the disjoint partition of column names by modeling role.
// Unclassified surfaces columns excluded from the model (high-cardinality
// strings and booleans) so the drop is auditable rather than implicit.
type Entities struct {
	IDs          []string
	Dates        []string
	Dimensions   []string
	Facts        []string
	Unclassified []string
}

// Grain labels for the dataset's level of detail.
const (
	GrainTransaction = "transaction"
	GrainEvent       = "event"
	GrainRowLevel    = "row_level"
)

// Profile is the complete profiling output for one source table.
type Profile struct {
	TotalRows     int
	TotalColumns  int
	Columns       map[string]*ColumnProfile
	Types         map[string]SemanticType
	CandidateKeys []CandidateKey
	Entities      Entities
	Grain         string
}

// BestKey returns the columns of the highest-ranked candidate key, or nil
// when no key met the threshold.
func (p *Profile) BestKey() []string {
	if len(p.CandidateKeys) == 0 {
		return nil
	}
	return p.CandidateKeys[0].Columns
}
