// Package schema infers per-column logical types by attempting ordered
// coercions over raw values. Every downstream component dispatches on
// the SchemaEntry produced here instead of re-inspecting raw values.
package schema

import (
	"math"
	"strconv"
	"strings"
	"time"

	"tabscope/domain/core"
	"tabscope/domain/dataset"
)

// nullSentinels are tokens treated as missing values rather than
// coercion failures.
var nullSentinels = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"nan":  true,
	"none": true,
	"-":    true,
}

// datetimeLayouts are tried in order during datetime coercion
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// Prober classifies columns by attempting coercions in the order
// integer, float, boolean, datetime, with categorical as the fallback.
type Prober struct {
	// matchFraction is the share of non-null values a coercion must
	// win before the type is accepted.
	matchFraction float64
}

// NewProber creates a prober. A fraction of 1.0 demands every non-null
// value coerce; lower values tolerate a bounded error rate.
func NewProber(matchFraction float64) *Prober {
	if matchFraction <= 0 || matchFraction > 1 {
		matchFraction = 1.0
	}
	return &Prober{matchFraction: matchFraction}
}

// Probe returns the schema entry for one column. The only error case
// is an empty column (zero entries); an all-null column is typed
// unknown, not an error.
func (p *Prober) Probe(col *dataset.Column) (dataset.SchemaEntry, error) {
	if col.Len() == 0 {
		return dataset.SchemaEntry{}, core.NewEmptyColumnError(col.Name.String())
	}

	entry := dataset.SchemaEntry{Name: col.Name}

	var (
		nonNull       int
		numericCount  int
		sawFractional bool
		booleanCount  int
		datetimeCount int
		distinct      = make(map[string]struct{})
	)

	for i := range col.Values {
		v := &col.Values[i]
		if IsNull(v) {
			entry.NullCount++
			continue
		}
		nonNull++
		distinct[normalize(v)] = struct{}{}

		if f, ok := asFloat(v); ok {
			numericCount++
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				sawFractional = true
			}
			continue
		}
		if _, ok := asBool(v); ok {
			booleanCount++
			continue
		}
		if _, ok := asTime(v); ok {
			datetimeCount++
		}
	}

	entry.Nullable = entry.NullCount > 0
	entry.DistinctCount = len(distinct)

	if nonNull == 0 {
		entry.Type = dataset.TypeUnknown
		entry.Nullable = true
		return entry, nil
	}

	need := int(math.Ceil(p.matchFraction * float64(nonNull)))
	switch {
	case numericCount >= need:
		// Integer-valued floats stay integer; any fractional value
		// promotes the whole column to float.
		if sawFractional {
			entry.Type = dataset.TypeFloat
		} else {
			entry.Type = dataset.TypeInteger
		}
	case booleanCount >= need:
		entry.Type = dataset.TypeBoolean
	case datetimeCount >= need:
		entry.Type = dataset.TypeDatetime
	default:
		entry.Type = dataset.TypeCategorical
	}

	return entry, nil
}

// IsNull reports whether a value is missing, counting recognized null
// sentinel tokens ("NA", "N/A", empty string, ...) as missing.
func IsNull(v *dataset.Value) bool {
	if v.IsMissing {
		return true
	}
	if v.Type == dataset.ValueTypeString && v.StringVal != nil {
		return nullSentinels[strings.ToLower(strings.TrimSpace(*v.StringVal))]
	}
	return false
}

// NullIndexes returns the row indices considered null under IsNull
func NullIndexes(col *dataset.Column) []int {
	var idx []int
	for i := range col.Values {
		if IsNull(&col.Values[i]) {
			idx = append(idx, i)
		}
	}
	return idx
}

// FloatValues extracts the parseable numeric values of a column along
// with their original row indices. Nulls and unparseable entries are
// skipped; downstream callers must pair the two slices positionally.
func FloatValues(col *dataset.Column) ([]float64, []int) {
	values := make([]float64, 0, col.Len())
	rows := make([]int, 0, col.Len())
	for i := range col.Values {
		v := &col.Values[i]
		if IsNull(v) {
			continue
		}
		if f, ok := asFloat(v); ok {
			values = append(values, f)
			rows = append(rows, i)
		}
	}
	return values, rows
}

// Labels extracts normalized categorical labels with row indices
func Labels(col *dataset.Column) ([]string, []int) {
	labels := make([]string, 0, col.Len())
	rows := make([]int, 0, col.Len())
	for i := range col.Values {
		v := &col.Values[i]
		if IsNull(v) {
			continue
		}
		labels = append(labels, normalize(v))
		rows = append(rows, i)
	}
	return labels, rows
}

func normalize(v *dataset.Value) string {
	if v.Type == dataset.ValueTypeString && v.StringVal != nil {
		return strings.TrimSpace(*v.StringVal)
	}
	return v.String()
}

func asFloat(v *dataset.Value) (float64, bool) {
	switch v.Type {
	case dataset.ValueTypeNumeric:
		if v.NumericVal != nil {
			return *v.NumericVal, true
		}
	case dataset.ValueTypeString:
		if v.StringVal == nil {
			return 0, false
		}
		s := strings.TrimSpace(*v.StringVal)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asBool(v *dataset.Value) (bool, bool) {
	switch v.Type {
	case dataset.ValueTypeBoolean:
		if v.BooleanVal != nil {
			return *v.BooleanVal, true
		}
	case dataset.ValueTypeString:
		if v.StringVal == nil {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(*v.StringVal)) {
		case "true", "t", "yes", "y":
			return true, true
		case "false", "f", "no", "n":
			return false, true
		}
	}
	return false, false
}

func asTime(v *dataset.Value) (time.Time, bool) {
	switch v.Type {
	case dataset.ValueTypeTimestamp:
		if v.TimestampVal != nil {
			return *v.TimestampVal, true
		}
	case dataset.ValueTypeString:
		if v.StringVal == nil {
			return time.Time{}, false
		}
		s := strings.TrimSpace(*v.StringVal)
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
