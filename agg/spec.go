package agg

// Spec requests one reducer over one column. Column may be empty for count,
// which then counts rows. As names the output column; the default is
// "<reducer>_<column>", or "count" for a row count.
type Spec struct {
	Reducer string
	Column  string
	As      string
}

// Name returns the output column name.
func (s Spec) Name() string {
	switch {
	case s.As != "":
		return s.As
	case s.Column == "":
		return s.Reducer
	default:
		return s.Reducer + "_" + s.Column
	}
}

// Count counts the rows of each group.
func Count() Spec { return Spec{Reducer: "count"} }

// CountOf counts the non-missing values of col in each group.
func CountOf(col string) Spec { return Spec{Reducer: "count", Column: col} }

// Sum adds the non-missing values of col.
func Sum(col string) Spec { return Spec{Reducer: "sum", Column: col} }

// Mean averages the non-missing values of col.
func Mean(col string) Spec { return Spec{Reducer: "mean", Column: col} }

// Var is the sample variance of col.
func Var(col string) Spec { return Spec{Reducer: "var", Column: col} }

// SD is the sample standard deviation of col.
func SD(col string) Spec { return Spec{Reducer: "sd", Column: col} }

// Min is the smallest non-missing value of col.
func Min(col string) Spec { return Spec{Reducer: "min", Column: col} }

// Max is the largest non-missing value of col.
func Max(col string) Spec { return Spec{Reducer: "max", Column: col} }

// First is the value of col in the first row of each group.
func First(col string) Spec { return Spec{Reducer: "first", Column: col} }

// Last is the value of col in the last row of each group.
func Last(col string) Spec { return Spec{Reducer: "last", Column: col} }

// Median is the median of the non-missing values of col.
func Median(col string) Spec { return Spec{Reducer: "median", Column: col} }

// NUnique counts the distinct non-missing values of col.
func NUnique(col string) Spec { return Spec{Reducer: "nunique", Column: col} }

// Apply runs the registered reducer name over col.
func Apply(name, col string) Spec { return Spec{Reducer: name, Column: col} }

// Named returns a copy of s that writes to the output column name.
func (s Spec) Named(name string) Spec {
	s.As = name
	return s
}
