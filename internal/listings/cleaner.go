package listings

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// CleanOptions controls the cleaning filters.
type CleanOptions struct {
	// OutlierSigma drops rows whose price is more than this many standard
	// deviations from the mean.
	OutlierSigma float64
	// MaxMinimumNights drops rows requiring longer stays.
	MaxMinimumNights int
}

// DefaultCleanOptions returns the filters used for the 2019 dataset.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{OutlierSigma: 2, MaxMinimumNights: 365}
}

// CleanStats records the row count after each cleaning step.
type CleanStats struct {
	Raw               int
	AfterMissing      int
	AfterPrice        int
	AfterAvailability int
	AfterMinNights    int
	Cleaned           int
	// Outlier bounds, computed after the minimum-nights filter.
	PriceMean  float64
	PriceSD    float64
	LowerBound float64
	UpperBound float64
}

// Dropped returns the number of rows removed by cleaning.
func (s CleanStats) Dropped() int { return s.Raw - s.Cleaned }

// Cleaner turns a Raw table into a cleaned Table.
type Cleaner struct {
	opt    CleanOptions
	logger *slog.Logger
}

// NewCleaner creates a Cleaner. A nil logger uses slog.Default().
func NewCleaner(opt CleanOptions, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{opt: opt, logger: logger}
}

// Clean applies the filters in order: missing values, price > 0,
// availability_365 > 0, minimum_nights <= max, then a single price outlier pass.
func (c *Cleaner) Clean(raw *Raw) (*Table, CleanStats, error) {
	st := CleanStats{Raw: raw.Len()}
	if err := checkColumns(raw.Frame); err != nil {
		return nil, st, err
	}
	df := dropMissing(raw.Frame)
	if err := checkStep(df, "drop missing values"); err != nil {
		return nil, st, err
	}
	st.AfterMissing = df.Nrow()
	c.logger.Debug("dropped rows with missing values", "before", st.Raw, "after", st.AfterMissing)

	df, err := coerceNumeric(df)
	if err != nil {
		return nil, st, err
	}

	df = df.Filter(dataframe.F{Colname: ColPrice, Comparator: series.Greater, Comparando: 0.0})
	if err := checkStep(df, "price > 0"); err != nil {
		return nil, st, err
	}
	st.AfterPrice = df.Nrow()

	df = df.Filter(dataframe.F{Colname: ColAvailability, Comparator: series.Greater, Comparando: 0})
	if err := checkStep(df, "availability_365 > 0"); err != nil {
		return nil, st, err
	}
	st.AfterAvailability = df.Nrow()

	df = df.Filter(dataframe.F{Colname: ColMinNights, Comparator: series.LessEq, Comparando: c.opt.MaxMinimumNights})
	if err := checkStep(df, fmt.Sprintf("minimum_nights <= %d", c.opt.MaxMinimumNights)); err != nil {
		return nil, st, err
	}
	st.AfterMinNights = df.Nrow()
	c.logger.Debug("applied value filters",
		"price", st.AfterPrice, "availability", st.AfterAvailability, "minimum_nights", st.AfterMinNights)

	mean, sd := stat.MeanStdDev(df.Col(ColPrice).Float(), nil)
	if math.IsNaN(sd) {
		// a single row has no spread
		sd = 0
	}
	limit := c.opt.OutlierSigma * sd
	st.PriceMean, st.PriceSD = mean, sd
	st.LowerBound, st.UpperBound = mean-limit, mean+limit
	df = df.Filter(dataframe.F{
		Colname:    ColPrice,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			return math.Abs(el.Float()-mean) <= limit
		},
	})
	if err := checkStep(df, "price outliers"); err != nil {
		return nil, st, err
	}
	st.Cleaned = df.Nrow()

	t, err := NewTable(df)
	if err != nil {
		return nil, st, err
	}
	c.logger.Info("cleaned listings", "raw", st.Raw, "cleaned", st.Cleaned, "dropped", st.Dropped(),
		"price_mean", mean, "price_sd", sd)
	return t, st, nil
}

// dropMissing keeps rows with a value in every column.
func dropMissing(df dataframe.DataFrame) dataframe.DataFrame {
	notNA := func(el series.Element) bool { return !el.IsNA() }
	names := df.Names()
	filters := make([]dataframe.F, len(names))
	for i, name := range names {
		filters[i] = dataframe.F{Colname: name, Comparator: series.CompFunc, Comparando: notNA}
	}
	return df.FilterAggregation(dataframe.And, filters...)
}

// coerceNumeric replaces the string numeric columns with typed series.
// Rows are numbered from 1 among the complete rows; the id cell is added when present.
func coerceNumeric(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	var ids []string
	if slices.Contains(df.Names(), "id") {
		ids = df.Col("id").Records()
	}
	bad := func(name string, i int, v string) error {
		if ids != nil {
			return fmt.Errorf("%w in column %s, row %d (id %s): %q", ErrNonNumeric, name, i+1, ids[i], v)
		}
		return fmt.Errorf("%w in column %s, row %d: %q", ErrNonNumeric, name, i+1, v)
	}
	for _, name := range floatColumns {
		recs := df.Col(name).Records()
		vals := make([]float64, len(recs))
		for i, r := range recs {
			x, err := parseNumber(r)
			if err != nil {
				return df, bad(name, i, r)
			}
			vals[i] = x
		}
		df = df.Mutate(series.New(vals, series.Float, name))
	}
	for _, name := range intColumns {
		recs := df.Col(name).Records()
		vals := make([]int, len(recs))
		for i, r := range recs {
			x, err := parseNumber(r)
			if err != nil || x != math.Trunc(x) {
				return df, bad(name, i, r)
			}
			vals[i] = int(x)
		}
		df = df.Mutate(series.New(vals, series.Int, name))
	}
	if df.Err != nil {
		return df, fmt.Errorf("coerce columns: %w", df.Err)
	}
	return df, nil
}

func parseNumber(s string) (float64, error) {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("not finite: %s", s)
	}
	return x, nil
}

func checkStep(df dataframe.DataFrame, step string) error {
	if df.Nrow() == 0 {
		return fmt.Errorf("%w: no rows left after %s", ErrEmptyDataset, step)
	}
	if df.Err != nil {
		return fmt.Errorf("clean (%s): %w", step, df.Err)
	}
	return nil
}
