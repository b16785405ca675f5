package analysis

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/KaramelBytes/bnbeda/internal/listings"
	"gonum.org/v1/gonum/stat"
)

// Summary is the five-number summary of a numeric column plus mean and
// sample standard deviation.
type Summary struct {
	N      int
	Min    float64
	Q1     float64
	Median float64
	Mean   float64
	Q3     float64
	Max    float64
	SD     float64
}

// Summarize computes a Summary. Quartiles interpolate linearly between
// order statistics.
func Summarize(xs []float64) Summary {
	s := Summary{N: len(xs)}
	if len(xs) == 0 {
		return s
	}
	sorted := slices.Clone(xs)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	s.Mean, s.SD = stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		s.SD = 0
	}
	return s
}

type CategoryCount struct {
	Value string
	Count int
}

// CountLabels tallies labels, most frequent first.
func CountLabels(labels []string) []CategoryCount {
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// SubsetSummary describes one room-type subset.
type SubsetSummary struct {
	Label     string
	Size      int
	Price     Summary
	Latitude  Summary
	Longitude Summary
}

// Description is the descriptive part of the analysis.
type Description struct {
	Rows          int
	Boroughs      []CategoryCount
	RoomTypes     []CategoryCount
	Price         Summary
	MinimumNights Summary
	Reviews       Summary
	Availability  Summary
	Latitude      Summary
	Longitude     Summary
	FirstReview   time.Time
	LastReview    time.Time
	Subsets       []SubsetSummary
}

// Describe summarizes the cleaned table overall and per room type.
func Describe(t *listings.Table) *Description {
	d := &Description{
		Rows:          t.Len(),
		Boroughs:      CountLabels(t.Labels(listings.ColBorough)),
		RoomTypes:     CountLabels(t.Labels(listings.ColRoomType)),
		Price:         Summarize(t.Prices()),
		MinimumNights: Summarize(t.Floats(listings.ColMinNights)),
		Reviews:       Summarize(t.Floats(listings.ColReviews)),
		Availability:  Summarize(t.Floats(listings.ColAvailability)),
		Latitude:      Summarize(t.Floats(listings.ColLatitude)),
		Longitude:     Summarize(t.Floats(listings.ColLongitude)),
	}
	for i, r := range t.LastReviews() {
		if i == 0 || r.Before(d.FirstReview) {
			d.FirstReview = r
		}
		if i == 0 || r.After(d.LastReview) {
			d.LastReview = r
		}
	}
	for _, v := range t.RoomTypeSubsets() {
		d.Subsets = append(d.Subsets, SubsetSummary{
			Label:     v.Label,
			Size:      v.Len(),
			Price:     Summarize(v.Prices()),
			Latitude:  Summarize(v.Floats(listings.ColLatitude)),
			Longitude: Summarize(v.Floats(listings.ColLongitude)),
		})
	}
	return d
}

// quantile is R's default (type 7): h = (n-1)q, then linear interpolation
// between the order statistics either side of h. sorted must be ascending.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return math.NaN()
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[n-1]
	}
	h := q * float64(n-1)
	lo := int(h)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
