package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/bnbeda/internal/listings"
)

// Report collects everything printed for one run. Nil sections are skipped.
type Report struct {
	Source      string
	Stats       *listings.CleanStats
	Description *Description
	Findings    *Findings
	OutputDir   string
	Plots       []string
}

// Text renders the report in a fixed section order.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Source))
	}
	if s := r.Stats; s != nil {
		b.WriteString(fmt.Sprintf("Rows: %d raw, %d cleaned (dropped %d)\n", s.Raw, s.Cleaned, s.Dropped()))
		b.WriteString("\n[CLEANING]\n")
		b.WriteString(fmt.Sprintf("- complete rows: %d\n", s.AfterMissing))
		b.WriteString(fmt.Sprintf("- price > 0: %d\n", s.AfterPrice))
		b.WriteString(fmt.Sprintf("- availability_365 > 0: %d\n", s.AfterAvailability))
		b.WriteString(fmt.Sprintf("- minimum_nights filter: %d\n", s.AfterMinNights))
		b.WriteString(fmt.Sprintf("- price within [%.4g, %.4g] (mean %.4g, sd %.4g): %d\n",
			s.LowerBound, s.UpperBound, s.PriceMean, s.PriceSD, s.Cleaned))
	}
	if d := r.Description; d != nil {
		writeDescription(&b, d)
	}
	if f := r.Findings; f != nil {
		writeFindings(&b, f)
	}
	if len(r.Plots) > 0 {
		b.WriteString("\n[PLOTS]\n")
		if r.OutputDir != "" {
			b.WriteString(fmt.Sprintf("Directory: %s\n", r.OutputDir))
		}
		for _, p := range r.Plots {
			b.WriteString("- " + p + "\n")
		}
	}
	return b.String()
}

func writeDescription(b *strings.Builder, d *Description) {
	b.WriteString("\n[CATEGORIES]\n")
	b.WriteString("- neighbourhood_group: " + formatCounts(d.Boroughs) + "\n")
	b.WriteString("- room_type: " + formatCounts(d.RoomTypes) + "\n")

	b.WriteString("\n[DISTRIBUTIONS]\n")
	writeSummary(b, "price", d.Price)
	writeSummary(b, "minimum_nights", d.MinimumNights)
	writeSummary(b, "number_of_reviews", d.Reviews)
	writeSummary(b, "availability_365", d.Availability)
	writeSummary(b, "latitude", d.Latitude)
	writeSummary(b, "longitude", d.Longitude)
	if !d.FirstReview.IsZero() {
		b.WriteString(fmt.Sprintf("- last_review: %s to %s\n",
			d.FirstReview.Format("2006-01-02"), d.LastReview.Format("2006-01-02")))
	}

	b.WriteString("\n[ROOM TYPES]\n")
	for _, s := range d.Subsets {
		b.WriteString(fmt.Sprintf("- %s (n=%d)\n", s.Label, s.Size))
		b.WriteString("  • " + summaryLine("price", s.Price) + "\n")
		b.WriteString(fmt.Sprintf("  • location: lat %.4f..%.4f, lon %.4f..%.4f\n",
			s.Latitude.Min, s.Latitude.Max, s.Longitude.Min, s.Longitude.Max))
	}
}

func writeFindings(b *strings.Builder, f *Findings) {
	writeTwoSample(b, 1, "Welch two-sample t-test: Manhattan vs Brooklyn price",
		listings.Manhattan, listings.Brooklyn, f.BoroughPrice)
	writeTwoSample(b, 2, "Welch two-sample t-test: Entire home/apt vs Private room price",
		listings.EntireHome, listings.PrivateRoom, f.RoomTypePrice)

	b.WriteString("\n[QUESTION 3] Pearson correlation: number_of_reviews vs availability_365\n")
	writeCorrelation(b, f.ReviewsAvailability)

	if o := f.Benchmark; o != nil {
		b.WriteString(fmt.Sprintf("\n[QUESTION 4] One-sample t-test: mean price vs %.4g\n", o.Mu0))
		b.WriteString(fmt.Sprintf("t = %.4f, df = %.0f, p-value = %s\n", o.T, o.DoF, formatP(o.P)))
		b.WriteString(fmt.Sprintf("%.0f%% CI for mean: [%.4f, %.4f]\n", ConfidenceLevel*100, o.CI.Low, o.CI.High))
		b.WriteString(fmt.Sprintf("sample mean: %.4f (n=%d)\n", o.Mean, o.N))
	}

	b.WriteString("\n[QUESTION 5] Correlation and regression: price ~ number_of_reviews\n")
	writeRelationship(b, f.ReviewsPrice)
	b.WriteString("\n[QUESTION 6] Correlation and regression: price ~ availability_365\n")
	writeRelationship(b, f.AvailabilityPrice)

	if a := f.RoomTypeANOVA; a != nil {
		b.WriteString("\n[QUESTION 7] One-way ANOVA: price by room_type\n")
		b.WriteString(fmt.Sprintf("between: df = %d, SS = %.4g, MS = %.4g\n", a.DFBetween, a.SSBetween, a.MSBetween))
		b.WriteString(fmt.Sprintf("within:  df = %d, SS = %.4g, MS = %.4g\n", a.DFWithin, a.SSWithin, a.MSWithin))
		b.WriteString(fmt.Sprintf("F = %.4f, p-value = %s\n", a.F, formatP(a.P)))
		for _, g := range a.Groups {
			b.WriteString(fmt.Sprintf("  • %s: mean %.4f, sd %.4f (n=%d)\n", g.Label, g.Mean, g.SD, g.N))
		}
	}
}

func writeTwoSample(b *strings.Builder, q int, title, a, c string, r *TwoSampleResult) {
	if r == nil {
		return
	}
	b.WriteString(fmt.Sprintf("\n[QUESTION %d] %s\n", q, title))
	b.WriteString(fmt.Sprintf("t = %.4f, df = %.2f, p-value = %s\n", r.T, r.DoF, formatP(r.P)))
	b.WriteString(fmt.Sprintf("%.0f%% CI for difference in means: [%.4f, %.4f]\n", ConfidenceLevel*100, r.CI.Low, r.CI.High))
	b.WriteString(fmt.Sprintf("means: %s %.4f (n=%d), %s %.4f (n=%d)\n", a, r.Mean1, r.N1, c, r.Mean2, r.N2))
}

func writeCorrelation(b *strings.Builder, c *CorrelationResult) {
	if c == nil {
		return
	}
	b.WriteString(fmt.Sprintf("r = %.4f, t = %.4f, df = %d, p-value = %s\n", c.R, c.T, c.DoF, formatP(c.P)))
	if !math.IsNaN(c.CI.Low) {
		b.WriteString(fmt.Sprintf("%.0f%% CI for r: [%.4f, %.4f]\n", ConfidenceLevel*100, c.CI.Low, c.CI.High))
	}
}

func writeRelationship(b *strings.Builder, r Relationship) {
	writeCorrelation(b, r.Correlation)
	g := r.Regression
	if g == nil {
		return
	}
	b.WriteString(fmt.Sprintf("intercept = %.4f (se %.4f), slope = %.6f (se %.6f)\n",
		g.Intercept, g.InterceptSE, g.Slope, g.SlopeSE))
	b.WriteString(fmt.Sprintf("slope t = %.4f, p-value = %s\n", g.T, formatP(g.P)))
	b.WriteString(fmt.Sprintf("R² = %.4f, adjusted R² = %.4f, residual se = %.4f on %d df, F = %.4f\n",
		g.RSquared, g.AdjRSquared, g.ResidualSE, g.DoF, g.F))
}

func writeSummary(b *strings.Builder, name string, s Summary) {
	b.WriteString("- " + summaryLine(name, s) + "\n")
}

func summaryLine(name string, s Summary) string {
	return fmt.Sprintf("%s: min %.4g, q1 %.4g, median %.4g, mean %.4g, q3 %.4g, max %.4g, sd %.4g (n=%d)",
		name, s.Min, s.Q1, s.Median, s.Mean, s.Q3, s.Max, s.SD, s.N)
}

func formatCounts(counts []CategoryCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s(%d)", c.Value, c.Count)
	}
	return strings.Join(parts, ", ")
}

// formatP prints p-values the way R does below machine precision.
func formatP(p float64) string {
	if p < 2.2e-16 {
		return "< 2.2e-16"
	}
	return fmt.Sprintf("%.4g", p)
}
