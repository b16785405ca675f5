package plots

import (
	"fmt"

	"github.com/KaramelBytes/bnbeda/internal/analysis"
	"github.com/KaramelBytes/bnbeda/internal/listings"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var subsetHistograms = map[string]string{
	listings.EntireHome:  EntireHomePriceHistogram,
	listings.PrivateRoom: PrivateRoomPriceHistogram,
	listings.SharedRoom:  SharedRoomPriceHistogram,
}

// Build returns the full gallery: descriptive figures followed by the
// test figures.
func Build(t *listings.Table, f *analysis.Findings, opt Options) (*Gallery, error) {
	g, err := BuildEDA(t, opt)
	if err != nil {
		return nil, err
	}
	if err := BuildTests(g, t, f); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildEDA builds the category, distribution and location figures, overall
// and per room type.
func BuildEDA(t *listings.Table, opt Options) (*Gallery, error) {
	g := &Gallery{}
	bins := opt.Bins
	if bins <= 0 {
		bins = DefaultOptions().Bins
	}

	p, err := countChart("Listings by borough", "Borough", analysis.CountLabels(t.Labels(listings.ColBorough)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BoroughCounts, err)
	}
	g.Add(BoroughCounts, p)

	if p, err = countChart("Listings by room type", "Room type", analysis.CountLabels(t.Labels(listings.ColRoomType))); err != nil {
		return nil, fmt.Errorf("%s: %w", RoomTypeCounts, err)
	}
	g.Add(RoomTypeCounts, p)

	if p, err = histogram("Minimum nights", "Nights", t.Floats(listings.ColMinNights), bins, 2); err != nil {
		return nil, fmt.Errorf("%s: %w", MinimumNightsHistogram, err)
	}
	g.Add(MinimumNightsHistogram, p)

	if p, err = histogram("Price per night", "Price (USD)", t.Prices(), bins, 0); err != nil {
		return nil, fmt.Errorf("%s: %w", PriceHistogram, err)
	}
	g.Add(PriceHistogram, p)

	all := []locationSeries{{"Listings", t.Floats(listings.ColLongitude), t.Floats(listings.ColLatitude)}}
	if p, err = locationScatter("Listing locations", all); err != nil {
		return nil, fmt.Errorf("%s: %w", LocationScatter, err)
	}
	g.Add(LocationScatter, p)

	var byType []locationSeries
	subsets := map[string]listings.View{}
	for _, v := range t.RoomTypeSubsets() {
		subsets[v.Label] = v
		byType = append(byType, locationSeries{v.Label, v.Floats(listings.ColLongitude), v.Floats(listings.ColLatitude)})
	}
	for i, rt := range listings.RoomTypes {
		name := subsetHistograms[rt]
		if p, err = histogram(rt+": price per night", "Price (USD)", subsets[rt].Prices(), bins, i); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		g.Add(name, p)
	}
	if p, err = locationScatter("Listing locations by room type", byType); err != nil {
		return nil, fmt.Errorf("%s: %w", RoomTypeLocationScatter, err)
	}
	g.Add(RoomTypeLocationScatter, p)
	return g, nil
}

// BuildTests appends the figures that accompany the hypothesis tests.
func BuildTests(g *Gallery, t *listings.Table, f *analysis.Findings) error {
	boroughs := []analysis.Group{
		{Label: listings.Manhattan, Values: t.Where(listings.ColBorough, listings.Manhattan).Prices()},
		{Label: listings.Brooklyn, Values: t.Where(listings.ColBorough, listings.Brooklyn).Prices()},
	}
	p, err := boxPlot(titleWithP("Price: Manhattan vs Brooklyn", f.BoroughPrice.P), "Borough", boroughs)
	if err != nil {
		return fmt.Errorf("%s: %w", BoroughPriceBoxplot, err)
	}
	g.Add(BoroughPriceBoxplot, p)

	roomTypes := []analysis.Group{
		{Label: listings.EntireHome, Values: t.Where(listings.ColRoomType, listings.EntireHome).Prices()},
		{Label: listings.PrivateRoom, Values: t.Where(listings.ColRoomType, listings.PrivateRoom).Prices()},
	}
	if p, err = boxPlot(titleWithP("Price: entire home vs private room", f.RoomTypePrice.P), "Room type", roomTypes); err != nil {
		return fmt.Errorf("%s: %w", RoomTypePriceBoxplot, err)
	}
	g.Add(RoomTypePriceBoxplot, p)

	reviews := t.Floats(listings.ColReviews)
	availability := t.Floats(listings.ColAvailability)
	prices := t.Prices()
	title := fmt.Sprintf("Reviews vs availability (r = %.3f)", f.ReviewsAvailability.R)
	if p, err = scatterFit(title, "Number of reviews", "Availability (days/year)", reviews, availability, nil); err != nil {
		return fmt.Errorf("%s: %w", ReviewsAvailabilityScatter, err)
	}
	g.Add(ReviewsAvailabilityScatter, p)

	title = fmt.Sprintf("Price ~ number of reviews (R² = %.3f)", f.ReviewsPrice.Regression.RSquared)
	if p, err = scatterFit(title, "Number of reviews", "Price (USD)", reviews, prices, f.ReviewsPrice.Regression); err != nil {
		return fmt.Errorf("%s: %w", PriceReviewsRegression, err)
	}
	g.Add(PriceReviewsRegression, p)

	title = fmt.Sprintf("Price ~ availability (R² = %.3f)", f.AvailabilityPrice.Regression.RSquared)
	if p, err = scatterFit(title, "Availability (days/year)", "Price (USD)", availability, prices, f.AvailabilityPrice.Regression); err != nil {
		return fmt.Errorf("%s: %w", PriceAvailabilityRegression, err)
	}
	g.Add(PriceAvailabilityRegression, p)

	var groups []analysis.Group
	for _, v := range t.RoomTypeSubsets() {
		groups = append(groups, analysis.Group{Label: v.Label, Values: v.Prices()})
	}
	a := f.RoomTypeANOVA
	title = fmt.Sprintf("Price by room type (F = %.2f, p = %.3g)", a.F, a.P)
	if p, err = boxPlot(title, "Room type", groups); err != nil {
		return fmt.Errorf("%s: %w", RoomTypeANOVA, err)
	}
	g.Add(RoomTypeANOVA, p)
	return nil
}

func countChart(title, xlabel string, counts []analysis.CategoryCount) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Listings"
	if len(counts) == 0 {
		return p, nil
	}
	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		vals[i] = float64(c.Count)
		names[i] = c.Value
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

func histogram(title, xlabel string, xs []float64, bins, color int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Listings"
	if len(xs) == 0 {
		p.Title.Text += " (no listings)"
		return p, nil
	}
	h, err := plotter.NewHist(plotter.Values(xs), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = plotutil.Color(color)
	p.Add(h)
	return p, nil
}

type locationSeries struct {
	label    string
	lon, lat []float64
}

func locationScatter(title string, series []locationSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	for i, s := range series {
		if len(s.lon) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pairs(s.lon, s.lat))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(1)
		sc.GlyphStyle.Color = plotutil.Color(i)
		p.Add(sc)
		if len(series) > 1 {
			p.Legend.Add(s.label, sc)
		}
	}
	p.Legend.Top = true
	return p, nil
}

func boxPlot(title, xlabel string, groups []analysis.Group) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Price (USD)"
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = fmt.Sprintf("%s (n=%d)", g.Label, len(g.Values))
		if len(g.Values) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, err
		}
		b.FillColor = plotutil.Color(i)
		p.Add(b)
	}
	p.NominalX(names...)
	return p, nil
}

// scatterFit draws y against x and, when fit is set, the fitted line.
func scatterFit(title, xlabel, ylabel string, x, y []float64, fit *analysis.RegressionResult) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	sc, err := plotter.NewScatter(pairs(x, y))
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(1.5)
	sc.GlyphStyle.Color = plotutil.Color(0)
	p.Add(sc)
	if fit != nil {
		line := plotter.NewFunction(func(x float64) float64 { return fit.Intercept + fit.Slope*x })
		line.Color = plotutil.Color(1)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("y = %.2f + %.4f·x", fit.Intercept, fit.Slope), line)
		p.Legend.Top = true
	}
	return p, nil
}

func titleWithP(title string, pval float64) string {
	return fmt.Sprintf("%s (Welch p = %.3g)", title, pval)
}

func pairs(x, y []float64) plotter.XYs {
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i].X = x[i]
		xys[i].Y = y[i]
	}
	return xys
}
