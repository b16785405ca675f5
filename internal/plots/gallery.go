// Package plots builds the descriptive and test figures and writes them
// to disk.
package plots

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KaramelBytes/bnbeda/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Figure names. Files are written as <name>.<format>.
const (
	BoroughCounts               = "borough_counts"
	RoomTypeCounts              = "room_type_counts"
	MinimumNightsHistogram      = "minimum_nights_histogram"
	PriceHistogram              = "price_histogram"
	LocationScatter             = "location_scatter"
	EntireHomePriceHistogram    = "entire_home_price_histogram"
	PrivateRoomPriceHistogram   = "private_room_price_histogram"
	SharedRoomPriceHistogram    = "shared_room_price_histogram"
	RoomTypeLocationScatter     = "room_type_location_scatter"
	BoroughPriceBoxplot         = "borough_price_boxplot"
	RoomTypePriceBoxplot        = "room_type_price_boxplot"
	ReviewsAvailabilityScatter  = "reviews_availability_scatter"
	PriceReviewsRegression      = "price_reviews_regression"
	PriceAvailabilityRegression = "price_availability_regression"
	RoomTypeANOVA               = "room_type_anova"
)

// Names lists every figure in build order.
var Names = []string{
	BoroughCounts, RoomTypeCounts, MinimumNightsHistogram, PriceHistogram, LocationScatter,
	EntireHomePriceHistogram, PrivateRoomPriceHistogram, SharedRoomPriceHistogram, RoomTypeLocationScatter,
	BoroughPriceBoxplot, RoomTypePriceBoxplot, ReviewsAvailabilityScatter,
	PriceReviewsRegression, PriceAvailabilityRegression, RoomTypeANOVA,
}

// Options controls figure layout and export.
type Options struct {
	// Bins is the histogram bin count.
	Bins     int
	WidthIn  float64
	HeightIn float64
	// Format is the file extension: png, svg or pdf.
	Format string
}

// DefaultOptions returns 8x6 inch PNGs with 30-bin histograms.
func DefaultOptions() Options {
	return Options{Bins: 30, WidthIn: 8, HeightIn: 6, Format: "png"}
}

// Formats lists the supported export formats.
var Formats = []string{"png", "svg", "pdf"}

// Figure is a named plot.
type Figure struct {
	Name string
	Plot *plot.Plot
}

// Gallery is an ordered set of figures.
type Gallery struct {
	figures []Figure
}

// Add appends a figure.
func (g *Gallery) Add(name string, p *plot.Plot) {
	g.figures = append(g.figures, Figure{Name: name, Plot: p})
}

// Figures returns the figures in insertion order.
func (g *Gallery) Figures() []Figure {
	out := make([]Figure, len(g.figures))
	copy(out, g.figures)
	return out
}

// Len returns the number of figures.
func (g *Gallery) Len() int { return len(g.figures) }

// Export saves every figure into dir, creating it if needed, and returns
// the written file names.
func Export(dir string, g *Gallery, opt Options) ([]string, error) {
	def := DefaultOptions()
	format := strings.ToLower(strings.TrimPrefix(opt.Format, "."))
	if format == "" {
		format = def.Format
	}
	if !slices.Contains(Formats, format) {
		return nil, fmt.Errorf("unsupported plot format %q (use %s)", format, strings.Join(Formats, ", "))
	}
	if opt.WidthIn <= 0 || opt.HeightIn <= 0 {
		opt.WidthIn, opt.HeightIn = def.WidthIn, def.HeightIn
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	w := vg.Length(opt.WidthIn) * vg.Inch
	h := vg.Length(opt.HeightIn) * vg.Inch
	written := make([]string, 0, g.Len())
	for _, f := range g.figures {
		name := f.Name + "." + format
		if err := f.Plot.Save(w, h, filepath.Join(dir, name)); err != nil {
			return written, fmt.Errorf("save %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}
