package analysis

import (
	"fmt"

	"github.com/KaramelBytes/bnbeda/internal/listings"
)

// DefaultBenchmark is the nightly price the one-sample test compares against.
const DefaultBenchmark = 150.0

// Relationship pairs a correlation with the matching regression fit.
type Relationship struct {
	Correlation *CorrelationResult
	Regression  *RegressionResult
}

// Findings holds the results of the seven questions, in order.
type Findings struct {
	// Q1: Manhattan vs Brooklyn price.
	BoroughPrice *TwoSampleResult
	// Q2: entire home vs private room price.
	RoomTypePrice *TwoSampleResult
	// Q3: number_of_reviews vs availability_365.
	ReviewsAvailability *CorrelationResult
	// Q4: mean price vs benchmark.
	Benchmark *OneSampleResult
	// Q5: price ~ number_of_reviews.
	ReviewsPrice Relationship
	// Q6: price ~ availability_365.
	AvailabilityPrice Relationship
	// Q7: price by room type.
	RoomTypeANOVA *ANOVAResult
}

// RunQuestions runs the seven tests against the cleaned table. The first
// failing test aborts the run.
func RunQuestions(t *listings.Table, benchmark float64) (*Findings, error) {
	f := &Findings{}
	var err error

	manhattan := t.Where(listings.ColBorough, listings.Manhattan).Prices()
	brooklyn := t.Where(listings.ColBorough, listings.Brooklyn).Prices()
	if f.BoroughPrice, err = WelchTTest(manhattan, brooklyn); err != nil {
		return nil, fmt.Errorf("question 1 (Manhattan vs Brooklyn price): %w", err)
	}

	entire := t.Where(listings.ColRoomType, listings.EntireHome).Prices()
	private := t.Where(listings.ColRoomType, listings.PrivateRoom).Prices()
	if f.RoomTypePrice, err = WelchTTest(entire, private); err != nil {
		return nil, fmt.Errorf("question 2 (entire home vs private room price): %w", err)
	}

	reviews := t.Floats(listings.ColReviews)
	availability := t.Floats(listings.ColAvailability)
	prices := t.Prices()
	if f.ReviewsAvailability, err = Pearson(reviews, availability); err != nil {
		return nil, fmt.Errorf("question 3 (reviews vs availability): %w", err)
	}

	if f.Benchmark, err = OneSampleTTest(prices, benchmark); err != nil {
		return nil, fmt.Errorf("question 4 (price vs benchmark %.2f): %w", benchmark, err)
	}

	if f.ReviewsPrice, err = relate(reviews, prices); err != nil {
		return nil, fmt.Errorf("question 5 (price ~ number_of_reviews): %w", err)
	}
	if f.AvailabilityPrice, err = relate(availability, prices); err != nil {
		return nil, fmt.Errorf("question 6 (price ~ availability_365): %w", err)
	}

	var groups []Group
	for _, v := range t.RoomTypeSubsets() {
		groups = append(groups, Group{Label: v.Label, Values: v.Prices()})
	}
	if f.RoomTypeANOVA, err = OneWayANOVA(groups); err != nil {
		return nil, fmt.Errorf("question 7 (price by room type): %w", err)
	}
	return f, nil
}

func relate(x, y []float64) (Relationship, error) {
	c, err := Pearson(x, y)
	if err != nil {
		return Relationship{}, err
	}
	r, err := Regress(x, y)
	if err != nil {
		return Relationship{}, err
	}
	return Relationship{Correlation: c, Regression: r}, nil
}
