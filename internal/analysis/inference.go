package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConfidenceLevel is used for every interval reported.
const ConfidenceLevel = 0.95

var (
	ErrTooFewObservations = errors.New("too few observations")
	ErrConstantInput      = errors.New("constant input")
	ErrLengthMismatch     = errors.New("vectors differ in length")
)

// Interval is a two-sided confidence interval. Both ends are NaN when the
// interval is undefined.
type Interval struct {
	Low  float64
	High float64
}

// TwoSampleResult is the outcome of a two-sample Welch t-test.
type TwoSampleResult struct {
	N1, N2       int
	Mean1, Mean2 float64
	T            float64
	DoF          float64
	P            float64
	// CI bounds the difference Mean1 - Mean2.
	CI Interval
}

// WelchTTest compares the means of x and y without assuming equal
// variances. The alternative is two-sided.
func WelchTTest(x, y []float64) (*TwoSampleResult, error) {
	if len(x) < 2 || len(y) < 2 {
		return nil, fmt.Errorf("welch t-test: %w (n1=%d, n2=%d)", ErrTooFewObservations, len(x), len(y))
	}
	if constant(x) && constant(y) {
		return nil, fmt.Errorf("welch t-test: %w", ErrConstantInput)
	}
	s1, s2 := &stats.Sample{Xs: x}, &stats.Sample{Xs: y}
	res, err := stats.TwoSampleWelchTTest(s1, s2, stats.LocationDiffers)
	if err != nil {
		return nil, fmt.Errorf("welch t-test: %w", mapStatsErr(err))
	}
	se := math.Sqrt(s1.Variance()/float64(len(x)) + s2.Variance()/float64(len(y)))
	diff := s1.Mean() - s2.Mean()
	return &TwoSampleResult{
		N1:    len(x),
		N2:    len(y),
		Mean1: s1.Mean(),
		Mean2: s2.Mean(),
		T:     res.T,
		DoF:   res.DoF,
		P:     clampP(res.P),
		CI:    tInterval(diff, se, res.DoF),
	}, nil
}

// OneSampleResult is the outcome of a one-sample t-test.
type OneSampleResult struct {
	N    int
	Mean float64
	Mu0  float64
	T    float64
	DoF  float64
	P    float64
	// CI bounds the population mean.
	CI Interval
}

// OneSampleTTest compares the mean of x against mu0, two-sided.
func OneSampleTTest(x []float64, mu0 float64) (*OneSampleResult, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("one-sample t-test: %w (n=%d)", ErrTooFewObservations, len(x))
	}
	if constant(x) {
		return nil, fmt.Errorf("one-sample t-test: %w", ErrConstantInput)
	}
	s := &stats.Sample{Xs: x}
	res, err := stats.OneSampleTTest(s, mu0, stats.LocationDiffers)
	if err != nil {
		return nil, fmt.Errorf("one-sample t-test: %w", mapStatsErr(err))
	}
	se := math.Sqrt(s.Variance() / float64(len(x)))
	return &OneSampleResult{
		N:    len(x),
		Mean: s.Mean(),
		Mu0:  mu0,
		T:    res.T,
		DoF:  res.DoF,
		P:    clampP(res.P),
		CI:   tInterval(s.Mean(), se, res.DoF),
	}, nil
}

// CorrelationResult is a Pearson correlation with its significance test.
type CorrelationResult struct {
	N   int
	R   float64
	T   float64
	DoF int
	P   float64
	// CI is the Fisher z interval for R; undefined for n <= 3.
	CI Interval
}

// Pearson computes the linear correlation of x and y and tests r = 0.
func Pearson(x, y []float64) (*CorrelationResult, error) {
	if err := checkPaired("pearson correlation", x, y); err != nil {
		return nil, err
	}
	n := len(x)
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return nil, fmt.Errorf("pearson correlation: %w", ErrConstantInput)
	}
	r = math.Max(-1, math.Min(1, r))
	res := &CorrelationResult{N: n, R: r, DoF: n - 2, CI: Interval{math.NaN(), math.NaN()}}
	if math.Abs(r) == 1 {
		res.T = math.Copysign(math.Inf(1), r)
	} else {
		res.T = r * math.Sqrt(float64(res.DoF)/(1-r*r))
		res.P = twoSidedT(res.T, float64(res.DoF))
	}
	if n > 3 {
		z := math.Atanh(r)
		half := distuv.UnitNormal.Quantile(1-(1-ConfidenceLevel)/2) / math.Sqrt(float64(n-3))
		res.CI = Interval{Low: math.Tanh(z - half), High: math.Tanh(z + half)}
	}
	return res, nil
}

// RegressionResult is an ordinary least squares fit of y = Intercept + Slope*x.
type RegressionResult struct {
	N           int
	Intercept   float64
	Slope       float64
	InterceptSE float64
	SlopeSE     float64
	// T and P test Slope = 0.
	T           float64
	P           float64
	DoF         int
	RSquared    float64
	AdjRSquared float64
	ResidualSE  float64
	F           float64
}

// Regress fits a simple linear regression of y on x.
func Regress(x, y []float64) (*RegressionResult, error) {
	if err := checkPaired("linear regression", x, y); err != nil {
		return nil, err
	}
	n := len(x)
	intercept, slope := stat.LinearRegression(x, y, nil, false)
	mx := stat.Mean(x, nil)
	var sxx, sse float64
	for i := range x {
		dx := x[i] - mx
		sxx += dx * dx
		e := y[i] - intercept - slope*x[i]
		sse += e * e
	}
	df := n - 2
	mse := sse / float64(df)
	res := &RegressionResult{
		N:           n,
		Intercept:   intercept,
		Slope:       slope,
		DoF:         df,
		SlopeSE:     math.Sqrt(mse / sxx),
		InterceptSE: math.Sqrt(mse * (1/float64(n) + mx*mx/sxx)),
		ResidualSE:  math.Sqrt(mse),
		RSquared:    stat.RSquared(x, y, nil, intercept, slope),
	}
	res.AdjRSquared = 1 - (1-res.RSquared)*float64(n-1)/float64(df)
	if res.SlopeSE == 0 {
		res.T = math.Copysign(math.Inf(1), slope)
	} else {
		res.T = slope / res.SlopeSE
		res.P = twoSidedT(res.T, float64(df))
	}
	res.F = res.T * res.T
	return res, nil
}

// Group is one level of a grouping factor.
type Group struct {
	Label  string
	Values []float64
}

// GroupStat summarizes one group of an ANOVA.
type GroupStat struct {
	Label string
	N     int
	Mean  float64
	SD    float64
}

// ANOVAResult is a one-way analysis of variance.
type ANOVAResult struct {
	Groups    []GroupStat
	DFBetween int
	DFWithin  int
	SSBetween float64
	SSWithin  float64
	MSBetween float64
	MSWithin  float64
	F         float64
	P         float64
}

// OneWayANOVA tests that all group means are equal, assuming equal
// variances. Empty groups are ignored.
func OneWayANOVA(groups []Group) (*ANOVAResult, error) {
	var kept []Group
	var total float64
	var n int
	for _, g := range groups {
		if len(g.Values) == 0 {
			continue
		}
		kept = append(kept, g)
		for _, v := range g.Values {
			total += v
		}
		n += len(g.Values)
	}
	k := len(kept)
	if k < 2 || n-k < 1 {
		return nil, fmt.Errorf("one-way anova: %w (groups=%d, n=%d)", ErrTooFewObservations, k, n)
	}
	grand := total / float64(n)
	res := &ANOVAResult{DFBetween: k - 1, DFWithin: n - k}
	for _, g := range kept {
		m := stat.Mean(g.Values, nil)
		var ss float64
		for _, v := range g.Values {
			ss += (v - m) * (v - m)
		}
		gs := GroupStat{Label: g.Label, N: len(g.Values), Mean: m}
		if len(g.Values) > 1 {
			gs.SD = math.Sqrt(ss / float64(len(g.Values)-1))
		}
		res.Groups = append(res.Groups, gs)
		res.SSBetween += float64(len(g.Values)) * (m - grand) * (m - grand)
		res.SSWithin += ss
	}
	if res.SSWithin == 0 {
		return nil, fmt.Errorf("one-way anova: %w (zero within-group variance)", ErrConstantInput)
	}
	res.MSBetween = res.SSBetween / float64(res.DFBetween)
	res.MSWithin = res.SSWithin / float64(res.DFWithin)
	res.F = res.MSBetween / res.MSWithin
	d1, d2 := float64(res.DFBetween), float64(res.DFWithin)
	res.P = clampP(mathext.RegIncBeta(d2/2, d1/2, d2/(d2+d1*res.F)))
	return res, nil
}

func checkPaired(name string, x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%s: %w (%d vs %d)", name, ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 3 {
		return fmt.Errorf("%s: %w (n=%d)", name, ErrTooFewObservations, len(x))
	}
	if constant(x) || constant(y) {
		return fmt.Errorf("%s: %w", name, ErrConstantInput)
	}
	return nil
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}

// twoSidedT returns P(|T| >= |t|) for Student's t with df degrees of freedom.
func twoSidedT(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clampP(2 * dist.CDF(-math.Abs(t)))
}

func tInterval(center, se, df float64) Interval {
	q := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - (1-ConfidenceLevel)/2)
	return Interval{Low: center - q*se, High: center + q*se}
}

func clampP(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}

func mapStatsErr(err error) error {
	switch {
	case errors.Is(err, stats.ErrZeroVariance):
		return fmt.Errorf("%w: %w", ErrConstantInput, err)
	case errors.Is(err, stats.ErrSampleSize):
		return fmt.Errorf("%w: %w", ErrTooFewObservations, err)
	}
	return err
}
