package foresight

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// ReturnProfile describes how an annual rate is drawn, one draw per simulated
// year. A nil profile always yields zero. The same union serves asset
// returns, cash interest and inflation.
type ReturnProfile interface{ returnProfile() }

// FixedReturn yields the same rate every year.
type FixedReturn float64

// NormalReturn draws from a normal distribution.
type NormalReturn struct {
	Mean   float64
	StdDev float64
}

// LogNormalReturn draws exp(N(Mean, StdDev)) - 1, so the growth factor is
// log-normally distributed and the rate never drops below -100%.
type LogNormalReturn struct {
	Mean   float64
	StdDev float64
}

// StudentTReturn draws Mean + Scale*t(Dof): fat tails capture extreme market
// years better than a normal. Dof around 4-6 fits equities.
type StudentTReturn struct {
	Mean  float64
	Scale float64
	Dof   float64
}

// RegimeSwitchingReturn is a two-state Markov chain over bull and bear
// sub-profiles, capturing the clustering of good and bad years. The chain
// starts in the bull state; after each year it switches with the given
// annual probability.
type RegimeSwitchingReturn struct {
	Bull       ReturnProfile
	Bear       ReturnProfile
	BullToBear float64
	BearToBull float64
}

// BootstrapReturn resamples a historical series. BlockSize > 1 draws
// contiguous blocks (preserving autocorrelation, circular wrap at the end of
// the series); otherwise years are drawn independently with replacement.
type BootstrapReturn struct {
	History   HistoricalSeries
	BlockSize int
}

func (FixedReturn) returnProfile()           {}
func (NormalReturn) returnProfile()          {}
func (LogNormalReturn) returnProfile()       {}
func (StudentTReturn) returnProfile()        {}
func (RegimeSwitchingReturn) returnProfile() {}
func (BootstrapReturn) returnProfile()       {}

// sampleReturn draws one annual rate. RegimeSwitching samples statelessly
// here, using its steady-state probabilities; sampleReturnSequence keeps the
// regime state across years.
func sampleReturn(p ReturnProfile, rng *rand.Rand) (float64, error) {
	switch v := p.(type) {
	case nil:
		return 0, nil
	case FixedReturn:
		return float64(v), nil
	case NormalReturn:
		if v.StdDev < 0 || math.IsNaN(v.StdDev) || math.IsInf(v.StdDev, 0) {
			return 0, fmt.Errorf("normal profile: std dev %v must be non-negative and finite", v.StdDev)
		}
		return v.Mean + v.StdDev*rng.NormFloat64(), nil
	case LogNormalReturn:
		if v.StdDev < 0 || math.IsNaN(v.StdDev) || math.IsInf(v.StdDev, 0) {
			return 0, fmt.Errorf("log-normal profile: std dev %v must be non-negative and finite", v.StdDev)
		}
		return math.Exp(v.Mean+v.StdDev*rng.NormFloat64()) - 1, nil
	case StudentTReturn:
		if v.Dof <= 0 || math.IsNaN(v.Dof) || math.IsInf(v.Dof, 0) {
			return 0, fmt.Errorf("student-t profile: degrees of freedom %v must be positive and finite", v.Dof)
		}
		return v.Mean + v.Scale*studentT(rng, v.Dof), nil
	case RegimeSwitchingReturn:
		total := v.BullToBear + v.BearToBull
		if total <= 0 {
			return 0, fmt.Errorf("regime-switching profile: transition probabilities must be positive")
		}
		// steady state: P(bull) = bearToBull / (bullToBear + bearToBull)
		if rng.Float64() < v.BearToBull/total {
			return sampleReturn(v.Bull, rng)
		}
		return sampleReturn(v.Bear, rng)
	case BootstrapReturn:
		r, ok := v.History.sample(rng)
		if !ok {
			return 0, fmt.Errorf("bootstrap profile %q: historical series is empty", v.History.Name)
		}
		return r, nil
	}
	return 0, fmt.Errorf("unknown return profile %T", p)
}

// sampleReturnSequence draws n annual rates, one per simulated year.
func sampleReturnSequence(p ReturnProfile, rng *rand.Rand, n int) ([]float64, error) {
	switch v := p.(type) {
	case RegimeSwitchingReturn:
		if v.BullToBear+v.BearToBull <= 0 {
			return nil, fmt.Errorf("regime-switching profile: transition probabilities must be positive")
		}
		out := make([]float64, 0, n)
		inBull := true // markets are assumed bullish at the start
		for i := 0; i < n; i++ {
			src := v.Bear
			if inBull {
				src = v.Bull
			}
			r, err := sampleReturn(src, rng)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
			p := v.BearToBull
			if inBull {
				p = v.BullToBear
			}
			if rng.Float64() < p {
				inBull = !inBull
			}
		}
		return out, nil
	case BootstrapReturn:
		if v.BlockSize > 1 {
			out, ok := v.History.blockBootstrap(rng, n, v.BlockSize)
			if !ok {
				return nil, fmt.Errorf("bootstrap profile %q: historical series is empty", v.History.Name)
			}
			return out, nil
		}
		out, ok := v.History.sampleYears(rng, n)
		if !ok {
			return nil, fmt.Errorf("bootstrap profile %q: historical series is empty", v.History.Name)
		}
		return out, nil
	default:
		out := make([]float64, 0, n)
		for i := 0; i < n; i++ {
			r, err := sampleReturn(p, rng)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}
}

// studentT draws from Student's t distribution with df degrees of freedom
// using Bailey's polar method.
func studentT(rng *rand.Rand, df float64) float64 {
	for {
		u := 2*rng.Float64() - 1
		v := 2*rng.Float64() - 1
		w := u*u + v*v
		if w > 0 && w <= 1 {
			return u * math.Sqrt(df*(math.Pow(w, -2/df)-1)/w)
		}
	}
}
