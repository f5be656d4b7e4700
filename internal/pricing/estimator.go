// Package pricing implements the heuristic second-hand price estimator.
//
// The estimator scores a listing on brand value, condition, market demand and
// functionality, applies a category-dependent depreciation for the months the
// item has been used, and produces an estimated price, a ±10% negotiation band
// and a human-readable explanation. It keeps no state between calls and is safe
// for concurrent use.
package pricing

import (
	"math"
)

// Request describes the listing to be priced.
type Request struct {
	Brand         string
	Condition     string
	OriginalPrice float64
	UsageDuration int // months
	Category      string
}

// PriceRange is the suggested negotiation band around the estimate.
type PriceRange struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Recommended float64 `json:"recommended"`
}

// Factors are the per-factor scores behind an estimate.
type Factors struct {
	BrandValue         float64 `json:"brandValue"`
	MarketDemand       float64 `json:"marketDemand"`
	ConditionScore     float64 `json:"conditionScore"`
	UsageDuration      int     `json:"usageDuration"`
	FunctionalityScore float64 `json:"functionalityScore"`
	OverallScore       float64 `json:"overallScore"`
}

// Result is the output of Estimate.
type Result struct {
	EstimatedPrice float64    `json:"aiEstimatedPrice"`
	PriceRange     PriceRange `json:"priceRange"`
	Factors        Factors    `json:"factors"`
	Explanation    string     `json:"explanation"`

	Bucket       Bucket  `json:"-"`
	Depreciation float64 `json:"-"`
}

// Estimator computes price estimates from a fixed set of lookup tables.
type Estimator struct {
	tables Tables
}

// NewEstimator returns an estimator reading the given tables.
func NewEstimator(tables Tables) *Estimator {
	return &Estimator{tables: tables}
}

// Default is an estimator over the built-in tables.
var Default = NewEstimator(DefaultTables())

// Estimate prices a listing. It returns an *InvalidInputError when the original
// price is not a positive finite number or the usage duration is negative.
// Unknown brands, conditions and categories fall back to default scores.
func (e *Estimator) Estimate(req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	bucket := BucketFor(req.Category)
	brandValue := e.BrandValue(req.Brand)
	conditionScore := e.ConditionScore(req.Condition)
	marketDemand := MarketDemand(bucket, brandValue)
	functionality := FunctionalityScore(req.UsageDuration)
	depreciation := e.DepreciationRate(req.UsageDuration, bucket)

	brandMultiplier := brandValue / 10 * 1.2
	conditionMultiplier := conditionScore / 10
	demandMultiplier := marketDemand / 10 * 1.1
	functionalityMultiplier := functionality / 10

	overall := (brandMultiplier + conditionMultiplier + demandMultiplier + functionalityMultiplier) / 4

	basePrice := req.OriginalPrice * (1 - depreciation)
	estimated := round2(basePrice * overall)

	factors := Factors{
		BrandValue:         brandValue,
		MarketDemand:       marketDemand,
		ConditionScore:     conditionScore,
		UsageDuration:      req.UsageDuration,
		FunctionalityScore: functionality,
		OverallScore:       overall,
	}

	return &Result{
		EstimatedPrice: estimated,
		PriceRange: PriceRange{
			Min:         round2(estimated * 0.9),
			Max:         round2(estimated * 1.1),
			Recommended: estimated,
		},
		Factors:      factors,
		Explanation:  Explain(factors, estimated, req.OriginalPrice),
		Bucket:       bucket,
		Depreciation: depreciation,
	}, nil
}

// BrandValue looks up a brand score; unknown brands score 5.0.
func (e *Estimator) BrandValue(brand string) float64 {
	if v, ok := e.tables.Brands[brand]; ok {
		return v
	}
	return defaultBrandValue
}

// ConditionScore looks up a condition score; unknown grades score 5.0.
func (e *Estimator) ConditionScore(condition string) float64 {
	if v, ok := e.tables.Conditions[CanonicalCondition(condition)]; ok {
		return v
	}
	return defaultConditionScore
}

// DepreciationRate is the fraction of the original price lost after the given
// number of months, capped at 80%.
func (e *Estimator) DepreciationRate(months int, bucket Bucket) float64 {
	yearly, ok := e.tables.Depreciation[bucket]
	if !ok {
		yearly = defaultDepreciationRate
	}
	monthly := yearly / 12
	return math.Min(monthly*float64(months), maxDepreciation)
}

// MarketDemand scores how easily items of a bucket sell.
func MarketDemand(bucket Bucket, brandValue float64) float64 {
	switch bucket {
	case BucketElectronics:
		if brandValue > 8 {
			return 8.5
		}
		return 6.5
	case BucketFurniture:
		return 6.0
	case BucketClothing:
		if brandValue > 7 {
			return 7.5
		}
		return 5.5
	default:
		return 5.0
	}
}

// FunctionalityScore degrades with the months of use.
func FunctionalityScore(months int) float64 {
	switch {
	case months > 24:
		return 6.5
	case months > 12:
		return 7.8
	case months > 6:
		return 8.5
	default:
		return 9.0
	}
}

func (r Request) validate() error {
	if math.IsNaN(r.OriginalPrice) || math.IsInf(r.OriginalPrice, 0) {
		return &InvalidInputError{Field: "originalPrice", Reason: "must be a finite number"}
	}
	if r.OriginalPrice <= 0 {
		return &InvalidInputError{Field: "originalPrice", Reason: "must be greater than 0"}
	}
	if r.OriginalPrice > MaxOriginalPrice {
		return &InvalidInputError{Field: "originalPrice", Reason: "must not exceed 1000000000"}
	}
	if r.UsageDuration < 0 {
		return &InvalidInputError{Field: "usageDuration", Reason: "must not be negative"}
	}
	return nil
}

// MaxOriginalPrice bounds originalPrice so every derived amount stays finite
// and representable to the cent.
const MaxOriginalPrice = 1e9

// roundHalfUp rounds half toward positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func round2(v float64) float64 {
	return roundHalfUp(v*100) / 100
}
