package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Condition is a wear grade label as shown to sellers.
type Condition string

const (
	ConditionNew    Condition = "全新"
	ConditionLike90 Condition = "九成新"
	ConditionLike80 Condition = "八成新"
	ConditionFair70 Condition = "七成新"
	ConditionWorn60 Condition = "六成新"
)

// Conditions lists the grades from new to worn.
var Conditions = []Condition{
	ConditionNew,
	ConditionLike90,
	ConditionLike80,
	ConditionFair70,
	ConditionWorn60,
}

// conditionAliases maps the ASCII slugs accepted by the API to the canonical labels.
var conditionAliases = map[string]Condition{
	"new":         ConditionNew,
	"like-new-90": ConditionLike90,
	"like-new-80": ConditionLike80,
	"fair-70":     ConditionFair70,
	"worn-60":     ConditionWorn60,
}

// CanonicalCondition returns the canonical label for a grade or slug.
// Unknown values are returned unchanged.
func CanonicalCondition(s string) Condition {
	if c, ok := conditionAliases[s]; ok {
		return c
	}
	return Condition(s)
}

// IsKnownCondition reports whether s is one of the five grades (label or slug).
func IsKnownCondition(s string) bool {
	c := CanonicalCondition(s)
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Bucket selects the depreciation rate and the demand rule of a category.
type Bucket string

const (
	BucketElectronics Bucket = "electronics"
	BucketFurniture   Bucket = "furniture"
	BucketClothing    Bucket = "clothing"
	BucketBooks       Bucket = "books"
	BucketSports      Bucket = "sports"
	BucketOther       Bucket = "other"
)

var categoryBuckets = map[string]Bucket{
	"电子产品":        BucketElectronics,
	"electronics": BucketElectronics,
	"家具家居":        BucketFurniture,
	"furniture":   BucketFurniture,
	"服装配饰":        BucketClothing,
	"clothing":    BucketClothing,
	"图书文具":        BucketBooks,
	"books":       BucketBooks,
	"运动器材":        BucketSports,
	"sports":      BucketSports,
}

// BucketFor maps a category name to its bucket. Matching is exact.
func BucketFor(category string) Bucket {
	if b, ok := categoryBuckets[category]; ok {
		return b
	}
	return BucketOther
}

const (
	defaultBrandValue       = 5.0
	defaultConditionScore   = 5.0
	defaultDepreciationRate = 0.15
	maxDepreciation         = 0.80
)

// Tables holds the lookup tables the estimator reads. A Tables value must not be
// modified once handed to NewEstimator.
type Tables struct {
	Brands       map[string]float64    `yaml:"brands"`
	Conditions   map[Condition]float64 `yaml:"conditions"`
	Depreciation map[Bucket]float64    `yaml:"depreciation"`
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Brands: map[string]float64{
			"Apple":         9.5,
			"Samsung":       7.8,
			"Huawei":        7.0,
			"Xiaomi":        5.8,
			"OnePlus":       6.5,
			"Google":        7.2,
			"Sony":          8.2,
			"Canon":         8.5,
			"Nikon":         8.2,
			"Nintendo":      8.0,
			"Microsoft":     8.2,
			"Dell":          6.5,
			"HP":            4.5,
			"Lenovo":        7.2,
			"IKEA":          6.0,
			"Herman Miller": 8.8,
			"Nike":          7.5,
			"Adidas":        7.3,
			"Coach":         8.0,
			"Levi's":        6.8,
		},
		Conditions: map[Condition]float64{
			ConditionNew:    9.8,
			ConditionLike90: 8.5,
			ConditionLike80: 7.2,
			ConditionFair70: 5.8,
			ConditionWorn60: 4.5,
		},
		Depreciation: map[Bucket]float64{
			BucketElectronics: 0.15,
			BucketFurniture:   0.08,
			BucketClothing:    0.25,
			BucketBooks:       0.20,
			BucketSports:      0.12,
		},
	}
}

// LoadTables reads a YAML file and merges its entries over the defaults.
// An empty path returns the defaults.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read pricing tables: %w", err)
	}

	var overrides Tables
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Tables{}, fmt.Errorf("parse pricing tables: %w", err)
	}

	for brand, v := range overrides.Brands {
		if v < 0 || v > 10 {
			return Tables{}, fmt.Errorf("brand %q: score %.2f out of range [0,10]", brand, v)
		}
		tables.Brands[brand] = v
	}
	for label, v := range overrides.Conditions {
		c := CanonicalCondition(string(label))
		if !IsKnownCondition(string(c)) {
			return Tables{}, fmt.Errorf("unknown condition %q", label)
		}
		if v < 0 || v > 10 {
			return Tables{}, fmt.Errorf("condition %q: score %.2f out of range [0,10]", label, v)
		}
		tables.Conditions[c] = v
	}
	for bucket, v := range overrides.Depreciation {
		if _, ok := tables.Depreciation[bucket]; !ok {
			return Tables{}, fmt.Errorf("unknown category bucket %q", bucket)
		}
		if v <= 0 || v >= 1 {
			return Tables{}, fmt.Errorf("bucket %q: yearly rate %.2f out of range (0,1)", bucket, v)
		}
		tables.Depreciation[bucket] = v
	}

	return tables, nil
}
