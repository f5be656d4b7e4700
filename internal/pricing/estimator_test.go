package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_AppleNewElectronics(t *testing.T) {
	res, err := Default.Estimate(Request{
		Brand:         "Apple",
		Condition:     "全新",
		OriginalPrice: 10000,
		UsageDuration: 0,
		Category:      "电子产品",
	})
	require.NoError(t, err)

	assert.Equal(t, 9.5, res.Factors.BrandValue)
	assert.Equal(t, 9.8, res.Factors.ConditionScore)
	assert.Equal(t, 8.5, res.Factors.MarketDemand)
	assert.Equal(t, 9.0, res.Factors.FunctionalityScore)
	assert.Equal(t, 0, res.Factors.UsageDuration)
	assert.InDelta(t, 0.98875, res.Factors.OverallScore, 1e-9)
	assert.Equal(t, 0.0, res.Depreciation)
	assert.Equal(t, BucketElectronics, res.Bucket)

	assert.InDelta(t, 9887.50, res.EstimatedPrice, 1e-9)
	assert.InDelta(t, 8898.75, res.PriceRange.Min, 1e-9)
	assert.InDelta(t, 10876.25, res.PriceRange.Max, 1e-9)
	assert.Equal(t, res.EstimatedPrice, res.PriceRange.Recommended)
}

func TestEstimate_Defaults(t *testing.T) {
	res, err := Default.Estimate(Request{
		Brand:         "Unbranded",
		Condition:     "还行",
		OriginalPrice: 200,
		UsageDuration: 2,
		Category:      "汽车用品",
	})
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.Factors.BrandValue)
	assert.Equal(t, 5.0, res.Factors.ConditionScore)
	assert.Equal(t, 5.0, res.Factors.MarketDemand)
	assert.Equal(t, BucketOther, res.Bucket)
	assert.InDelta(t, 0.15/12*2, res.Depreciation, 1e-12)
}

func TestEstimate_MatchingIsExact(t *testing.T) {
	assert.Equal(t, 5.0, Default.BrandValue("apple"))
	assert.Equal(t, 5.0, Default.BrandValue(" Apple"))
	assert.Equal(t, BucketOther, BucketFor("Electronics"))
}

func TestEstimate_ConditionAndCategoryAliases(t *testing.T) {
	zh, err := Default.Estimate(Request{Brand: "Sony", Condition: "九成新", OriginalPrice: 3000, UsageDuration: 8, Category: "电子产品"})
	require.NoError(t, err)
	en, err := Default.Estimate(Request{Brand: "Sony", Condition: "like-new-90", OriginalPrice: 3000, UsageDuration: 8, Category: "electronics"})
	require.NoError(t, err)

	if diff := cmp.Diff(zh, en); diff != "" {
		t.Errorf("alias result mismatch (-zh +en):\n%s", diff)
	}
}

func TestMarketDemand(t *testing.T) {
	tests := []struct {
		bucket Bucket
		brand  float64
		want   float64
	}{
		{BucketElectronics, 9.5, 8.5},
		{BucketElectronics, 8.0, 6.5},
		{BucketFurniture, 9.5, 6.0},
		{BucketClothing, 7.5, 7.5},
		{BucketClothing, 7.0, 5.5},
		{BucketBooks, 9.0, 5.0},
		{BucketOther, 9.0, 5.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarketDemand(tt.bucket, tt.brand), "bucket=%s brand=%.1f", tt.bucket, tt.brand)
	}
}

func TestFunctionalityScore_Thresholds(t *testing.T) {
	tests := map[int]float64{
		0:  9.0,
		6:  9.0,
		7:  8.5,
		12: 8.5,
		13: 7.8,
		24: 7.8,
		25: 6.5,
		90: 6.5,
	}
	for months, want := range tests {
		assert.Equal(t, want, FunctionalityScore(months), "months=%d", months)
	}
}

func TestDepreciationRate(t *testing.T) {
	assert.Equal(t, 0.8, Default.DepreciationRate(1000, BucketElectronics))
	assert.InDelta(t, 0.08, Default.DepreciationRate(12, BucketFurniture), 1e-12)
	assert.InDelta(t, 0.25, Default.DepreciationRate(12, BucketClothing), 1e-12)
	assert.InDelta(t, 0.40, Default.DepreciationRate(24, BucketBooks), 1e-12)
	assert.InDelta(t, 0.06, Default.DepreciationRate(6, BucketSports), 1e-12)
	assert.InDelta(t, 0.15, Default.DepreciationRate(12, BucketOther), 1e-12)
	assert.Equal(t, 0.8, Default.DepreciationRate(39, BucketClothing))
}

func TestEstimate_DepreciationCap(t *testing.T) {
	res, err := Default.Estimate(Request{Brand: "Apple", Condition: "全新", OriginalPrice: 10000, UsageDuration: 1000, Category: "电子产品"})
	require.NoError(t, err)
	assert.Equal(t, 0.8, res.Depreciation)
	assert.Greater(t, res.EstimatedPrice, 0.0)
}

func TestEstimate_PriceBandInvariant(t *testing.T) {
	brands := []string{"Apple", "HP", "Unbranded", "Herman Miller"}
	categories := []string{"电子产品", "家具家居", "服装配饰", "图书文具", "运动器材", "其他"}
	prices := []float64{0.01, 1, 99.99, 5000, 123456.78}

	for _, brand := range brands {
		for _, category := range categories {
			for _, cond := range Conditions {
				for _, price := range prices {
					for _, months := range []int{0, 5, 13, 40} {
						res, err := Default.Estimate(Request{
							Brand: brand, Condition: string(cond), OriginalPrice: price,
							UsageDuration: months, Category: category,
						})
						require.NoError(t, err)

						r := res.PriceRange
						assert.LessOrEqual(t, r.Min, r.Recommended)
						assert.LessOrEqual(t, r.Recommended, r.Max)
						assert.Equal(t, res.EstimatedPrice, r.Recommended)
						assert.InDelta(t, res.EstimatedPrice*0.9, r.Min, 0.005+1e-9)
						assert.InDelta(t, res.EstimatedPrice*1.1, r.Max, 0.005+1e-9)
						assert.GreaterOrEqual(t, res.EstimatedPrice, 0.0)
					}
				}
			}
		}
	}
}

func TestEstimate_MonotonicInUsage(t *testing.T) {
	for _, category := range []string{"电子产品", "家具家居", "服装配饰", "未知"} {
		prev := -1.0
		for months := 0; months <= 120; months++ {
			res, err := Default.Estimate(Request{
				Brand: "Nike", Condition: "八成新", OriginalPrice: 1999, UsageDuration: months, Category: category,
			})
			require.NoError(t, err)
			if prev >= 0 {
				assert.LessOrEqual(t, res.EstimatedPrice, prev, "category=%s months=%d", category, months)
			}
			prev = res.EstimatedPrice
		}
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	req := Request{Brand: "Canon", Condition: "七成新", OriginalPrice: 8999, UsageDuration: 30, Category: "电子产品"}

	first, err := Default.Estimate(req)
	require.NoError(t, err)
	second, err := Default.Estimate(req)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeat estimate differs (-first +second):\n%s", diff)
	}
}

func TestEstimate_ConcurrentCallers(t *testing.T) {
	req := Request{Brand: "Xiaomi", Condition: "六成新", OriginalPrice: 1299, UsageDuration: 18, Category: "电子产品"}
	want, err := Default.Estimate(req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Default.Estimate(req)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEstimate_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"zero price", Request{OriginalPrice: 0}, "originalPrice"},
		{"negative price", Request{OriginalPrice: -10}, "originalPrice"},
		{"negative usage", Request{OriginalPrice: 10, UsageDuration: -1}, "usageDuration"},
		{"price too large", Request{OriginalPrice: 1e307}, "originalPrice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Default.Estimate(tt.req)
			assert.Nil(t, res)

			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestInput_Request(t *testing.T) {
	t.Run("numbers and numeric strings", func(t *testing.T) {
		var in Input
		require.NoError(t, json.Unmarshal([]byte(`{"brand":"Apple","condition":"全新","originalPrice":"10000","usageDuration":3,"category":"电子产品"}`), &in))

		req, err := in.Request()
		require.NoError(t, err)
		assert.Equal(t, Request{Brand: "Apple", Condition: "全新", OriginalPrice: 10000, UsageDuration: 3, Category: "电子产品"}, req)
	})

	tests := []struct {
		name   string
		in     Input
		field  string
		reason string
	}{
		{"missing price", Input{UsageDuration: "1"}, "originalPrice", "is required"},
		{"missing usage", Input{OriginalPrice: "100"}, "usageDuration", "is required"},
		{"non-numeric price", Input{OriginalPrice: "abc", UsageDuration: "1"}, "originalPrice", "must be a number"},
		{"fractional usage", Input{OriginalPrice: "100", UsageDuration: "3.5"}, "usageDuration", "must be a whole number of months"},
		{"non-positive price", Input{OriginalPrice: "0", UsageDuration: "3"}, "originalPrice", "must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Request()

			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, tt.reason, invalid.Reason)
		})
	}
}

func TestInput_Request_KeepsLabelsVerbatim(t *testing.T) {
	var in Input
	require.NoError(t, json.Unmarshal([]byte(`{"brand":" Apple ","condition":"全新","originalPrice":10000,"usageDuration":0,"category":"电子产品 "}`), &in))

	req, err := in.Request()
	require.NoError(t, err)
	assert.Equal(t, " Apple ", req.Brand)
	assert.Equal(t, "电子产品 ", req.Category)

	res, err := Default.Estimate(req)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Factors.BrandValue)
	assert.Equal(t, 5.0, res.Factors.MarketDemand)
	assert.Equal(t, BucketOther, res.Bucket)
}

func TestEstimate_LargestPriceStaysFinite(t *testing.T) {
	res, err := Default.Estimate(Request{Brand: "Apple", Condition: "全新", OriginalPrice: MaxOriginalPrice, Category: "电子产品"})
	require.NoError(t, err)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
	assert.False(t, math.IsInf(res.EstimatedPrice, 0))
}

func TestResult_JSONShape(t *testing.T) {
	res, err := Default.Estimate(Request{Brand: "IKEA", Condition: "八成新", OriginalPrice: 1500, UsageDuration: 10, Category: "家具家居"})
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.ElementsMatch(t, []string{"aiEstimatedPrice", "priceRange", "factors", "explanation"}, keys(decoded))
	assert.ElementsMatch(t,
		[]string{"brandValue", "marketDemand", "conditionScore", "usageDuration", "functionalityScore", "overallScore"},
		keys(decoded["factors"].(map[string]any)))
	assert.ElementsMatch(t, []string{"min", "max", "recommended"}, keys(decoded["priceRange"].(map[string]any)))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestLoadTables(t *testing.T) {
	t.Run("empty path keeps defaults", func(t *testing.T) {
		tables, err := LoadTables("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTables(), tables)
	})

	t.Run("overrides merge over defaults", func(t *testing.T) {
		path := writeYAML(t, `
brands:
  Apple: 9.0
  Meizu: 5.5
conditions:
  new: 9.9
depreciation:
  electronics: 0.3
`)
		tables, err := LoadTables(path)
		require.NoError(t, err)

		e := NewEstimator(tables)
		assert.Equal(t, 9.0, e.BrandValue("Apple"))
		assert.Equal(t, 5.5, e.BrandValue("Meizu"))
		assert.Equal(t, 7.8, e.BrandValue("Samsung"))
		assert.Equal(t, 9.9, e.ConditionScore("全新"))
		assert.InDelta(t, 0.3, e.DepreciationRate(12, BucketElectronics), 1e-12)

		assert.Equal(t, 9.5, Default.BrandValue("Apple"))
	})

	t.Run("rejects bad values", func(t *testing.T) {
		for _, doc := range []string{
			"brands:\n  Apple: 11\n",
			"conditions:\n  崭新: 9\n",
			"depreciation:\n  toys: 0.1\n",
			"depreciation:\n  books: 1.5\n",
			"brands: [",
		} {
			_, err := LoadTables(writeYAML(t, doc))
			assert.Error(t, err, doc)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTables(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func writeYAML(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 96.5, Accuracy(8500, 8200))
	assert.Equal(t, 100.0, Accuracy(1000, 1000))
	assert.Equal(t, 0.0, Accuracy(100, 300))
	assert.Equal(t, 0.0, Accuracy(0, 300))
}
