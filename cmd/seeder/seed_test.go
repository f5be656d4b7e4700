package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ToaaMusic/ai-main/internal/pricing"
	"github.com/ToaaMusic/ai-main/internal/search"
)

func TestSeedData_Consistent(t *testing.T) {
	names := map[string]bool{}
	for _, root := range seedCategories {
		require.False(t, names[root.name], "duplicate category %s", root.name)
		names[root.name] = true
		for _, child := range root.children {
			require.False(t, names[child.name], "duplicate category %s", child.name)
			names[child.name] = true
		}
	}

	emails := map[string]bool{}
	for _, u := range seedUsers {
		require.False(t, emails[u.email], "duplicate email %s", u.email)
		emails[u.email] = true
	}

	for _, p := range seedProducts {
		assert.True(t, names[p.category], "%s: unknown category %s", p.title, p.category)
		assert.True(t, emails[p.seller], "%s: unknown seller %s", p.title, p.seller)
		assert.True(t, pricing.IsKnownCondition(p.condition), "%s: condition %s", p.title, p.condition)
		assert.Greater(t, p.userPrice, 0.0, p.title)
	}
}

func TestRootOf(t *testing.T) {
	root, ok := rootOf("手机")
	require.True(t, ok)
	assert.Equal(t, "电子产品", root)

	root, ok = rootOf("汽车用品")
	require.True(t, ok)
	assert.Equal(t, "汽车用品", root)

	_, ok = rootOf("不存在")
	assert.False(t, ok)
}

func TestPriceSeedProduct_UsesTopLevelCategory(t *testing.T) {
	p := seedProducts[0]
	res, err := priceSeedProduct(pricing.Default, p)
	require.NoError(t, err)

	direct, err := pricing.Default.Estimate(pricing.Request{
		Brand:         p.brand,
		Condition:     p.condition,
		OriginalPrice: p.originalPrice,
		UsageDuration: p.usageMonths,
		Category:      "电子产品",
	})
	require.NoError(t, err)
	assert.Equal(t, direct.EstimatedPrice, res.EstimatedPrice)
	assert.Equal(t, pricing.BucketElectronics, res.Bucket)

	_, err = priceSeedProduct(pricing.Default, seedProduct{category: "不存在", originalPrice: 1})
	assert.Error(t, err)
}

func TestDryRun_PrintsPlan(t *testing.T) {
	var out bytes.Buffer
	s := &seeder{out: &out, estimator: pricing.Default, indexer: search.NewIndexer(nil)}

	for _, run := range []step{seedCategoriesStep, seedUsersStep, seedProductsStep} {
		require.NoError(t, run(context.Background(), s))
	}

	text := out.String()
	assert.Equal(t, len(seedCategories)+len(seedUsers)+len(seedProducts), strings.Count(text, "[dry-run]"))
	assert.Contains(t, text, "[dry-run] category 电子产品 (5 sub-categories)")
	assert.Contains(t, text, "[dry-run] user zhangsan <zhangsan@qq.com>")
	assert.Contains(t, text, "[dry-run] product iPhone 14 Pro 256G 暗紫色")
}
