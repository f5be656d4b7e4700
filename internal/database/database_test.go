package database

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ToaaMusic/ai-main/internal/models"
)

func intPtr(v int) *int { return &v }

func TestPrependImage(t *testing.T) {
	kept, evicted := PrependImage([]string{"a", "b"}, "new", 5)
	assert.Equal(t, []string{"new", "a", "b"}, kept)
	assert.Empty(t, evicted)

	kept, evicted = PrependImage([]string{"a", "b", "c", "d", "e"}, "new", 5)
	assert.Equal(t, []string{"new", "a", "b", "c", "d"}, kept)
	assert.Equal(t, []string{"e"}, evicted)

	kept, evicted = PrependImage(nil, "only", 5)
	assert.Equal(t, []string{"only"}, kept)
	assert.Empty(t, evicted)
}

func TestProductOrderBy(t *testing.T) {
	tests := []struct {
		sortBy, sortOrder, want string
	}{
		{"", "", "p.created_at DESC, p.id DESC"},
		{"price", "asc", "p.user_price ASC, p.id ASC"},
		{"price", "ASC", "p.user_price ASC, p.id ASC"},
		{"createdAt", "desc", "p.created_at DESC, p.id DESC"},
		{"title; DROP TABLE products", "sideways", "p.created_at DESC, p.id DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, productOrderBy(tt.sortBy, tt.sortOrder), "%s/%s", tt.sortBy, tt.sortOrder)
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%iphone%", likePattern("iphone"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, likePattern(`c:\dir`))
}

func TestBuildCategoryTree(t *testing.T) {
	all := []models.Category{
		{ID: 1, Name: "电子产品"},
		{ID: 2, Name: "家具家居"},
		{ID: 3, Name: "手机", ParentID: intPtr(1)},
		{ID: 4, Name: "电脑", ParentID: intPtr(1)},
	}

	got := BuildCategoryTree(all)

	want := []models.Category{
		{ID: 1, Name: "电子产品", Children: []models.Category{
			{ID: 3, Name: "手机", ParentID: intPtr(1)},
			{ID: 4, Name: "电脑", ParentID: intPtr(1)},
		}},
		{ID: 2, Name: "家具家居", Children: []models.Category{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildCategoryTree mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewSummary(t *testing.T) {
	avg, n := ReviewSummary(nil)
	assert.Zero(t, avg)
	assert.Zero(t, n)

	avg, n = ReviewSummary([]models.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}})
	assert.Equal(t, 4.3, avg)
	assert.Equal(t, 3, n)
}

func TestPriceRangeLabel(t *testing.T) {
	tests := map[float64]string{
		0:       "0-500",
		499.99:  "0-500",
		500:     "500-1000",
		2999:    "1000-3000",
		3000:    "3000-5000",
		5000:    "5000+",
		1000000: "5000+",
	}
	for price, want := range tests {
		assert.Equal(t, want, PriceRangeLabel(price), "price=%v", price)
	}
}

func TestPriceRangeStats(t *testing.T) {
	got := PriceRangeStats(map[string]int{"0-500": 1, "5000+": 2}, 3)

	want := []models.PriceRangeStat{
		{Range: "0-500", Count: 1, Percentage: 33.3},
		{Range: "500-1000"},
		{Range: "1000-3000"},
		{Range: "3000-5000"},
		{Range: "5000+", Count: 2, Percentage: 66.7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PriceRangeStats mismatch (-want +got):\n%s", diff)
	}

	for _, s := range PriceRangeStats(nil, 0) {
		assert.Zero(t, s.Percentage)
	}
}
