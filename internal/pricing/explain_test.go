package pricing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain_AppleExample(t *testing.T) {
	res, err := Default.Estimate(Request{Brand: "Apple", Condition: "全新", OriginalPrice: 10000, UsageDuration: 0, Category: "电子产品"})
	require.NoError(t, err)

	want := "基于AI智能分析，该商品建议售价为 ¥9887.5，较原价折旧 1%。\n\n" +
		"定价分析：\n" +
		"• 品牌价值：9.5/10 - 顶级品牌，保值性强\n" +
		"• 成色状况：9.8/10 - 成色极佳，几乎全新\n" +
		"• 市场需求：8.5/10 - 市场需求旺盛，易于出售\n" +
		"• 功能完整性：9.0/10 - 功能完好，无任何问题\n" +
		"• 使用时长：0个月 - 使用时间很短，近乎全新\n"
	assert.Equal(t, want, res.Explanation)
}

func TestDescribe_Bands(t *testing.T) {
	tests := []struct {
		name  string
		bands []band
		score float64
		want  string
	}{
		{"brand top", brandBands, 9.5, "顶级品牌，保值性强"},
		{"brand known", brandBands, 8.0, "知名品牌，市场认可度高"},
		{"brand mainstream", brandBands, 7.2, "主流品牌，口碑良好"},
		{"brand mid", brandBands, 6.0, "中档品牌，性价比不错"},
		{"brand plain", brandBands, 4.5, "普通品牌，价格实惠"},
		{"condition excellent", conditionBands, 9.8, "成色极佳，几乎全新"},
		{"condition good", conditionBands, 8.5, "成色良好，轻微使用痕迹"},
		{"condition fair", conditionBands, 7.2, "成色较好，有少量磨损"},
		{"condition used", conditionBands, 6.0, "成色一般，有明显使用痕迹"},
		{"condition worn", conditionBands, 4.5, "成色较差，需要维修或更新"},
		{"demand hot", demandBands, 8.5, "市场需求旺盛，易于出售"},
		{"demand good", demandBands, 7.5, "市场需求较好，出售较快"},
		{"demand normal", demandBands, 6.5, "市场需求正常，出售难度适中"},
		{"demand soft", demandBands, 5.0, "市场需求一般，出售需要耐心"},
		{"demand low", demandBands, 4.0, "市场需求较低，可能需要降价"},
		{"functionality intact", functionalityBands, 9.0, "功能完好，无任何问题"},
		{"functionality minor", functionalityBands, 8.5, "功能基本完好，偶有小问题"},
		{"functionality aged", functionalityBands, 7.8, "功能正常，有轻微老化"},
		{"functionality flaws", functionalityBands, 6.5, "功能正常，但有一些缺陷"},
		{"functionality broken", functionalityBands, 3.0, "功能受损，需要维修"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.bands, tt.score))
		})
	}
}

func TestDescribeUsage(t *testing.T) {
	tests := map[int]string{
		0:   "使用时间很短，近乎全新",
		3:   "使用时间很短，近乎全新",
		4:   "使用时间适中，正常损耗",
		12:  "使用时间适中，正常损耗",
		13:  "使用时间较长，有一定损耗",
		24:  "使用时间较长，有一定损耗",
		25:  "使用时间很长，损耗较大",
		600: "使用时间很长，损耗较大",
	}
	for months, want := range tests {
		assert.Equal(t, want, describeUsage(months), "months=%d", months)
	}
}

func TestDepreciationPercent(t *testing.T) {
	assert.Equal(t, 1, DepreciationPercent(9887.5, 10000))
	assert.Equal(t, 50, DepreciationPercent(500, 1000))
	assert.Equal(t, -7, DepreciationPercent(10750, 10000))
	assert.Equal(t, 100, DepreciationPercent(0, 10))
}

func TestExplain_UsesEveryFactor(t *testing.T) {
	res, err := Default.Estimate(Request{Brand: "HP", Condition: "六成新", OriginalPrice: 3000, UsageDuration: 30, Category: "服装配饰"})
	require.NoError(t, err)

	for _, fragment := range []string{
		"• 品牌价值：4.5/10 - 普通品牌，价格实惠",
		"• 成色状况：4.5/10 - 成色较差，需要维修或更新",
		"• 市场需求：5.5/10 - 市场需求一般，出售需要耐心",
		"• 功能完整性：6.5/10 - 功能正常，但有一些缺陷",
		"• 使用时长：30个月 - 使用时间很长，损耗较大",
	} {
		assert.True(t, strings.Contains(res.Explanation, fragment), "missing %q in\n%s", fragment, res.Explanation)
	}
}
