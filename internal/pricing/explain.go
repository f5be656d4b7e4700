package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// band is one row of a threshold table: scores >= min get text.
type band struct {
	min  float64
	text string
}

// Tables are ordered by descending min; the last row catches everything.
var (
	brandBands = []band{
		{9, "顶级品牌，保值性强"},
		{8, "知名品牌，市场认可度高"},
		{7, "主流品牌，口碑良好"},
		{6, "中档品牌，性价比不错"},
		{math.Inf(-1), "普通品牌，价格实惠"},
	}
	conditionBands = []band{
		{9, "成色极佳，几乎全新"},
		{8, "成色良好，轻微使用痕迹"},
		{7, "成色较好，有少量磨损"},
		{6, "成色一般，有明显使用痕迹"},
		{math.Inf(-1), "成色较差，需要维修或更新"},
	}
	demandBands = []band{
		{8, "市场需求旺盛，易于出售"},
		{7, "市场需求较好，出售较快"},
		{6, "市场需求正常，出售难度适中"},
		{5, "市场需求一般，出售需要耐心"},
		{math.Inf(-1), "市场需求较低，可能需要降价"},
	}
	functionalityBands = []band{
		{9, "功能完好，无任何问题"},
		{8, "功能基本完好，偶有小问题"},
		{7, "功能正常，有轻微老化"},
		{6, "功能正常，但有一些缺陷"},
		{math.Inf(-1), "功能受损，需要维修"},
	}
)

// usageBand matches durations up to and including maxMonths.
type usageBand struct {
	maxMonths int
	text      string
}

var usageBands = []usageBand{
	{3, "使用时间很短，近乎全新"},
	{12, "使用时间适中，正常损耗"},
	{24, "使用时间较长，有一定损耗"},
	{math.MaxInt, "使用时间很长，损耗较大"},
}

func describe(bands []band, score float64) string {
	for _, b := range bands {
		if score >= b.min {
			return b.text
		}
	}
	return bands[len(bands)-1].text
}

func describeUsage(months int) string {
	for _, b := range usageBands {
		if months <= b.maxMonths {
			return b.text
		}
	}
	return usageBands[len(usageBands)-1].text
}

// DepreciationPercent is the whole-number percentage the estimate sits below
// the original price. It is negative when the estimate exceeds the original.
func DepreciationPercent(estimated, original float64) int {
	return int(roundHalfUp((1 - estimated/original) * 100))
}

// Explain renders the pricing explanation shown to sellers.
func Explain(f Factors, estimated, original float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "基于AI智能分析，该商品建议售价为 ¥%s，较原价折旧 %d%%。\n\n",
		strconv.FormatFloat(estimated, 'f', -1, 64), DepreciationPercent(estimated, original))

	b.WriteString("定价分析：\n")
	fmt.Fprintf(&b, "• 品牌价值：%.1f/10 - %s\n", f.BrandValue, describe(brandBands, f.BrandValue))
	fmt.Fprintf(&b, "• 成色状况：%.1f/10 - %s\n", f.ConditionScore, describe(conditionBands, f.ConditionScore))
	fmt.Fprintf(&b, "• 市场需求：%.1f/10 - %s\n", f.MarketDemand, describe(demandBands, f.MarketDemand))
	fmt.Fprintf(&b, "• 功能完整性：%.1f/10 - %s\n", f.FunctionalityScore, describe(functionalityBands, f.FunctionalityScore))
	fmt.Fprintf(&b, "• 使用时长：%d个月 - %s\n", f.UsageDuration, describeUsage(f.UsageDuration))

	return b.String()
}
