package bulkupload

import (
	"bytes"
	"encoding/csv"
)

var templateHeader = []string{
	"campaign_name", "objective", "budget_type", "budget", "bid_strategy",
	"start_date", "end_date", "budget_optimization",
	"adset_name", "placement_type", "conversion_location", "optimization_event",
	"age_min", "age_max", "gender", "locations", "interests", "attribution_window",
	"ad_name", "headline", "description", "website_url", "cta", "image_url",
	"campaign_status", "targeting_preset", "creative_template", "notes",
}

var templateSample = []string{
	"サンプルキャンペーン", "SALES", "DAILY", "1000", "LOWEST_COST",
	"2024-01-01", "2024-01-31", "TRUE",
	"サンプル広告セット", "auto", "website", "CONVERSION",
	"25", "45", "all", "JP", "テクノロジー", "click_7d",
	"サンプル広告", "サンプルヘッドライン", "サンプル説明文", "https://example.com", "LEARN_MORE", "https://example.com/image.jpg",
	"ACTIVE", "", "", "サンプルメモ",
}

// Template renders the downloadable CSV template with one sample row.
// The output starts with a UTF-8 BOM so spreadsheet tools render the
// Japanese sample values correctly.
func Template() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	_ = w.Write(templateHeader)
	_ = w.Write(templateSample)
	w.Flush()

	return buf.Bytes()
}
