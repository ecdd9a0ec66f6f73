package bulkupload

import "testing"

func TestMapOptimizationEvent(t *testing.T) {
	cases := map[string]string{
		"CONVERSION":   "OFFSITE_CONVERSIONS",
		"PURCHASE":     "OFFSITE_CONVERSIONS",
		"SALES":        "OFFSITE_CONVERSIONS",
		"LEAD":         "LEAD_GENERATION",
		"VIEW_CONTENT": "LINK_CLICKS",
		"":             "LINK_CLICKS",
		"UNKNOWN":      "LINK_CLICKS",
	}
	for input, want := range cases {
		if got := MapOptimizationEvent(input); got != want {
			t.Fatalf("MapOptimizationEvent(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestMapBidStrategy(t *testing.T) {
	cases := map[string]string{
		"LOWEST_COST":   "LOWEST_COST_WITHOUT_CAP",
		"COST_CAP":      "COST_CAP",
		"HIGHEST_VALUE": "LOWEST_COST_WITH_MIN_ROAS",
		"":              "LOWEST_COST_WITHOUT_CAP",
		"MYSTERY":       "LOWEST_COST_WITHOUT_CAP",
	}
	for input, want := range cases {
		if got := MapBidStrategy(input); got != want {
			t.Fatalf("MapBidStrategy(%q) = %q, want %q", input, got, want)
		}
	}
}
