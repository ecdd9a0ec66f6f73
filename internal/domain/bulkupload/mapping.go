package bulkupload

// Translation tables between the vocabulary accepted in upload files
// and the values the ads API expects. Unknown inputs fall through to a
// safe default instead of failing the row.

var optimizationGoals = map[string]string{
	"CONVERSION": "OFFSITE_CONVERSIONS",
	"PURCHASE":   "OFFSITE_CONVERSIONS",
	"SALES":      "OFFSITE_CONVERSIONS",
	"LEAD":       "LEAD_GENERATION",
}

// MapOptimizationEvent turns an upload-file optimization event into a
// Graph API optimization goal. Defaults to LINK_CLICKS.
func MapOptimizationEvent(event string) string {
	if goal, ok := optimizationGoals[event]; ok {
		return goal
	}
	return "LINK_CLICKS"
}

var bidStrategies = map[string]string{
	"LOWEST_COST":   "LOWEST_COST_WITHOUT_CAP",
	"COST_CAP":      "COST_CAP",
	"HIGHEST_VALUE": "LOWEST_COST_WITH_MIN_ROAS",
}

// MapBidStrategy turns an upload-file bid strategy into the Graph API
// equivalent. Defaults to LOWEST_COST_WITHOUT_CAP.
func MapBidStrategy(strategy string) string {
	if mapped, ok := bidStrategies[strategy]; ok {
		return mapped
	}
	return "LOWEST_COST_WITHOUT_CAP"
}
