package bulkupload

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RowResult is the validation outcome of one source row.
type RowResult struct {
	RowNumber int      `json:"row_index"`
	Valid     bool     `json:"is_valid"`
	Errors    []string `json:"errors"`
	Record    Row      `json:"data"`
}

var allowedValues = map[string][]string{
	"objective":           {"SALES", "TRAFFIC", "ENGAGEMENT", "APP_INSTALLS", "VIDEO_VIEWS", "LEAD_GENERATION", "AWARENESS", "CONSIDERATION"},
	"budget_type":         {"DAILY", "LIFETIME"},
	"bid_strategy":        {"LOWEST_COST", "HIGHEST_VALUE", "COST_CAP"},
	"placement_type":      {"auto", "manual"},
	"conversion_location": {"website", "app", "offline"},
	"optimization_event":  {"CONVERSION", "PURCHASE", "ADD_TO_CART", "VIEW_CONTENT", "LEAD"},
	"gender":              {"all", "male", "female"},
	"attribution_window":  {"click_1d", "click_7d", "click_14d", "click_28d"},
	"cta":                 {"LEARN_MORE", "SHOP_NOW", "SIGN_UP", "DOWNLOAD", "GET_QUOTE", "CALL_NOW"},
	"campaign_status":     {"ACTIVE", "PAUSED"},
}

var urlPattern = regexp.MustCompile(`^https?://.+`)

// ValidateRows checks every row and assigns spreadsheet-style row
// numbers: the first data row is row 2 because row 1 is the header.
// The function is pure; the caller persists the verdicts.
func ValidateRows(rows []Row) []RowResult {
	results := make([]RowResult, 0, len(rows))
	for i, r := range rows {
		errs := ValidateRow(r)
		results = append(results, RowResult{
			RowNumber: i + 2,
			Valid:     len(errs) == 0,
			Errors:    errs,
			Record:    r,
		})
	}
	return results
}

// ValidateRow returns every problem found in one row, never stopping at
// the first.
func ValidateRow(r Row) []string {
	var errs []string

	required := []struct {
		field string
		value string
	}{
		{"campaign_name", r.CampaignName},
		{"objective", r.Objective},
		{"budget_type", r.BudgetType},
		{"budget", r.Budget},
		{"bid_strategy", r.BidStrategy},
		{"start_date", r.StartDate},
		{"adset_name", r.AdSetName},
		{"ad_name", r.AdName},
		{"headline", r.Headline},
		{"description", r.Description},
		{"website_url", r.WebsiteURL},
		{"image_url", r.ImageURL},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Sprintf("%s is required", f.field))
		}
	}

	if r.Budget != "" {
		if budget, err := strconv.ParseFloat(r.Budget, 64); err != nil || budget <= 0 {
			errs = append(errs, "budget must be a number greater than 0")
		}
	}
	if r.AgeMin != "" {
		if age, err := strconv.Atoi(r.AgeMin); err != nil || age < 13 {
			errs = append(errs, "age_min must be 13 or higher")
		}
	}
	if r.AgeMax != "" {
		if age, err := strconv.Atoi(r.AgeMax); err != nil || age > 65 {
			errs = append(errs, "age_max must be 65 or lower")
		}
	}

	enums := []struct {
		field string
		value string
	}{
		{"objective", r.Objective},
		{"budget_type", r.BudgetType},
		{"bid_strategy", r.BidStrategy},
		{"placement_type", r.PlacementType},
		{"conversion_location", r.ConversionLocation},
		{"optimization_event", r.OptimizationEvent},
		{"gender", r.Gender},
		{"attribution_window", r.AttributionWindow},
		{"cta", r.CTA},
		{"campaign_status", r.CampaignStatus},
	}
	for _, e := range enums {
		if e.value == "" {
			continue
		}
		if !contains(allowedValues[e.field], e.value) {
			errs = append(errs, fmt.Sprintf("%s has an invalid value, allowed: %s", e.field, strings.Join(allowedValues[e.field], ", ")))
		}
	}

	if r.WebsiteURL != "" && !urlPattern.MatchString(r.WebsiteURL) {
		errs = append(errs, "website_url must be a valid URL")
	}
	if r.ImageURL != "" && !urlPattern.MatchString(r.ImageURL) {
		errs = append(errs, "image_url must be a valid URL")
	}

	return errs
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
