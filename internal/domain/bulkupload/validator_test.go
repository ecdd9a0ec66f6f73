package bulkupload

import (
	"reflect"
	"strings"
	"testing"
)

func validRow() Row {
	return Row{
		CampaignName:      "Summer Sale",
		Objective:         "SALES",
		BudgetType:        "DAILY",
		Budget:            "1000",
		BidStrategy:       "LOWEST_COST",
		StartDate:         "2024-01-01",
		AdSetName:         "Summer AdSet",
		OptimizationEvent: "CONVERSION",
		AgeMin:            "25",
		AgeMax:            "45",
		Gender:            "all",
		AdName:            "Summer Ad",
		Headline:          "Big savings",
		Description:       "Everything on sale",
		WebsiteURL:        "https://example.com",
		CTA:               "SHOP_NOW",
		ImageURL:          "https://example.com/img.png",
	}
}

func TestValidRowPasses(t *testing.T) {
	errs := ValidateRow(validRow())
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestMissingRequiredFieldsAllReported(t *testing.T) {
	errs := ValidateRow(Row{})
	if len(errs) != 12 {
		t.Fatalf("expected 12 required-field errors, got %d: %v", len(errs), errs)
	}
	for _, e := range errs {
		if !strings.HasSuffix(e, "is required") {
			t.Fatalf("unexpected error message %q", e)
		}
	}
}

func TestBudgetMustBePositive(t *testing.T) {
	for _, budget := range []string{"0", "-5", "abc"} {
		r := validRow()
		r.Budget = budget
		errs := ValidateRow(r)
		if !hasError(errs, "budget must be a number greater than 0") {
			t.Fatalf("budget %q: expected budget error, got %v", budget, errs)
		}
	}
}

func TestAgeBounds(t *testing.T) {
	r := validRow()
	r.AgeMin = "12"
	if errs := ValidateRow(r); !hasError(errs, "age_min must be 13 or higher") {
		t.Fatalf("expected age_min error, got %v", errs)
	}

	r = validRow()
	r.AgeMax = "66"
	if errs := ValidateRow(r); !hasError(errs, "age_max must be 65 or lower") {
		t.Fatalf("expected age_max error, got %v", errs)
	}

	// empty ages are fine, defaults apply later
	r = validRow()
	r.AgeMin, r.AgeMax = "", ""
	if errs := ValidateRow(r); len(errs) != 0 {
		t.Fatalf("expected empty ages to pass, got %v", errs)
	}
}

func TestEnumValuesRejected(t *testing.T) {
	r := validRow()
	r.Objective = "WORLD_DOMINATION"
	errs := ValidateRow(r)
	if len(errs) != 1 || !strings.Contains(errs[0], "objective has an invalid value") {
		t.Fatalf("expected single objective error, got %v", errs)
	}

	r = validRow()
	r.Gender = "other"
	if errs := ValidateRow(r); len(errs) != 1 || !strings.Contains(errs[0], "gender") {
		t.Fatalf("expected gender error, got %v", errs)
	}
}

func TestURLFormat(t *testing.T) {
	r := validRow()
	r.WebsiteURL = "example.com"
	if errs := ValidateRow(r); !hasError(errs, "website_url must be a valid URL") {
		t.Fatalf("expected website_url error, got %v", errs)
	}

	r = validRow()
	r.ImageURL = "ftp://example.com/img.png"
	if errs := ValidateRow(r); !hasError(errs, "image_url must be a valid URL") {
		t.Fatalf("expected image_url error, got %v", errs)
	}
}

func TestRowNumbersStartAtTwo(t *testing.T) {
	results := ValidateRows([]Row{validRow(), validRow(), {}})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.RowNumber != i+2 {
			t.Fatalf("result %d: expected row number %d, got %d", i, i+2, res.RowNumber)
		}
	}
	if !results[0].Valid || !results[1].Valid || results[2].Valid {
		t.Fatalf("unexpected verdicts: %+v", results)
	}
}

func TestValidationIsDeterministic(t *testing.T) {
	rows := []Row{validRow(), {}, validRow()}
	first := ValidateRows(rows)
	second := ValidateRows(rows)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results on repeated validation")
	}
}

func hasError(errs []string, want string) bool {
	for _, e := range errs {
		if e == want {
			return true
		}
	}
	return false
}
