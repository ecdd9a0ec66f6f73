package alert

import (
	"testing"

	"adpilot/internal/domain/campaign"
)

func TestCheckBudgetThreshold(t *testing.T) {
	fired, value := CheckBudgetThreshold(1000, 850, "80", ConditionGreaterThan)
	if !fired {
		t.Fatalf("expected 85%% usage to exceed 80%% threshold")
	}
	if value != "85.0%" {
		t.Fatalf("unexpected current value %q", value)
	}

	fired, _ = CheckBudgetThreshold(1000, 500, "80", ConditionGreaterThan)
	if fired {
		t.Fatalf("expected 50%% usage not to fire")
	}

	fired, _ = CheckBudgetThreshold(0, 500, "80", ConditionGreaterThan)
	if fired {
		t.Fatalf("expected zero budget to never fire")
	}

	fired, _ = CheckBudgetThreshold(1000, 500, "not-a-number", ConditionGreaterThan)
	if fired {
		t.Fatalf("expected bad threshold to never fire")
	}
}

func TestCheckPerformanceDrop(t *testing.T) {
	fired, value := CheckPerformanceDrop(0.8, "1.5", ConditionLessThan)
	if !fired {
		t.Fatalf("expected CTR 0.8 below threshold 1.5 to fire")
	}
	if value != "0.80%" {
		t.Fatalf("unexpected current value %q", value)
	}

	if fired, _ := CheckPerformanceDrop(2.0, "1.5", ConditionLessThan); fired {
		t.Fatalf("expected CTR above threshold not to fire")
	}
}

func TestCheckCampaignStatus(t *testing.T) {
	if fired, _ := CheckCampaignStatus("PAUSED", "PAUSED", ConditionEquals); !fired {
		t.Fatalf("expected EQUALS match to fire")
	}
	if fired, _ := CheckCampaignStatus("ACTIVE", "PAUSED", ConditionNotEquals); !fired {
		t.Fatalf("expected NOT_EQUALS mismatch to fire")
	}
	if fired, _ := CheckCampaignStatus("ACTIVE", "PAUSED", ConditionEquals); fired {
		t.Fatalf("expected EQUALS mismatch not to fire")
	}
}

func TestEvaluateDispatchesByType(t *testing.T) {
	c := &campaign.Campaign{Budget: 1000, Status: campaign.StatusPaused}
	insights := &campaign.Insights{Spend: 900, CTR: 0.5}

	rule := &AlertRule{Type: TypeBudgetThreshold, Condition: ConditionGreaterThan, ThresholdValue: "80"}
	fired, _, err := Evaluate(rule, c, insights)
	if err != nil || !fired {
		t.Fatalf("expected budget rule to fire, got %v / %v", fired, err)
	}

	rule = &AlertRule{Type: TypePerformanceDrop, Condition: ConditionLessThan, ThresholdValue: "1.0"}
	fired, _, err = Evaluate(rule, c, insights)
	if err != nil || !fired {
		t.Fatalf("expected performance rule to fire, got %v / %v", fired, err)
	}

	rule = &AlertRule{Type: TypeCampaignStatus, Condition: ConditionEquals, ThresholdValue: "PAUSED"}
	fired, _, err = Evaluate(rule, c, insights)
	if err != nil || !fired {
		t.Fatalf("expected status rule to fire, got %v / %v", fired, err)
	}

	rule = &AlertRule{Type: "MYSTERY"}
	if _, _, err := Evaluate(rule, c, insights); err == nil {
		t.Fatalf("expected unknown type to error")
	}
}

func TestEvaluateWithoutInsights(t *testing.T) {
	c := &campaign.Campaign{Budget: 1000}
	rule := &AlertRule{Type: TypeBudgetThreshold, Condition: ConditionGreaterThan, ThresholdValue: "80"}
	fired, _, err := Evaluate(rule, c, nil)
	if err != nil || fired {
		t.Fatalf("expected no fire with zero spend, got %v / %v", fired, err)
	}
}
