package alert

import (
	"fmt"
	"strconv"

	"adpilot/internal/domain/campaign"
)

// CheckBudgetThreshold compares budget usage (spend as a percentage of
// the campaign budget) against the rule threshold.
func CheckBudgetThreshold(budget, spend float64, threshold string, cond Condition) (bool, string) {
	limit, err := strconv.ParseFloat(threshold, 64)
	if err != nil || budget <= 0 {
		return false, "0%"
	}
	usage := spend / budget * 100
	current := fmt.Sprintf("%.1f%%", usage)

	switch cond {
	case ConditionGreaterThan:
		return usage > limit, current
	case ConditionLessThan:
		return usage < limit, current
	default:
		return false, current
	}
}

// CheckPerformanceDrop compares the campaign CTR against the threshold.
func CheckPerformanceDrop(ctr float64, threshold string, cond Condition) (bool, string) {
	limit, err := strconv.ParseFloat(threshold, 64)
	if err != nil {
		return false, "0%"
	}
	current := fmt.Sprintf("%.2f%%", ctr)

	switch cond {
	case ConditionLessThan:
		return ctr < limit, current
	case ConditionGreaterThan:
		return ctr > limit, current
	default:
		return false, current
	}
}

// CheckCampaignStatus compares the campaign status against the
// threshold string.
func CheckCampaignStatus(status string, threshold string, cond Condition) (bool, string) {
	switch cond {
	case ConditionEquals:
		return status == threshold, status
	case ConditionNotEquals:
		return status != threshold, status
	default:
		return false, status
	}
}

// Evaluate runs the rule's condition against one campaign snapshot and
// returns whether it fired plus the observed value.
func Evaluate(rule *AlertRule, c *campaign.Campaign, insights *campaign.Insights) (bool, string, error) {
	switch rule.Type {
	case TypeBudgetThreshold:
		spend := 0.0
		if insights != nil {
			spend = insights.Spend
		}
		fired, value := CheckBudgetThreshold(c.Budget, spend, rule.ThresholdValue, rule.Condition)
		return fired, value, nil
	case TypePerformanceDrop:
		ctr := 0.0
		if insights != nil {
			ctr = insights.CTR
		}
		fired, value := CheckPerformanceDrop(ctr, rule.ThresholdValue, rule.Condition)
		return fired, value, nil
	case TypeCampaignStatus:
		fired, value := CheckCampaignStatus(string(c.Status), rule.ThresholdValue, rule.Condition)
		return fired, value, nil
	default:
		return false, "", ErrInvalidType
	}
}
