package campaign

type CreateRequest struct {
	Name       string  `json:"name" binding:"required"`
	Objective  string  `json:"objective" binding:"required"`
	BudgetType string  `json:"budget_type" binding:"required,oneof=DAILY LIFETIME"`
	Budget     float64 `json:"budget" binding:"required,gt=0"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date"`

	AdAccountID *int64 `json:"ad_account_id"`

	AdSetName         string   `json:"adset_name"`
	BidStrategy       string   `json:"bid_strategy"`
	OptimizationGoal  string   `json:"optimization_event"`
	PlacementType     string   `json:"placement_type"`
	AttributionWindow string   `json:"attribution_window"`
	AgeMin            int      `json:"age_min"`
	AgeMax            int      `json:"age_max"`
	Gender            string   `json:"gender"`
	Locations         []string `json:"locations"`
	Interests         []string `json:"interests"`

	AdName      string `json:"ad_name"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	WebsiteURL  string `json:"website_url"`
	CTA         string `json:"cta"`
	ImageURL    string `json:"image_url"`
	PageID      string `json:"facebook_page_id"`
}

type UpdateRequest struct {
	Name    string   `json:"name"`
	Budget  *float64 `json:"budget"`
	EndDate string   `json:"end_date"`
}

type StatsResponse struct {
	Total       int     `json:"total"`
	Active      int     `json:"active"`
	Paused      int     `json:"paused"`
	TotalBudget float64 `json:"total_budget"`
}
