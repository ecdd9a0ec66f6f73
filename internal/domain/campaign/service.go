package campaign

import (
	"context"
	"fmt"
	"time"

	"adpilot/internal/domain/account"
	"adpilot/internal/queue"

	"go.uber.org/zap"
)

// RemoteGateway is the outbound side of the campaign domain: pushing a
// graph to the ads API and reading state back. Implemented by the meta
// package, injected so services never hold an HTTP client.
type RemoteGateway interface {
	SubmitCampaign(ctx context.Context, campaignID int64) error
	SetEntityStatus(ctx context.Context, kind EntityKind, id int64, status Status) error
	SyncEntityStatus(ctx context.Context, kind EntityKind, id int64) (Status, error)
	FetchInsights(ctx context.Context, campaignID int64) (*Insights, error)
}

// AccountResolver supplies the ad account a campaign is created under.
type AccountResolver interface {
	ResolveForUser(ctx context.Context, userID int64, selectedID *int64) (*account.AdAccount, error)
}

// PlanGuard lets billing veto creation when the subscription cap is hit.
type PlanGuard interface {
	CanCreateCampaign(ctx context.Context, userID int64) error
}

type Service struct {
	repo     Repository
	accounts AccountResolver
	gateway  RemoteGateway
	guard    PlanGuard
	tasks    queue.Submitter
	log      *zap.Logger
}

func NewService(repo Repository, accounts AccountResolver, gateway RemoteGateway, guard PlanGuard, tasks queue.Submitter, log *zap.Logger) *Service {
	return &Service{repo: repo, accounts: accounts, gateway: gateway, guard: guard, tasks: tasks, log: log}
}

// Create builds the Campaign → AdSet → Ad graph in one transaction and
// schedules the remote submission.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*Campaign, error) {
	if s.guard != nil {
		if err := s.guard.CanCreateCampaign(ctx, userID); err != nil {
			return nil, err
		}
	}

	acct, err := s.accounts.ResolveForUser(ctx, userID, req.AdAccountID)
	if err != nil {
		return nil, err
	}

	startDate, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}
	var endDate *time.Time
	if req.EndDate != "" {
		d, err := ParseDate(req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		endDate = &d
	}

	c := &Campaign{
		UserID:      userID,
		AdAccountID: acct.ID,
		Name:        req.Name,
		Objective:   req.Objective,
		Status:      StatusPaused,
		BudgetType:  BudgetType(req.BudgetType),
		Budget:      req.Budget,
		StartDate:   startDate,
		EndDate:     endDate,
		AdSets: []AdSet{{
			Name:              defaultStr(req.AdSetName, req.Name+"_AdSet"),
			Status:            StatusPaused,
			BidStrategy:       defaultStr(req.BidStrategy, "LOWEST_COST_WITHOUT_CAP"),
			BidAmount:         1500,
			OptimizationGoal:  defaultStr(req.OptimizationGoal, "LINK_CLICKS"),
			PlacementType:     defaultStr(req.PlacementType, "AUTOMATIC"),
			AttributionWindow: defaultStr(req.AttributionWindow, "click_7d"),
			Targeting:         BuildTargeting(req.Locations, req.AgeMin, req.AgeMax, req.Gender, req.Interests),
			Ads: []Ad{{
				Name:        defaultStr(req.AdName, req.Name+"_Ad"),
				Status:      StatusPaused,
				Headline:    req.Headline,
				Description: req.Description,
				LinkURL:     req.WebsiteURL,
				CTAType:     defaultStr(req.CTA, "LEARN_MORE"),
				ImageURL:    req.ImageURL,
				PageID:      req.PageID,
			}},
		}},
	}

	if err := s.repo.CreateGraph(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("campaign created",
		zap.Int64("campaign_id", c.ID),
		zap.Int64("user_id", userID),
		zap.String("name", c.Name))

	s.enqueueSubmit(c.ID)
	return c, nil
}

func (s *Service) enqueueSubmit(campaignID int64) {
	s.tasks.Submit(fmt.Sprintf("submit-campaign-%d", campaignID), func(ctx context.Context) error {
		return s.gateway.SubmitCampaign(ctx, campaignID)
	})
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Campaign, error) {
	return s.repo.ListByUserID(ctx, userID, false)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*Campaign, error) {
	c, err := s.repo.GetGraphByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrNotOwner
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateRequest) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrNotOwner
	}

	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Budget != nil && *req.Budget > 0 {
		c.Budget = *req.Budget
	}
	if req.EndDate != "" {
		d, err := ParseDate(req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		c.EndDate = &d
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SoftDelete marks the campaign deleted locally and schedules the remote
// status push. The row is never removed.
func (s *Service) SoftDelete(ctx context.Context, userID, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwner
	}
	if c.Status == StatusDeleted {
		return ErrAlreadyDeleted
	}

	if err := s.repo.UpdateStatus(ctx, KindCampaign, id, StatusDeleted); err != nil {
		return err
	}
	s.enqueueStatusPush(KindCampaign, id, StatusDeleted)
	return nil
}

// SetStatus is the generic activate/pause operation over any level of
// the graph. Ownership is checked through the graph before the local
// write; the remote push runs in the background.
func (s *Service) SetStatus(ctx context.Context, userID int64, kind EntityKind, id int64, target Status) error {
	if target != StatusActive && target != StatusPaused {
		return fmt.Errorf("unsupported target status %q", target)
	}

	ownerID, err := s.ownerOf(ctx, kind, id)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotOwner
	}

	if err := s.repo.UpdateStatus(ctx, kind, id, target); err != nil {
		return err
	}

	s.log.Info("entity status changed",
		zap.String("kind", string(kind)),
		zap.Int64("id", id),
		zap.String("status", string(target)))

	s.enqueueStatusPush(kind, id, target)
	return nil
}

func (s *Service) enqueueStatusPush(kind EntityKind, id int64, target Status) {
	s.tasks.Submit(fmt.Sprintf("push-status-%s-%d", kind, id), func(ctx context.Context) error {
		return s.gateway.SetEntityStatus(ctx, kind, id, target)
	})
}

// SyncStatus schedules a read-back of the remote status for one entity.
func (s *Service) SyncStatus(ctx context.Context, userID int64, kind EntityKind, id int64) error {
	ownerID, err := s.ownerOf(ctx, kind, id)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotOwner
	}

	s.tasks.Submit(fmt.Sprintf("sync-status-%s-%d", kind, id), func(ctx context.Context) error {
		_, err := s.gateway.SyncEntityStatus(ctx, kind, id)
		return err
	})
	return nil
}

func (s *Service) Insights(ctx context.Context, userID, campaignID int64) (*Insights, error) {
	c, err := s.repo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrNotOwner
	}
	return s.gateway.FetchInsights(ctx, campaignID)
}

func (s *Service) Stats(ctx context.Context, userID int64) (*StatsResponse, error) {
	campaigns, err := s.repo.ListByUserID(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	stats := &StatsResponse{Total: len(campaigns)}
	for _, c := range campaigns {
		switch c.Status {
		case StatusActive:
			stats.Active++
		case StatusPaused:
			stats.Paused++
		}
		stats.TotalBudget += c.Budget
	}
	return stats, nil
}

// ownerOf walks up the graph to the owning user for any entity kind.
func (s *Service) ownerOf(ctx context.Context, kind EntityKind, id int64) (int64, error) {
	switch kind {
	case KindCampaign:
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return c.UserID, nil
	case KindAdSet:
		a, err := s.repo.GetAdSetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return s.ownerOf(ctx, KindCampaign, a.CampaignID)
	case KindAd:
		a, err := s.repo.GetAdByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return s.ownerOf(ctx, KindAdSet, a.AdSetID)
	default:
		return 0, ErrUnknownKind
	}
}

// ParseDate accepts the date shapes seen in API payloads and CSV
// exports: bare dates and full RFC3339 timestamps.
func ParseDate(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006/01/02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

// BuildTargeting normalizes raw audience inputs into a Targeting spec,
// falling back to a broad default audience when fields are absent.
func BuildTargeting(locations []string, ageMin, ageMax int, gender string, interests []string) Targeting {
	t := Targeting{
		GeoLocations: GeoLocations{Countries: locations},
		AgeMin:       ageMin,
		AgeMax:       ageMax,
		Interests:    interests,
	}
	if len(t.GeoLocations.Countries) == 0 {
		t.GeoLocations.Countries = []string{"JP"}
	}
	if t.AgeMin < 13 {
		t.AgeMin = 13
	}
	if t.AgeMax <= 0 || t.AgeMax > 65 {
		t.AgeMax = 65
	}

	switch gender {
	case "male":
		t.Genders = []int{1}
	case "female":
		t.Genders = []int{2}
	default:
		t.Genders = []int{1, 2}
	}
	return t
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
