package meta

import (
	"context"

	"adpilot/internal/domain/campaign"

	"go.uber.org/zap"
)

// SyncStale reconciles the oldest-updated submitted campaigns against
// the remote API. One campaign failing does not stop the sweep. Returns
// the number of campaigns checked.
func (g *Gateway) SyncStale(ctx context.Context, limit int) (int, error) {
	stale, err := g.campaigns.ListStale(ctx, limit)
	if err != nil {
		return 0, err
	}

	checked := 0
	for _, c := range stale {
		if ctx.Err() != nil {
			return checked, ctx.Err()
		}
		if _, err := g.SyncEntityStatus(ctx, campaign.KindCampaign, c.ID); err != nil {
			g.log.Warn("stale campaign sync failed",
				zap.Int64("campaign_id", c.ID),
				zap.Error(err))
			continue
		}
		checked++
	}

	g.log.Info("stale sync sweep finished",
		zap.Int("candidates", len(stale)),
		zap.Int("checked", checked))
	return checked, nil
}
