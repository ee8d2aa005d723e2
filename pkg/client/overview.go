package client

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/dukex/flowdesk/pkg/models"
)

// Overview is the analytics and collaboration panel of one workflow. Each part
// loads independently, so one failing request leaves the others usable.
type Overview struct {
	Analytics      *models.Analytics
	AnalyticsErr   error
	Comments       []*models.Comment
	CommentsErr    error
	TeamMembers    []*models.TeamMember
	TeamMembersErr error
}

// Overview fetches the panel parts concurrently.
func (c *Client) Overview(ctx context.Context, id string, timeRange models.TimeRange) *Overview {
	overview := &Overview{}

	var wg conc.WaitGroup

	wg.Go(func() {
		overview.Analytics, overview.AnalyticsErr = c.Analytics(ctx, id, timeRange)
	})
	wg.Go(func() {
		overview.Comments, overview.CommentsErr = c.Comments(ctx, id)
	})
	wg.Go(func() {
		overview.TeamMembers, overview.TeamMembersErr = c.TeamMembers(ctx, id)
	})

	wg.Wait()

	return overview
}
