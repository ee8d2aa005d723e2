package main

import (
	"fmt"

	"github.com/dukex/flowdesk/pkg/client"
)

func printOverview(a *app, overview *client.Overview) {
	fmt.Fprintln(a.out, "Analytics")

	switch {
	case overview.AnalyticsErr != nil:
		notice(a.out, "  unavailable: %v", overview.AnalyticsErr)
	case overview.Analytics.TotalExecutions == 0:
		fmt.Fprintf(a.out, "  no executions in %s\n", overview.Analytics.TimeRange)
	default:
		analytics := overview.Analytics
		fmt.Fprintf(a.out, "  executions: %d (%d failed)\n", analytics.TotalExecutions, analytics.FailedExecutions)
		fmt.Fprintf(a.out, "  success rate: %.2f%%\n", analytics.SuccessRate)
		fmt.Fprintf(a.out, "  avg duration: %.2fms\n", analytics.AvgExecutionTime)
	}

	fmt.Fprintln(a.out, "Comments")

	switch {
	case overview.CommentsErr != nil:
		notice(a.out, "  unavailable: %v", overview.CommentsErr)
	case len(overview.Comments) == 0:
		fmt.Fprintln(a.out, "  none")
	default:
		for _, comment := range overview.Comments {
			fmt.Fprintf(a.out, "  %s: %s\n", comment.Author, comment.Body)
		}
	}

	fmt.Fprintln(a.out, "Team")

	switch {
	case overview.TeamMembersErr != nil:
		notice(a.out, "  unavailable: %v", overview.TeamMembersErr)
	case len(overview.TeamMembers) == 0:
		fmt.Fprintln(a.out, "  none")
	default:
		for _, member := range overview.TeamMembers {
			fmt.Fprintf(a.out, "  %s <%s> %s\n", member.Name, member.Email, member.Role)
		}
	}
}
