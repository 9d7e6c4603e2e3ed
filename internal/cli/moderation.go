package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/rewards"
)

func init() {
	rootCmd.AddCommand(validateReportCmd, rejectReportCmd, awardBadgeCmd, purgeAnalyticsCmd)
}

var validateReportCmd = &cobra.Command{
	Use:   "validate-report REPORT_ID",
	Short: "Validate a pending report and credit its author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportID, err := parseID("report", args[0])
		if err != nil {
			return err
		}
		adminID, err := authorize(cmd)
		if err != nil {
			return err
		}

		res, err := backend.Reports.Validate(cmd.Context(), reportID, adminID)
		if err != nil {
			return err
		}
		return render(cmd, res, func(w io.Writer) {
			fmt.Fprintf(w, "Report %s validated\n", common.ShortID(res.Report.ID))
			fmt.Fprintf(w, "Author %s: %s, total %d\n",
				common.ShortID(res.Report.UserID), common.FormatPoints(res.PointsAwarded), res.NewTotal)
			printRewards(w, res.Rewards)
		})
	},
}

var rejectReportCmd = &cobra.Command{
	Use:   "reject-report REPORT_ID",
	Short: "Reject a pending report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportID, err := parseID("report", args[0])
		if err != nil {
			return err
		}
		adminID, err := authorize(cmd)
		if err != nil {
			return err
		}

		r, err := backend.Reports.Reject(cmd.Context(), reportID, adminID)
		if err != nil {
			return err
		}
		return render(cmd, r, func(w io.Writer) {
			fmt.Fprintf(w, "Report %s rejected\n", common.ShortID(r.ID))
		})
	},
}

var awardBadgeCmd = &cobra.Command{
	Use:   "award-badge USER_ID BADGE_CODE",
	Short: "Grant a badge by hand",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		if _, err := authorize(cmd); err != nil {
			return err
		}

		b, err := backend.Badges.AwardBadgeManually(cmd.Context(), userID, args[1])
		if err != nil {
			return err
		}
		return render(cmd, b, func(w io.Writer) {
			fmt.Fprintf(w, "Badge %s (%s) awarded to %s, %s\n",
				b.Code, b.Name, common.ShortID(userID), common.FormatPoints(b.PointsReward))
		})
	},
}

var purgeAnalyticsCmd = &cobra.Command{
	Use:   "purge-analytics",
	Short: "Delete analytics events older than the retention period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := authorize(cmd); err != nil {
			return err
		}
		n, err := backend.Analytics.Purge(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, map[string]int64{"deleted": n}, func(w io.Writer) {
			fmt.Fprintf(w, "%d analytics events deleted\n", n)
		})
	},
}

func printRewards(w io.Writer, s *rewards.Summary) {
	if s == nil || s.Empty() {
		return
	}
	for _, b := range s.Badges {
		fmt.Fprintf(w, "Badge earned: %s (%s) %s\n", b.Code, b.Name, common.FormatPoints(b.PointsReward))
	}
	if s.LevelUp != nil {
		fmt.Fprintf(w, "Level up: %d - %s\n", s.LevelUp.Level, s.LevelUp.Name)
	}
}
