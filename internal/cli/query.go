package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/ledger"
)

func init() {
	rootCmd.AddCommand(levelCmd, badgesCmd, pointsCmd, historyCmd, statsCmd)

	for _, c := range []*cobra.Command{pointsCmd, historyCmd} {
		c.Flags().Int("limit", ledger.DefaultPageSize, "Page size")
		c.Flags().Int("offset", 0, "Rows to skip")
	}
	statsCmd.Flags().String("since", "", "Start date, YYYY-MM-DD or RFC 3339")
	statsCmd.Flags().String("until", "", "End date, YYYY-MM-DD or RFC 3339")
	statsCmd.Flags().Int("top", 10, "Number of popular badges to list")
}

var levelCmd = &cobra.Command{
	Use:   "level USER_ID",
	Short: "Show a user's level and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		info, err := backend.Levels.GetUserLevelInfo(cmd.Context(), userID)
		if err != nil {
			return err
		}
		return render(cmd, info, func(w io.Writer) {
			fmt.Fprintf(w, "Level %d - %s (%d points)\n", info.Level, info.Name, info.Points)
			if info.NextLevel == nil {
				fmt.Fprintln(w, "Top level reached")
				return
			}
			fmt.Fprintf(w, "Next: level %d - %s at %d points\n", info.NextLevel.Level, info.NextLevel.Name, info.NextLevel.MinPoints)
			fmt.Fprintf(w, "%s %d/%d\n", progressBar(info.Progress.Percentage), info.Progress.Current, info.Progress.Required)
		})
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges USER_ID",
	Short: "List the badge catalog with what a user earned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		list, err := backend.Badges.GetAllBadgesWithStatus(cmd.Context(), userID)
		if err != nil {
			return err
		}
		return render(cmd, list, func(w io.Writer) {
			for _, b := range list {
				mark := " "
				if b.Earned {
					mark = "x"
				}
				fmt.Fprintf(w, "[%s] %-14s %-22s %s\n", mark, b.Code, b.Name, common.FormatPoints(b.PointsReward))
			}
		})
	},
}

var pointsCmd = &cobra.Command{
	Use:   "points USER_ID",
	Short: "Show a user's balance and ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		total, err := backend.Ledger.GetUserPoints(cmd.Context(), userID)
		if err != nil {
			return err
		}
		entries, count, err := backend.Ledger.GetHistory(cmd.Context(), userID, limit, offset)
		if err != nil {
			return err
		}

		out := struct {
			Points  int             `json:"points"`
			Total   int             `json:"total"`
			Entries []*ledger.Entry `json:"entries"`
		}{total, count, entries}
		return render(cmd, out, func(w io.Writer) {
			fmt.Fprintf(w, "Balance: %d points (%d ledger entries)\n", total, count)
			for _, e := range entries {
				fmt.Fprintln(w, ledger.FormatEntry(e))
			}
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history USER_ID",
	Short: "List a user's badges and level-ups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		entries, count, err := backend.History.List(cmd.Context(), userID, limit, offset)
		if err != nil {
			return err
		}
		out := struct {
			Total   int              `json:"total"`
			Entries []*history.Entry `json:"entries"`
		}{count, entries}
		return render(cmd, out, func(w io.Writer) {
			fmt.Fprintf(w, "%d rewards\n", count)
			for _, e := range entries {
				fmt.Fprintf(w, "%s | %-8s | %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.RewardType, e.Description)
			}
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show gamification analytics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := dateFlag(cmd, "since")
		if err != nil {
			return err
		}
		until, err := dateFlag(cmd, "until")
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")

		stats, err := backend.Analytics.GlobalStats(cmd.Context(), since, until)
		if err != nil {
			return err
		}
		popular, err := backend.Analytics.PopularBadges(cmd.Context(), top)
		if err != nil {
			return err
		}

		out := struct {
			*analytics.Stats
			PopularBadges []analytics.BadgePopularity `json:"popularBadges"`
		}{stats, popular}
		return render(cmd, out, func(w io.Writer) {
			fmt.Fprintf(w, "Points earned:  %d\n", stats.TotalPointsEarned)
			fmt.Fprintf(w, "Badges earned:  %d\n", stats.TotalBadgesEarned)
			fmt.Fprintf(w, "Level-ups:      %d\n", stats.TotalLevelUps)
			fmt.Fprintf(w, "Active users:   %d\n", stats.UniqueActiveUsers)
			for _, p := range popular {
				fmt.Fprintf(w, "  %-14s %d\n", p.BadgeCode, p.Count)
			}
		})
	},
}

// dateFlag parses a date flag, nil when unset.
func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --%s %q, want YYYY-MM-DD or RFC 3339", name, raw)
}
