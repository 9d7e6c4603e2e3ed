// Package cli implements rewardsctl, the operator tool of the rewards engine.
// Commands that change state authenticate the operator first.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/levels"
	"ecosignal.fr/rewards/internal/features/reports"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "REWARDS_ADMIN_PASSWORD"

type ReportService interface {
	Validate(ctx context.Context, reportID, adminID uuid.UUID) (*reports.ValidationResult, error)
	Reject(ctx context.Context, reportID, adminID uuid.UUID) (*reports.Report, error)
}

type BadgeService interface {
	AwardBadgeManually(ctx context.Context, userID uuid.UUID, code string) (*badges.Badge, error)
	GetAllBadgesWithStatus(ctx context.Context, userID uuid.UUID) ([]*badges.BadgeStatus, error)
}

type LevelService interface {
	GetUserLevelInfo(ctx context.Context, userID uuid.UUID) (*levels.Info, error)
}

type LedgerService interface {
	GetUserPoints(ctx context.Context, userID uuid.UUID) (int, error)
	GetHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, int, error)
}

type HistoryService interface {
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*history.Entry, int, error)
}

type AnalyticsService interface {
	GlobalStats(ctx context.Context, since, until *time.Time) (*analytics.Stats, error)
	PopularBadges(ctx context.Context, limit int) ([]analytics.BadgePopularity, error)
	Purge(ctx context.Context) (int64, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, operatorID uuid.UUID, password string) error
}

// Backend is the set of services the commands run against.
type Backend struct {
	Reports   ReportService
	Badges    BadgeService
	Levels    LevelService
	Ledger    LedgerService
	History   HistoryService
	Analytics AnalyticsService
	Auth      Authenticator
}

// Opener builds a Backend. The returned func releases it.
type Opener func(ctx context.Context) (*Backend, func(), error)

var (
	open    Opener
	backend *Backend
	release func()
)

var rootCmd = &cobra.Command{
	Use:           "rewardsctl",
	Short:         "Operate the EcoSignal rewards engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if open == nil {
			return fmt.Errorf("no backend configured")
		}
		b, done, err := open(cmd.Context())
		if err != nil {
			return err
		}
		backend, release = b, done
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeBackend()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().String("admin", "", "Operator user ID, required by mutating commands")
	rootCmd.PersistentFlags().String("password", "", "Operator password (default $"+PasswordEnv+", else prompted)")
}

// Execute runs rewardsctl with the given backend opener.
func Execute(ctx context.Context, o Opener, args []string) error {
	open = o
	rootCmd.SetArgs(args)
	// PersistentPostRun is skipped when RunE fails.
	defer closeBackend()
	return rootCmd.ExecuteContext(ctx)
}

func closeBackend() {
	if release != nil {
		release()
	}
	backend, release = nil, nil
}

// authorize checks the operator credentials and returns the operator ID.
func authorize(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("admin")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--admin is required")
	}
	adminID, err := parseID("admin", raw)
	if err != nil {
		return uuid.Nil, err
	}

	password, err := promptPassword(cmd)
	if err != nil {
		return uuid.Nil, err
	}
	if err := backend.Auth.Authenticate(cmd.Context(), adminID, password); err != nil {
		return uuid.Nil, err
	}
	return adminID, nil
}

// Terminal access, replaced in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

func promptPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	if p := os.Getenv(PasswordEnv); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		b, err := readPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID %q: %w", what, raw, err)
	}
	return id, nil
}
