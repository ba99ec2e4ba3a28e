package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pythia-cli/internal/api"
	"pythia-cli/internal/config"
	"pythia-cli/internal/log"
	"pythia-cli/internal/query"
	"pythia-cli/internal/selection"
	"pythia-cli/internal/session"
	"pythia-cli/internal/store"
	"pythia-cli/internal/tui"
)

type App struct {
	APIBaseURL  string
	AuthBaseURL string
	Debug       bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "pythia",
		Short:        "Pythia astrology Q&A client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive screen
  pythia

  # Scriptable commands
  pythia login
  pythia events list
  pythia events add --label "John Smith" --year 1990 --month 3 --day 14 \
      --hour 7 --minute 30 --ampm PM --location "Paris, France"
  pythia ask -q "What does my Mars in Scorpio reveal?" --ids 1,2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if app.Debug {
			log.SetLevel(log.LevelDebug)
		}
	}

	cmd.PersistentFlags().StringVar(&app.APIBaseURL, "api", "", "Backend base URL (overrides config and PYTHIA_API_URL)")
	cmd.PersistentFlags().StringVar(&app.AuthBaseURL, "auth", "", "Identity provider base URL (overrides config and PYTHIA_AUTH_URL)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newAskCmd(app))

	return cmd
}

// deps resolves config and wires the component graph shared by every
// command.
func (app *App) deps() (*store.Store, *session.Provider, *query.Orchestrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Debug {
		// The flag is applied in PersistentPreRun; this covers the config
		// file and PYTHIA_DEBUG.
		log.SetLevel(log.LevelDebug)
	}
	if app.APIBaseURL != "" {
		cfg.APIBaseURL = app.APIBaseURL
	}
	if app.AuthBaseURL != "" {
		cfg.AuthBaseURL = app.AuthBaseURL
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, nil, nil, err
	}

	sessions := session.NewProvider(cfg.AuthBaseURL, dir)
	client := api.NewClient(cfg.APIBaseURL)
	st := store.New(client, store.OpenCache(dir))
	orch := query.NewOrchestrator(sessions, client)
	return st, sessions, orch, nil
}

func runTUI(app *App) error {
	st, sessions, orch, err := app.deps()
	if err != nil {
		return err
	}
	// Check the session up front (the screen is useless without one) and
	// seed the event list from the local cache while the fresh fetch runs.
	sess, err := sessions.GetSession(context.Background())
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			return errSignIn()
		}
		return err
	}
	st.LoadCached(context.Background(), sess.UserID)

	err = tui.Run(st, selection.New(), orch)
	if errors.Is(err, tui.ErrSignedOut) {
		return errSignIn()
	}
	return err
}

func errSignIn() error {
	return fmt.Errorf("session expired or missing; run 'pythia login'")
}
