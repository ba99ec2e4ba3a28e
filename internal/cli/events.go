package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pythia-cli/internal/log"
	"pythia-cli/internal/session"
	"pythia-cli/internal/store"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Saved chart event commands",
	}
	cmd.AddCommand(newEventsListCmd(app))
	cmd.AddCommand(newEventsAddCmd(app))
	cmd.AddCommand(newEventsRmCmd(app))
	return cmd
}

func newEventsListCmd(app *App) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved events",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sessions, _, err := app.deps()
			if err != nil {
				return err
			}
			sess, err := sessions.GetSession(cmd.Context())
			if err != nil {
				return mapAuthErr(err)
			}
			if err := st.Refresh(cmd.Context(), sess); err != nil {
				return mapAuthErr(err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(st.Events())
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newEventsAddCmd(app *App) *cobra.Command {
	var in store.FormInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new chart event",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sessions, _, err := app.deps()
			if err != nil {
				return err
			}
			// Validate before touching the network.
			if _, err := in.Normalize(); err != nil {
				return err
			}
			sess, err := sessions.GetSession(cmd.Context())
			if err != nil {
				return mapAuthErr(err)
			}
			ev, err := st.Create(cmd.Context(), sess, in)
			if err != nil {
				return mapAuthErr(err)
			}
			log.Info("event saved", "eventId", ev.ID, "label", ev.Label)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved event %d (%s).\n", ev.ID, ev.Label)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Label, "label", "", "Event label (e.g. a person's name)")
	cmd.Flags().StringVar(&in.Year, "year", "", "Birth year")
	cmd.Flags().StringVar(&in.Month, "month", "", "Birth month (1-12)")
	cmd.Flags().StringVar(&in.Day, "day", "", "Birth day (1-31)")
	cmd.Flags().StringVar(&in.Hour, "hour", "", "Birth hour (1-12)")
	cmd.Flags().StringVar(&in.Minute, "minute", "", "Birth minute (0-59)")
	cmd.Flags().StringVar(&in.AMPM, "ampm", "AM", "AM or PM")
	cmd.Flags().BoolVar(&in.TimeUnknown, "time-unknown", false, "Birth time unknown (uses 12:00 PM)")
	cmd.Flags().StringVar(&in.Location, "location", "", "Birth location (e.g. \"Paris, France\")")
	return cmd
}

func newEventsRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <event-id>",
		Short: "Delete a saved event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("event id must be a number: %q", args[0])
			}

			// Destructive and irreversible: confirm unless --yes.
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete event %d? [y/N] ", id)
				r := bufio.NewReader(cmd.InOrStdin())
				line, _ := r.ReadString('\n')
				if !strings.EqualFold(strings.TrimSpace(line), "y") {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			st, sessions, _, err := app.deps()
			if err != nil {
				return err
			}
			sess, err := sessions.GetSession(cmd.Context())
			if err != nil {
				return mapAuthErr(err)
			}
			if err := st.Delete(cmd.Context(), sess, id); err != nil {
				return mapAuthErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %d.\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

// mapAuthErr converts a dead session into the sign-in guidance instead of a
// generic API error.
func mapAuthErr(err error) error {
	if errors.Is(err, session.ErrUnauthenticated) {
		return errSignIn()
	}
	return err
}
