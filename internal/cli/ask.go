package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pythia-cli/internal/model"
	"pythia-cli/internal/query"
	"pythia-cli/internal/selection"
)

func newAskCmd(app *App) *cobra.Command {
	var (
		questionText string
		idsFlag      []int
		progressed   []int
		tzOverrides  []string
		manualFile   string
		transitFlag  string
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask a question about selected events",
		Example: strings.TrimSpace(`
  pythia ask -q "How do these charts interact?" --ids 1,2
  pythia ask -q "What is unfolding this month?" --ids 3 --progressed 3 \
      --tz 3=Europe/London --transit "2026-08-31 14:00"
  pythia ask -q "What about this chart?" --manual-file chart.txt
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, orch, err := app.deps()
			if err != nil {
				return err
			}

			var transit *time.Time
			if transitFlag != "" {
				at, err := time.ParseInLocation("2006-01-02 15:04", transitFlag, time.Local)
				if err != nil {
					return fmt.Errorf("transit must look like \"2006-01-02 15:04\": %w", err)
				}
				transit = &at
			}

			var src query.Source
			if manualFile != "" {
				text, err := readManual(cmd.InOrStdin(), manualFile)
				if err != nil {
					return err
				}
				src = query.Manual{Text: text}
			} else {
				// The event list comes fresh from the server so the payload
				// matches what is actually stored.
				out := orch.WithSession(cmd.Context(), func(sess model.Session) error {
					return st.Refresh(cmd.Context(), sess)
				})
				if out.Redirect {
					return errSignIn()
				}
				if out.Err != nil {
					return out.Err
				}

				sel := selection.New()
				for _, id := range idsFlag {
					if _, ok := st.EventByID(id); !ok {
						return fmt.Errorf("no saved event with id %d", id)
					}
					sel.ToggleChecked(id)
				}
				for _, id := range progressed {
					if !sel.ToggleProgressed(id) {
						return fmt.Errorf("--progressed %d requires --ids %d", id, id)
					}
				}
				for _, pair := range tzOverrides {
					id, zone, err := parseTzOverride(pair)
					if err != nil {
						return err
					}
					sel.SetTimezoneOverride(id, zone)
				}
				src = query.Selected{Events: st.Events(), Selection: sel}
			}

			req, err := query.Compose("", src, questionText, transit)
			if err != nil {
				return err
			}

			out := orch.Ask(cmd.Context(), req)
			if out.Redirect {
				return errSignIn()
			}
			if out.Err != nil {
				return out.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Answer)
			return nil
		},
	}

	cmd.Flags().StringVarP(&questionText, "question", "q", "", "The question to ask")
	cmd.Flags().IntSliceVar(&idsFlag, "ids", nil, "Event ids to include")
	cmd.Flags().IntSliceVar(&progressed, "progressed", nil, "Subset of --ids that also want a progressed chart")
	cmd.Flags().StringArrayVar(&tzOverrides, "tz", nil, "Progression timezone override, id=Zone (repeatable)")
	cmd.Flags().StringVar(&manualFile, "manual-file", "", "Read chart data from a file instead of saved events (- for stdin)")
	cmd.Flags().StringVar(&transitFlag, "transit", "", "Attach a transit chart for this local moment (2006-01-02 15:04)")
	return cmd
}

func readManual(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseTzOverride(pair string) (int, string, error) {
	idStr, zone, ok := strings.Cut(pair, "=")
	if !ok || zone == "" {
		return 0, "", fmt.Errorf("--tz must look like id=Zone: %q", pair)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil {
		return 0, "", fmt.Errorf("--tz id must be a number: %q", pair)
	}
	return id, zone, nil
}
