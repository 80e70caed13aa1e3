package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/finvix/finvix/internal/api"
	"github.com/finvix/finvix/internal/chart"
	"github.com/finvix/finvix/internal/results"
	"github.com/finvix/finvix/internal/ui"
)

var greetingCmd = &cobra.Command{
	Use:   "greeting",
	Short: "Show the landing greeting and a dashboard summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireSession(); err != nil {
			return err
		}

		// Greeting and dashboard are independent; fetch them together.
		var greeting api.GreetingData
		var rows []results.Row

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			var err error
			greeting, err = a.client.Greeting(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			rows, err = a.client.Dashboard(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("%s\n", colorize(colorBold, "Welcome back, "+greeting.Username))
		for _, q := range greeting.Quotes {
			fmt.Printf("  %s\n", colorize(colorCyan, "“"+q+"”"))
		}
		fmt.Printf("\n%d campaigns on the dashboard. Run `finvix dashboard` to see them.\n", len(rows))
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the campaign dashboard",
	Long: `Show the campaign dashboard.

One-shot by default; --watch keeps it on screen and re-fetches at the
configured poll interval until you quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireSession(); err != nil {
			return err
		}

		if watch {
			model := ui.NewWatch(a.client, a.cfg.PollInterval(), a.cfg.Timeout(), out)
			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("running dashboard view: %w", err)
			}
			if m, ok := final.(ui.WatchModel); ok && m.Expired() {
				return fmt.Errorf("session expired — run `finvix login <username>` to continue")
			}
			return nil
		}

		rows, err := a.client.Dashboard(cmd.Context())
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No campaign data yet.")
			return nil
		}

		panels := chart.DashboardPanels(rows)
		fmt.Print(ui.RenderPanels(panels, 100))
		fmt.Printf("%d rows\n", len(rows))
		return nil
	},
}

func init() {
	dashboardCmd.Flags().Bool("watch", false, "keep the dashboard live, polling for updates")
	dashboardCmd.Flags().String("out", ".", "directory for snapshot exports taken from the watch view")
}
