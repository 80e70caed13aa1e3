package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finvix/finvix/internal/config"
	"github.com/finvix/finvix/internal/history"
	"github.com/finvix/finvix/internal/results"
)

// --- login / register / logout ---

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			var err error
			password, err = promptPassword()
			if err != nil {
				return err
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		a.auth.Begin()
		token, err := a.client.Login(cmd.Context(), username, password)
		if err != nil {
			a.auth.Fail()
			return err
		}
		if err := a.auth.Complete(token, username); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		printSuccess("Logged in as %s", username)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, email := args[0], args[1]
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			var err error
			password, err = promptPassword()
			if err != nil {
				return err
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		a.auth.Begin()
		if err := a.client.Register(cmd.Context(), username, email, password); err != nil {
			a.auth.Fail()
			return err
		}
		a.auth.Fail() // registration does not log in; back to anonymous

		printSuccess("Account created. Run `finvix login %s` to continue.", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.auth.Logout(); err != nil {
			return err
		}
		printSuccess("Logged out")
		return nil
	},
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}

func init() {
	loginCmd.Flags().String("password", "", "password (prompted when omitted)")
	registerCmd.Flags().String("password", "", "password (prompted when omitted)")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List locally recorded prediction runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		store, err := a.openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("%s  %s  %-6s  %-11s  %d rows\n",
				colorize(colorCyan, r.ID[:8]),
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Kind,
				r.ModelType,
				r.RowCount,
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Re-render the results of one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		store, err := a.openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := findRun(store, args[0])
		if err != nil {
			return err
		}
		rows, err := run.Rows()
		if err != nil {
			return fmt.Errorf("decoding stored rows: %w", err)
		}

		printStatus("Run", "%s (%s, %s)", run.ID, run.Kind, run.ModelType)
		modelType, err := results.ParseModelType(run.ModelType)
		if err != nil {
			modelType = results.ModelBoth
		}
		renderResultRows(rows, modelType)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// renderResultRows prints prediction rows, showing only the metrics the
// model type produces.
func renderResultRows(rows []results.Row, modelType results.ModelType) {
	for i, row := range rows {
		fmt.Printf("%s\n", colorize(colorBold, fmt.Sprintf("Row %d", i+1)))
		if modelType.ShowROI() {
			fmt.Printf("  ROI: %s\n", row.Display("roi"))
		}
		if modelType.ShowConversions() {
			fmt.Printf("  Conversions: %s\n", row.Display("conversions"))
		}
	}
}

// printRowJSON dumps a full row for inspection.
func printRowJSON(row results.Row) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(row)
}

// findRun resolves a full or prefixed run ID.
func findRun(store *history.Store, id string) (history.Run, error) {
	run, err := store.Get(id)
	if err == nil {
		return run, nil
	}
	if len(id) >= 4 {
		runs, listErr := store.Recent(100)
		if listErr == nil {
			for _, r := range runs {
				if strings.HasPrefix(r.ID, id) {
					return r, nil
				}
			}
		}
	}
	return history.Run{}, fmt.Errorf("run %q not found", id)
}
