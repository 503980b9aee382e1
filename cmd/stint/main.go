package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/stint/internal/app"
	"github.com/dori/stint/internal/config"
	"github.com/dori/stint/internal/ui"
	"github.com/dori/stint/internal/ui/theme"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

// Flags shared by every command
var (
	configPath string
	dbPath     string
	themeName  string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "stint",
	Short: "Track time spent on project tasks",
	Long: `stint keeps stopwatch timers for the tasks of your projects and
records every start/stop interval in a SQLite store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stint v%s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "settings file (default is the user config dir)")
	flags.StringVar(&dbPath, "db", "", "store file to open")
	flags.StringVar(&themeName, "theme", "", "theme name (nord, gruvbox)")
	flags.StringVar(&logFile, "log-file", "", "write diagnostics to this file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the settings file and applies command line overrides
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("locate config: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dbPath != "" {
		cfg.StoreFile = dbPath
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if themeName != "" {
		cfg.Theme = themeName
	}
	return cfg, nil
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Theme != "" {
		t, ok := theme.ByName(cfg.Theme)
		if !ok {
			return fmt.Errorf("unknown theme %q", cfg.Theme)
		}
		theme.SetTheme(t)
	}

	// Create application
	application, err := app.New(app.Options{Config: cfg})
	if err != nil {
		return err
	}

	// Create and run program
	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)

	_, runErr := p.Run()
	if err := application.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
