package cmd

import (
	"fmt"
	"os"

	"notesapi/config"
	"notesapi/core"
	"notesapi/database"
	"notesapi/logger"
	"notesapi/version"

	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	dbPath         string
	appLogPathFlag string
	logLevelFlag   string

	store *database.Store
)

// Commands declare what they need from the database through this annotation.
const (
	storeAnnotation = "store"
	storeMigrated   = "migrated" // schema brought up to date before running
	storeRaw        = "raw"      // opened as-is; used by the migrate commands
)

var rootCmd = &cobra.Command{
	Use:   "notesapi",
	Short: "Notes and tags, served over HTTP and stored in SQLite",
	Long: `notesapi keeps notes and the tags attached to them in a SQLite database.

Run "notesapi server" to expose the JSON API, or use the note and tag
commands to work with the same database from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile, config.Overrides{
			DBPath:     dbPath,
			AppLogPath: appLogPathFlag,
			LogLevel:   logLevelFlag,
		}); err != nil {
			return fmt.Errorf("failed to initialize config in PersistentPreRunE: %w", err)
		}

		mode := storeMode(cmd)
		if mode == "" {
			return nil
		}

		path := config.AppConfig.Database.Path
		if path == "" {
			return fmt.Errorf("database path is empty after checking flag and config")
		}

		var err error
		switch mode {
		case storeMigrated:
			logger.Debug("PersistentPreRunE: opening and migrating database at '%s'", path)
			store, err = database.InitDB(path, database.Migrations())
		case storeRaw:
			logger.Debug("PersistentPreRunE: opening database at '%s'", path)
			store, err = database.Open(path)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize database at %s: %w", path, err)
		}
		return nil
	},
}

// storeMode returns the nearest store annotation on cmd or its parents.
func storeMode(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if mode, ok := c.Annotations[storeAnnotation]; ok {
			return mode
		}
	}
	return ""
}

func closeStore() {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Error("Failed to close database: %v", err)
	}
	store = nil
}

func noteService() *core.NoteService { return core.NewNoteService(store) }
func tagService() *core.TagService   { return core.NewTagService(store) }

func Execute() {
	err := rootCmd.Execute()
	closeStore()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.AppVersion
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/notesapi/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "path to SQLite database file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&appLogPathFlag, "app-log", "", "path for the application log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR (overrides config/default)")
}
