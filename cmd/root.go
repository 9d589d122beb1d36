package cmd

import (
	"fmt"
	"os"

	"copyjob/internal/backup"
	"copyjob/internal/config"
	"copyjob/internal/db"
	"copyjob/internal/enumerator"
	"copyjob/internal/logger"
	"copyjob/internal/model"
	"copyjob/internal/repository"
	"copyjob/internal/state"
	"copyjob/internal/translog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	cfg       *config.Config
	debug     bool
	configDir string
	app       *App
)

// App holds the components shared by every command.
type App struct {
	Log      *zap.Logger
	DB       *gorm.DB
	Jobs     *repository.JobRepository
	States   *state.Store
	TransLog *translog.Log
	Manager  *backup.Manager
	Executor *backup.Executor
}

// readOnlyCmds only look at persisted state; they must not rewrite the
// state file another process may be updating.
var readOnlyCmds = map[string]bool{
	"status": true, "logs": true, "list": true, "show": true,
}

func newApp(cfg *config.Config, log *zap.Logger, loadState bool) (*App, error) {
	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	tlog, err := translog.New(cfg.LogDir, log)
	if err != nil {
		return nil, err
	}

	jobs := repository.NewJobRepository(gdb, cfg.MaxJobs)
	states := state.NewStore(cfg.StateFile, log)
	manager := backup.NewManager(jobs, states, tlog, log)

	if loadState {
		if err := manager.LoadState(); err != nil {
			return nil, err
		}
	}

	return &App{
		Log:      log,
		DB:       gdb,
		Jobs:     jobs,
		States:   states,
		TransLog: tlog,
		Manager:  manager,
		Executor: backup.NewExecutor(jobs, enumerator.New(cfg.IgnoreList), tlog, states, log),
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.DB != nil {
		_ = db.Close(a.DB)
	}
	logger.Sync(a.Log)
}

var rootCmd = &cobra.Command{
	Use:           "copyjob",
	Short:         "Named directory-to-directory backup jobs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		log, err := logger.New(debug)
		if err != nil {
			return err
		}

		cfg, err = config.Load(configDir)
		if err != nil {
			return err
		}

		if cmd.Name() == "stop" || cmd.Name() == "install" || cmd.Name() == "uninstall" {
			app = &App{Log: log}
			return nil
		}

		app, err = newApp(cfg, log, !readOnlyCmds[cmd.Name()])
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		app.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// persistedStates reads the last snapshot written by any process.
func persistedStates() (map[string]model.JobState, error) {
	states, err := state.ReadFile(cfg.StateFile)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]model.JobState, len(states))
	for _, st := range states {
		byName[st.Name] = st
	}

	return byName, nil
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.DaemonPort, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.copyjob)")
}
