// Package main provides the command-line interface of the projection engine.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/nba-comps/internal/config"
	"github.com/yourusername/nba-comps/internal/database"
	"github.com/yourusername/nba-comps/internal/datasource"
	"github.com/yourusername/nba-comps/internal/logger"
	"github.com/yourusername/nba-comps/internal/projection"
	"github.com/yourusername/nba-comps/internal/repository"
	"github.com/yourusername/nba-comps/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default config/config.yaml or $NBA_COMPS_CONFIG_PATH)")

	rootCmd.AddCommand(projectCmd, batchCmd, evaluateCmd, diagnosticsCmd, importCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "projector",
	Short:         "Project next-season player lines from similar player-seasons",
	Long:          `Projects a player's next-season statistics as the inverse-distance weighted average of what the most similar historical player-seasons did in the season that followed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("projector %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}

	return config.Validate(cfg)
}

// openRepositories connects to the configured database on first use.
func openRepositories(ctx context.Context) (*repository.Repositories, error) {
	if repos != nil {
		return repos, nil
	}

	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	return repos, nil
}

// loadProjector reads the configured source and builds a projector snapshot.
func loadProjector(ctx context.Context) (*projection.Projector, error) {
	factory := datasource.NewFactory(cfg, appLog)
	if cfg.Data.Source == string(datasource.PostgresSourceType) {
		r, err := openRepositories(ctx)
		if err != nil {
			return nil, err
		}
		factory = factory.WithLister(r.PlayerSeason)
	}

	source, err := factory.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create data source: %w", err)
	}

	engineCfg, err := service.EngineConfigFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid projection configuration: %w", err)
	}
	// The CLI answers one question per process.
	engineCfg.CacheTTL = 0

	return service.NewEngine(source, engineCfg, appLog).Reload(ctx)
}
