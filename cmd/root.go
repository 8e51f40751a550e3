package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modehaus/stylesynth/internal/engine"
	"github.com/modehaus/stylesynth/internal/telemetry"
	"github.com/modehaus/stylesynth/store"
	"github.com/modehaus/stylesynth/types"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stylesynth",
	Short: "StyleSynth turns fashion briefs into image-generation prompts.",
	Long: `StyleSynth synthesizes weighted image-generation prompts from natural
language requests, learning each user's aesthetic from their catalog and
from feedback on past generations.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.stylesynth.yaml or $HOME/.stylesynth.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// newRepository opens the configured persistence backend. The memory
// backend returns nil; the engine keeps posteriors in process only.
func newRepository() (store.DistributionRepository, error) {
	cfg := GetConfig()
	switch cfg.Storage.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Storage.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
		return store.NewRedisStore(client), nil
	case "memory":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newEngine assembles the synthesis engine from the loaded configuration.
// Callers own the returned repository and must close both.
func newEngine() (*engine.Engine, store.DistributionRepository, error) {
	cfg := GetConfig()
	repo, err := newRepository()
	if err != nil {
		return nil, nil, fmt.Errorf("open storage backend: %w", err)
	}

	eng, err := engine.New(cfg.Engine, engine.Deps{
		Repository: repo,
		Telemetry: telemetry.NewClient(telemetry.Config{
			Enabled:  cfg.Telemetry.Enabled,
			APIKey:   cfg.Telemetry.APIKey,
			Endpoint: cfg.Telemetry.Endpoint,
		}),
	})
	if err != nil {
		if repo != nil {
			_ = repo.Close()
		}
		return nil, nil, err
	}
	return eng, repo, nil
}

// closeEngine releases the engine and its repository, logging failures
// instead of masking the command's own error.
func closeEngine(eng *engine.Engine, repo store.DistributionRepository) {
	if err := eng.Close(); err != nil {
		slog.Warn("telemetry close failed", "error", err)
	}
	if repo != nil {
		if err := repo.Close(); err != nil {
			slog.Warn("storage close failed", "code", types.ErrCodeStorage, "error", err)
		}
	}
}
