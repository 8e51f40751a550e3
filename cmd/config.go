package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modehaus/stylesynth/models"
	"github.com/modehaus/stylesynth/types"
)

const (
	configName = ".stylesynth"
	envPrefix  = "STYLESYNTH"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	return models.ValidateStruct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present. It's okay if it doesn't exist.
	_ = godotenv.Load()

	// Environment variable handling must be set up BEFORE reading the
	// config file, e.g. STYLESYNTH_STORAGE_BACKEND=redis.
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	// Engine tunables.
	viper.SetDefault("engine.decayRate", 0.98)
	viper.SetDefault("engine.epsilon", 0.1)
	viper.SetDefault("engine.signatureTopK", 4)
	viper.SetDefault("engine.minCreativity", 0.3)
	viper.SetDefault("engine.maxCreativity", 1.2)
	viper.SetDefault("engine.maxBatchSize", 16)
	viper.SetDefault("engine.seed", 0)
	viper.SetDefault("engine.respectUserIntent", true)
	viper.SetDefault("engine.vocabularyPath", "")

	// Persistence.
	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.path", "stylesynth.db")
	viper.SetDefault("storage.redisAddr", "localhost:6379")
	viper.SetDefault("storage.redisDB", 0)

	// Telemetry is opt-in.
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.apiKey", "")
	viper.SetDefault("telemetry.endpoint", "")

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintln(os.Stderr, "Error unmarshaling config:", err)
		os.Exit(1)
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}
}

// GetConfig returns the loaded application configuration.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
