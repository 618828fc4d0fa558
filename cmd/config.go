package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-search/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for ytsearch.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with database connection settings and pipeline defaults.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		if err := config.InitConfig(databaseURL); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Created configuration file: %s\n", configPath)
		fmt.Println("Please edit the database_url (or store and mongo_uri) in this file to match your database.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration file path and effective settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration file: %s\n\n", configPath)

		// Load and display current config
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		fmt.Printf("STORE: %s\n", cfg.Store)
		fmt.Printf("DATABASE_URL: %s\n", cfg.DatabaseURL)
		fmt.Printf("MONGO_URI: %s\n", cfg.MongoURI)
		fmt.Printf("MONGO_DATABASE: %s\n", cfg.MongoDatabase)
		fmt.Printf("INDEX_PATH: %s\n", cfg.IndexPath)
		fmt.Printf("LANGUAGES: %s\n", strings.Join(cfg.Languages, ", "))
		fmt.Printf("BATCH SIZES: video=%d metadata=%d track=%d\n", cfg.VideoBatchSize, cfg.MetadataBatchSize, cfg.TrackBatchSize)
		fmt.Printf("WORKERS: %d\n", cfg.Workers)
		fmt.Printf("CONTEXT_WINDOW: %d\n", cfg.ContextWindow)
		fmt.Printf("FALLBACK_POLICY: %s (collect_both=%t)\n", cfg.FallbackPolicy, cfg.CollectBoth)
		fmt.Printf("FETCH_TIMEOUT: %s\n", cfg.FetchTimeout)
		fmt.Printf("POOL: max=%d min=%d lifetime=%s idle=%s connect_timeout=%s\n",
			cfg.Pool.MaxConns, cfg.Pool.MinConns, cfg.Pool.MaxConnLifetime, cfg.Pool.MaxConnIdleTime, cfg.Pool.ConnectTimeout)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
