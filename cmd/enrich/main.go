package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"

	rootCmd = &cobra.Command{
		Use:   "enrich",
		Short: "Enrich bank transactions using the Triqai API",
		Long: `enrich transforms raw bank transactions into structured data: merchant,
category, location, and more, resolved by the Triqai enrichment API.

Input is a CSV with columns: country, type, title, and an optional comment.
Results are written as JSON or JSONL along with an aggregate summary.`,
		RunE:          runEnrich,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringP("input", "i", "data/transactions.csv", "path to input CSV file")
	flags.StringP("output-dir", "o", "output", "directory for output files")
	flags.StringP("format", "f", "json", "output format (json, jsonl)")
	flags.IntP("max-concurrent", "c", 0, "maximum concurrent requests (default: from env or 5)")
	flags.StringP("api-key", "k", "", "Triqai API key (default: from TRIQAI_API_KEY)")
	flags.BoolP("verbose", "v", false, "enable verbose logging")
	flags.Bool("dry-run", false, "load transactions but don't make API calls")

	_ = viper.BindPFlag("input", flags.Lookup("input"))
	_ = viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("dry_run", flags.Lookup("dry-run"))

	_ = viper.BindEnv("api_key", "TRIQAI_API_KEY")
	_ = viper.BindEnv("max_concurrent", "MAX_CONCURRENT_REQUESTS")
	_ = viper.BindEnv("request_delay", "REQUEST_DELAY")
	_ = viper.BindEnv("request_timeout", "REQUEST_TIMEOUT")
	_ = viper.BindEnv("max_retries", "MAX_RETRIES")
	_ = viper.BindEnv("redis_url", "REDIS_URL")

	viper.SetDefault("max_concurrent", 5)
	viper.SetDefault("request_delay", 0.1)
	viper.SetDefault("request_timeout", 30.0)
	viper.SetDefault("max_retries", 3)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("enrich", version)
		},
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
