package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/triqai/enrich-go/internal/enricher"
	"github.com/triqai/enrich-go/pkg/cache"
	"github.com/triqai/enrich-go/pkg/client"
	"github.com/triqai/enrich-go/pkg/logging"
	"github.com/triqai/enrich-go/pkg/models"
	"github.com/triqai/enrich-go/pkg/ratelimit"
)

func runEnrich(cmd *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	logCfg.Pretty = true
	if viper.GetBool("verbose") {
		logCfg.Level = logging.LevelDebug
	} else {
		logCfg.Level = logging.LevelWarn
	}
	logging.Setup(logCfg)
	log := logging.NewLogger("cli")

	ctx := cmd.Context()
	input := viper.GetString("input")

	txns, err := enricher.LoadCSV(input)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		return fmt.Errorf("no valid transactions found in %s", input)
	}
	fmt.Printf("Loaded %d transactions from %s\n", len(txns), input)

	if viper.GetBool("dry_run") {
		printDryRun(txns)
		return nil
	}

	cfg, err := buildClientConfig(cmd, log)
	if err != nil {
		return err
	}
	cli, err := client.New(cfg)
	if err != nil {
		return err
	}

	enr, err := enricher.New(cli, viper.GetString("output_dir"))
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(txns),
		progressbar.OptionSetDescription("Enriching"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)

	start := time.Now()
	results, err := enr.Enrich(ctx, txns, func(completed, _ int) {
		_ = bar.Set(completed)
	})
	_ = bar.Finish()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("enrichment interrupted")
		}
		return err
	}
	fmt.Printf("Enriched %d transactions in %s\n\n", len(results), time.Since(start).Round(time.Millisecond))

	format := enricher.Format(viper.GetString("format"))
	if format != enricher.FormatJSON && format != enricher.FormatJSONL {
		return fmt.Errorf("unsupported output format %q (expected json or jsonl)", format)
	}

	resultsPath, err := enr.SaveResults(results, "", format)
	if err != nil {
		return err
	}
	summaryPath, err := enr.SaveSummary(results, "")
	if err != nil {
		return err
	}

	fmt.Println(enricher.Report(results))
	fmt.Printf("\nResults: %s\nSummary: %s\n", resultsPath, summaryPath)

	if state, ok := cli.RateLimit(); ok && state.Remaining != ratelimit.Unknown {
		if state.Limit != ratelimit.Unknown {
			fmt.Printf("Rate limit quota: %d/%d remaining\n", state.Remaining, state.Limit)
		} else {
			fmt.Printf("Rate limit quota: %d remaining\n", state.Remaining)
		}
	}
	return nil
}

// buildClientConfig assembles the client configuration from flags and
// environment. Flags win over environment variables.
func buildClientConfig(cmd *cobra.Command, log zerolog.Logger) (client.Config, error) {
	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}
	if apiKey == "" {
		return client.Config{}, fmt.Errorf("API key not set: use --api-key or the TRIQAI_API_KEY environment variable")
	}

	cfg := client.DefaultConfig(apiKey)
	if mc, _ := cmd.Flags().GetInt("max-concurrent"); mc > 0 {
		cfg.MaxConcurrent = mc
	} else if mc := viper.GetInt("max_concurrent"); mc > 0 {
		cfg.MaxConcurrent = mc
	}
	if delay := viper.GetFloat64("request_delay"); delay > 0 {
		cfg.RequestDelay = time.Duration(delay * float64(time.Second))
	}
	if timeout := viper.GetFloat64("request_timeout"); timeout > 0 {
		cfg.Timeout = time.Duration(timeout * float64(time.Second))
	}
	if retries := viper.GetInt("max_retries"); retries > 0 {
		cfg.MaxRetries = retries
	}

	if url := viper.GetString("redis_url"); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return client.Config{}, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		} else {
			cfg.Cache = cache.NewManager(rdb, cache.DefaultTTL)
		}
	}
	return cfg, nil
}

func printDryRun(txns []models.Transaction) {
	fmt.Println("Dry run: no API calls will be made.")
	n := len(txns)
	if n > 5 {
		n = 5
	}
	for _, t := range txns[:n] {
		fmt.Printf("  [%s/%s] %s\n", t.Country, t.Type, t.Title)
	}
	if len(txns) > n {
		fmt.Printf("  ... and %d more\n", len(txns)-n)
	}
}
