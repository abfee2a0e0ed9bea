package cmd

import (
	"github.com/spf13/viper"

	equitysync "github.com/japanir/equitysync"
)

// clientOptions translates bound flags into client options. Zero values
// fall through to the configuration file and built in defaults.
func clientOptions() []equitysync.Option {
	opts := []equitysync.Option{
		equitysync.WithConfigFile(viper.GetString("config")),
		equitysync.WithRetryValidation(viper.GetBool("retry-validation")),
	}

	if v := viper.GetString("registry"); v != "" {
		opts = append(opts, equitysync.WithRegistry(v))
	}
	if v := viper.GetString("output-dir"); v != "" {
		opts = append(opts, equitysync.WithOutputDir(v))
	}
	if v := viper.GetInt("limit"); v > 0 {
		opts = append(opts, equitysync.WithLimit(v))
	}
	if v := viper.GetInt("skip"); v > 0 {
		opts = append(opts, equitysync.WithSkip(v))
	}
	if v := viper.GetString("ticker"); v != "" {
		opts = append(opts, equitysync.WithTicker(v))
	}
	if v := viper.GetInt("workers"); v > 0 {
		opts = append(opts, equitysync.WithWorkers(v))
	}
	if v := viper.GetInt("batch-size"); v > 0 {
		opts = append(opts, equitysync.WithBatchSize(v))
	}
	if v := viper.GetDuration("batch-delay"); v > 0 {
		opts = append(opts, equitysync.WithBatchDelay(v))
	}
	return opts
}
