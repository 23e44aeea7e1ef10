package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/weblog/internal/config"
)

var cfgFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "weblog",
	Short: "weblog: Apache access log analyzer",
	Long: `weblog parses web server access logs in the Apache Common Log Format,
separates malformed lines from valid records, and reports content size
statistics, response code counts, the endpoints producing the most errors,
and response codes per day.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	d := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.weblog.yaml)")
	flags.StringP("output", "o", d.Output, "output format: text, json, logfmt")
	flags.Int("top", d.TopN, "number of error endpoints to report")
	flags.Int("preview", d.Preview, "number of invalid lines to show")
	flags.IntP("workers", "w", d.Workers, "parallel parse workers")
	flags.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", d.LogFormat, "log format: console, json")

	cobra.CheckErr(viper.BindPFlag(config.KeyOutput, flags.Lookup("output")))
	cobra.CheckErr(viper.BindPFlag(config.KeyTop, flags.Lookup("top")))
	cobra.CheckErr(viper.BindPFlag(config.KeyPreview, flags.Lookup("preview")))
	cobra.CheckErr(viper.BindPFlag(config.KeyWorkers, flags.Lookup("workers")))
	cobra.CheckErr(viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format")))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: cannot load .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".weblog")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		cobra.CheckErr(fmt.Errorf("read config %s: %w", cfgFile, err))
	}
}
