package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "campo",
	Short: "Field capture client for liquidapp claims",
	Long: `campo uploads claim photos to the liquidapp API, follows their damage and
fraud analyses and tells the adjuster whether the capture step is complete.`,
	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "http://localhost:8080", "liquidapp API base URL")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "per-request timeout")
	rootCmd.PersistentFlags().String("redis-host", "localhost", "Redis host for realtime analysis events")
	rootCmd.PersistentFlags().String("redis-port", "6379", "Redis port")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	for _, name := range []string{"api-url", "timeout", "redis-host", "redis-port", "redis-password", "log-level"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(clientCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// LIQUIDAPP_API_URL, LIQUIDAPP_REDIS_HOST and friends; flags win
	viper.SetEnvPrefix("LIQUIDAPP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", viper.GetString("log-level"), err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
