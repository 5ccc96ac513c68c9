package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/swipequiz/internal/config"
	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/services"
	"github.com/vytor/swipequiz/internal/swipe"
)

var (
	logLevel string
	logFile  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Swipe through quiz activity cards in the terminal",
	Long: `swipe plays a deck of activity cards with the same gesture engine the
quiz server runs: drag a card past the threshold (or fling it) to accept or
reject it, let go early and it springs back.

Engine thresholds come from the same environment variables as the server
(SWIPE_DISTANCE, SWIPE_VELOCITY, VIEWPORT_WIDTH, EXIT_DURATION_MS, FRAME_RATE).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR); defaults to LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
}

func setupLogging(stderr io.Writer) error {
	level := logLevel
	if level == "" {
		level = config.Load().LogLevel
	}
	out := stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
	}
	logger.SetDefault(logger.New(
		logger.WithLevel(logger.ParseLevel(level)),
		logger.WithOutput(out),
	))
	return nil
}

// engineConfig reads engine tuning from the environment.
func engineConfig() (swipe.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return swipe.Config{}, err
	}
	return services.EngineConfig(cfg, logger.Default()), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
