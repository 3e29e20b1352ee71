package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"alphapulse/api"
	"alphapulse/internal/app"
	"alphapulse/internal/config"
	"alphapulse/internal/logger"
	"alphapulse/internal/output"
)

var (
	scanContinuous bool
	scanInterval   time.Duration
	universePath   string
	servePort      int
)

var rootCmd = &cobra.Command{
	Use:   "alphapulse",
	Short: "Multi-asset trading-signal engine",
	Long: `AlphaPulse scans stocks, ETFs, indices and crypto, classifies the macro
regime and scenario, scores every asset across ten feature groups and emits
ranked, sized trade signals.`,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one analysis cycle (or loop with --continuous)",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine()
		if err != nil {
			return err
		}

		if scanContinuous {
			return engine.RunContinuous(cmd.Context(), scanInterval)
		}

		out, err := engine.RunCycle(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(output.ToText(out))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the continuous scanner with the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine()
		if err != nil {
			return err
		}

		settings := config.Load()
		go func() {
			if err := engine.RunContinuous(cmd.Context(), settings.RunInterval); err != nil && err != context.Canceled {
				fmt.Fprintf(os.Stderr, "scanner stopped: %v\n", err)
			}
		}()

		handler := api.ApiHandler{
			Log:    logger.New(),
			Engine: engine,
		}
		return handler.StartApi(servePort)
	},
}

func buildEngine() (*app.Engine, error) {
	log := logger.New()
	engine := app.NewEngine(log, config.Load())

	if universePath != "" {
		universe, err := config.LoadUniverseCSV(universePath)
		if err != nil {
			return nil, err
		}
		engine.SetUniverse(universe)
	}
	return engine, nil
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().StringVar(&universePath, "universe", "", "Path to a symbol,class CSV replacing the built-in universe")
	scanCmd.Flags().BoolVar(&scanContinuous, "continuous", false, "Keep scanning on an interval instead of exiting")
	scanCmd.Flags().DurationVar(&scanInterval, "interval", 15*time.Minute, "Interval between cycles in continuous mode")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP listen port")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
