package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hweijer/tapplan/app"
	"github.com/hweijer/tapplan/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "tapplan",
	Short: "Plans the cheapest time to heat tap water with a heatpump",
	Long: `tapplan is a one-shot batch job: triggered on a schedule, it reads
the electricity spot price forecast and the persisted planner state,
computes when the heatpump should heat tap water (and, when due, run an
anti-legionella desinfection cycle), programs the device and stores the
updated state.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}
