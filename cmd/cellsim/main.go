// Command cellsim runs the cell network simulation from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cellnet-io/cellnet/mind"
	"github.com/cellnet-io/cellnet/network"
)

var (
	flagConfig   string
	flagCells    int
	flagTicks    int
	flagInterval time.Duration
	flagSeed     int64
	flagPurpose  string
	flagRemote   string
)

func main() {
	root := &cobra.Command{
		Use:           "cellsim",
		Short:         "Simulate a network of autonomous cell agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	runCmd.Flags().IntVarP(&flagCells, "cells", "n", 10, "initial cell count")
	runCmd.Flags().IntVarP(&flagTicks, "ticks", "t", 0, "number of ticks to run (0 runs until interrupted)")
	runCmd.Flags().DurationVarP(&flagInterval, "interval", "i", 0, "tick interval (defaults to config)")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed (0 uses the clock)")
	runCmd.Flags().StringVarP(&flagPurpose, "purpose", "p", "", "network purpose")
	runCmd.Flags().StringVar(&flagRemote, "planner-url", "", "base URL of a remote reasoning service")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := network.DefaultConfig().Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	root.AddCommand(runCmd, configCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := network.DefaultConfig()
	if flagConfig != "" {
		loaded, err := network.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagInterval > 0 {
		cfg.TickInterval = flagInterval
	}

	minds := mind.NewManager()
	if flagRemote != "" {
		remote := mind.NewRemoteProvider(mind.RemoteConfig{BaseURL: flagRemote})
		if err := minds.RegisterProvider(remote); err != nil {
			return err
		}
	}

	logger := network.NewDefaultLogger()
	net := network.New(cfg, minds, logger)

	if err := net.InitializeNetwork(flagCells); err != nil {
		return err
	}
	if flagPurpose != "" {
		if err := net.SetPurpose(flagPurpose); err != nil {
			return err
		}
	}

	driver := network.NewDriver(net, cfg.TickInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := driver.Start(ctx); err != nil {
		return err
	}
	defer driver.Stop()

	report := time.NewTicker(10 * cfg.TickInterval)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			printSummary(net)
			return nil
		case <-report.C:
			printSummary(net)
			if flagTicks > 0 && net.TickCount() >= flagTicks {
				return nil
			}
		}
	}
}

func printSummary(net *network.Network) {
	state := net.Snapshot()

	alive, sleeping := 0, 0
	for _, c := range state.Cells {
		if !c.IsAlive {
			continue
		}
		alive++
		if c.Status == network.StatusSleeping {
			sleeping++
		}
	}

	fmt.Printf("tick=%d cells=%d alive=%d sleeping=%d messages=%d\n",
		state.TickCount, len(state.Cells), alive, sleeping, len(state.Messages))
}
