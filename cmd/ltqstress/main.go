// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ltqstress runs stress workloads against ltq.Linked.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.hybscloud.com/ltq/internal/stress"
	"github.com/spf13/cobra"
)

// overrides holds flag values that replace configuration file values.
type overrides struct {
	duration  time.Duration
	producers int
	consumers int
	mode      string
	logLevel  string
}

func main() {
	if err := cmdRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func cmdRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "ltqstress",
		Short:        "Stress workloads for the ltq linked transfer queue",
		SilenceUsage: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.AddCommand(cmdRun())
	root.AddCommand(cmdWhitebox())
	return root
}

func cmdRun() *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "run [CONFIG-FILE]",
		Short: "Run the configured workload and report violations",
		Args:  cobra.MaximumNArgs(1),
		Example: `  ltqstress run
  ltqstress run stress.yml --mode transfer --duration 5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := stress.DefaultConfig()
			if len(args) == 1 {
				if err := stress.ReadConfig(cfg, args[0]); err != nil {
					return err
				}
			}
			o.apply(cmd, cfg)
			return execute(cmd.Context(), cfg)
		},
	}
	o.register(cmd, true)
	return cmd
}

func cmdWhitebox() *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "whitebox",
		Short: "Add and remove one value while traversing, for a fixed time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := stress.Whitebox(time.Second)
			o.apply(cmd, cfg)
			return execute(cmd.Context(), cfg)
		},
	}
	o.register(cmd, false)
	return cmd
}

func (o *overrides) register(cmd *cobra.Command, withMode bool) {
	cmd.Flags().DurationVar(&o.duration, "duration", 0, "Run length, e.g. 2s")
	cmd.Flags().IntVar(&o.producers, "producers", 0, "Producer (mutator) goroutines")
	cmd.Flags().IntVar(&o.consumers, "consumers", 0, "Consumer (traverser) goroutines")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "", "TRACE, DEBUG, INFO, WARN or ERROR")
	if withMode {
		cmd.Flags().StringVar(&o.mode, "mode", "", "buffered, transfer or traverse")
	}
}

// apply copies the flags the user set over cfg.
func (o *overrides) apply(cmd *cobra.Command, cfg *stress.Config) {
	flags := cmd.Flags()
	if flags.Changed("duration") {
		cfg.DurationMs = int(o.duration / time.Millisecond)
	}
	if flags.Changed("producers") {
		cfg.Producers = o.producers
	}
	if flags.Changed("consumers") {
		cfg.Consumers = o.consumers
	}
	if flags.Changed("mode") {
		cfg.Mode = stress.Mode(o.mode)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
}

func execute(ctx context.Context, cfg *stress.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := stress.ParseLevel(cfg.LogLevel)
	log := stress.NewLogger(os.Stderr, level)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := stress.Run(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("run %s: %w", stress.Describe(cfg), err)
	}
	fmt.Println(r)
	if err := r.Err(); err != nil {
		return fmt.Errorf("run %s: %w", stress.Describe(cfg), err)
	}
	return nil
}
