package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/chainz/config"
)

var (
	demoAll  bool
	demoPace time.Duration

	demoCmd = &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run demonstration scenarios",
		Long: `Run a scenario against the in-memory organization service.

Use "chainz list" to see the scenarios, or --all to run every one in order.
Retry delays and attempts come from the loaded configuration.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var completions []string
			for _, s := range scenarios() {
				if strings.HasPrefix(s.Name, toComplete) {
					completions = append(completions, s.Name)
				}
			}
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			env := newEnv(cfg, cmd.OutOrStdout(), demoPace)
			defer env.Close()
			return runDemo(ctx, env, args, demoAll)
		},
	}
)

func init() {
	demoCmd.Flags().BoolVar(&demoAll, "all", false, "Run all scenarios sequentially")
	demoCmd.Flags().DurationVar(&demoPace, "pace", 100*time.Millisecond, "Delay before each record in the loop scenarios")
}

func loadConfig() (*config.Config, error) {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	return config.Load(opts...)
}

func runDemo(ctx context.Context, env *Env, args []string, all bool) error {
	var selected []Scenario
	switch {
	case all:
		selected = scenarios()
	case len(args) == 1:
		s, ok := scenarioByName(args[0])
		if !ok {
			return fmt.Errorf("unknown scenario %q (see chainz list)", args[0])
		}
		selected = []Scenario{s}
	default:
		return fmt.Errorf("name a scenario or pass --all (see chainz list)")
	}

	for _, s := range selected {
		fmt.Fprintf(env.Out, "\n== %s: %s\n", s.Name, s.Description)
		if err := s.Run(ctx, env); err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	return nil
}
