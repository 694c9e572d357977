package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/permutationlock/catacrawl/server/auth"
)

// config contains the options that can be set by flags or environment variables.
type config struct {
	addr       string
	secret     string
	issuers    []string
	tickPeriod time.Duration
	debug      bool
}

// newCmd creates the command that runs the game server, binding each flag to an environment variable.
func newCmd(cfg *config, l *log.Logger) *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "gameserver",
		Short:         "Hosts games and relays moves between matched players.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, l)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.addr, "addr", ":9090", "address to serve websocket upgrades on (env: ADDR)")
	fs.StringVar(&cfg.secret, "secret", "", "key that verifies login token signatures (env: SECRET)")
	fs.StringSliceVar(&cfg.issuers, "issuers", []string{auth.AuthIssuer, auth.MatchmakerIssuer}, "issuers to accept login tokens from (env: ISSUERS)")
	fs.DurationVar(&cfg.tickPeriod, "tick-period", 500*time.Millisecond, "time between game updates (env: TICK_PERIOD)")
	fs.BoolVar(&cfg.debug, "debug", false, "log the messages that are received and sent (env: DEBUG)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
