package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config contains the options that can be set by flags or environment variables.
type config struct {
	addr          string
	secret        string
	matchPeriod   time.Duration
	tokenValidFor time.Duration
	debug         bool
}

// newCmd creates the command that runs the matchmaking server, binding each flag to an environment variable.
func newCmd(cfg *config, l *log.Logger) *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "matchmaker",
		Short:         "Pairs queued sessions into games and issues signed join tokens.",
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

	fs.StringVar(&cfg.addr, "addr", ":9091", "address to serve websocket upgrades on (env: ADDR)")
	fs.StringVar(&cfg.secret, "secret", "", "key that verifies login tokens and signs join tokens (env: SECRET)")
	fs.DurationVar(&cfg.matchPeriod, "match-period", 100*time.Millisecond, "time between matchmaker runs (env: MATCH_PERIOD)")
	fs.DurationVar(&cfg.tokenValidFor, "token-valid-for", time.Hour, "how long issued join tokens stay valid, covering mid-game reconnects (env: TOKEN_VALID_FOR)")
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
