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
	databaseURL   string
	joinURL       string
	tokenValidFor time.Duration
}

// newCmd creates the command that runs the account server, binding each flag to an environment variable.
func newCmd(cfg *config, l *log.Logger) *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "accountd",
		Short:         "Stores user accounts and signs the login tokens the matchmaker accepts.",
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

	fs.StringVar(&cfg.addr, "addr", ":9092", "address to serve the account endpoints on (env: ADDR)")
	fs.StringVar(&cfg.secret, "secret", "", "key that signs login tokens (env: SECRET)")
	fs.StringVar(&cfg.databaseURL, "db-url", "", "user store url, by scheme: postgres://, mongodb://, or firestore://project-id (env: DATABASE_URL)")
	fs.StringVar(&cfg.joinURL, "join-url", "ws://127.0.0.1:9091", "matchmaking server address the join QR code encodes (env: JOIN_URL)")
	fs.DurationVar(&cfg.tokenValidFor, "token-valid-for", 24*time.Hour, "how long issued login tokens stay valid (env: TOKEN_VALID_FOR)")

	_ = v.BindEnv("db-url", "DATABASE_URL")

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
