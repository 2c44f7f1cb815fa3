package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chrisdamba/pupulse/internal/models"
)

// app carries what every subcommand shares once the config is loaded.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *models.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "pupulse",
		Short: "Campus food and stationery ordering engine",
		Long: `pupulse runs the ordering engine behind a campus delivery app: menus from the
food courts and the stationery depot, a cart, checkout to a hostel room, admin
dispatch to delivery partners and delivery tracking. Sessions can be simulated
end to end with their lifecycle events streamed to the configured output.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.Int("seed", 42, "Random seed for generated catalogs and sessions")
	flags.Int("delivery-fee", models.DefaultDeliveryFee, "Flat delivery fee added to every order")
	flags.Int("partner-delivery-bonus", models.DefaultPartnerDeliveryBonus, "Amount a partner earns per delivery")
	flags.String("database-url", "", "Postgres URL to load the catalog from (seeded on first use)")
	a.bindFlags(flags, map[string]string{
		"log_level":              "log-level",
		"log_format":             "log-format",
		"seed":                   "seed",
		"delivery_fee":           "delivery-fee",
		"partner_delivery_bonus": "partner-delivery-bonus",
		"database.url":           "database-url",
	})

	rootCmd.AddCommand(newSimulateCmd(a), newMenuCmd(a), newChatCmd(a))
	return rootCmd
}

// bindFlags ties config keys to flag names, so a flag only overrides the
// config file and environment when it is set.
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := models.LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	a.cfg = cfg

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
