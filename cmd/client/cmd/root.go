package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eventky/cmd/client/cmd/types"
	"eventky/internal/app/client"
	"eventky/internal/app/client/config"
	"eventky/internal/utils/logger"
)

var (
	cfgFile    string
	debug      bool
	jsonOutput bool
	app        *client.App
)

var rootCmd = &cobra.Command{
	Use:   "eventky",
	Short: "Eventky - calendars and events on your own storage",
	Long: `Eventky publishes calendars and events under your key on a
decentralized storage network, and reads those of others.

Run "eventky init" once to create your identity, then
"eventky auth signup" to register it with a homeserver.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	log := logger.Discard()
	if debug {
		log = logger.New(cfg.Env)
	}

	app = client.New(cfg, log)
	cmd.SetContext(types.WithEnv(cmd.Context(), &types.Env{
		Cfg:  cfg,
		Log:  log,
		App:  app,
		JSON: jsonOutput,
		Out:  cmd.OutOrStdout(),
	}))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log to stdout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}
