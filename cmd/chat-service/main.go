package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	_ "dfchat/cmd/chat-service/docs"
	"dfchat/internal/checks"
	"dfchat/internal/config"
	"dfchat/internal/logger"
	"dfchat/internal/message"
	"dfchat/internal/state"
	"dfchat/internal/version"
	"dfchat/pkg/logging"
)

var (
	configFile string
)

// @title           DiamondFire Chat Service API
// @version         1.0
// @description     Admin API for the chat classification pipeline: message types, game state, streamer mode, hide rules and diagnostics.

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

func main() {
	rootCmd := &cobra.Command{
		Use:   "chat-service",
		Short: "DiamondFire chat classification service",
		Long:  "Chat Service classifies DiamondFire chat lines and cancels the ones streamer mode or custom rules hide",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(typesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(earlyLog *logging.EarlyLog) (*config.Config, error) {
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, err
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat service",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := loadConfig(earlyLog)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				earlyLog.Error("Failed to init logger: %v", err)
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting Chat Service")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.Fatalf("Failed to initialize application: %v", err)
			}

			if err := app.Run(ctx); err != nil {
				log.ErrorwCtx(ctx, "Application error", "error", err)
				return err
			}
			return nil
		},
	}
}

// typesCmd prints the message type registry in classification order.
func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the message types and their classification order",
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := message.NewClassifier(logger.NopLogger(), checks.Default(state.NewTracker(state.Initial()))...)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tTYPE\tSOUND\tLINES\tHIDE CATEGORY")
			for i, chk := range classifier.Checks() {
				t := chk.Type()
				fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%s\n", i, t, t.HasSound(), t.LineCount(), chk.HideCategory())
			}
			fmt.Fprintf(w, "-\t%s\t%t\t%d\t\n", message.Other, message.Other.HasSound(), message.Other.LineCount())
			return w.Flush()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Compare the configured client version with the latest release",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := loadConfig(earlyLog)
			if err != nil {
				return err
			}

			info := version.NewChecker(cfg.Version, cfg.CircuitBreaker, logger.NopLogger()).Check(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "current: %d\nlatest:  %d\n", info.Current, info.Latest)
			if info.UpdateAvailable {
				fmt.Fprintln(cmd.OutOrStdout(), "an update is available")
			}
			return nil
		},
	}
}
