package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/obraguard/obraguard/internal/api"
	"github.com/obraguard/obraguard/internal/notifier"
	"github.com/obraguard/obraguard/internal/storage"
	"github.com/obraguard/obraguard/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "obraguard-server",
	Short: "ObraGuard Server - Budget deviation alerting engine",
	Long: `ObraGuard Server evaluates construction project costs against
configured thresholds, raises severity-tiered alerts, and dispatches
notifications to dashboard, email, and webhook channels.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("obraguard-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var cfg *Config

	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	cfg.Verbose = verbose

	// Auto-create data directory
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.Printf("database initialized at %s", cfg.Database.Path)

	var mailer notifier.Mailer
	if cfg.SMTP.Host != "" {
		password := cfg.SMTP.Password
		if env := os.Getenv("OBRAGUARD_SMTP_PASSWORD"); env != "" {
			password = env
		}
		m, err := notifier.NewSMTPMailer(notifier.SMTPConfig{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   password,
			From:       cfg.SMTP.From,
			Recipients: cfg.SMTP.Recipients,
		})
		if err != nil {
			return fmt.Errorf("configure mailer: %w", err)
		}
		mailer = m
	} else {
		log.Printf("SMTP not configured, email notifications disabled")
	}

	srv, err := api.New(&api.Config{
		Address:           cfg.Server.Address,
		DispatchWorkers:   cfg.Server.DispatchWorkers,
		DispatchRateLimit: cfg.Server.DispatchRateLimit,
		Verbose:           cfg.Verbose,
	}, store, mailer)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	log.Printf("starting obraguard-server %s", config.Version)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}
