package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mailpilot/internal/bot"
	"mailpilot/internal/channel"
	"mailpilot/internal/config"
	"mailpilot/internal/domain"
	"mailpilot/internal/gmail"
	"mailpilot/internal/googleauth"
	"mailpilot/internal/ledger"
	"mailpilot/internal/llm"
	"mailpilot/internal/prompt"
	"mailpilot/internal/sheets"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "mailpilot",
		Short: "MailPilot: Telegram bot that drafts replies for your unread mail",
		Long:  "MailPilot receives Telegram webhook updates, fetches unread Gmail from a selected sender, asks an OpenAI-compatible completion service for reply suggestions, and keeps an audit trail of every suggestion.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.mailpilot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Long:  "Starts the Telegram webhook server and processes updates until interrupted.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// Secrets may live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err = newLogger(cfg.General)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ts, err := googleauth.TokenSource(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RefreshToken)
	if err != nil {
		return err
	}
	gmailSvc, err := gmailv1.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return fmt.Errorf("gmail service: %w", err)
	}
	sheetsSvc, err := sheetsv4.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return fmt.Errorf("sheets service: %w", err)
	}

	mailbox := gmail.NewMailbox(gmailSvc, logger)

	profile, err := prompt.Load(cfg.Prompt.ProfilePath, logger)
	if err != nil {
		return err
	}
	completer, err := llm.New(llm.Config{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.APIBase,
		Model:   cfg.Completion.Model,
		Profile: profile,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	var auditLedger domain.Ledger = sheets.NewLedger(sheets.LedgerConfig{
		Service:       sheetsSvc,
		SpreadsheetID: cfg.Sheets.SpreadsheetID,
		WriteRange:    cfg.Sheets.WriteRange,
		Logger:        logger,
	})
	if cfg.Ledger.Enabled {
		local, err := ledger.NewSQLite(cfg.Ledger.DBPath, logger)
		if err != nil {
			return fmt.Errorf("local ledger: %w", err)
		}
		defer local.Close()
		auditLedger = ledger.NewFanout(auditLedger, local, logger)
	}

	sender, err := channel.NewTelegram(channel.TelegramConfig{
		Token:     cfg.Telegram.Token,
		ParseMode: cfg.Telegram.ParseMode,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	courier := bot.NewCourier(bot.CourierConfig{Sender: sender, Logger: logger})

	pipeline := bot.NewPipeline(bot.PipelineConfig{
		Mailbox:    mailbox,
		Completer:  completer,
		Ledger:     auditLedger,
		Courier:    courier,
		FetchLimit: cfg.Mail.MaxResults,
		Logger:     logger,
	})

	handler := bot.NewHandler(bot.HandlerConfig{
		Dedup:       bot.NewDeduplicator(),
		Sessions:    bot.NewSessionStore(),
		Courier:     courier,
		Sender:      sender,
		Mailbox:     mailbox,
		Pipeline:    pipeline,
		AllowFrom:   cfg.Telegram.AllowFrom.Int64s(),
		Suggestions: cfg.Mail.SenderSuggestions,
		SenderLimit: cfg.Mail.MaxResults,
		Logger:      logger,
	})

	hook := channel.NewWebhook(channel.WebhookConfig{
		Port:   cfg.Webhook.Port,
		Path:   cfg.Webhook.Path,
		Logger: logger,
	})

	logger.Info("mailpilot starting", "version", version, "port", cfg.Webhook.Port, "path", cfg.Webhook.Path)
	return hook.Start(ctx, handler)
}

func newLogger(cfg config.GeneralConfig) (*slog.Logger, error) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				logger.Info("config", "path", cfgPath, "loaded", false, "err", err)
				return nil
			}
			logger.Info("config", "path", cfgPath, "loaded", true)
			logger.Info("webhook", "port", cfg.Webhook.Port, "path", cfg.Webhook.Path)
			logger.Info("completion", "model", cfg.Completion.Model, "apiBase", cfg.Completion.APIBase)
			logger.Info("ledger", "enabled", cfg.Ledger.Enabled, "dbPath", cfg.Ledger.DBPath)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent suggestion records from the local ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.Ledger.Enabled {
				return fmt.Errorf("local ledger is disabled (ledger.enabled=false)")
			}

			store, err := ledger.NewSQLite(cfg.Ledger.DBPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No suggestions recorded yet.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%s  %s\n    %s\n", r.Timestamp.Format("2006-01-02 15:04"), r.Subject, firstLine(r.Suggestion))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	return cmd
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " …"
		}
		if i > 120 {
			return s[:i] + "…"
		}
	}
	return s
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long:  "Get, set, and list configuration values. Changes are saved to the config file.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. webhook.port)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. mail.maxResults 5)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "value", args[1], "file", cfgPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			sanitized := config.Sanitize(cfg)
			data, _ := json.MarshalIndent(sanitized, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	})

	return cmd
}
