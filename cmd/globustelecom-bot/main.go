// ABOUTME: Entry point for the globustele.com support assistant bot
// ABOUTME: Wires config, stores, Gemini, and the Telegram frontend together

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"

	"github.com/1e0cf/globustelecom-bot/internal/answer"
	"github.com/1e0cf/globustelecom-bot/internal/claims"
	"github.com/1e0cf/globustelecom-bot/internal/config"
	"github.com/1e0cf/globustelecom-bot/internal/dialogue"
	"github.com/1e0cf/globustelecom-bot/internal/escalation"
	"github.com/1e0cf/globustelecom-bot/internal/session"
	"github.com/1e0cf/globustelecom-bot/internal/telegram"
	"github.com/1e0cf/globustelecom-bot/internal/users"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
        _       _               _       _
   __ _| | ___ | |__  _   _ ___| |_ ___| | ___
  / _' | |/ _ \| '_ \| | | / __| __/ _ \ |/ _ \
 | (_| | | (_) | |_) | |_| \__ \ ||  __/ |  __/
  \__, |_|\___/|_.__/ \__,_|___/\__\___|_|\___|
  |___/
`

// getConfigPath returns the path to the bot config file.
// Priority: GLOBUSBOT_CONFIG env var > ./globustelecom-bot.yaml
func getConfigPath() string {
	if envPath := os.Getenv("GLOBUSBOT_CONFIG"); envPath != "" {
		return envPath
	}
	return "globustelecom-bot.yaml"
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: globustelecom-bot <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve         Start the support bot")
		fmt.Println("  init          Create a starter config file")
		fmt.Println("  export-users  Print known users as CSV")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "export-users":
		err = runExportUsers(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	if cfg.Redis.Addr != "" {
		fmt.Printf("Claims:   redis (%s)\n", cfg.Redis.Addr)
	} else {
		fmt.Printf("Claims:   in-memory\n")
	}
	green.Print("    ▶ ")
	if cfg.Telegram.OperatorChatID != 0 {
		fmt.Printf("Support:  chat %d\n", cfg.Telegram.OperatorChatID)
	} else {
		fmt.Printf("Support:  not configured\n")
	}
	fmt.Println()

	// User profile store
	userStore, err := users.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening user store: %w", err)
	}
	defer userStore.Close()

	// Claim store: Redis when configured, in-memory otherwise
	var claimStore claims.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		claimStore = claims.NewRedisStore(rdb)
	} else {
		claimStore = claims.NewMemoryStore()
	}
	defer claimStore.Close()

	// Answer backend
	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required for serve")
	}
	kb, err := answer.LoadKnowledgeBase(cfg.Gemini.KnowledgeBase)
	if err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}
	answerer := answer.New(cfg.Gemini.APIKey, cfg.Gemini.Model, logger,
		answer.WithKnowledgeBase(kb))

	// Conversation core
	tracker := session.NewTracker()
	escRouter := escalation.NewRouter(tracker, claimStore,
		cfg.Escalation.ClaimTTL, cfg.Escalation.OfferThreshold,
		cfg.Telegram.OperatorChatID != 0, logger)

	// Telegram frontend
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	sender := telegram.NewSender(api, cfg.Telegram.OperatorChatID, logger)

	controller := dialogue.NewController(tracker, escRouter, answerer, userStore,
		sender, cfg.Telegram.OperatorChatID, cfg.Escalation.ChunkSize, logger)

	bot := telegram.NewBot(api, sender, controller, cfg.Telegram.OperatorChatID, logger)

	logger.Info("starting globustelecom-bot",
		"config", configPath,
		"offer_threshold", cfg.Escalation.OfferThreshold,
		"claim_ttl", cfg.Escalation.ClaimTTL,
	)

	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

const starterConfig = `telegram:
  token: "${TELEGRAM_BOT_TOKEN}"
  # Chat where support questions are forwarded. Leave unset to disable escalation.
  # operator_chat_id: -1001234567890

gemini:
  api_key: "${GEMINI_API_KEY}"
  model: "gemini-2.5-flash-lite"
  knowledge_base: "knowledge_base.json"

# redis:
#   addr: "localhost:6379"

database:
  path: "globustelecom.db"

escalation:
  offer_threshold: 3
  chunk_size: 4000
  claim_ttl: "15m"

logging:
  level: "info"
  format: "text"
`

func runInit() error {
	path := getConfigPath()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Wrote starter config to %s\n", path)
	return nil
}

func runExportUsers(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := users.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening user store: %w", err)
	}
	defer store.Close()

	list, err := store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	fmt.Println("id,username,language_code,created_at")
	for _, u := range list {
		fmt.Printf("%d,%s,%s,%s\n", u.ID, u.Username, u.LanguageCode, u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs), then record attrs
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
