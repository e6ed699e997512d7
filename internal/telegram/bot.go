package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meal-planner/internal/config"
	"meal-planner/internal/history"
	"meal-planner/internal/logging"
	"meal-planner/internal/macros"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
)

const (
	msgCancelled     = "Generation cancelled"
	msgNothingToStop = "Nothing to cancel."
	msgBusy          = "⏳ A plan is already being generated. Send /cancel to stop it."
	msgHelp          = "Commands:\n/plan [notes] - generate a weekly plan\n/cancel - stop the running generation\n/history - recent plans\n/macros <kcal> <protein> <carbs> <fat> - check macro targets\n\nYou can also paste a markdown plan and I will tidy it up."
)

// sender is the part of the Telegram API the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PlanGenerator produces weekly plans.
type PlanGenerator interface {
	Generate(ctx context.Context, opts planner.Options) (planner.Result, error)
}

// HistoryLister lists locally stored plans.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]history.Entry, error)
}

// UsageReporter reports generation usage and storage health.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	Health(ctx context.Context, paths metrics.StoragePaths) (metrics.Health, error)
}

// Bot wraps the Telegram API and the meal planner.
type Bot struct {
	api        sender
	planner    PlanGenerator
	history    HistoryLister
	usage      UsageReporter
	normalizer *mealplan.Normalizer
	sessions   *sessionRegistry
	cfg        *config.Config
	logger     *zap.Logger

	// baseCtx parents every generation so shutdown cancels them.
	baseCtx context.Context
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	ctx context.Context,
	cfg *config.Config,
	planner PlanGenerator,
	historyStore HistoryLister,
	usage UsageReporter,
	logger *zap.Logger,
) (*Bot, error) {
	logger = logging.OrNop(logger)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("telegram webhook set", zap.String("description", resp.Description))

	return newBot(ctx, api, cfg, planner, historyStore, usage, logger), nil
}

func newBot(ctx context.Context, api sender, cfg *config.Config, planner PlanGenerator, historyStore HistoryLister, usage UsageReporter, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		planner:    planner,
		history:    historyStore,
		usage:      usage,
		normalizer: mealplan.NewNormalizer(),
		sessions:   newSessionRegistry(),
		cfg:        cfg,
		logger:     logging.OrNop(logger),
		baseCtx:    ctx,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.isAllowed(msg.From.ID) {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("user_id", msg.From.ID),
			zap.String("username", msg.From.UserName),
		)
		return
	}

	go b.processMessage(msg)
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "plan":
		b.handlePlanRequest(msg)
	case "cancel":
		b.handleCancel(msg.Chat.ID)
	case "history":
		b.handleHistory(msg.Chat.ID)
	case "macros":
		b.handleMacros(msg.Chat.ID, msg.CommandArguments())
	case "metrics":
		b.handleMetricsRequest(msg)
	case "start", "help":
		b.reply(msg.Chat.ID, msgHelp)
	default:
		b.handleFreeText(msg)
	}
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if b.sessions.Active(chatID) {
		b.reply(chatID, msgBusy)
		return
	}

	status := tgbotapi.NewMessage(chatID, "🧑‍🍳 *Generating your plan...*\n(Send /cancel to stop)")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(status)
	if err != nil {
		b.logger.Error("failed to send initial reply", zap.Error(err))
		return
	}

	ctx, done, ok := b.sessions.Start(b.baseCtx, chatID, sent.MessageID)
	if !ok {
		b.edit(chatID, sent.MessageID, msgBusy)
		return
	}
	defer done()

	b.logger.Info("generating plan", zap.Int64("chat_id", chatID))
	res, err := b.planner.Generate(ctx, planner.Options{
		SaveToHistory: true,
		Notes:         msg.CommandArguments(),
	})

	switch {
	case err != nil:
		b.edit(chatID, sent.MessageID, generationErrorText(err))
		var genErr *planner.GenerationError
		if !errors.As(err, &genErr) || !genErr.PreferencesRequired() {
			b.sendAdminAlert(fmt.Sprintf("⚠️ *Generation failed*\nChat: %d\n%s", chatID, strings.ReplaceAll(err.Error(), "`", "'")))
		}
	case res.Cancelled():
		b.edit(chatID, sent.MessageID, msgCancelled)
	default:
		planText, shoppingText := formatPlanMarkdownParts(res.Plan)
		b.edit(chatID, sent.MessageID, planText)
		b.reply(chatID, shoppingText)
	}
}

func generationErrorText(err error) string {
	var genErr *planner.GenerationError
	if errors.As(err, &genErr) && genErr.PreferencesRequired() {
		return fmt.Sprintf("⚙️ Please set your preferences first: %s", genErr.RedirectTo)
	}
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error generating plan:*\n```\n%v\n```", safeErr)
}

func (b *Bot) handleCancel(chatID int64) {
	if !b.sessions.Cancel(chatID) {
		b.reply(chatID, msgNothingToStop)
	}
	// The generation goroutine edits its status message to msgCancelled.
}

func (b *Bot) handleHistory(chatID int64) {
	if b.history == nil {
		b.reply(chatID, "📚 History is not available.")
		return
	}
	entries, err := b.history.ListRecent(b.baseCtx, 5)
	if err != nil {
		b.logger.Error("failed to list history", zap.Error(err))
		b.reply(chatID, "❌ Error fetching history.")
		return
	}
	b.reply(chatID, formatHistory(entries))
}

func (b *Bot) handleMacros(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 4 {
		b.reply(chatID, "Usage: /macros <kcal> <protein> <carbs> <fat>")
		return
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			b.reply(chatID, fmt.Sprintf("%q is not a number.", f))
			return
		}
		vals[i] = v
	}

	t := macros.Target{Calories: vals[0], Protein: vals[1], Carbs: vals[2], Fat: vals[3]}
	if err := t.Check(); err != nil {
		b.reply(chatID, "Values must not be negative.")
		return
	}
	b.reply(chatID, formatValidation(t, macros.Validate(t)))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	if b.usage == nil {
		b.reply(chatID, "📊 Metrics are not available.")
		return
	}
	usage, err := b.usage.GetDailyUsage(b.baseCtx, 7)
	if err != nil {
		b.logger.Error("failed to fetch usage", zap.Error(err))
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}
	health, err := b.usage.Health(b.baseCtx, metrics.StoragePaths{
		DatabasePath: b.cfg.DatabasePath,
		ExportDir:    b.cfg.PlanExportDir,
	})
	if err != nil {
		b.logger.Error("failed to collect health", zap.Error(err))
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Generations*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d runs, %d cancelled, %d failed)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Cancelled, d.Failed))
	}

	sb.WriteString("\n💾 *Storage*\n")
	sb.WriteString(fmt.Sprintf("• Database: %s, %d plans mirrored\n", health.DatabaseSize, health.StoredPlans))
	sb.WriteString(fmt.Sprintf("• Exports: %d plans, %s\n", health.ExportedPlans, health.ExportSize))

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))

	b.reply(chatID, sb.String())
}

// handleFreeText echoes a pasted markdown plan in canonical form.
func (b *Bot) handleFreeText(msg *tgbotapi.Message) {
	plan := b.normalizer.ParseMarkdown(msg.Text)
	if plan.MealCount() == 0 {
		b.reply(msg.Chat.ID, msgHelp)
		return
	}
	planText, _ := formatPlanMarkdownParts(plan)
	b.reply(msg.Chat.ID, planText)
}

func (b *Bot) reply(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(m); err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(e); err != nil {
		b.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.reply(b.cfg.AdminTelegramID, text)
}
