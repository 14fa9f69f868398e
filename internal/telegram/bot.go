package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/grocery"
	"meal-planner/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// callback data is limited to 64 bytes, the action prefix included.
const maxCallbackRequest = 48

// PlanService is the part of the application the bot drives.
type PlanService interface {
	NextWeekStart() time.Time
	PlanExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error)
	GeneratePlan(ctx context.Context, userID, request string, weekStart time.Time) (*app.PlanView, error)
	CurrentPlan(ctx context.Context, userID string) (*app.PlanView, error)
	ClipMeal(ctx context.Context, userID, url string) (*app.PlanView, error)
	ToggleItem(ctx context.Context, userID, name string) (grocery.Item, *app.PlanView, error)
	AddManualItem(ctx context.Context, userID, name, quantity, category string) (*app.PlanView, error)
	SetIncludeBeverages(ctx context.Context, userID string, include bool) (*app.PlanView, error)
	ClearChecked(ctx context.Context, userID string) (*app.PlanView, error)
}

type UsageReporter interface {
	GetDailyUsage(days int) ([]metrics.DailyUsage, error)
}

// sender is the subset of *tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot turns Telegram updates into plan and grocery list operations.
type Bot struct {
	api     sender
	svc     PlanService
	usage   UsageReporter
	cfg     *config.Config
	dataDir string
}

// NewBot initializes the Telegram API client and registers the webhook.
func NewBot(cfg *config.Config, svc PlanService, usage UsageReporter, dataDir string) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook for %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	return newBot(bot, cfg, svc, usage, dataDir), nil
}

func newBot(api sender, cfg *config.Config, svc PlanService, usage UsageReporter, dataDir string) *Bot {
	return &Bot{api: api, svc: svc, usage: usage, cfg: cfg, dataDir: dataDir}
}

// ServeHTTP handles a webhook delivery. Updates are processed in the
// background so Telegram gets its acknowledgement right away.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	if update.CallbackQuery != nil {
		if !b.allowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil || !b.allowed(update.Message.From) {
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if !b.cfg.IsAllowedTelegramUser(from.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
		return false
	}
	return true
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := strconv.FormatInt(msg.From.ID, 10)
	text := strings.TrimSpace(msg.Text)

	if msg.IsCommand() {
		args := strings.TrimSpace(msg.CommandArguments())
		switch msg.Command() {
		case "metrics":
			b.handleMetricsRequest(msg)
		case "list":
			b.handleList(ctx, msg.Chat.ID, userID)
		case "check":
			b.handleCheck(ctx, msg.Chat.ID, userID, args)
		case "add":
			b.handleAdd(ctx, msg.Chat.ID, userID, args)
		case "beverages":
			b.handleBeverages(ctx, msg.Chat.ID, userID)
		case "clear":
			b.handleClear(ctx, msg.Chat.ID, userID)
		default:
			b.reply(msg.Chat.ID, helpText)
		}
		return
	}

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClipperRequest(ctx, msg.Chat.ID, userID, text)
		return
	}

	b.handlePlannerRequest(ctx, msg.Chat.ID, userID, text)
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.usage.GetDailyUsage(7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.reply(msg.Chat.ID, formatMetrics(usage, metrics.GetSysHealth(b.dataDir)))
}

func (b *Bot) handleClipperRequest(ctx context.Context, chatID int64, userID, url string) {
	sent, err := b.status(chatID, "✂️ *Clipping recipe...*\n(Adding it to this week's meals)")
	if err != nil {
		return
	}

	view, err := b.svc.ClipMeal(ctx, userID, url)
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		b.edit(chatID, sent.MessageID, errorText("clipping recipe", err))
		return
	}

	title := "Recipe"
	if n := len(view.Plan.Meals); n > 0 {
		title = view.Plan.Meals[n-1].Title()
	}
	b.edit(chatID, sent.MessageID, fmt.Sprintf("✅ *Recipe added:* %s\n\n%d items left to buy. Send /list to see them.",
		escape(title), view.Remaining))
}

func (b *Bot) handlePlannerRequest(ctx context.Context, chatID int64, userID, request string) {
	sent, err := b.status(chatID, "🧑‍🍳 *Thinking...*\n(Planning your week and building the grocery list)")
	if err != nil {
		return
	}

	nextWeek := b.svc.NextWeekStart()
	exists, err := b.svc.PlanExistsForWeek(ctx, userID, nextWeek)
	if err != nil {
		log.Printf("Warning: failed to check for an existing plan for user %s: %v", userID, err)
	}
	if exists {
		promptText := fmt.Sprintf("🗓️ A plan already exists for next week (starting *%s*).\nWhat would you like to do?", nextWeek.Format("2006-01-02"))
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Redo Next Week", callbackData("redo", request)),
				tgbotapi.NewInlineKeyboardButtonData("⏭️ Plan Following Week", callbackData("next", request)),
			),
		)
		edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, promptText)
		edit.ParseMode = tgbotapi.ModeMarkdown
		edit.ReplyMarkup = &keyboard
		b.send(edit)
		return
	}

	b.generateAndSendPlan(ctx, userID, chatID, sent.MessageID, request, nextWeek)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	userID := strconv.FormatInt(query.From.ID, 10)

	action, request, ok := strings.Cut(query.Data, "|")
	if !ok || query.Message == nil {
		return
	}

	targetWeek := b.svc.NextWeekStart()
	if action == "next" {
		targetWeek = targetWeek.AddDate(0, 0, 7)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	chatID := query.Message.Chat.ID
	b.edit(chatID, query.Message.MessageID, "🧑‍🍳 *Thinking...*")
	b.generateAndSendPlan(ctx, userID, chatID, query.Message.MessageID, request, targetWeek)
}

func (b *Bot) generateAndSendPlan(ctx context.Context, userID string, chatID int64, messageID int, request string, weekStart time.Time) {
	view, err := b.svc.GeneratePlan(ctx, userID, request, weekStart)
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		b.edit(chatID, messageID, errorText("generating plan", err))
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Plan generation failed*\nUser: %s\n%s", userID, escape(err.Error())))
		return
	}

	b.edit(chatID, messageID, formatPlanMarkdown(view))
	b.reply(chatID, formatGroceryMarkdown(view))
}

func (b *Bot) handleList(ctx context.Context, chatID int64, userID string) {
	view, err := b.svc.CurrentPlan(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, formatGroceryMarkdown(view))
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64, userID, name string) {
	if name == "" {
		b.reply(chatID, "Usage: /check <item>")
		return
	}
	item, view, err := b.svc.ToggleItem(ctx, userID, name)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("%s %s\n%d items left to buy.", checkbox(item.Checked), escape(item.Item), view.Remaining))
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, userID, args string) {
	name, quantity := parseAddArgs(args)
	view, err := b.svc.AddManualItem(ctx, userID, name, quantity, "")
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("➕ Added %s\n%d items left to buy.", escape(name), view.Remaining))
}

func (b *Bot) handleBeverages(ctx context.Context, chatID int64, userID string) {
	current, err := b.svc.CurrentPlan(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	view, err := b.svc.SetIncludeBeverages(ctx, userID, !current.Plan.IncludeBeverages)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if view.Plan.IncludeBeverages {
		b.reply(chatID, "🍸 Beverages are now on the grocery list.")
	} else {
		b.reply(chatID, "🚫 Beverages removed from the grocery list.")
	}
}

func (b *Bot) handleClear(ctx context.Context, chatID int64, userID string) {
	view, err := b.svc.ClearChecked(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("🧹 Cleared. %d items left to buy.", view.Remaining))
}

func (b *Bot) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, app.ErrNoPlan):
		b.reply(chatID, "You don't have a plan yet. Tell me what you'd like to eat this week.")
	case app.IsNotFound(err):
		b.reply(chatID, "🤷 Couldn't find that on your list.")
	case app.IsInvalid(err):
		b.reply(chatID, "⚠️ "+escape(err.Error()))
	default:
		log.Printf("Error handling command: %v", err)
		b.reply(chatID, errorText("updating your list", err))
	}
}

func (b *Bot) status(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
	}
	return sent, err
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.reply(b.cfg.AdminTelegramID, text)
}

func callbackData(action, request string) string {
	r := []rune(request)
	for len(string(r)) > maxCallbackRequest {
		r = r[:len(r)-1]
	}
	return action + "|" + string(r)
}

// parseAddArgs splits "/add flour, 2 cups" into name and quantity.
func parseAddArgs(args string) (string, string) {
	name, quantity, _ := strings.Cut(args, ",")
	return strings.TrimSpace(name), strings.TrimSpace(quantity)
}

func errorText(action string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr)
}

const helpText = `🛒 *Meal Planner*

Send a message describing your week to get a plan and grocery list.
Send a recipe link to add it to your plan.

/list show the grocery list
/check <item> tick an item off (or back on)
/add <item>, <quantity> add something extra
/beverages toggle drinks on the list
/clear uncheck everything`
