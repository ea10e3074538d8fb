package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"license-monitor/internal/license"
	"license-monitor/internal/report"
)

// Inventory is the part of the record store the bot drives.
type Inventory interface {
	Now() time.Time
	AddLicense(ctx context.Context, in license.LicenseInput) (license.License, error)
	AddUser(ctx context.Context, in license.UserInput) (license.User, error)
	DeleteLicense(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	Assign(ctx context.Context, in license.AssignInput) (license.Assignment, error)
	Unassign(ctx context.Context, id string) error
	Snapshot() license.Snapshot
}

type Bot struct {
	api         *tgbotapi.BotAPI
	adminChatID int64
	inv         Inventory

	mu     sync.Mutex
	states map[int64]pendingState
}

type pendingState string

const (
	stateNone       pendingState = ""
	stateNewLicense pendingState = "new_license"
	stateNewUser    pendingState = "new_user"
	stateAssign     pendingState = "assign"
)

func NewBot(token string, adminChatID int64, inv Inventory) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	return &Bot{api: api, adminChatID: adminChatID, inv: inv, states: map[int64]pendingState{}}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	upd := tgbotapi.NewUpdate(0)
	upd.Timeout = 30
	updates := b.api.GetUpdatesChan(upd)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-updates:
			if u.CallbackQuery != nil {
				b.handleCallback(ctx, u.CallbackQuery)
				continue
			}
			if u.Message != nil {
				b.handleMessage(ctx, u.Message)
				continue
			}
		}
	}
}

// RunDigest pushes the current alerts to the admin chat every interval.
// Nothing is sent while there are no alerts.
func (b *Bot) RunDigest(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			alerts := report.Alerts(b.inv.Snapshot(), b.inv.Now())
			if len(alerts) == 0 {
				continue
			}
			log.Info().Int("alerts", len(alerts)).Msg("sending alert digest")
			b.reply(b.adminChatID, formatAlerts(alerts))
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}

	// Only admin can manage
	if chatID != b.adminChatID {
		b.reply(chatID, "This bot only serves its administrator.")
		return
	}

	if m.IsCommand() {
		b.setState(chatID, stateNone)
		b.handleCommand(ctx, chatID, m.Command(), strings.TrimSpace(m.CommandArguments()))
		return
	}

	switch b.getState(chatID) {
	case stateNewLicense:
		b.handleNewLicenseInput(ctx, chatID, text)
	case stateNewUser:
		b.handleNewUserInput(ctx, chatID, text)
	case stateAssign:
		b.handleAssignInput(ctx, chatID, text)
	default:
		b.sendMenu(chatID, "Use the menu buttons to manage licenses.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, cmd, args string) {
	switch cmd {
	case "start", "help", "menu":
		b.sendMenu(chatID, "License monitor")
	case "unassign":
		b.runDelete(chatID, args, "/unassign <assignmentId>", func(id string) error { return b.inv.Unassign(ctx, id) })
	case "dellicense":
		b.runDelete(chatID, args, "/dellicense <licenseId>", func(id string) error { return b.inv.DeleteLicense(ctx, id) })
	case "deluser":
		b.runDelete(chatID, args, "/deluser <userId>", func(id string) error { return b.inv.DeleteUser(ctx, id) })
	default:
		b.sendMenu(chatID, "Unknown command.")
	}
}

func (b *Bot) runDelete(chatID int64, args, usage string, fn func(id string) error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		b.reply(chatID, "Usage: "+usage)
		return
	}
	if err := fn(fields[0]); err != nil {
		b.reply(chatID, errorText(err))
		return
	}
	b.reply(chatID, "OK")
	b.sendMenu(chatID, "")
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	chatID := q.Message.Chat.ID

	// Only admin can manage
	if chatID != b.adminChatID {
		_ = b.answerCallback(q.ID, "Access denied")
		return
	}

	data := strings.TrimSpace(q.Data)
	_ = b.answerCallback(q.ID, "")

	switch data {
	case "menu":
		b.setState(chatID, stateNone)
		b.sendMenu(chatID, "Menu")
	case "licenses":
		b.setState(chatID, stateNone)
		snap := b.inv.Snapshot()
		b.reply(chatID, formatLicenses(snap.Licenses, b.inv.Now()))
	case "users":
		b.setState(chatID, stateNone)
		b.reply(chatID, formatUsers(b.inv.Snapshot()))
	case "assignments":
		b.setState(chatID, stateNone)
		b.reply(chatID, formatAssignments(b.inv.Snapshot()))
	case "alerts":
		b.setState(chatID, stateNone)
		b.reply(chatID, formatAlerts(report.Alerts(b.inv.Snapshot(), b.inv.Now())))
	case "stats":
		b.setState(chatID, stateNone)
		b.reply(chatID, formatStats(report.ComputeStats(b.inv.Snapshot(), b.inv.Now())))
	case "new_license":
		b.setState(chatID, stateNewLicense)
		b.reply(chatID, "Send: name | key | seats | YYYY-MM-DD\nExample: Figma | FIG-123 | 10 | 2027-03-31")
	case "new_user":
		b.setState(chatID, stateNewUser)
		b.reply(chatID, "Send: name | email | department\nExample: Ann Lee | ann@company.com | Design")
	case "assign":
		b.setState(chatID, stateAssign)
		b.reply(chatID, "Send: <userId> <licenseId> [YYYY-MM-DD]")
	default:
		b.sendMenu(chatID, "Invalid action")
	}
}

func (b *Bot) sendMenu(chatID int64, title string) {
	if strings.TrimSpace(title) == "" {
		title = "Menu"
	}
	msg := tgbotapi.NewMessage(chatID, title)
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Licenses", "licenses"),
			tgbotapi.NewInlineKeyboardButtonData("👥 Users", "users"),
			tgbotapi.NewInlineKeyboardButtonData("🔑 Assignments", "assignments"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Alerts", "alerts"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ License", "new_license"),
			tgbotapi.NewInlineKeyboardButtonData("➕ User", "new_user"),
			tgbotapi.NewInlineKeyboardButtonData("🔗 Assign", "assign"),
		),
	)
	_, _ = b.api.Send(msg)
}

func (b *Bot) handleNewLicenseInput(ctx context.Context, chatID int64, text string) {
	in, err := parseLicenseInput(text)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	lic, err := b.inv.AddLicense(ctx, in)
	if err != nil {
		b.reply(chatID, errorText(err))
		if !errors.Is(err, license.ErrValidation) {
			b.setState(chatID, stateNone)
		}
		return
	}
	b.setState(chatID, stateNone)
	b.reply(chatID, fmt.Sprintf("License added:\n%s\nID: %s\nKey: %s\nSeats: %d\nExpires: %s",
		lic.SoftwareName, lic.ID, lic.LicenseKey, lic.TotalSeats, lic.ExpirationDate.Display()))
	b.sendMenu(chatID, "")
}

func (b *Bot) handleNewUserInput(ctx context.Context, chatID int64, text string) {
	in, err := parseUserInput(text)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	u, err := b.inv.AddUser(ctx, in)
	if err != nil {
		b.reply(chatID, errorText(err))
		if !errors.Is(err, license.ErrValidation) {
			b.setState(chatID, stateNone)
		}
		return
	}
	b.setState(chatID, stateNone)
	b.reply(chatID, fmt.Sprintf("User added:\n%s <%s>\nID: %s", u.Name, u.Email, u.ID))
	b.sendMenu(chatID, "")
}

func (b *Bot) handleAssignInput(ctx context.Context, chatID int64, text string) {
	in, err := parseAssignInput(text)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	b.setState(chatID, stateNone)
	a, err := b.inv.Assign(ctx, in)
	if err != nil {
		b.reply(chatID, errorText(err))
		b.sendMenu(chatID, "")
		return
	}
	b.reply(chatID, fmt.Sprintf("Assigned.\nAssignment ID: %s\nAccess date: %s", a.ID, a.AccessDate.Display()))
	b.sendMenu(chatID, "")
}

func (b *Bot) answerCallback(id string, text string) error {
	cb := tgbotapi.NewCallback(id, text)
	_, err := b.api.Request(cb)
	return err
}

func (b *Bot) setState(chatID int64, st pendingState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st == stateNone {
		delete(b.states, chatID)
		return
	}
	b.states[chatID] = st
}

func (b *Bot) getState(chatID int64) pendingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[chatID]
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
	}
}
