package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

// ensureProfile makes sure a profile row exists; if not, creates it with
// the bot's default timezone.
func (r *Router) ensureProfile(ctx context.Context, chatID int64) (*domain.Profile, error) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err == nil {
		return p, nil
	}
	p = &domain.Profile{
		UserID:    chatID,
		TZ:        r.defaultTZ,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	p, err := r.ensureProfile(ctx, chatID)
	if err != nil {
		r.log.Error("ensureProfile failed", zap.Error(err))
		r.sendText(chatID, "Profile initialization error. Please try again later.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard(p.Enabled)
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleStatus(ctx context.Context, chatID int64) {
	p, err := r.ensureProfile(ctx, chatID)
	if err != nil {
		r.log.Error("ensureProfile failed", zap.Error(err))
		r.sendText(chatID, "Error reading your settings.")
		return
	}
	rules, err := r.repo.ListRules(ctx, chatID)
	if err != nil {
		r.log.Error("ListRules failed", zap.Error(err))
		r.sendText(chatID, "Error reading your reminders.")
		return
	}

	enabledText := "✅ Enabled"
	if !p.Enabled {
		enabledText = "⏸ Paused"
	}
	active := 0
	for _, rule := range rules {
		if rule.Enabled {
			active++
		}
	}
	body := fmt.Sprintf("%s\n\n• Reminders: %d (%d active)\n• TZ: %s\n• %s\n",
		statusTitle, len(rules), active, p.TZ, enabledText)

	msg := tgbotapi.NewMessage(chatID, body)
	msg.ReplyMarkup = mainMenuKeyboard(p.Enabled)
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleRules(ctx context.Context, chatID int64) {
	rules, err := r.repo.ListRules(ctx, chatID)
	if err != nil {
		r.log.Error("ListRules failed", zap.Error(err))
		r.sendText(chatID, "Error reading your reminders.")
		return
	}
	if len(rules) == 0 {
		r.sendText(chatID, "No reminders yet. Use /add to create one.")
		return
	}
	for _, rule := range rules {
		name, err := r.repo.ActivityName(ctx, rule.ActivityTypeID)
		if err != nil {
			name = "break"
		}
		msg := tgbotapi.NewMessage(chatID, describeRule(rule, name))
		msg.ReplyMarkup = ruleKeyboard(rule)
		_, _ = r.bot.Send(msg)
	}
}

// --- Add-rule flow ---

func (r *Router) handleAdd(ctx context.Context, chatID int64) {
	if _, err := r.ensureProfile(ctx, chatID); err != nil {
		r.log.Error("ensureProfile failed", zap.Error(err))
		r.sendText(chatID, "Error opening the add flow.")
		return
	}
	types, err := r.repo.ListActivityTypes(ctx)
	if err != nil {
		r.log.Error("ListActivityTypes failed", zap.Error(err))
		r.sendText(chatID, "Error loading activities.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Which break should I remind you about?")
	msg.ReplyMarkup = activityKeyboard(types, "addact")
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleAddActivity(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	id, err := strconv.ParseInt(strings.TrimPrefix(data, "addact:"), 10, 64)
	if err != nil {
		return
	}
	name, err := r.repo.ActivityName(ctx, id)
	if err != nil {
		r.log.Error("ActivityName failed", zap.Error(err))
		r.sendText(chatID, "Unknown activity, please restart /add.")
		return
	}
	r.setPending(chatID, &pending{draft: &ruleDraft{ActivityTypeID: id, ActivityName: name}})

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("How often should I remind you to %s?", name))
	msg.ReplyMarkup = intervalPresetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleAddInterval(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	p := r.getPending(chatID)
	if p == nil || p.draft == nil {
		r.sendText(chatID, "No reminder in progress. Start with /add.")
		return
	}
	if data == "addint:custom" {
		p.kind = pendingInterval
		r.setPending(chatID, p)
		r.sendText(chatID, "Enter interval, e.g.: 30m, 1h, 1h30m, 90m")
		return
	}
	dur, err := domain.ParseInterval(strings.TrimPrefix(data, "addint:"))
	if err != nil {
		r.sendText(chatID, "Invalid interval. Examples: 30m, 1h, 1h30m.")
		return
	}
	r.continueWithInterval(ctx, chatID, p, dur)
}

// continueWithInterval stores the chosen cadence and asks for the day cadence.
func (r *Router) continueWithInterval(_ context.Context, chatID int64, p *pending, dur time.Duration) {
	p.draft.IntervalMinutes = int(dur.Minutes())
	p.kind = ""
	r.setPending(chatID, p)

	msg := tgbotapi.NewMessage(chatID, "On which days?")
	msg.ReplyMarkup = dayCadenceKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleAddDays(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	p := r.getPending(chatID)
	if p == nil || p.draft == nil {
		r.sendText(chatID, "No reminder in progress. Start with /add.")
		return
	}
	days, err := domain.ParseDayCadence(strings.TrimPrefix(data, "adddays:"))
	if err != nil {
		r.sendText(chatID, "Invalid day cadence.")
		return
	}
	p.draft.IntervalDays = days
	r.setPending(chatID, p)

	msg := tgbotapi.NewMessage(chatID, "During which hours? (end before start wraps past midnight)")
	msg.ReplyMarkup = windowPresetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleAddWindow(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	p := r.getPending(chatID)
	if p == nil || p.draft == nil {
		r.sendText(chatID, "No reminder in progress. Start with /add.")
		return
	}
	if data == "addwin:custom" {
		p.kind = pendingWindow
		r.setPending(chatID, p)
		r.sendText(chatID, "Enter hours as HH:MM–HH:MM (e.g., 09:00–18:00)")
		return
	}
	startM, endM, err := domain.ParseWindow(strings.TrimPrefix(data, "addwin:"))
	if err != nil {
		r.sendText(chatID, "Invalid format. Example: 09:00–18:00")
		return
	}
	r.createRuleFromDraft(ctx, chatID, p.draft, startM, endM)
}

func (r *Router) createRuleFromDraft(ctx context.Context, chatID int64, draft *ruleDraft, startM, endM int) {
	rule := &domain.Rule{
		ID:              ksuid.New().String(),
		UserID:          chatID,
		ActivityTypeID:  draft.ActivityTypeID,
		Enabled:         true,
		IntervalMinutes: draft.IntervalMinutes,
		IntervalDays:    draft.IntervalDays,
		WindowStartM:    startM,
		WindowEndM:      endM,
		CreatedAt:       time.Now().UTC(),
	}
	if err := r.repo.CreateRule(ctx, rule); err != nil {
		r.log.Error("CreateRule failed", zap.Error(err))
		r.sendText(chatID, "Could not save the reminder.")
		return
	}
	r.clearPending(chatID)
	r.sendText(chatID, fmt.Sprintf("Saved: %s every %s, %s–%s ✅",
		draft.ActivityName, rule.Interval(),
		domain.FormatMinutes(startM), domain.FormatMinutes(endM)))
}

// --- Per-rule management ---

func (r *Router) handleRuleAction(ctx context.Context, chatID int64, data, cbID string) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		_ = r.answerCallback(cbID, "")
		return
	}
	ruleID, action := parts[1], parts[2]

	// Never act on another chat's rule, even with a forged callback.
	rule, err := r.repo.GetRule(ctx, ruleID)
	if err != nil || rule.UserID != chatID {
		_ = r.answerCallback(cbID, "Unknown reminder")
		return
	}

	switch action {
	case "pause":
		err = r.repo.SetRuleEnabled(ctx, ruleID, false)
	case "resume":
		err = r.repo.SetRuleEnabled(ctx, ruleID, true)
	case "del":
		err = r.repo.SoftDeleteRule(ctx, ruleID)
	default:
		_ = r.answerCallback(cbID, "")
		return
	}
	if err != nil {
		r.log.Error("rule action failed", zap.String("action", action), zap.Error(err))
		_ = r.answerCallback(cbID, "Failed, try again")
		return
	}
	_ = r.answerCallback(cbID, "Done")
	r.handleRules(ctx, chatID)
}

// --- Completion flow ---

func (r *Router) handleDone(ctx context.Context, chatID int64) {
	types, err := r.repo.ListActivityTypes(ctx)
	if err != nil {
		r.log.Error("ListActivityTypes failed", zap.Error(err))
		r.sendText(chatID, "Error loading activities.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Nice! Which break did you take?")
	msg.ReplyMarkup = activityKeyboard(types, "done")
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleDoneActivity(ctx context.Context, chatID int64, data, cbID string) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, "done:"), 10, 64)
	if err != nil {
		_ = r.answerCallback(cbID, "")
		return
	}
	now := time.Now().UTC()
	err = r.repo.RecordActivity(ctx, &domain.ActivityRecord{
		UserID:         chatID,
		ActivityTypeID: id,
		BeginTime:      now,
		EndTime:        now,
	})
	if err != nil {
		r.log.Error("RecordActivity failed", zap.Error(err))
		_ = r.answerCallback(cbID, "Could not record it")
		return
	}
	_ = r.answerCallback(cbID, "Recorded 💪")
	if name, err := r.repo.ActivityName(ctx, id); err == nil {
		r.sendText(chatID, fmt.Sprintf("Recorded your %s break. I'll stay quiet about it for a while.", name))
	}
}

// --- Pause / Resume (master switch) ---

func (r *Router) handlePause(ctx context.Context, chatID int64) {
	if err := r.repo.SetProfileEnabled(ctx, chatID, false); err != nil {
		r.log.Error("pause failed", zap.Error(err))
		r.sendText(chatID, "Failed to pause.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "All reminders paused ⏸")
	msg.ReplyMarkup = mainMenuKeyboard(false)
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleResume(ctx context.Context, chatID int64) {
	if err := r.repo.SetProfileEnabled(ctx, chatID, true); err != nil {
		r.log.Error("resume failed", zap.Error(err))
		r.sendText(chatID, "Failed to resume.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Reminders resumed ✅")
	msg.ReplyMarkup = mainMenuKeyboard(true)
	_, _ = r.bot.Send(msg)
}

// --- Timezone flow ---

func (r *Router) askTZ(ctx context.Context, chatID int64) {
	if _, err := r.ensureProfile(ctx, chatID); err != nil {
		r.log.Error("ensureProfile failed", zap.Error(err))
		r.sendText(chatID, "Error opening timezone settings.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Choose a timezone or enter your own (Region/City):")
	msg.ReplyMarkup = tzPresetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleTZCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	if data == "tz:custom" {
		r.setPending(chatID, &pending{kind: pendingTZ})
		r.sendText(chatID, "Enter timezone (e.g., Europe/Berlin):")
		return
	}
	tz, err := domain.ValidateTZ(strings.TrimPrefix(data, "tz:"))
	if err != nil {
		r.sendText(chatID, "Invalid timezone. Example: Europe/Berlin")
		return
	}
	r.updateTZ(ctx, chatID, tz)
}

func (r *Router) updateTZ(ctx context.Context, chatID int64, tz string) {
	p, err := r.ensureProfile(ctx, chatID)
	if err != nil {
		r.log.Error("ensureProfile failed", zap.Error(err))
		r.sendText(chatID, "Could not save timezone.")
		return
	}
	p.TZ = tz
	if err := r.repo.UpsertProfile(ctx, p); err != nil {
		r.log.Error("save tz failed", zap.Error(err))
		r.sendText(chatID, "Could not save timezone.")
		return
	}
	r.sendText(chatID, "Timezone updated: "+tz)
}

// --- Free-form dispatcher (for all "Custom" inputs) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	p := r.getPending(chatID)
	if p == nil {
		return
	}
	switch p.kind {
	case pendingInterval:
		dur, err := domain.ParseInterval(text)
		if err != nil {
			r.sendText(chatID, "Invalid interval. Examples: 30m, 1h, 1h30m.")
			return
		}
		r.continueWithInterval(ctx, chatID, p, dur)

	case pendingWindow:
		startM, endM, err := domain.ParseWindow(text)
		if err != nil {
			r.sendText(chatID, "Invalid format. Example: 09:00–18:00")
			return
		}
		if p.draft == nil {
			r.clearPending(chatID)
			return
		}
		r.createRuleFromDraft(ctx, chatID, p.draft, startM, endM)

	case pendingTZ:
		r.clearPending(chatID)
		tz, err := domain.ValidateTZ(text)
		if err != nil {
			r.sendText(chatID, "Invalid timezone. Example: Europe/Berlin")
			return
		}
		r.updateTZ(ctx, chatID, tz)

	default:
		// No pending flow: ignore free-form message
	}
}
