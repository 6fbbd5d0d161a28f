package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/store"
)

// Pending input kinds used in conversational flows.
const (
	pendingInterval = "await_interval_text"
	pendingWindow   = "await_window_text"
	pendingTZ       = "await_tz_text"
)

// ruleDraft accumulates the add-rule flow. Drafts live in memory only; an
// abandoned draft simply evaporates on restart.
type ruleDraft struct {
	ActivityTypeID  int64
	ActivityName    string
	IntervalMinutes int
	IntervalDays    int
}

// pending is the per-chat conversational state.
type pending struct {
	kind  string
	draft *ruleDraft
}

// Router wires Telegram updates to handlers and holds minimal in-memory state.
type Router struct {
	bot       *tgbotapi.BotAPI
	log       *zap.Logger
	repo      store.Repo
	defaultTZ string

	mu    sync.RWMutex
	state map[int64]*pending // chatID -> pending flow
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, defaultTZ string) *Router {
	return &Router{
		bot:       bot,
		log:       log,
		repo:      repo,
		defaultTZ: defaultTZ,
		state:     make(map[int64]*pending),
	}
}

func (r *Router) setPending(chatID int64, p *pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = p
}

func (r *Router) getPending(chatID int64) *pending {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID)
		case strings.HasPrefix(text, "/status"):
			r.handleStatus(ctx, chatID)
		case strings.HasPrefix(text, "/rules"):
			r.handleRules(ctx, chatID)
		case strings.HasPrefix(text, "/add"):
			r.handleAdd(ctx, chatID)
		case strings.HasPrefix(text, "/done"):
			r.handleDone(ctx, chatID)
		case strings.HasPrefix(text, "/pause"):
			r.handlePause(ctx, chatID)
		case strings.HasPrefix(text, "/resume"):
			r.handleResume(ctx, chatID)
		case strings.HasPrefix(text, "/tz"):
			r.askTZ(ctx, chatID)
		default:
			// Free-form text used in "Custom" flows (interval/window/tz)
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		// add-rule flow
		case strings.HasPrefix(data, "addact:"):
			r.handleAddActivity(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "addint:"):
			r.handleAddInterval(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "adddays:"):
			r.handleAddDays(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "addwin:"):
			r.handleAddWindow(ctx, chatID, data, cb.ID)

		// per-rule management
		case strings.HasPrefix(data, "rule:"):
			r.handleRuleAction(ctx, chatID, data, cb.ID)

		// activity completion
		case strings.HasPrefix(data, "done:"):
			r.handleDoneActivity(ctx, chatID, data, cb.ID)

		// timezone
		case strings.HasPrefix(data, "tz:"):
			r.handleTZCallback(ctx, chatID, data, cb.ID)

		default:
			// Unknown callback — ignore silently
		}
		return
	}
}
