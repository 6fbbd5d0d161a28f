package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/config"
	"github.com/ONEYTY111/active-break-sub000/internal/engine"
	"github.com/ONEYTY111/active-break-sub000/internal/notify"
	"github.com/ONEYTY111/active-break-sub000/internal/scheduler"
	"github.com/ONEYTY111/active-break-sub000/internal/store"
	"github.com/ONEYTY111/active-break-sub000/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	return &App{cfg: cfg, log: log, bot: bot}, nil
}

// tunablesFromConfig maps the env-driven engine section onto the engine's
// own tunables struct.
func tunablesFromConfig(ec config.EngineConfig) engine.Tunables {
	return engine.Tunables{
		ToleranceMinutes:       ec.ToleranceMinutes,
		CooldownRatio:          ec.CooldownRatio,
		ShortCooldownRatio:     ec.ShortCooldownRatio,
		ShortCadenceMaxMinutes: ec.ShortCadenceMaxMinutes,
		CooldownFloor:          ec.CooldownFloor,
		CompletionFailOpen:     ec.CompletionFailOpen,
		DuplicateFailOpen:      ec.DuplicateFailOpen,
	}
}

// buildSink picks the delivery channel from configuration.
func (a *App) buildSink(repo store.Repo) engine.Sink {
	switch a.cfg.Sink {
	case "webpush":
		cfg := notify.WebPushConfig{
			PublicKey:  a.cfg.VAPIDPublicKey,
			PrivateKey: a.cfg.VAPIDPrivateKey,
			Subscriber: a.cfg.VAPIDSubscriber,
		}
		if !cfg.Configured() {
			a.log.Warn("webpush sink selected but VAPID keys missing, falling back to log sink")
			return notify.NewLogSink(a.log)
		}
		return notify.NewWebPushSink(repo, cfg, a.log)
	case "log":
		return notify.NewLogSink(a.log)
	default:
		return notify.NewTelegramSink(a.bot, a.log)
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting activebreak",
		zap.String("sink", a.cfg.Sink),
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("tick", a.cfg.TickInterval),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	a.router = telegram.NewRouter(a.bot, a.log, a.repo, a.cfg.DefaultTZ)

	eval := engine.NewEvaluator(repo, repo, tunablesFromConfig(a.cfg.Engine), a.log)
	dispatcher := engine.NewDispatcher(repo, repo, a.buildSink(repo), eval, a.log)
	sched := scheduler.New(repo, dispatcher, a.log, a.cfg.TickInterval, a.cfg.DefaultTZ)

	a.httpSrv = a.newHTTPServer()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sched.Run(ctx)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// newHTTPServer serves the health check and the Web Push subscription
// endpoint the browser client posts to.
func (a *App) newHTTPServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/push/subscribe", a.handlePushSubscribe)
	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// pushSubscribeRequest mirrors the browser PushSubscription JSON plus the
// user it belongs to.
type pushSubscribeRequest struct {
	UserID   int64  `json:"user_id"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (a *App) handlePushSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req pushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	err := a.repo.SavePushSubscription(r.Context(), &store.PushSubscription{
		UserID:   req.UserID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	})
	if err != nil {
		a.log.Error("save push subscription failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
