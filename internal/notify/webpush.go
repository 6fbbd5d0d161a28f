package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/store"
)

// SubscriptionSource lists a user's registered Web Push endpoints.
// store.SQLiteRepo implements it.
type SubscriptionSource interface {
	ListPushSubscriptions(ctx context.Context, userID int64) ([]store.PushSubscription, error)
}

// PushPayload is the JSON body the service worker receives. Tag carries the
// deterministic notification ID so the browser replaces the previous
// reminder in the same slot instead of stacking a new one.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
}

// WebPushConfig holds the VAPID credentials for Web Push delivery.
type WebPushConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string // mailto: or https: contact per RFC 8292
}

// Configured reports whether all VAPID credentials are present.
func (c WebPushConfig) Configured() bool {
	return c.PublicKey != "" && c.PrivateKey != "" && c.Subscriber != ""
}

// WebPushSink delivers reminders to every browser the user subscribed.
// Delivery counts as successful if at least one endpoint accepts it.
type WebPushSink struct {
	subs SubscriptionSource
	cfg  WebPushConfig
	log  *zap.Logger
}

// NewWebPushSink creates a sink over the stored subscriptions.
func NewWebPushSink(subs SubscriptionSource, cfg WebPushConfig, log *zap.Logger) *WebPushSink {
	return &WebPushSink{subs: subs, cfg: cfg, log: log}
}

// Send pushes the reminder to each subscription of the user.
func (s *WebPushSink) Send(ctx context.Context, userID int64, notificationID uint32, title, body string) error {
	subs, err := s.subs.ListPushSubscriptions(ctx, userID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return errors.New("no push subscriptions registered")
	}

	payload, err := json.Marshal(PushPayload{
		Title: title,
		Body:  body,
		Tag:   fmt.Sprintf("activebreak-%08x", notificationID),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	options := &webpush.Options{
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             60,
		Urgency:         webpush.UrgencyNormal,
	}

	delivered := 0
	for _, sub := range subs {
		resp, err := webpush.SendNotification(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}, options)
		if err != nil {
			s.log.Warn("push endpoint failed",
				zap.Int64("user", userID), zap.Error(err))
			continue
		}
		if resp.StatusCode >= 400 {
			respBody, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			s.log.Warn("push service rejected notification",
				zap.Int64("user", userID),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("response", respBody))
			continue
		}
		_ = resp.Body.Close()
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("all %d push endpoints failed", len(subs))
	}
	return nil
}
