package notify

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
	"github.com/ONEYTY111/active-break-sub000/internal/store"
)

func TestNotificationIDDeterministic(t *testing.T) {
	a := domain.NotificationID(42, 7)
	b := domain.NotificationID(42, 7)
	if a != b {
		t.Fatal("same pair must map to the same notification slot")
	}
	if domain.NotificationID(42, 8) == a || domain.NotificationID(43, 7) == a {
		t.Fatal("different pairs should land in different slots")
	}
	// The pair must not be ambiguous: (1, 23) vs (12, 3).
	if domain.NotificationID(1, 23) == domain.NotificationID(12, 3) {
		t.Fatal("pair separator missing from the hash input")
	}
}

type emptySubs struct{}

func (emptySubs) ListPushSubscriptions(context.Context, int64) ([]store.PushSubscription, error) {
	return nil, nil
}

func TestWebPushSink_NoSubscriptionsIsDeliveryFailure(t *testing.T) {
	sink := NewWebPushSink(emptySubs{}, WebPushConfig{
		PublicKey: "pub", PrivateKey: "priv", Subscriber: "mailto:ops@example.com",
	}, zap.NewNop())
	err := sink.Send(context.Background(), 42, 1, "t", "b")
	if err == nil {
		t.Fatal("a user with no endpoints cannot be delivered to; the engine must see an error so the rule retries")
	}
}

func TestWebPushConfig_Configured(t *testing.T) {
	if (WebPushConfig{}).Configured() {
		t.Fatal("empty config reported as configured")
	}
	full := WebPushConfig{PublicKey: "p", PrivateKey: "k", Subscriber: "mailto:x@y"}
	if !full.Configured() {
		t.Fatal("full config reported as unconfigured")
	}
}

func TestLogSinkAlwaysSucceeds(t *testing.T) {
	sink := NewLogSink(zap.NewNop())
	if err := sink.Send(context.Background(), 42, 1, "t", "b"); err != nil {
		t.Fatalf("log sink errored: %v", err)
	}
}
