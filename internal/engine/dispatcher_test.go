package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

type fakeRules struct {
	rules []domain.Rule
	err   error
}

func (f *fakeRules) ListEnabledRules(_ context.Context, userID int64) ([]domain.Rule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Rule
	for _, r := range f.rules {
		if r.UserID == userID && r.Enabled {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	names map[int64]string
	err   error
}

func (f *fakeCatalog) ActivityName(_ context.Context, typeID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	name, ok := f.names[typeID]
	if !ok {
		return "", errors.New("unknown activity type")
	}
	return name, nil
}

type sentNotification struct {
	userID int64
	id     uint32
	title  string
	body   string
}

type fakeSink struct {
	sent []sentNotification
	err  error
}

func (f *fakeSink) Send(_ context.Context, userID int64, id uint32, title, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{userID: userID, id: id, title: title, body: body})
	return nil
}

func newTestDispatcher(rules *fakeRules, cat *fakeCatalog, sink *fakeSink, trig *fakeTriggers) *Dispatcher {
	eval := NewEvaluator(&fakeActivities{}, trig, DefaultTunables(), zap.NewNop())
	return NewDispatcher(rules, cat, sink, eval, zap.NewNop())
}

func stretchCatalog() *fakeCatalog {
	return &fakeCatalog{names: map[int64]string{7: "stretch"}}
}

func TestRunTick_FiresAndLogs(t *testing.T) {
	rules := &fakeRules{rules: []domain.Rule{*testRule()}}
	sink := &fakeSink{}
	trig := &fakeTriggers{}
	d := newTestDispatcher(rules, stretchCatalog(), sink, trig)

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	verdicts := d.RunTick(context.Background(), 42, now)

	if len(verdicts) != 1 || verdicts[0].Outcome != domain.OutcomeFire {
		t.Fatalf("verdicts = %+v, want one fire", verdicts)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sink.sent))
	}
	got := sink.sent[0]
	if got.userID != 42 || got.id != domain.NotificationID(42, 7) {
		t.Fatalf("notification addressing wrong: %+v", got)
	}
	if len(trig.appended) != 1 || !trig.appended[0].TriggeredAt.Equal(now) {
		t.Fatalf("trigger log = %+v, want one entry at %s", trig.appended, now)
	}
}

func TestRunTick_SendFailureLeavesLogUntouched(t *testing.T) {
	rules := &fakeRules{rules: []domain.Rule{*testRule()}}
	sink := &fakeSink{err: errors.New("telegram: 502")}
	trig := &fakeTriggers{}
	d := newTestDispatcher(rules, stretchCatalog(), sink, trig)

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	verdicts := d.RunTick(context.Background(), 42, now)

	// The verdict is still Fire; only delivery failed.
	if len(verdicts) != 1 || verdicts[0].Outcome != domain.OutcomeFire {
		t.Fatalf("verdicts = %+v", verdicts)
	}
	if len(trig.appended) != 0 {
		t.Fatalf("trigger log must stay empty after a failed send, got %+v", trig.appended)
	}
}

func TestRunTick_IdempotentGivenPinnedStores(t *testing.T) {
	rules := &fakeRules{rules: []domain.Rule{*testRule()}}
	// frozen: appends are recorded but reads keep serving the fixture,
	// modeling two evaluations against identical store contents.
	trig := &fakeTriggers{frozen: true}
	sink := &fakeSink{}
	d := newTestDispatcher(rules, stretchCatalog(), sink, trig)

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	first := d.RunTick(context.Background(), 42, now)
	second := d.RunTick(context.Background(), 42, now)

	if len(first) != len(second) {
		t.Fatalf("verdict counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Outcome != second[i].Outcome || first[i].RuleID != second[i].RuleID {
			t.Fatalf("tick not idempotent: %+v vs %+v", first[i], second[i])
		}
	}
}

func TestRunTick_SecondTickSuppressedByOwnLog(t *testing.T) {
	rules := &fakeRules{rules: []domain.Rule{*testRule()}}
	trig := &fakeTriggers{}
	sink := &fakeSink{}
	d := newTestDispatcher(rules, stretchCatalog(), sink, trig)

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	d.RunTick(context.Background(), 42, now)
	second := d.RunTick(context.Background(), 42, now.Add(time.Minute))

	if len(second) != 1 || second[0].Outcome != domain.OutcomeSuppressedByDuplicate {
		t.Fatalf("second tick = %+v, want suppressed_by_duplicate", second)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("sent %d notifications, want exactly 1", len(sink.sent))
	}
}

func TestRunTick_AppendFailureStillDelivers(t *testing.T) {
	rules := &fakeRules{rules: []domain.Rule{*testRule()}}
	trig := &fakeTriggers{appendErr: errors.New("disk full")}
	sink := &fakeSink{}
	d := newTestDispatcher(rules, stretchCatalog(), sink, trig)

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	verdicts := d.RunTick(context.Background(), 42, now)

	if len(sink.sent) != 1 {
		t.Fatalf("notification must go out even if the log append fails")
	}
	if len(verdicts) != 1 || verdicts[0].Outcome != domain.OutcomeFire {
		t.Fatalf("verdicts = %+v", verdicts)
	}
}

func TestRunTick_RuleListLoadFailureAbandonsTick(t *testing.T) {
	rules := &fakeRules{err: errors.New("database is locked")}
	sink := &fakeSink{}
	d := newTestDispatcher(rules, stretchCatalog(), sink, &fakeTriggers{})

	verdicts := d.RunTick(context.Background(), 42, time.Now())
	if len(verdicts) != 0 {
		t.Fatalf("verdicts = %+v, want none", verdicts)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("nothing should be sent when the rule list cannot load")
	}
}

func TestRunTick_OneBadRuleDoesNotBlockOthers(t *testing.T) {
	good := *testRule()
	unknownActivity := *testRule()
	unknownActivity.ID = "rule-2"
	unknownActivity.ActivityTypeID = 999 // not in the catalog

	rules := &fakeRules{rules: []domain.Rule{unknownActivity, good}}
	sink := &fakeSink{}
	trig := &fakeTriggers{}
	d := newTestDispatcher(rules, stretchCatalog(), sink, trig)

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	verdicts := d.RunTick(context.Background(), 42, now)

	if len(verdicts) != 2 {
		t.Fatalf("got %d verdicts, want 2", len(verdicts))
	}
	// The good rule still delivered despite the first one failing.
	if len(sink.sent) != 1 || sink.sent[0].id != domain.NotificationID(42, 7) {
		t.Fatalf("sent = %+v, want exactly the good rule's notification", sink.sent)
	}
}

func TestRunTick_MixedVerdictReasons(t *testing.T) {
	disabled := *testRule()
	disabled.ID = "rule-disabled"
	disabled.Enabled = false

	offWindow := *testRule()
	offWindow.ID = "rule-night"
	offWindow.WindowStartM = domain.MinuteOfDay(0, 0)
	offWindow.WindowEndM = domain.MinuteOfDay(6, 0)

	rules := &fakeRules{rules: []domain.Rule{*testRule(), disabled, offWindow}}
	d := newTestDispatcher(rules, stretchCatalog(), &fakeSink{}, &fakeTriggers{})

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	verdicts := d.RunTick(context.Background(), 42, now)

	// The store-side filter already hides disabled rules; only two reach
	// the evaluator here because fakeRules mimics that filter.
	byRule := map[string]domain.Outcome{}
	for _, v := range verdicts {
		byRule[v.RuleID] = v.Outcome
	}
	if byRule["rule-1"] != domain.OutcomeFire {
		t.Errorf("rule-1 = %s, want fire", byRule["rule-1"])
	}
	if byRule["rule-night"] != domain.OutcomeSuppressedByWindow {
		t.Errorf("rule-night = %s, want suppressed_by_window", byRule["rule-night"])
	}
	if _, seen := byRule["rule-disabled"]; seen {
		t.Error("disabled rule should have been filtered at the store")
	}
}
