package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/repo"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	due       []domain.ScheduledEmail
	listErr   error
	queueErr  map[uuid.UUID]error
	queued    []uuid.UUID
	requeued  []uuid.UUID
	listLimit int
	listNow   time.Time
}

func (f *fakeStore) ListDue(_ context.Context, now time.Time, limit int) ([]domain.ScheduledEmail, error) {
	f.listNow = now
	f.listLimit = limit
	return f.due, f.listErr
}

func (f *fakeStore) MarkQueued(_ context.Context, id uuid.UUID) error {
	if err := f.queueErr[id]; err != nil {
		return err
	}
	f.queued = append(f.queued, id)
	return nil
}

func (f *fakeStore) Requeue(_ context.Context, id uuid.UUID) error {
	f.requeued = append(f.requeued, id)
	return nil
}

type fakePublisher struct {
	published []uuid.UUID
	attempts  []int
	fail      map[uuid.UUID]bool
}

func (f *fakePublisher) PublishEmailDue(_ context.Context, id uuid.UUID, attempt int) error {
	if f.fail[id] {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, id)
	f.attempts = append(f.attempts, attempt)
	return nil
}

func newTestScheduler(store *fakeStore, pub *fakePublisher) *Scheduler {
	return New(Config{
		Emails:    store,
		Publisher: pub,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		BatchSize: 10,
		Clock:     func() time.Time { return testNow },
	})
}

func dueEmail(attempts int) domain.ScheduledEmail {
	e := domain.NewScheduledEmail("lead@example.com", "Hi", "Hello", testNow.Add(-time.Minute))
	e.Attempts = attempts
	return *e
}

func TestTick_QueuesDueEmails(t *testing.T) {
	first, second := dueEmail(0), dueEmail(2)
	store := &fakeStore{due: []domain.ScheduledEmail{first, second}}
	pub := &fakePublisher{}

	if err := newTestScheduler(store, pub).Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !store.listNow.Equal(testNow) || store.listLimit != 10 {
		t.Errorf("unexpected ListDue args: now=%v limit=%d", store.listNow, store.listLimit)
	}
	if len(store.queued) != 2 {
		t.Fatalf("expected 2 queued, got %d", len(store.queued))
	}
	if len(pub.published) != 2 || pub.published[0] != first.ID || pub.published[1] != second.ID {
		t.Errorf("unexpected published ids: %v", pub.published)
	}
	if pub.attempts[1] != 2 {
		t.Errorf("expected attempt 2 for retried email, got %d", pub.attempts[1])
	}
}

func TestTick_NothingDue(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}

	if err := newTestScheduler(store, pub).Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("expected no publications, got %d", len(pub.published))
	}
}

func TestTick_ListError(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db down")}

	err := newTestScheduler(store, &fakePublisher{}).Tick(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestTick_SkipsTakenEmails(t *testing.T) {
	taken, free := dueEmail(0), dueEmail(0)
	store := &fakeStore{
		due:      []domain.ScheduledEmail{taken, free},
		queueErr: map[uuid.UUID]error{taken.ID: repo.ErrInvalidState},
	}
	pub := &fakePublisher{}

	if err := newTestScheduler(store, pub).Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0] != free.ID {
		t.Errorf("expected only free email published, got %v", pub.published)
	}
}

func TestTick_PublishFailureRequeues(t *testing.T) {
	broken, ok := dueEmail(0), dueEmail(0)
	store := &fakeStore{due: []domain.ScheduledEmail{broken, ok}}
	pub := &fakePublisher{fail: map[uuid.UUID]bool{broken.ID: true}}

	if err := newTestScheduler(store, pub).Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.requeued) != 1 || store.requeued[0] != broken.ID {
		t.Errorf("expected broken email requeued, got %v", store.requeued)
	}
	if len(pub.published) != 1 || pub.published[0] != ok.ID {
		t.Errorf("expected remaining email published, got %v", pub.published)
	}
}

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{DefaultSpec, false},
		{"*/5 * * * * *", false},
		{"0 9 * * 1-5", false},
		{"@hourly", false},
		{"not a spec", true},
		{"61 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := ValidateSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestNewRunner(t *testing.T) {
	sched := newTestScheduler(&fakeStore{}, &fakePublisher{})

	r, err := NewRunner("", sched, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Spec() != DefaultSpec {
		t.Errorf("expected default spec, got %s", r.Spec())
	}

	if _, err := NewRunner("bogus", sched, nil); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	r, err := NewRunner("@every 1s", newTestScheduler(store, &fakePublisher{}), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}
