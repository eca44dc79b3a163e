package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/engine"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// --- fakes ---

type fakeSaver struct {
	err    error
	calls  int
	graphs []domain.Graph

	// block — если задан, SaveFlow ждёт закрытия канала.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeSaver) SaveFlow(ctx context.Context, g domain.Graph) error {
	f.calls++
	f.graphs = append(f.graphs, g)
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.err
}

type fakeScheduler struct {
	// failAt — индекс запроса (с 0), который вернёт err; -1 — не падать.
	failAt   int
	err      error
	requests []domain.EmailRequest

	// afterCall вызывается после каждого успешного запроса.
	afterCall func()
}

func (f *fakeScheduler) ScheduleEmail(ctx context.Context, req domain.EmailRequest) error {
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	if idx == f.failAt {
		return f.err
	}
	if f.afterCall != nil {
		f.afterCall()
	}
	return nil
}

func newTestOrchestrator(saver FlowSaver, scheduler EmailScheduler) *Orchestrator {
	return New(Config{
		Saver:     saver,
		Scheduler: scheduler,
		Planner: engine.NewPlanner(
			engine.WithClock(func() time.Time { return testNow }),
			engine.WithLocation(time.UTC),
		),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// campaign: lead → wait(2d) → email-1 → wait(1d) → email-2 → email-3
func campaign() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{
			{ID: "lead", Kind: domain.KindLeadSource},
			{ID: "wait-1", Kind: domain.KindWait, Data: domain.NodeData{WaitType: domain.WaitTypeDays, Delay: 2}},
			{ID: "email-1", Kind: domain.KindColdEmail, Data: domain.NodeData{
				RecipientEmail: "first@example.com", Subject: "First", EmailContent: "one",
			}},
			{ID: "wait-2", Kind: domain.KindWait, Data: domain.NodeData{WaitType: domain.WaitTypeDays, Delay: 1}},
			{ID: "email-2", Kind: domain.KindColdEmail, Data: domain.NodeData{
				RecipientEmail: "second@example.com", Subject: "Second", EmailContent: "two",
			}},
			{ID: "email-3", Kind: domain.KindColdEmail},
		},
		Edges: []domain.Edge{
			{Source: "lead", Target: "wait-1"},
			{Source: "wait-1", Target: "email-1"},
			{Source: "email-1", Target: "wait-2"},
			{Source: "wait-2", Target: "email-2"},
			{Source: "email-2", Target: "email-3"},
		},
	}
}

// --- RunSave ---

func TestRunSave_Completed(t *testing.T) {
	saver := &fakeSaver{}
	scheduler := &fakeScheduler{failAt: -1}
	o := newTestOrchestrator(saver, scheduler)

	out := o.RunSave(context.Background(), campaign())

	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.State != domain.SaveStateCompleted {
		t.Errorf("expected COMPLETED, got %s", out.State)
	}
	if !out.Persisted {
		t.Error("expected persisted")
	}
	if out.EmailsScheduled != 3 {
		t.Errorf("expected 3 emails scheduled, got %d", out.EmailsScheduled)
	}
	if saver.calls != 1 {
		t.Errorf("expected 1 save, got %d", saver.calls)
	}

	expected := []struct {
		email string
		time  string
	}{
		{"first@example.com", "2026-10-21T12:05:00.000Z"},
		{"second@example.com", "2026-10-22T12:05:00.000Z"},
		{domain.DefaultRecipient, "2026-10-22T12:05:00.000Z"},
	}
	if len(scheduler.requests) != len(expected) {
		t.Fatalf("expected %d requests, got %d", len(expected), len(scheduler.requests))
	}
	for i, exp := range expected {
		req := scheduler.requests[i]
		if req.Email != exp.email {
			t.Errorf("request %d: expected email %s, got %s", i, exp.email, req.Email)
		}
		if req.Time != exp.time {
			t.Errorf("request %d: expected time %s, got %s", i, exp.time, req.Time)
		}
	}
}

func TestRunSave_AppliesDefaults(t *testing.T) {
	scheduler := &fakeScheduler{failAt: -1}
	o := newTestOrchestrator(&fakeSaver{}, scheduler)

	g := domain.Graph{Nodes: []domain.Node{{ID: "email", Kind: domain.KindColdEmail}}}
	out := o.RunSave(context.Background(), g)
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}

	req := scheduler.requests[0]
	if req.Email != "yashplw@gmail.com" || req.Subject != "Cold Email" || req.Body != "Default email content" {
		t.Errorf("defaults not applied: %+v", req)
	}
	if req.Time != "2026-10-19T12:05:00.000Z" {
		t.Errorf("expected now + 5m, got %s", req.Time)
	}
}

func TestRunSave_NoEmailNodes(t *testing.T) {
	scheduler := &fakeScheduler{failAt: -1}
	o := newTestOrchestrator(&fakeSaver{}, scheduler)

	g := domain.Graph{Nodes: []domain.Node{{ID: "lead", Kind: domain.KindLeadSource}}}
	out := o.RunSave(context.Background(), g)

	if out.Err != nil || out.State != domain.SaveStateCompleted {
		t.Fatalf("expected COMPLETED without error, got %s / %v", out.State, out.Err)
	}
	if len(scheduler.requests) != 0 {
		t.Errorf("expected no scheduling requests, got %d", len(scheduler.requests))
	}
}

func TestRunSave_PersistenceFailure(t *testing.T) {
	saver := &fakeSaver{err: errors.New("Flow is invalid")}
	scheduler := &fakeScheduler{failAt: -1}
	o := newTestOrchestrator(saver, scheduler)

	out := o.RunSave(context.Background(), campaign())

	if out.State != domain.SaveStateSaveFailed {
		t.Errorf("expected SAVE_FAILED, got %s", out.State)
	}
	if out.Persisted {
		t.Error("should not be persisted")
	}
	if len(scheduler.requests) != 0 {
		t.Errorf("scheduling must not start, got %d requests", len(scheduler.requests))
	}
	if !errors.Is(out.Err, ErrPersistenceFailure) {
		t.Errorf("expected ErrPersistenceFailure, got %v", out.Err)
	}
	if out.Err.Error() != "Flow is invalid" {
		t.Errorf("expected verbatim message, got %q", out.Err.Error())
	}
}

func TestRunSave_SchedulingFailureStopsBatch(t *testing.T) {
	scheduler := &fakeScheduler{failAt: 1, err: errors.New("Invalid email")}
	o := newTestOrchestrator(&fakeSaver{}, scheduler)

	out := o.RunSave(context.Background(), campaign())

	if out.State != domain.SaveStateScheduleFailed {
		t.Errorf("expected SCHEDULE_FAILED, got %s", out.State)
	}
	if !out.Persisted {
		t.Error("graph should stay persisted")
	}
	if out.EmailsScheduled != 1 {
		t.Errorf("expected 1 email scheduled, got %d", out.EmailsScheduled)
	}
	if len(scheduler.requests) != 2 {
		t.Errorf("third email must not be requested, got %d requests", len(scheduler.requests))
	}

	var schedErr *SchedulingError
	if !errors.As(out.Err, &schedErr) {
		t.Fatalf("expected SchedulingError, got %T", out.Err)
	}
	if schedErr.NodeID != "email-2" || schedErr.Index != 1 {
		t.Errorf("unexpected failure position: %s/%d", schedErr.NodeID, schedErr.Index)
	}
	if out.Err.Error() != "Invalid email" {
		t.Errorf("expected verbatim message, got %q", out.Err.Error())
	}
	if !errors.Is(out.Err, ErrSchedulingFailure) {
		t.Error("expected ErrSchedulingFailure")
	}
}

func TestRunSave_CyclicGraph(t *testing.T) {
	scheduler := &fakeScheduler{failAt: -1}
	o := newTestOrchestrator(&fakeSaver{}, scheduler)

	g := domain.Graph{
		Nodes: []domain.Node{
			{ID: "wait", Kind: domain.KindWait},
			{ID: "email", Kind: domain.KindColdEmail},
		},
		Edges: []domain.Edge{
			{Source: "wait", Target: "email"},
			{Source: "email", Target: "wait"},
		},
	}

	out := o.RunSave(context.Background(), g)

	if out.State != domain.SaveStateScheduleFailed {
		t.Errorf("expected SCHEDULE_FAILED, got %s", out.State)
	}
	if !errors.Is(out.Err, engine.ErrCyclicGraph) {
		t.Errorf("expected ErrCyclicGraph, got %v", out.Err)
	}
	if len(scheduler.requests) != 0 {
		t.Errorf("expected no requests, got %d", len(scheduler.requests))
	}
}

func TestRunSave_CancelledBeforeSave(t *testing.T) {
	saver := &fakeSaver{}
	o := newTestOrchestrator(saver, &fakeScheduler{failAt: -1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := o.RunSave(ctx, campaign())

	if saver.calls != 0 {
		t.Errorf("save must not be issued, got %d calls", saver.calls)
	}
	if out.State != domain.SaveStateSaveFailed {
		t.Errorf("expected SAVE_FAILED, got %s", out.State)
	}
	if !errors.Is(out.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", out.Err)
	}
}

func TestRunSave_CancelledDuringScheduling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := &fakeScheduler{failAt: -1, afterCall: cancel}
	o := newTestOrchestrator(&fakeSaver{}, scheduler)

	out := o.RunSave(ctx, campaign())

	if len(scheduler.requests) != 1 {
		t.Errorf("expected only the first request, got %d", len(scheduler.requests))
	}
	if out.EmailsScheduled != 1 {
		t.Errorf("expected 1 email scheduled, got %d", out.EmailsScheduled)
	}
	if !errors.Is(out.Err, context.Canceled) || !errors.Is(out.Err, ErrSchedulingFailure) {
		t.Errorf("expected cancelled scheduling failure, got %v", out.Err)
	}
}

func TestRunSave_RejectsConcurrentRun(t *testing.T) {
	saver := &fakeSaver{block: make(chan struct{}), entered: make(chan struct{})}
	scheduler := &fakeScheduler{failAt: -1}
	o := newTestOrchestrator(saver, scheduler)

	var wg sync.WaitGroup
	var first Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = o.RunSave(context.Background(), campaign())
	}()

	<-saver.entered
	if !o.Running() {
		t.Error("expected run in progress")
	}

	second := o.RunSave(context.Background(), campaign())
	if !errors.Is(second.Err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", second.Err)
	}
	if second.State != domain.SaveStateIdle {
		t.Errorf("expected IDLE, got %s", second.State)
	}

	close(saver.block)
	wg.Wait()

	if first.Err != nil {
		t.Fatalf("unexpected error: %v", first.Err)
	}
	if saver.calls != 1 {
		t.Errorf("expected 1 save, got %d", saver.calls)
	}
	if o.Running() {
		t.Error("run should be released")
	}
}

func TestRunSave_Transitions(t *testing.T) {
	var got []string
	o := New(Config{
		Saver:     &fakeSaver{},
		Scheduler: &fakeScheduler{failAt: -1},
		Planner:   engine.NewPlanner(engine.WithClock(func() time.Time { return testNow })),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnTransition: func(from, to domain.SaveState) {
			got = append(got, string(from)+">"+string(to))
		},
	})

	o.RunSave(context.Background(), campaign())

	expected := []string{
		"IDLE>SAVING",
		"SAVING>PERSISTED",
		"PERSISTED>SCHEDULING",
		"SCHEDULING>COMPLETED",
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("transition %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

// --- RunState ---

func TestRunState_RejectsInvalidTransition(t *testing.T) {
	s := NewRunState(nil)

	if err := s.Transition(domain.SaveStateScheduling); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if s.State() != domain.SaveStateIdle {
		t.Errorf("state should stay IDLE, got %s", s.State())
	}
}

func TestRunState_History(t *testing.T) {
	s := NewRunState(nil)
	_ = s.Transition(domain.SaveStateSaving)
	_ = s.Transition(domain.SaveStateSaveFailed)

	h := s.History()
	if len(h) != 3 || h[2] != domain.SaveStateSaveFailed {
		t.Errorf("unexpected history: %v", h)
	}
	if !s.State().IsTerminal() {
		t.Error("SAVE_FAILED should be terminal")
	}
	if err := s.Transition(domain.SaveStateSaving); err == nil {
		t.Error("terminal state must not transition")
	}
}
