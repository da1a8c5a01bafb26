package command

import (
	"context"
	"errors"
	"testing"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/testutil"
)

func TestExecuteSuccessSendsThen(t *testing.T) {
	rec := &testutil.Recorder{}
	b := New(context.Background(), rec)
	ran := false
	b.Execute(Request{
		ID:    "proxy.select",
		Label: "Select proxy",
		Run:   func(context.Context) error { ran = true; return nil },
		Then:  action.ProxiesRefresh{},
	})
	b.Wait()
	if !ran {
		t.Fatalf("expected request to run")
	}
	if names := rec.Names(); len(names) != 1 || names[0] != "ProxiesRefresh" {
		t.Fatalf("expected ProxiesRefresh, got %v", names)
	}
}

func TestExecuteFailureSendsError(t *testing.T) {
	rec := &testutil.Recorder{}
	b := New(context.Background(), rec)
	b.Execute(Request{
		ID:    "provider.update",
		Label: "Update provider",
		Run:   func(context.Context) error { return errors.New("status 500") },
		Then:  action.ProxyProviderRefresh{},
	})
	b.Wait()
	got, ok := testutil.Last[action.Error](rec)
	if !ok || got.Title != "Update provider" || got.Detail != "status 500" {
		t.Fatalf("unexpected error action %#v", got)
	}
	if len(rec.Actions()) != 1 {
		t.Fatalf("expected no follow-up after failure, got %v", rec.Names())
	}
}

func TestExecuteAfterCancelIsSilent(t *testing.T) {
	rec := &testutil.Recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	b := New(ctx, rec)
	cancel()
	b.Execute(Request{Label: "Restart", Run: func(ctx context.Context) error { return ctx.Err() }})
	b.Wait()
	if len(rec.Actions()) != 0 {
		t.Fatalf("expected no actions after shutdown, got %v", rec.Names())
	}
}

func TestQueryDeliversValue(t *testing.T) {
	rec := &testutil.Recorder{}
	b := New(context.Background(), rec)
	var got int
	Query(b, "rules.fetch", "Fetch rules", func(context.Context) (int, error) { return 7, nil }, func(v int) action.Action {
		got = v
		return action.Render{}
	})
	b.Wait()
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if names := rec.Names(); len(names) != 1 || names[0] != "Render" {
		t.Fatalf("expected Render, got %v", names)
	}
}

func TestExecuteAddsNoDeadline(t *testing.T) {
	rec := &testutil.Recorder{}
	b := New(context.Background(), rec)
	hasDeadline := true
	b.Execute(Request{
		Label: "Flush DNS cache",
		Run: func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	})
	b.Wait()
	if hasDeadline {
		t.Fatalf("expected request context without a deadline")
	}
}
