package action

import (
	"errors"
	"testing"
)

func TestComponentIDNamesCoverClosedSet(t *testing.T) {
	seen := make(map[string]struct{})
	for _, id := range AllComponents() {
		name := id.String()
		if name == "" || name == "Unknown" {
			t.Fatalf("expected name for id %d", id)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate component name %q", name)
		}
		seen[name] = struct{}{}
	}
	if ComponentID(-1).Valid() || componentCount.Valid() {
		t.Fatalf("expected out-of-range ids to be invalid")
	}
}

func TestTabsOrder(t *testing.T) {
	want := []ComponentID{Overview, Connections, Proxies, ProxyProviders, Logs, Rules}
	for i, id := range want {
		if Tabs[i] != id {
			t.Fatalf("expected tab %d to be %s, got %s", i, id, Tabs[i])
		}
	}
	if TabIndex(Logs) != 4 {
		t.Fatalf("expected Logs at index 4, got %d", TabIndex(Logs))
	}
	if TabIndex(Search) != -1 {
		t.Fatalf("expected Search not to be a tab")
	}
}

func TestShortNames(t *testing.T) {
	cases := map[ComponentID]string{
		Overview:       "View",
		Connections:    "Conn",
		ProxyProviders: "Pxy-Pr",
		Search:         "Search",
	}
	for id, want := range cases {
		if got := id.ShortName(); got != want {
			t.Fatalf("expected short name %q for %s, got %q", want, id, got)
		}
	}
}

func TestNameAndPeriodic(t *testing.T) {
	if got := Name(TabSwitch{To: Logs}); got != "TabSwitch" {
		t.Fatalf("expected TabSwitch, got %q", got)
	}
	if !Periodic(Tick{}) || !Periodic(Render{}) || Periodic(Quit{}) {
		t.Fatalf("unexpected periodic classification")
	}
}

func TestNewErrorAndPattern(t *testing.T) {
	e := NewError("Update provider", errors.New("status 500"))
	if e.Title != "Update provider" || e.Detail != "status 500" {
		t.Fatalf("unexpected error action %#v", e)
	}
	if Pattern("") != nil {
		t.Fatalf("expected nil pattern for blank input")
	}
	if p := Pattern("google"); p == nil || *p != "google" {
		t.Fatalf("expected pattern google, got %v", p)
	}
}
