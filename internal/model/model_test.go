package model

import (
	"testing"
	"time"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

func TestConnectionColumns(t *testing.T) {
	cols := ConnectionColumns()
	c := &api.Connection{
		Metadata:     api.Metadata{Host: "example.com", DestinationPort: "443", SourceIP: "10.0.0.2"},
		Rule:         "DomainSuffix",
		RulePayload:  "example.com",
		Chains:       []string{"node", "Proxy"},
		Download:     2048,
		DownloadRate: 1024,
	}
	row := cols.Row(c)
	if row[0] != "example.com:443" {
		t.Fatalf("expected host:port, got %q", row[0])
	}
	if row[1] != "DomainSuffix :: example.com" {
		t.Fatalf("unexpected rule cell %q", row[1])
	}
	if row[3] != "1.0 KiB/s" || row[4] != "-" {
		t.Fatalf("unexpected rate cells %q %q", row[3], row[4])
	}
	if row[5] != "2.0 KiB" {
		t.Fatalf("unexpected total %q", row[5])
	}
	c.Inactive = true
	if got := cols.Row(c)[3]; got != "-" {
		t.Fatalf("expected inactive rows to hide rate, got %q", got)
	}
	if cols.Index("down_total") != 5 {
		t.Fatalf("expected down_total at 5")
	}
}

func TestConnectionSortByDownloadDesc(t *testing.T) {
	cols := ConnectionColumns()
	raw := []*api.Connection{{ID: "a", Download: 10}, {ID: "b", Download: 300}, {ID: "c", Download: 20}}
	state := view.NewSearchState(len(cols))
	state.Sort = &view.SortSpec{Col: cols.Index("down_total"), Dir: view.Desc}
	got := view.Compute(raw, state, cols)
	if got[0].ID != "b" || got[1].ID != "c" || got[2].ID != "a" {
		t.Fatalf("unexpected order %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func intp(v int) *int { return &v }

func TestRuleRowsToggleAndPending(t *testing.T) {
	rows := NewRuleRows([]api.Rule{
		{Type: "DOMAIN", Payload: "a.com", Proxy: "DIRECT", Index: intp(0), Extra: &api.RuleExtra{Disabled: false, HitCount: 3, HitAt: time.Unix(0, 0)}},
		{Type: "MATCH", Proxy: "Proxy", Index: intp(1), Extra: &api.RuleExtra{Disabled: true}},
		{Type: "GEOIP", Payload: "CN", Proxy: "DIRECT"},
	})
	cols := RuleColumns()
	if got := cols.Row(rows[0])[1]; got != "DOMAIN,a.com,DIRECT" {
		t.Fatalf("unexpected rule text %q", got)
	}
	if got := cols.Row(rows[1])[1]; got != "MATCH,Proxy" {
		t.Fatalf("unexpected rule text %q", got)
	}
	if !rows[0].Toggle() {
		t.Fatalf("expected toggle supported")
	}
	if rows[2].Toggle() {
		t.Fatalf("expected toggle unsupported without index and extra")
	}
	if got := cols.Row(rows[0])[3]; got != "N -> Y" {
		t.Fatalf("expected pending marker, got %q", got)
	}
	if got := cols.Row(rows[1])[3]; got != "Y" {
		t.Fatalf("expected unchanged marker, got %q", got)
	}
	if got := cols.Row(rows[2])[3]; got != "-" {
		t.Fatalf("expected dash without extra, got %q", got)
	}
	changes := PendingChanges(rows)
	if len(changes) != 1 || !changes[0] {
		t.Fatalf("expected rule 0 pending disable, got %v", changes)
	}
	rows[0].Toggle()
	if len(PendingChanges(rows)) != 0 {
		t.Fatalf("expected double toggle to clear pending changes")
	}
}

func TestLogAndRuleProviderColumns(t *testing.T) {
	if got := LogColumns().Row(api.Log{Type: "warning", Payload: "dial failed"}); got[0] != "WARNING" || got[1] != "dial failed" {
		t.Fatalf("unexpected log row %v", got)
	}
	row := RuleProviderColumns().Row(api.RuleProvider{Name: "geosite", VehicleType: "HTTP", Behavior: "domain", RuleCount: 42})
	if row[0] != "geosite" || row[3] != "42" || row[4] != "-" {
		t.Fatalf("unexpected provider row %v", row)
	}
}
