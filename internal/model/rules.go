package model

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

// RuleRow pairs a rule with its locally edited disabled flag. The flag starts
// at the core's value and is submitted only when it differs.
type RuleRow struct {
	Rule api.Rule
	want atomic.Bool
}

// NewRuleRows wraps rules for display.
func NewRuleRows(rules []api.Rule) []*RuleRow {
	out := make([]*RuleRow, len(rules))
	for i := range rules {
		row := &RuleRow{Rule: rules[i]}
		if rules[i].Extra != nil {
			row.want.Store(rules[i].Extra.Disabled)
		}
		out[i] = row
	}
	return out
}

// Toggle flips the desired disabled state. Rules without toggling support are
// left alone.
func (r *RuleRow) Toggle() bool {
	if !r.Rule.SupportsDisable() {
		return false
	}
	for {
		cur := r.want.Load()
		if r.want.CompareAndSwap(cur, !cur) {
			return true
		}
	}
}

// Want is the desired disabled state.
func (r *RuleRow) Want() bool { return r.want.Load() }

// Changed reports whether the desired state differs from the core's.
func (r *RuleRow) Changed() bool {
	return r.Rule.SupportsDisable() && r.Rule.Extra.Disabled != r.want.Load()
}

// Text is the rule in config syntax, e.g. "DOMAIN-SUFFIX,google.com,Proxy".
func (r *RuleRow) Text() string {
	s := r.Rule.Type
	if r.Rule.Payload != "" {
		s += "," + r.Rule.Payload
	}
	return s + "," + r.Rule.Proxy
}

// PendingChanges collects changed rows keyed by rule index.
func PendingChanges(rows []*RuleRow) map[int]bool {
	out := map[int]bool{}
	for _, r := range rows {
		if r.Changed() {
			out[*r.Rule.Index] = r.Want()
		}
	}
	return out
}

// RuleColumns are the rules tab columns.
func RuleColumns() view.Columns[*RuleRow] {
	return view.Columns[*RuleRow]{
		{
			ID: "index", Title: "Index", AlignRight: true,
			Accessor: func(r *RuleRow) string {
				if r.Rule.Index == nil {
					return "-"
				}
				return strconv.Itoa(*r.Rule.Index)
			},
		},
		{
			ID: "rule", Title: "Rule", Filterable: true,
			Accessor: (*RuleRow).Text,
		},
		{
			ID: "size", Title: "Size", AlignRight: true,
			Accessor: func(r *RuleRow) string {
				if r.Rule.Size < 0 {
					return "-"
				}
				return strconv.Itoa(r.Rule.Size)
			},
		},
		{
			ID: "disabled", Title: "Disabled",
			Accessor: disabledCell,
		},
		{
			ID: "hits", Title: "Hits", AlignRight: true,
			Accessor: func(r *RuleRow) string {
				if r.Rule.Extra == nil {
					return "-"
				}
				return strconv.FormatUint(r.Rule.Extra.HitCount, 10)
			},
		},
		{
			ID: "hit_at", Title: "HitAt",
			Accessor: func(r *RuleRow) string {
				if r.Rule.Extra == nil || r.Rule.Extra.HitAt.IsZero() {
					return "-"
				}
				return r.Rule.Extra.HitAt.Local().Format(time.DateTime)
			},
		},
	}
}

func disabledCell(r *RuleRow) string {
	if r.Rule.Extra == nil {
		return "-"
	}
	yn := func(b bool) string {
		if b {
			return "Y"
		}
		return "N"
	}
	have, want := r.Rule.Extra.Disabled, r.Want()
	if have == want {
		return yn(have)
	}
	return yn(have) + " -> " + yn(want)
}
