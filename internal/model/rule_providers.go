package model

import (
	"strconv"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/bytes"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

// RuleProviderColumns are the rule providers tab columns.
func RuleProviderColumns() view.Columns[api.RuleProvider] {
	return view.Columns[api.RuleProvider]{
		{
			ID: "name", Title: "Name", Filterable: true, Sortable: true,
			Accessor: func(p api.RuleProvider) string { return p.Name },
		},
		{
			ID: "vehicle_type", Title: "VehicleType", Filterable: true, Sortable: true,
			Accessor: func(p api.RuleProvider) string { return p.VehicleType },
		},
		{
			ID: "behavior", Title: "Behavior", Filterable: true, Sortable: true,
			Accessor: func(p api.RuleProvider) string { return p.Behavior },
		},
		{
			ID: "rule_count", Title: "RuleCount", Sortable: true, AlignRight: true,
			Accessor: func(p api.RuleProvider) string { return strconv.Itoa(p.RuleCount) },
			SortKey:  func(p api.RuleProvider) view.SortKey { return view.IntKey(int64(p.RuleCount)) },
		},
		{
			ID: "updated_at", Title: "UpdatedAt", Sortable: true,
			Accessor: func(p api.RuleProvider) string { return bytes.Ago(p.UpdatedAt) },
			SortKey:  func(p api.RuleProvider) view.SortKey { return view.IntKey(p.UpdatedAt.UnixNano()) },
		},
	}
}
