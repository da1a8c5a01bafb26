// Package model declares the table columns shown for each record type.
package model

import (
	"strings"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/bytes"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

// ConnectionColumns are the connections tab columns.
func ConnectionColumns() view.Columns[*api.Connection] {
	return view.Columns[*api.Connection]{
		{
			ID: "host", Title: "Host", Filterable: true, Sortable: true,
			Accessor: func(c *api.Connection) string { return c.HostPort() },
		},
		{
			ID: "rule", Title: "Rule", Filterable: true, Sortable: true,
			Accessor: connectionRule,
		},
		{
			ID: "chains", Title: "Chains", Filterable: true, Sortable: true,
			Accessor: func(c *api.Connection) string { return strings.Join(c.Chains, " > ") },
		},
		{
			ID: "down_rate", Title: "DownRate", Sortable: true, AlignRight: true,
			Accessor: func(c *api.Connection) string { return rate(c.DownloadRate, c.Inactive) },
			SortKey:  func(c *api.Connection) view.SortKey { return view.UintKey(c.DownloadRate) },
		},
		{
			ID: "up_rate", Title: "UpRate", Sortable: true, AlignRight: true,
			Accessor: func(c *api.Connection) string { return rate(c.UploadRate, c.Inactive) },
			SortKey:  func(c *api.Connection) view.SortKey { return view.UintKey(c.UploadRate) },
		},
		{
			ID: "down_total", Title: "DownTotal", Sortable: true, AlignRight: true,
			Accessor: func(c *api.Connection) string { return bytes.Size(c.Download) },
			SortKey:  func(c *api.Connection) view.SortKey { return view.UintKey(c.Download) },
		},
		{
			ID: "up_total", Title: "UpTotal", Sortable: true, AlignRight: true,
			Accessor: func(c *api.Connection) string { return bytes.Size(c.Upload) },
			SortKey:  func(c *api.Connection) view.SortKey { return view.UintKey(c.Upload) },
		},
		{
			ID: "source_ip", Title: "SourceIP", Filterable: true, Sortable: true,
			Accessor: func(c *api.Connection) string { return orDash(c.Metadata.SourceIP) },
		},
	}
}

func connectionRule(c *api.Connection) string {
	if c.RulePayload == "" {
		return c.Rule
	}
	return c.Rule + " :: " + c.RulePayload
}

func rate(v uint64, inactive bool) string {
	if inactive || v == 0 {
		return "-"
	}
	return bytes.Rate(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
