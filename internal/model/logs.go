package model

import (
	"strings"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

// LogColumns are the logs tab columns.
func LogColumns() view.Columns[api.Log] {
	return view.Columns[api.Log]{
		{
			ID: "level", Title: "Level", Filterable: true,
			Accessor: func(l api.Log) string { return strings.ToUpper(l.Type) },
		},
		{
			ID: "content", Title: "Content", Filterable: true,
			Accessor: func(l api.Log) string { return l.Payload },
		},
	}
}
