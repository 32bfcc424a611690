// Package netquery implements the "Remote Proof Query" component of spec
// §4.2 on top of a generic filtered collection-query capability (spec §6):
// a single `query_collection({collection, result, filter?, order?,
// limit?})` RPC the DApp server exposes, GraphQL-like but consumed here
// as opaque JSON rows with fields accessed by name.
package netquery

import (
	"context"
	"encoding/json"
)

// SortDirection orders a collection query's result rows.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// OrderBy is one sort key of a collection query.
type OrderBy struct {
	Path      string        `json:"path"`
	Direction SortDirection `json:"direction"`
}

// CollectionQueryParams mirrors the single external capability spec §6
// describes: a collection name, a result field selection, an optional
// filter (comparator forms {field: {eq|ge|lt|in: value}}), an optional
// sort, and an optional row limit.
type CollectionQueryParams struct {
	Collection string                 `json:"collection"`
	Result     string                 `json:"result"`
	Filter     map[string]interface{} `json:"filter,omitempty"`
	Order      []OrderBy              `json:"order,omitempty"`
	Limit      int                    `json:"limit,omitempty"`
}

// CollectionQuerier is the external remote collection query capability
// consumed by this package (spec §6); out of this engine's scope to
// define the transport for, only to be built against. Rows are returned
// as opaque JSON objects, one per matched record.
type CollectionQuerier interface {
	QueryCollection(ctx context.Context, params CollectionQueryParams) ([]json.RawMessage, error)
}

func eqFilter(pairs ...interface{}) map[string]interface{} {
	f := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		f[key] = map[string]interface{}{"eq": pairs[i+1]}
	}
	return f
}
