package models

// TrackedEntity is one vehicle configured at startup. MatchKey is the
// identifier (usually a license plate) searched for in the rendered grid.
type TrackedEntity struct {
	ID       string `json:"id"`
	MatchKey string `json:"match_key"`
}

// SourceKind selects how a DataSource is queried.
type SourceKind string

const (
	SourceKindDashboard SourceKind = "dashboard"
	SourceKindAPI       SourceKind = "api"
)

// DataSource is one navigable dashboard view (or API endpoint) that may list
// a tracked entity. Sources are tried in configured order.
type DataSource struct {
	Name string     `json:"name"`
	Kind SourceKind `json:"kind"`
	URL  string     `json:"url"`
}
