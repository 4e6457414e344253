package schema

// Property names usable in conditions, sort specs and projections.
const (
	PropertyID        = "id"
	PropertyLevel     = "level"
	PropertySource    = "source"
	PropertyTimestamp = "timestamp"
	PropertyMessage   = "message"
)

// Comparison operators for condition leaves. Connectors may reject operators
// they cannot evaluate.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpGe       = "ge"
	OpLe       = "le"
	OpContains = "contains"
)

// Condition is a boolean filter tree over log entry properties. A node is
// either a branch (exactly one of And/Or populated) or a leaf comparison
// (Property, Operator, Value). The zero Condition matches every entry.
//
// Example:
//
//	{
//	  "and": [
//	    {"property": "level", "operator": "eq", "value": "error"},
//	    {"property": "timestamp", "operator": "ge", "value": "2023-10-01T00:00:00Z"}
//	  ]
//	}
type Condition struct {
	And      []Condition `json:"and,omitempty"`
	Or       []Condition `json:"or,omitempty"`
	Property string      `json:"property,omitempty"`
	Operator string      `json:"operator,omitempty"`
	Value    any         `json:"value,omitempty"`
}

// Eq builds an equality leaf.
func Eq(property string, value any) Condition {
	return Condition{Property: property, Operator: OpEq, Value: value}
}

// Ge builds a greater-or-equal leaf.
func Ge(property string, value any) Condition {
	return Condition{Property: property, Operator: OpGe, Value: value}
}

// Le builds a less-or-equal leaf.
func Le(property string, value any) Condition {
	return Condition{Property: property, Operator: OpLe, Value: value}
}

// And conjoins conditions. A single clause is returned as-is; no clauses yield
// the match-all zero Condition.
func And(conditions ...Condition) Condition {
	if len(conditions) == 1 {
		return conditions[0]
	}
	if len(conditions) == 0 {
		return Condition{}
	}
	return Condition{And: conditions}
}

// Sort orders query results by one entry property.
type Sort struct {
	Property   string `json:"property"`
	Descending bool   `json:"descending,omitempty"`
}

// LogQuery bundles the arguments of a connector query: an optional filter
// condition, sort spec, property projection, and opaque cursor pagination.
type LogQuery struct {
	Condition  *Condition `json:"condition,omitempty"`
	Sort       []Sort     `json:"sort,omitempty"`
	Projection []string   `json:"projection,omitempty"`
	Cursor     string     `json:"cursor,omitempty"`
	PageSize   int        `json:"pageSize,omitempty"`
}

// QueryResult is one page of entries matching a query. Cursor is set only when
// further pages exist; TotalEntities counts every match independent of the
// pagination window.
type QueryResult struct {
	Entries       []LogEntry `json:"entries"`
	Cursor        string     `json:"cursor,omitempty"`
	PageSize      int        `json:"pageSize,omitempty"`
	TotalEntities int        `json:"totalEntities"`
}
