package domain

// Record carries the fields every synchronised entity shares.
type Record struct {
	ID        ID        `json:"id,omitzero"`
	UserID    int64     `json:"user_id"`
	CreatedAt Timestamp `json:"created_at,omitzero"`
}

// Meta exposes the shared fields; promoted onto every entity that embeds Record.
func (r *Record) Meta() *Record {
	return r
}

// Entity is satisfied by a pointer to any type embedding Record.
type Entity[T any] interface {
	*T
	Meta() *Record
}

// Patch is a partial change that can be merged locally and sent as-is to the server.
type Patch[T any] interface {
	Apply(T) T
}

// Domain names the remote collection an entity type lives in.
type Domain string

const (
	DomainCategories Domain = "categories"
	DomainTasks      Domain = "tasks"
	DomainEvents     Domain = "events"
	DomainRules      Domain = "rules"
)

// Domains lists every entity domain in bulk-load order.
var Domains = []Domain{DomainCategories, DomainTasks, DomainEvents, DomainRules}

// Snapshot is the full data set owned by one user.
type Snapshot struct {
	Categories []Category `json:"categories"`
	Tasks      []Task     `json:"tasks"`
	Events     []Event    `json:"events"`
	Rules      []Rule     `json:"rules"`
}

func strPtr(s string) *string {
	return &s
}
