package bus

import "github.com/fastygo/dialin/domain"

// LoadStatus is the per-domain progress reported during a bulk load.
type LoadStatus string

const (
	LoadStatusLoading LoadStatus = "loading"
	LoadStatusSuccess LoadStatus = "success"
	LoadStatusError   LoadStatus = "error"
)

// UserDataLoadedEvent carries every domain collection of one user. It is published
// once per successful bulk load and consumers replace their state wholesale.
type UserDataLoadedEvent struct {
	UserID     int64             `json:"user_id"`
	Categories []domain.Category `json:"categories"`
	Tasks      []domain.Task     `json:"tasks"`
	Events     []domain.Event    `json:"events"`
	Rules      []domain.Rule     `json:"rules"`
}

// AuthStatusChangedEvent is published on login, register, session restore and logout.
type AuthStatusChangedEvent struct {
	IsAuthenticated bool             `json:"is_authenticated"`
	Identity        *domain.Identity `json:"identity"`
}

// DataLoadingEvent reports bulk-load progress for a single domain. Informational only.
type DataLoadingEvent struct {
	UserID int64         `json:"user_id"`
	Domain domain.Domain `json:"domain"`
	Status LoadStatus    `json:"status"`
	Error  string        `json:"error,omitempty"`
}

var (
	UserDataLoaded    = NewTopic[UserDataLoadedEvent]("user-data-loaded")
	AuthStatusChanged = NewTopic[AuthStatusChangedEvent]("auth-status-changed")
	DataLoading       = NewTopic[DataLoadingEvent]("data-loading")
)
