package domain

// Event is a calendar entry with a start and an optional end.
type Event struct {
	Record
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *int64     `json:"category_id"`
	RuleID      *int64     `json:"rule_id,omitempty"`
	StartTime   Timestamp  `json:"start_time"`
	EndTime     *Timestamp `json:"end_time,omitempty"`
}

type EventPatch struct {
	Title       *string             `json:"title,omitempty"`
	Description Optional[string]    `json:"description,omitzero"`
	CategoryID  Optional[int64]     `json:"category_id,omitzero"`
	RuleID      Optional[int64]     `json:"rule_id,omitzero"`
	StartTime   *Timestamp          `json:"start_time,omitempty"`
	EndTime     Optional[Timestamp] `json:"end_time,omitzero"`
}

func (p EventPatch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	p.Description.ApplyTo(&e.Description)
	p.CategoryID.ApplyTo(&e.CategoryID)
	p.RuleID.ApplyTo(&e.RuleID)
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	p.EndTime.ApplyTo(&e.EndTime)
	return e
}
