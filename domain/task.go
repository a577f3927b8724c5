package domain

import "time"

// Task represents a user-owned to-do item.
type Task struct {
	Record
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *int64     `json:"category_id"`
	RuleID      *int64     `json:"rule_id,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
	CompletedAt *Timestamp `json:"completed_at,omitempty"`
}

// Normalize enforces that CompletedAt is set exactly when the task is completed.
func (t Task) Normalize(now time.Time) Task {
	switch {
	case t.IsCompleted && t.CompletedAt == nil:
		t.CompletedAt = AtPtr(now)
	case !t.IsCompleted:
		t.CompletedAt = nil
	}
	return t
}

// IsOverdue reports whether an open task is past its due date.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskPatch is a partial task update.
type TaskPatch struct {
	Title       *string             `json:"title,omitempty"`
	Description Optional[string]    `json:"description,omitzero"`
	CategoryID  Optional[int64]     `json:"category_id,omitzero"`
	RuleID      Optional[int64]     `json:"rule_id,omitzero"`
	IsCompleted *bool               `json:"is_completed,omitempty"`
	DueDate     Optional[Timestamp] `json:"due_date,omitzero"`
	CompletedAt Optional[Timestamp] `json:"completed_at,omitzero"`
}

func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	p.Description.ApplyTo(&t.Description)
	p.CategoryID.ApplyTo(&t.CategoryID)
	p.RuleID.ApplyTo(&t.RuleID)
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	p.DueDate.ApplyTo(&t.DueDate)
	p.CompletedAt.ApplyTo(&t.CompletedAt)
	return t
}

// WithCompletion makes the completion fields of the patch agree with each other.
// is_completed wins when present: true keeps a provided completed_at or stamps
// now, false clears it. A patch carrying only completed_at sets is_completed
// from it.
func (p TaskPatch) WithCompletion(now time.Time) TaskPatch {
	if p.IsCompleted == nil {
		if p.CompletedAt.IsSet() {
			done := p.CompletedAt.Value() != nil
			p.IsCompleted = &done
		}
		return p
	}
	switch {
	case !*p.IsCompleted:
		p.CompletedAt = Null[Timestamp]()
	case p.CompletedAt.Value() == nil:
		p.CompletedAt = Set(At(now))
	}
	return p
}

// TitlePatch is a convenience for the most common edit.
func TitlePatch(title string) TaskPatch {
	return TaskPatch{Title: strPtr(title)}
}
