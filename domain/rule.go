package domain

// Rule describes a recurrence. RatePattern is opaque to the client
// (e.g. "w#1M#1,2,3T#09:00").
type Rule struct {
	Record
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	RatePattern string  `json:"rate_pattern"`
	IsActive    bool    `json:"is_active"`
}

type RulePatch struct {
	Name        *string          `json:"name,omitempty"`
	Description Optional[string] `json:"description,omitzero"`
	CategoryID  Optional[int64]  `json:"category_id,omitzero"`
	RatePattern *string          `json:"rate_pattern,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func (p RulePatch) Apply(r Rule) Rule {
	if p.Name != nil {
		r.Name = *p.Name
	}
	p.Description.ApplyTo(&r.Description)
	p.CategoryID.ApplyTo(&r.CategoryID)
	if p.RatePattern != nil {
		r.RatePattern = *p.RatePattern
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	return r
}
