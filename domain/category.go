package domain

// Category groups tasks, events and rules. Deleting one leaves referencing
// records alone; the backend nulls their foreign keys.
type Category struct {
	Record
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

type CategoryPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description Optional[string] `json:"description,omitzero"`
	Icon        Optional[string] `json:"icon,omitzero"`
}

func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	p.Description.ApplyTo(&c.Description)
	p.Icon.ApplyTo(&c.Icon)
	return c
}
