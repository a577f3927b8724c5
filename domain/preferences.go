package domain

// Preferences holds per-user filter defaults. Its lifecycle is independent of
// the Identity it is keyed by.
type Preferences struct {
	UserID            int64  `json:"user_id"`
	Theme             string `json:"theme"`
	TimePeriod        string `json:"time_period"`
	ShowUndated       bool   `json:"show_undated"`
	ShowUncategorized bool   `json:"show_uncategorized"`
	ShowOverdue       bool   `json:"show_overdue"`
}

// DefaultPreferences mirrors the backend's defaults for a new user.
func DefaultPreferences(userID int64) Preferences {
	return Preferences{
		UserID:            userID,
		Theme:             "light",
		TimePeriod:        "today",
		ShowUndated:       true,
		ShowUncategorized: true,
		ShowOverdue:       true,
	}
}

type PreferencesPatch struct {
	Theme             *string `json:"theme,omitempty"`
	TimePeriod        *string `json:"time_period,omitempty"`
	ShowUndated       *bool   `json:"show_undated,omitempty"`
	ShowUncategorized *bool   `json:"show_uncategorized,omitempty"`
	ShowOverdue       *bool   `json:"show_overdue,omitempty"`
}

func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	if p.Theme != nil {
		prefs.Theme = *p.Theme
	}
	if p.TimePeriod != nil {
		prefs.TimePeriod = *p.TimePeriod
	}
	if p.ShowUndated != nil {
		prefs.ShowUndated = *p.ShowUndated
	}
	if p.ShowUncategorized != nil {
		prefs.ShowUncategorized = *p.ShowUncategorized
	}
	if p.ShowOverdue != nil {
		prefs.ShowOverdue = *p.ShowOverdue
	}
	return prefs
}

func (p PreferencesPatch) IsEmpty() bool {
	return p == PreferencesPatch{}
}
