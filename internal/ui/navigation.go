package ui

import (
	"fmt"
	"strings"
	"sync"
)

// Page is a top-level screen of the client.
type Page string

const (
	PageTasks      Page = "Tasks"
	PageCalendar   Page = "Calendar"
	PageRules      Page = "Rules"
	PageCategories Page = "Categories"
	PageUsers      Page = "Users"
	PageDashboard  Page = "Dashboard"
)

// Pages lists every page in menu order.
var Pages = []Page{PageDashboard, PageTasks, PageCalendar, PageCategories, PageRules, PageUsers}

func (p Page) Valid() bool {
	for _, known := range Pages {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePage matches a page name case-insensitively.
func ParsePage(name string) (Page, error) {
	for _, known := range Pages {
		if strings.EqualFold(string(known), name) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", name)
}

// Navigation holds the current page. The zero value starts on the dashboard.
type Navigation struct {
	mu      sync.RWMutex
	current Page
}

func NewNavigation() *Navigation {
	return &Navigation{current: PageDashboard}
}

func (n *Navigation) Current() Page {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.current == "" {
		return PageDashboard
	}
	return n.current
}

// NavigateTo switches pages. Unknown pages are ignored and reported as false.
func (n *Navigation) NavigateTo(page Page) bool {
	if !page.Valid() {
		return false
	}
	n.mu.Lock()
	n.current = page
	n.mu.Unlock()
	return true
}
