package schema

import (
	"bytes"
	"encoding/json"

	"github.com/starford/taborganizer/internal/models"
)

type rawLibrary struct {
	Name       string          `json:"name"`
	Icon       string          `json:"icon"`
	Categories json.RawMessage `json:"categories"`
}

type rawCategory struct {
	Name        string            `json:"name"`
	Icon        string            `json:"icon"`
	Color       string            `json:"color"`
	Progress    string            `json:"progress"`
	Description string            `json:"description"`
	Task        string            `json:"task"`
	Links       []json.RawMessage `json:"links"`
}

type rawStatus struct {
	Watching   bool `json:"watching"`
	Watched    bool `json:"watched"`
	Understood bool `json:"understood"`
	Applied    bool `json:"applied"`
}

// rawLink accepts both shapes of a stored link. IsWatching is the legacy
// single progress flag and maps to watched.
type rawLink struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Status      *rawStatus `json:"status"`
	IsWatching  bool       `json:"isWatching"`
	QuickNote   string     `json:"quickNote"`
	FullNote    string     `json:"fullNote"`
	LinkNotes   string     `json:"linkNotes"`
}

// decodeCategory decodes one category. Legacy categories get display
// defaults and a reduced status; links that fail to decode are dropped.
func decodeCategory(raw json.RawMessage, legacy bool) (*models.Category, bool) {
	if !isObject(raw) {
		return nil, false
	}
	var rc rawCategory
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, false
	}
	cat := &models.Category{
		Name:        rc.Name,
		Icon:        rc.Icon,
		Color:       rc.Color,
		Progress:    rc.Progress,
		Description: rc.Description,
		Task:        rc.Task,
		Links:       make([]models.Link, 0, len(rc.Links)),
	}
	if legacy {
		if cat.Icon == "" {
			cat.Icon = models.DefaultCategoryIcon
		}
		if cat.Color == "" {
			cat.Color = models.DefaultCategoryColor
		}
	}
	for _, lr := range rc.Links {
		var rl rawLink
		if !isObject(lr) {
			continue
		}
		if err := json.Unmarshal(lr, &rl); err != nil {
			continue
		}
		cat.Links = append(cat.Links, rl.link(legacy))
	}
	return cat, true
}

func (rl rawLink) link(legacy bool) models.Link {
	var st rawStatus
	if rl.Status != nil {
		st = *rl.Status
	}
	status := models.Status{
		Watching:   st.Watching,
		Watched:    st.Watched || rl.IsWatching,
		Understood: st.Understood,
		Applied:    st.Applied,
	}
	l := models.Link{
		URL:         rl.URL,
		Title:       rl.Title,
		Description: rl.Description,
		Icon:        rl.Icon,
		Status:      status,
		QuickNote:   rl.QuickNote,
		FullNote:    rl.FullNote,
		LinkNotes:   rl.LinkNotes,
	}
	if legacy {
		l.Status.Watching = false
		l.Status.Understood = false
		l.FullNote = ""
	}
	return l
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
