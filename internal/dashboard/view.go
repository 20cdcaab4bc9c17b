package dashboard

import (
	"time"

	"github.com/angeloszaimis/source-dashboard/internal/source"
	"github.com/angeloszaimis/source-dashboard/internal/status"
)

// NotUpdated is shown for a source that has never completed a cycle.
const NotUpdated = "Not updated yet"

// ViewModel is the read-only aggregate rendered by the presentation layer.
type ViewModel struct {
	Environment       string  `json:"environment"`
	PrimaryEndpoint   string  `json:"primaryEndpoint"`
	SecondaryEndpoint string  `json:"secondaryEndpoint"`
	Panels            []Panel `json:"panels"`
}

// Panel is the view of one source.
type Panel struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Path     string        `json:"path"`
	Endpoint string        `json:"endpoint"`
	Status   status.Health `json:"status"`
	Tone     status.Tone   `json:"tone"`
	Loading  bool          `json:"loading"`
	Error    string        `json:"error,omitempty"`
	// Records is empty while loading or failed.
	Records       []source.Record `json:"records"`
	Empty         bool            `json:"empty"`
	LastUpdated   string          `json:"lastUpdated"`
	LastUpdatedAt *time.Time      `json:"lastUpdatedAt,omitempty"`
}

// Panel looks up a panel by source name.
func (v ViewModel) Panel(name string) (Panel, bool) {
	for _, p := range v.Panels {
		if p.Name == name {
			return p, true
		}
	}
	return Panel{}, false
}

func newPanel(src Source, st source.LoadState, health status.Health) Panel {
	p := Panel{
		Name:        src.Name,
		Title:       src.Title,
		Path:        src.Path,
		Endpoint:    st.Endpoint,
		Status:      health,
		Tone:        health.Tone(),
		Loading:     st.IsLoading,
		Error:       st.Error,
		Records:     []source.Record{},
		LastUpdated: NotUpdated,
	}

	if st.Updated() {
		at := st.LastUpdatedAt
		p.LastUpdatedAt = &at
		p.LastUpdated = at.Local().Format(time.TimeOnly)
	}

	if !st.IsLoading && st.Error == "" {
		p.Records = st.Records
		p.Empty = len(st.Records) == 0
	}

	return p
}
