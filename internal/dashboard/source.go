package dashboard

import "github.com/angeloszaimis/source-dashboard/internal/runtimeconfig"

// Source describes one data panel: where its endpoint comes from and which
// path is requested below it.
type Source struct {
	Name     string
	Title    string
	Path     string
	Endpoint func(*runtimeconfig.Store) (string, error)
}

var (
	PrimarySource = Source{
		Name:     "primary",
		Title:    "Primary API",
		Path:     "/data",
		Endpoint: (*runtimeconfig.Store).PrimaryEndpoint,
	}

	SecondarySource = Source{
		Name:     "secondary",
		Title:    "Secondary API",
		Path:     "/data2",
		Endpoint: (*runtimeconfig.Store).SecondaryEndpoint,
	}
)

// DefaultSources returns the two panels of the dashboard in display order.
func DefaultSources() []Source {
	return []Source{PrimarySource, SecondarySource}
}
