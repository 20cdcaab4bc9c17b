package status

// Health is the display label of a data source.
type Health string

const (
	Syncing  Health = "Syncing"
	Degraded Health = "Degraded"
	Healthy  Health = "Healthy"
)

// Tone is the colour family the presentation layer paints a label with.
type Tone string

const (
	ToneAmber   Tone = "amber"
	ToneRose    Tone = "rose"
	ToneEmerald Tone = "emerald"
)

// Project maps a loader's (isLoading, error) pair to a Health.
// Loading is checked first and wins over a stale error.
func Project(isLoading bool, err string) Health {
	if isLoading {
		return Syncing
	}
	if err != "" {
		return Degraded
	}
	return Healthy
}

// Tone returns the colour family for h.
func (h Health) Tone() Tone {
	switch h {
	case Syncing:
		return ToneAmber
	case Degraded:
		return ToneRose
	default:
		return ToneEmerald
	}
}

func (h Health) String() string {
	return string(h)
}
