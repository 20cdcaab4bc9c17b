package status

type memoKey struct {
	loading bool
	err     string
}

// Memo caches the projection of one source, keyed by its (isLoading, error)
// pair. A Memo is not safe for concurrent use; callers serialize access.
type Memo struct {
	key   memoKey
	valid bool
	value Health
}

// Project returns the cached Health when the pair is unchanged and
// recomputes it otherwise. recomputed reports which of the two happened.
func (m *Memo) Project(isLoading bool, err string) (h Health, recomputed bool) {
	key := memoKey{loading: isLoading, err: err}
	if m.valid && m.key == key {
		return m.value, false
	}

	m.key = key
	m.value = Project(isLoading, err)
	m.valid = true

	return m.value, true
}
