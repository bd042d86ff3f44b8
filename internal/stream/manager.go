package stream

// Manager owns the two independent streams of one engine run: the
// primary stream feeds gameplay-visible draws, the secondary feeds
// cosmetic randomness that must never perturb gameplay determinism.
//
// The manager applies no differentiation beyond independent consumption:
// both streams are reseeded from the same value and diverge only because
// their callers draw at different rates.
type Manager struct {
	primary   *Stream
	secondary *Stream
}

// NewManager returns a manager with both streams seeded from value.
func NewManager(seed uint64) *Manager {
	return &Manager{
		primary:   New(seed),
		secondary: New(seed),
	}
}

// ReseedAll reseeds both streams atomically from one external seed.
func (m *Manager) ReseedAll(seed uint64) {
	m.primary.Seed(seed)
	m.secondary.Seed(seed)
}

// Primary returns the gameplay stream.
func (m *Manager) Primary() *Stream {
	return m.primary
}

// Secondary returns the cosmetic stream.
func (m *Manager) Secondary() *Stream {
	return m.secondary
}
