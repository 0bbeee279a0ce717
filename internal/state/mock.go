package state

import "sync"

// Mock is a test double for Manager. Saves are applied immediately.
type Mock struct {
	mu     sync.Mutex
	prefs  *Preferences
	saves  []Preferences
	getErr error
	closed bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GetPreferences() (*Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.prefs == nil {
		return nil, nil //nolint:nilnil // mirrors Manager
	}
	p := *m.prefs
	return &p, nil
}

func (m *Mock) SavePreferences(prefs Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = &prefs
	m.saves = append(m.saves, prefs)
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetPreferences(prefs *Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = prefs
}

func (m *Mock) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// Saves returns every SavePreferences argument, in order.
func (m *Mock) Saves() []Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Preferences(nil), m.saves...)
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
