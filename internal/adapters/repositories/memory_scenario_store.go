package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// In-process ScenarioStore. Used when the service runs without a database
// and as the store double in handler tests.
type MemoryScenarioStore struct {
	mu        sync.Mutex
	settings  domain.Settings
	scenarios []domain.SavedScenario
	console   []byte
	history   []domain.HistoryEntry
}

func NewMemoryScenarioStore() *MemoryScenarioStore {
	return &MemoryScenarioStore{}
}

func (m *MemoryScenarioStore) LoadSettings(ctx context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *MemoryScenarioStore) SaveSettings(ctx context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

func (m *MemoryScenarioStore) SaveScenario(ctx context.Context, name string, data domain.ScenarioData) (domain.SavedScenario, error) {
	if name == "" {
		return domain.SavedScenario{}, errors.New("save scenario: name must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]domain.SavedScenario, 0, len(m.scenarios)+1)
	saved := domain.SavedScenario{
		ID:      uuid.NewString(),
		Name:    name,
		SavedAt: time.Now().UTC(),
		Data:    data,
	}
	kept = append(kept, saved)
	for _, s := range m.scenarios {
		if s.Name == name {
			continue
		}
		kept = append(kept, s)
	}
	m.scenarios = kept

	return saved, nil
}

func (m *MemoryScenarioStore) ListScenarios(ctx context.Context) ([]domain.SavedScenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.SavedScenario, len(m.scenarios))
	copy(out, m.scenarios)
	return out, nil
}

func (m *MemoryScenarioStore) GetScenario(ctx context.Context, id string) (domain.SavedScenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.scenarios {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.SavedScenario{}, ports.ErrNotFound
}

func (m *MemoryScenarioStore) DeleteScenario(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.scenarios[:0]
	for _, s := range m.scenarios {
		if s.ID == id {
			continue
		}
		kept = append(kept, s)
	}
	m.scenarios = kept
	return nil
}

func (m *MemoryScenarioStore) LoadConsoleState(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.console == nil {
		return nil, nil
	}
	out := make([]byte, len(m.console))
	copy(out, m.console)
	return out, nil
}

func (m *MemoryScenarioStore) SaveConsoleState(ctx context.Context, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.console = make([]byte, len(state))
	copy(m.console, state)
	return nil
}

func (m *MemoryScenarioStore) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	m.history = append([]domain.HistoryEntry{entry}, m.history...)
	if len(m.history) > domain.HistoryLimit {
		m.history = m.history[:domain.HistoryLimit]
	}
	return nil
}

func (m *MemoryScenarioStore) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.HistoryEntry, len(m.history))
	copy(out, m.history)
	return out, nil
}
