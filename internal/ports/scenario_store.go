package ports

import (
	"context"
	"errors"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
)

// Port: durable local persistence for connection settings, saved scenarios,
// in-flight console state and request history.
//
// Reads are best-effort: a corrupt stored value is logged and replaced by
// defaults, never surfaced as an error. Errors indicate storage failure only.
type ScenarioStore interface {
	LoadSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error

	// SaveScenario snapshots data under name. A scenario with the same name
	// is replaced and moved to the front of the list; otherwise the new
	// scenario is prepended. Returns the stored snapshot with its generated id.
	SaveScenario(ctx context.Context, name string, data domain.ScenarioData) (domain.SavedScenario, error)
	// ListScenarios returns saved scenarios, most recently saved first.
	ListScenarios(ctx context.Context) ([]domain.SavedScenario, error)
	GetScenario(ctx context.Context, id string) (domain.SavedScenario, error)
	// DeleteScenario removes by id; unknown ids are a silent no-op.
	DeleteScenario(ctx context.Context, id string) error

	LoadConsoleState(ctx context.Context) ([]byte, error)
	SaveConsoleState(ctx context.Context, state []byte) error

	// AppendHistory prepends an entry and trims to domain.HistoryLimit.
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
	ListHistory(ctx context.Context) ([]domain.HistoryEntry, error)
}

var ErrNotFound = errors.New("not found")
