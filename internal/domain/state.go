package domain

import "time"

// Connection settings shared by every screen that talks to the platform.
// Owned by the application shell and injected where needed; never read
// ambiently at call sites.
type Settings struct {
	APIBase  string `json:"apiBase"`
	APIKey   string `json:"apiKey"`
	OSRMBase string `json:"osrmBase"`
}

// One submitted request as remembered by the console. History is bounded to
// the HistoryLimit most recent entries, newest first.
type HistoryEntry struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status,omitempty"`
	LatencyMs int       `json:"latency,omitempty"`
	Error     string    `json:"error,omitempty"`
}

const HistoryLimit = 12
