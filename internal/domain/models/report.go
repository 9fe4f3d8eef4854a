package models

import "time"

// ScanResult is the outcome for one input record. Err is set for malformed records.
type ScanResult struct {
	AssetID string  `json:"asset_id"`
	Signal  *Signal `json:"signal,omitempty"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// ScanReport groups the results of one cycle.
// Note: no transport (kafka/http) concerns here beyond json tags.
type ScanReport struct {
	CycleID    string             `json:"cycle_id"`
	Provider   string             `json:"provider"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Results    []ScanResult       `json:"results"`
	Counts     map[SignalKind]int `json:"counts"`
	Failed     int                `json:"failed"`
}

// Signals returns the successful signals in result order.
func (r *ScanReport) Signals() []Signal {
	out := make([]Signal, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Signal != nil {
			out = append(out, *res.Signal)
		}
	}
	return out
}

// SignalEvent is the envelope published downstream for each signal.
type SignalEvent struct {
	CycleID   string    `json:"cycle_id"`
	EmittedAt time.Time `json:"emitted_at"`
	Signal    Signal    `json:"signal"`
	Headline  string    `json:"headline,omitempty"`
	Body      string    `json:"body,omitempty"`
}
