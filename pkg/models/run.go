package models

import "time"

// RunRecord is one generator run as kept in the history ledger.
type RunRecord struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	PreviousSeq     int       `json:"previous_seq"`
	Seq             int       `json:"seq"`
	Changed         bool      `json:"changed"`
	Forced          bool      `json:"forced"`
	Versions        string    `json:"versions"`
	Instances       int       `json:"instances"`
	Requests        int64     `json:"requests"`
	NetworkRequests int64     `json:"network_requests"`
}

// Published reports whether the run advanced the sequence number.
func (r RunRecord) Published() bool {
	return r.Changed || r.Forced
}
