package dto

import "time"

// JobRunResponse reports a manual job run.
type JobRunResponse struct {
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Result     any       `json:"result"`
}

// JobListResponse lists the jobs that can be run.
type JobListResponse struct {
	Jobs   []string `json:"jobs"`
	Engine string   `json:"engine"`
}
