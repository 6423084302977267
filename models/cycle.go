// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CandidateOutcome is the result of handling one candidate in a cycle.
type CandidateOutcome string

const (
	// OutcomeUploaded means the file was transferred and recorded.
	OutcomeUploaded CandidateOutcome = "uploaded"
	// OutcomeAlreadySynced means the ledger already had a success record.
	OutcomeAlreadySynced CandidateOutcome = "already_synced"
	// OutcomeFailed means the transfer failed; retried next cycle.
	OutcomeFailed CandidateOutcome = "failed"
)

// CandidateResult describes what happened to one candidate.
type CandidateResult struct {
	LocalPath  string           `json:"local_path"`
	RemotePath string           `json:"remote_path,omitempty"`
	Outcome    CandidateOutcome `json:"outcome"`
	Reason     string           `json:"reason,omitempty"`
}

// SweepSummary counts the work done by one retention sweep.
type SweepSummary struct {
	RemoteDeleted int `json:"remote_deleted"`
	RemoteFailed  int `json:"remote_failed"`
	LocalDeleted  int `json:"local_deleted"`
	LocalSkipped  int `json:"local_skipped"`
	LocalFailed   int `json:"local_failed"`
}

// CycleSummary is the ephemeral report of one reconciliation cycle.
type CycleSummary struct {
	CycleID    string            `json:"cycle_id"`
	Profile    string            `json:"profile"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Skipped    bool              `json:"skipped"`
	Aborted    bool              `json:"aborted"`
	Error      string            `json:"error,omitempty"`
	Candidates int               `json:"candidates"`
	Locked     int               `json:"locked"`
	Attempted  int               `json:"attempted"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	Synced     int               `json:"already_synced"`
	Results    []CandidateResult `json:"results,omitempty"`
	Sweep      SweepSummary      `json:"sweep"`
}

// Record appends a candidate result and updates the counters.
func (s *CycleSummary) Record(res CandidateResult) {
	s.Results = append(s.Results, res)
	switch res.Outcome {
	case OutcomeUploaded:
		s.Attempted++
		s.Succeeded++
	case OutcomeFailed:
		s.Attempted++
		s.Failed++
	case OutcomeAlreadySynced:
		s.Synced++
	}
}

// Duration returns the wall time of the cycle.
func (s CycleSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
