package models

import "time"

// Round defines one rung of a job's interview ladder, stored in 'rounds'.
// Numbers are contiguous from 1. IsNextRound is set on every round that has
// a successor; IsTerminal marks the highest round.
type Round struct {
	ID          int64     `json:"id" db:"id"`
	JobID       int64     `json:"jobId" db:"job_id"`
	RoundNumber int       `json:"roundNumber" db:"round_number"`
	RoundType   string    `json:"roundType" db:"round_type"`
	IsNextRound bool      `json:"isNextRound" db:"is_next_round"`
	IsTerminal  bool      `json:"isTerminal" db:"is_terminal"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Enrollment is the single rung a student occupies in a job's ladder,
// stored in 'round_enrollments' with one row per (job, student).
type Enrollment struct {
	ID        int64     `json:"id" db:"id"`
	JobID     int64     `json:"jobId" db:"job_id"`
	StudentID int64     `json:"studentId" db:"student_id"`
	RoundID   int64     `json:"roundId" db:"round_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
