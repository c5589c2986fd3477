package models

import "time"

// MaxOffersPerStudent caps the offers a student may hold, in any status, across all jobs.
const MaxOffersPerStudent = 2

// OfferStatus is the student's response to an offer.
type OfferStatus string

const (
	OfferStatusOffered  OfferStatus = "offered"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusOffered, OfferStatusAccepted, OfferStatusRejected:
		return true
	}
	return false
}

// Offer defines an offer, stored in 'offers'. Package and CompanyName are
// snapshots taken at creation.
type Offer struct {
	ID          int64       `json:"id" db:"id"`
	JobID       int64       `json:"jobId" db:"job_id"`
	StudentID   int64       `json:"studentId" db:"student_id"`
	Package     float64     `json:"package" db:"package"`
	CompanyName string      `json:"companyName" db:"company_name"`
	Status      OfferStatus `json:"status" db:"status"`
	OfferNumber int         `json:"offerNumber" db:"offer_number"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}
