package dto

// CreateOfferRequest represents the request to offer a job to a student
type CreateOfferRequest struct {
	JobID     int64 `json:"jobId" binding:"required,gt=0"`
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
}

// OfferStatusRequest is the student's response to an offer
type OfferStatusRequest struct {
	OfferID int64  `json:"offerId" binding:"required,gt=0"`
	Status  string `json:"status" binding:"required,oneof=offered accepted rejected"`
}

// JobOffersRequest selects the job whose offers to list
type JobOffersRequest struct {
	JobID int64 `json:"jobId" binding:"required,gt=0"`
}

// StudentOffersRequest selects a student's offers. Students may omit
// StudentID to mean themselves.
type StudentOffersRequest struct {
	StudentID int64 `json:"studentId" binding:"omitempty,gt=0"`
}
