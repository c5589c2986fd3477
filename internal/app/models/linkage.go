package models

import (
	"strings"
	"time"
)

// LinkStatus is the approval state of a job at one college.
type LinkStatus string

const (
	LinkStatusPending  LinkStatus = "pending"
	LinkStatusApproved LinkStatus = "approved"
	LinkStatusRejected LinkStatus = "rejected"
)

// ParseLinkAction maps an approver action ("approve", "approved", "accepted",
// "reject", "rejected") to the target status.
func ParseLinkAction(action string) (LinkStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve", "approved", "accept", "accepted":
		return LinkStatusApproved, true
	case "reject", "rejected":
		return LinkStatusRejected, true
	}
	return "", false
}

// ParseLinkStatus validates a status filter. "all" and "" mean no filter.
func ParseLinkStatus(s string) (LinkStatus, bool) {
	switch LinkStatus(strings.ToLower(s)) {
	case LinkStatusPending:
		return LinkStatusPending, true
	case LinkStatusApproved, "accepted":
		return LinkStatusApproved, true
	case LinkStatusRejected:
		return LinkStatusRejected, true
	case "", "all":
		return "", true
	}
	return "", false
}

// CollegeJobLink defines a (job, college) linkage, stored in 'college_job_links'.
// Rows are never deleted.
type CollegeJobLink struct {
	ID        int64      `json:"id" db:"id"`
	JobID     int64      `json:"jobId" db:"job_id"`
	CollegeID int64      `json:"collegeId" db:"college_id"`
	Status    LinkStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// LinkedJob is a linkage joined with its job, company and college names.
type LinkedJob struct {
	Link        CollegeJobLink `json:"link"`
	Job         Job            `json:"job"`
	CompanyName string         `json:"companyName"`
	CollegeName string         `json:"collegeName"`
}
