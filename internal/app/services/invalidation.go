package services

import (
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/pkg/cache"
)

// Each write evicts exactly the keys returned by its function here.

var linkStatuses = []models.LinkStatus{models.LinkStatusPending, models.LinkStatusApproved, models.LinkStatusRejected}

var offerStatuses = []models.OfferStatus{models.OfferStatusOffered, models.OfferStatusAccepted, models.OfferStatusRejected}

// JobCreatedInvalidation covers the listings a new pending linkage appears in.
func JobCreatedInvalidation(companyID int64, newlyLinked []int64) []string {
	keys := make([]string, 0, len(newlyLinked)*3+1)
	for _, collegeID := range newlyLinked {
		keys = append(keys,
			cache.CollegeJobsKey(collegeID, string(models.LinkStatusPending)),
			cache.CollegeJobsKey(collegeID, "all"),
			cache.CompanyJobsKey(companyID, collegeID),
		)
	}
	if len(newlyLinked) > 0 {
		keys = append(keys, cache.CompanyLinkagesKey(companyID, string(models.LinkStatusPending)))
	}
	return keys
}

// LinkageStatusInvalidation covers every listing the linkage may have moved between.
func LinkageStatusInvalidation(companyID, collegeID int64) []string {
	keys := []string{
		cache.CollegeJobsKey(collegeID, "all"),
		cache.CompanyJobsKey(companyID, collegeID),
	}
	for _, status := range linkStatuses {
		keys = append(keys,
			cache.CollegeJobsKey(collegeID, string(status)),
			cache.CompanyLinkagesKey(companyID, string(status)),
		)
	}
	return keys
}

func RoundCreatedInvalidation(jobID int64) []string {
	return []string{cache.JobRoundsKey(jobID)}
}

// OfferCreatedInvalidation covers the student's list and the job's "offered" list.
func OfferCreatedInvalidation(offer *models.Offer) []string {
	return []string{
		cache.StudentOffersKey(offer.StudentID),
		cache.JobOffersKey(offer.JobID, string(models.OfferStatusOffered)),
	}
}

func OfferStatusInvalidation(offer *models.Offer) []string {
	keys := []string{
		cache.OfferKey(offer.ID),
		cache.StudentOffersKey(offer.StudentID),
	}
	for _, status := range offerStatuses {
		keys = append(keys, cache.JobOffersKey(offer.JobID, string(status)))
	}
	return keys
}
