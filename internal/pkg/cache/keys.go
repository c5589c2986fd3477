package cache

import "fmt"

func OfferKey(offerID int64) string {
	return fmt.Sprintf("offer:%d", offerID)
}

func StudentOffersKey(studentID int64) string {
	return fmt.Sprintf("offers:student:%d", studentID)
}

// JobOffersKey scopes a job's offers by status.
func JobOffersKey(jobID int64, status string) string {
	return fmt.Sprintf("offers:job:%d:%s", jobID, status)
}

// CollegeJobsKey lists a college's linkages; status "all" covers every state.
func CollegeJobsKey(collegeID int64, status string) string {
	return fmt.Sprintf("jobs:college:%d:%s", collegeID, status)
}

// CompanyJobsKey lists a company's linkages at one college.
func CompanyJobsKey(companyID, collegeID int64) string {
	return fmt.Sprintf("jobsByCompany:%d:%d", companyID, collegeID)
}

// CompanyLinkagesKey lists a company's linkages in one state across colleges.
func CompanyLinkagesKey(companyID int64, status string) string {
	return fmt.Sprintf("jobsByCompany:%d:status:%s", companyID, status)
}

func JobRoundsKey(jobID int64) string {
	return fmt.Sprintf("rounds:job:%d", jobID)
}
