package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/services"
	"github.com/placementcell/pipeline/internal/middleware"
)

// JobController handles job posting operations
type JobController struct {
	jobService     services.JobService
	linkageService services.LinkageService
}

// NewJobController creates a new JobController
func NewJobController(jobService services.JobService, linkageService services.LinkageService) *JobController {
	return &JobController{
		jobService:     jobService,
		linkageService: linkageService,
	}
}

// CreateJob handles job creation
// @Summary Post a job to colleges
// @Description Creates the job, or reuses an identical posting, and links it to each college as pending
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Job details and target colleges"
// @Success 201 {object} dto.APIResponse{data=dto.CreateJobResponse} "Job posted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a company"
// @Failure 404 {object} dto.ErrorResponse "College not found"
// @Failure 409 {object} dto.ErrorResponse "Job already linked to all selected colleges"
// @Router /job/create [post]
func (c *JobController) CreateJob(ctx *gin.Context) {
	var req dto.CreateJobRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.jobService.CreateJob(ctx.Request.Context(), middleware.GetUID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Job posted"))
}

// GetJob retrieves a job by ID
// @Summary Get job by ID
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job} "Job retrieved"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /job/{id} [get]
func (c *JobController) GetJob(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Job")
	if !ok {
		return
	}

	job, err := c.jobService.GetJob(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, ""))
}

// ListPending lists the caller's pending linkages
// @Summary List pending job requests
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.LinkedJob}
// @Router /job/pending [get]
func (c *JobController) ListPending(ctx *gin.Context) {
	c.listByStatus(ctx, models.LinkStatusPending)
}

// ListAccepted lists the caller's approved linkages
// @Summary List approved job requests
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.LinkedJob}
// @Router /job/accepted [get]
func (c *JobController) ListAccepted(ctx *gin.Context) {
	c.listByStatus(ctx, models.LinkStatusApproved)
}

// ListRejected lists the caller's rejected linkages
// @Summary List rejected job requests
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.LinkedJob}
// @Router /job/rejected [get]
func (c *JobController) ListRejected(ctx *gin.Context) {
	c.listByStatus(ctx, models.LinkStatusRejected)
}

func (c *JobController) listByStatus(ctx *gin.Context, status models.LinkStatus) {
	links, err := c.linkageService.ListForCompany(ctx.Request.Context(), middleware.GetUID(ctx), status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(links, ""))
}

// ListCompanyJobs lists every job a company has posted
// @Summary List a company's jobs
// @Tags rounds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompanyJobsRequest true "Company"
// @Success 200 {object} dto.APIResponse{data=[]models.Job}
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /round/companyrounds [post]
func (c *JobController) ListCompanyJobs(ctx *gin.Context) {
	var req dto.CompanyJobsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	jobs, err := c.jobService.ListCompanyJobs(ctx.Request.Context(), req.CompanyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(jobs, ""))
}
