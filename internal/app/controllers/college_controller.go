package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/services"
	"github.com/placementcell/pipeline/internal/middleware"
)

// CollegeController handles the college side of the approval workflow
type CollegeController struct {
	linkageService services.LinkageService
}

// NewCollegeController creates a new CollegeController
func NewCollegeController(linkageService services.LinkageService) *CollegeController {
	return &CollegeController{linkageService: linkageService}
}

// ManageJob approves or rejects a job request
// @Summary Approve or reject a job request
// @Description Overwrites the linkage status; a decision can be reversed later
// @Tags college
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ManageLinkageRequest true "Linkage and action (approve or reject)"
// @Success 200 {object} dto.APIResponse{data=dto.LinkageResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid action"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an approver at this college"
// @Failure 404 {object} dto.ErrorResponse "Job request not found"
// @Router /college/jobs/manage [post]
func (c *CollegeController) ManageJob(ctx *gin.Context) {
	var req dto.ManageLinkageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.linkageService.SetStatus(ctx.Request.Context(), middleware.GetUID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Job request "+string(resp.Link.Status)))
}

// ListJobs lists the job requests of the caller's college
// @Summary List job requests at the caller's college
// @Tags college
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, rejected or all"
// @Success 200 {object} dto.APIResponse{data=[]models.LinkedJob}
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Router /college/jobs [get]
func (c *CollegeController) ListJobs(ctx *gin.Context) {
	links, err := c.linkageService.ListForCollege(ctx.Request.Context(), middleware.GetUID(ctx), ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(links, ""))
}

// ListCompanyJobs lists one company's job requests at the caller's college
// @Summary List a company's job requests at the caller's college
// @Tags college
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Success 200 {object} dto.APIResponse{data=[]models.LinkedJob}
// @Router /college/company/{companyId}/jobs [get]
func (c *CollegeController) ListCompanyJobs(ctx *gin.Context) {
	companyID, ok := parseIDParam(ctx, "companyId", "Company")
	if !ok {
		return
	}

	links, err := c.linkageService.ListCompanyJobsAtCollege(ctx.Request.Context(), middleware.GetUID(ctx), companyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(links, ""))
}
