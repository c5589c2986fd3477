package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/services"
	"github.com/placementcell/pipeline/internal/middleware"
)

// StudentController handles student-facing listings
type StudentController struct {
	jobService services.JobService
}

// NewStudentController creates a new StudentController
func NewStudentController(jobService services.JobService) *StudentController {
	return &StudentController{jobService: jobService}
}

// ListJobs lists approved jobs with the caller's eligibility
// @Summary List jobs open at the caller's college
// @Description Each job carries isEligible and the reasons the caller does not qualify
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentJob}
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Router /student/jobs [get]
func (c *StudentController) ListJobs(ctx *gin.Context) {
	jobs, err := c.jobService.ListJobsForStudent(ctx.Request.Context(), middleware.GetUID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(jobs, ""))
}
