package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/services"
	"github.com/placementcell/pipeline/internal/middleware"
)

// RoundController handles interview ladders and enrollment
type RoundController struct {
	roundService services.RoundService
}

// NewRoundController creates a new RoundController
func NewRoundController(roundService services.RoundService) *RoundController {
	return &RoundController{roundService: roundService}
}

// CreateRound appends a round to a job
// @Summary Append an interview round
// @Description The new round becomes the job's final round; the previous final round becomes promotable
// @Tags rounds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRoundRequest true "Job and round type"
// @Success 201 {object} dto.APIResponse{data=models.Round}
// @Failure 403 {object} dto.ErrorResponse "Job belongs to another company"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /round/create [post]
func (c *RoundController) CreateRound(ctx *gin.Context) {
	var req dto.CreateRoundRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	round, err := c.roundService.CreateRound(ctx.Request.Context(), middleware.GetUID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(round, "Round created"))
}

// Apply enrolls the calling student in a job's first round
// @Summary Apply to a job
// @Tags rounds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplyRequest true "Job"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment}
// @Failure 403 {object} dto.ErrorResponse "Not a student, job not open at the college, or not eligible"
// @Failure 409 {object} dto.ErrorResponse "Already applied or job has no rounds"
// @Router /round/apply [post]
func (c *RoundController) Apply(ctx *gin.Context) {
	var req dto.ApplyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.roundService.Apply(ctx.Request.Context(), middleware.GetUID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(enrollment, "Application submitted"))
}

// Promote moves a student to the next round
// @Summary Promote a student
// @Tags rounds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PromoteRequest true "Round and student"
// @Success 200 {object} dto.APIResponse{data=dto.PromoteResponse}
// @Failure 404 {object} dto.ErrorResponse "Round not found"
// @Failure 409 {object} dto.ErrorResponse "Student not in round, or round is final"
// @Router /round/promote-student [post]
func (c *RoundController) Promote(ctx *gin.Context) {
	var req dto.PromoteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.roundService.Promote(ctx.Request.Context(), middleware.GetUID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Student promoted"))
}

// JobRounds lists a job's rounds
// @Summary List a job's rounds
// @Tags rounds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JobRoundsRequest true "Job"
// @Success 200 {object} dto.APIResponse{data=[]models.Round}
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /round/jobsrounds [post]
func (c *RoundController) JobRounds(ctx *gin.Context) {
	var req dto.JobRoundsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	rounds, err := c.roundService.ListRounds(ctx.Request.Context(), req.JobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rounds, ""))
}

// RoundStudents lists the students currently in a round
// @Summary List students in a round
// @Tags rounds
// @Produce json
// @Security BearerAuth
// @Param id path int true "Round ID"
// @Success 200 {object} dto.APIResponse{data=dto.RoundStudentsResponse}
// @Failure 404 {object} dto.ErrorResponse "Round not found"
// @Router /round/{id}/students [get]
func (c *RoundController) RoundStudents(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Round")
	if !ok {
		return
	}

	resp, err := c.roundService.ListRoundStudents(ctx.Request.Context(), middleware.GetUID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
