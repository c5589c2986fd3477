package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/placementcell/pipeline/internal/app/models"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/app/services"
	"github.com/placementcell/pipeline/internal/middleware"
)

// OfferController handles the offer ledger
type OfferController struct {
	offerService services.OfferService
}

// NewOfferController creates a new OfferController
func NewOfferController(offerService services.OfferService) *OfferController {
	return &OfferController{offerService: offerService}
}

// CreateOffer offers a job to a finalist
// @Summary Create an offer
// @Description A student may hold at most two offers across all jobs
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOfferRequest true "Job and student"
// @Success 201 {object} dto.APIResponse{data=models.Offer}
// @Failure 404 {object} dto.ErrorResponse "Job or student not found"
// @Failure 409 {object} dto.ErrorResponse "Offer limit reached, offer exists, or rounds not completed"
// @Router /company/createOffer [post]
func (c *OfferController) CreateOffer(ctx *gin.Context) {
	var req dto.CreateOfferRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	offer, err := c.offerService.CreateOffer(ctx.Request.Context(), middleware.GetUID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(offer, "Offer created"))
}

// UpdateStatus records the student's response to an offer
// @Summary Accept or reject an offer
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OfferStatusRequest true "Offer and status"
// @Success 200 {object} dto.APIResponse{data=models.Offer}
// @Failure 403 {object} dto.ErrorResponse "Offer belongs to another student"
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Router /company/offer/status [put]
func (c *OfferController) UpdateStatus(ctx *gin.Context) {
	var req dto.OfferStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	offer, err := c.offerService.SetOfferStatus(ctx.Request.Context(), middleware.GetUID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(offer, "Offer "+string(offer.Status)))
}

// ListAccepted lists a job's accepted offers
// @Summary List accepted offers of a job
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JobOffersRequest true "Job"
// @Success 200 {object} dto.APIResponse{data=[]models.Offer}
// @Router /company/offer/accepted [post]
func (c *OfferController) ListAccepted(ctx *gin.Context) {
	c.listByJob(ctx, models.OfferStatusAccepted)
}

// ListRejected lists a job's rejected offers
// @Summary List rejected offers of a job
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JobOffersRequest true "Job"
// @Success 200 {object} dto.APIResponse{data=[]models.Offer}
// @Router /company/offer/rejected [post]
func (c *OfferController) ListRejected(ctx *gin.Context) {
	c.listByJob(ctx, models.OfferStatusRejected)
}

// ListOffered lists a job's unanswered offers
// @Summary List open offers of a job
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JobOffersRequest true "Job"
// @Success 200 {object} dto.APIResponse{data=[]models.Offer}
// @Router /company/offer/offered [post]
func (c *OfferController) ListOffered(ctx *gin.Context) {
	c.listByJob(ctx, models.OfferStatusOffered)
}

func (c *OfferController) listByJob(ctx *gin.Context, status models.OfferStatus) {
	var req dto.JobOffersRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	offers, err := c.offerService.ListOffersByJob(ctx.Request.Context(), middleware.GetUID(ctx), req.JobID, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(offers, ""))
}

// StudentOffers lists a student's offers
// @Summary List a student's offers
// @Description Students may omit studentId to list their own offers
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentOffersRequest false "Student"
// @Success 200 {object} dto.APIResponse{data=[]models.Offer}
// @Router /company/offer/student [post]
func (c *OfferController) StudentOffers(ctx *gin.Context) {
	var req dto.StudentOffersRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	offers, err := c.offerService.ListStudentOffers(ctx.Request.Context(), middleware.GetUID(ctx), req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(offers, ""))
}

// GetOffer retrieves an offer by ID
// @Summary Get offer by ID
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer ID"
// @Success 200 {object} dto.APIResponse{data=models.Offer}
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Router /company/offer/{id} [get]
func (c *OfferController) GetOffer(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Offer")
	if !ok {
		return
	}

	offer, err := c.offerService.GetOffer(ctx.Request.Context(), middleware.GetUID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(offer, ""))
}
