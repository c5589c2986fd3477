package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/placementcell/pipeline/internal/app/controllers"
	"github.com/placementcell/pipeline/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	jobController *controllers.JobController,
	collegeController *controllers.CollegeController,
	roundController *controllers.RoundController,
	studentController *controllers.StudentController,
	offerController *controllers.OfferController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// Every pipeline route needs a caller identity; roles are resolved per operation.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	jobs := authenticated.Group("/job")
	{
		jobs.POST("/create", jobController.CreateJob)
		jobs.GET("/pending", jobController.ListPending)
		jobs.GET("/accepted", jobController.ListAccepted)
		jobs.GET("/rejected", jobController.ListRejected)
		jobs.GET("/:id", jobController.GetJob)
	}

	college := authenticated.Group("/college")
	{
		college.POST("/jobs/manage", collegeController.ManageJob)
		college.GET("/jobs", collegeController.ListJobs)
		college.GET("/company/:companyId/jobs", collegeController.ListCompanyJobs)
	}

	rounds := authenticated.Group("/round")
	{
		rounds.POST("/create", roundController.CreateRound)
		rounds.POST("/apply", roundController.Apply)
		rounds.POST("/promote-student", roundController.Promote)
		rounds.POST("/jobsrounds", roundController.JobRounds)
		rounds.POST("/companyrounds", jobController.ListCompanyJobs)
		rounds.GET("/:id/students", roundController.RoundStudents)
	}

	authenticated.GET("/student/jobs", studentController.ListJobs)

	company := authenticated.Group("/company")
	{
		company.POST("/createOffer", offerController.CreateOffer)

		offers := company.Group("/offer")
		{
			offers.PUT("/status", offerController.UpdateStatus)
			offers.POST("/accepted", offerController.ListAccepted)
			offers.POST("/rejected", offerController.ListRejected)
			offers.POST("/offered", offerController.ListOffered)
			offers.POST("/student", offerController.StudentOffers)
			offers.GET("/:id", offerController.GetOffer)
		}
	}
}
