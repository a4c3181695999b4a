package routes

import (
	"gramsetu-be/controllers"
	"gramsetu-be/middlewares"
	"gramsetu-be/models"

	"github.com/gin-gonic/gin"
)

// IssueHandlers groups what IssueRoutes mounts.
type IssueHandlers struct {
	Issues    *controllers.IssueController
	GramSevak *controllers.GramSevakController
	Secret    string
	Limiter   gin.HandlerFunc
}

// IssueRoutes sets up the issue and gram sevak routes
func IssueRoutes(r *gin.Engine, h IssueHandlers) {
	auth := middlewares.AuthMiddleware(h.Secret)
	admin := middlewares.RequireRole(models.Admin)
	worker := middlewares.RequireRole(models.GramSevak, models.Admin)

	submit := []gin.HandlerFunc{auth}
	if h.Limiter != nil {
		submit = append(submit, h.Limiter)
	}
	submit = append(submit, h.Issues.CreateIssue)

	issues := r.Group("/api/issues")
	{
		issues.GET("", h.Issues.GetAllIssues)
		issues.POST("", submit...)

		issues.GET("/gramsevek", auth, worker, h.GramSevak.GetAllAssignments)
		issues.GET("/gramsevek/completed", auth, admin, h.GramSevak.GetCompletedAssignments)
		issues.PATCH("/gramsevek/:first/:second", auth, worker, h.GramSevak.PatchAssignment)

		issues.GET("/:id", h.Issues.GetIssue)
		issues.POST("/:id/vote", auth, h.Issues.VoteIssue)
		issues.PATCH("/:id/approved", auth, admin, h.Issues.ApproveIssue)
		issues.PATCH("/:id/rejected", auth, admin, h.Issues.RejectIssue)
		issues.PATCH("/:id/in-progress", auth, admin, h.Issues.AssignIssue)
	}
}
