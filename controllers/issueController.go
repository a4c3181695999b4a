package controllers

import (
	"net/http"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/services"

	"github.com/gin-gonic/gin"
)

// IssueController serves the citizen-facing issue endpoints.
type IssueController struct {
	issues  *services.IssueService
	timeout time.Duration
}

func NewIssueController(issues *services.IssueService, timeout time.Duration) *IssueController {
	return &IssueController{issues: issues, timeout: timeout}
}

// CreateIssue handles the submission of a new issue
func (ic *IssueController) CreateIssue(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Type        string           `json:"type" binding:"required"`
		Description string           `json:"description" binding:"required,max=2000"`
		Location    *models.Location `json:"location" binding:"required"`
		Images      []string         `json:"images"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := requestContext(c, ic.timeout)
	defer cancel()

	issue, err := ic.issues.Submit(ctx, services.SubmitInput{
		Type:        input.Type,
		Description: input.Description,
		Location:    input.Location,
		Images:      input.Images,
		SubmittedBy: actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "msg": "Issue submitted", "issue": issue.View()})
}

// GetAllIssues returns every issue, newest first
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	ctx, cancel := requestContext(c, ic.timeout)
	defer cancel()

	issues, err := ic.issues.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(issues), "issues": views(issues)})
}

// GetIssue retrieves an issue by its ID
func (ic *IssueController) GetIssue(c *gin.Context) {
	id, ok := objectIDParam(c, "id", "issue")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, ic.timeout)
	defer cancel()

	issue, err := ic.issues.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "issue": issue.View()})
}

// VoteIssue records the caller's single vote on an issue
func (ic *IssueController) VoteIssue(c *gin.Context) {
	id, ok := objectIDParam(c, "id", "issue")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, ic.timeout)
	defer cancel()

	issue, err := ic.issues.CastVote(ctx, id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "Vote recorded", "issue": issue.View()})
}

// ApproveIssue marks an issue approved
func (ic *IssueController) ApproveIssue(c *gin.Context) {
	id, ok := objectIDParam(c, "id", "issue")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, ic.timeout)
	defer cancel()

	issue, err := ic.issues.Approve(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "Issue approved", "issue": issue.View()})
}

// RejectIssue marks an issue rejected and clears its assignment
func (ic *IssueController) RejectIssue(c *gin.Context) {
	id, ok := objectIDParam(c, "id", "issue")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, ic.timeout)
	defer cancel()

	issue, err := ic.issues.Reject(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "Issue rejected", "issue": issue.View()})
}

// AssignIssue hands an issue to a gram sevak with an explicit priority
func (ic *IssueController) AssignIssue(c *gin.Context) {
	id, ok := objectIDParam(c, "id", "issue")
	if !ok {
		return
	}

	var input struct {
		Priority   string `json:"priority" binding:"required"`
		AssignedTo string `json:"assignedTo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "priority and assignedTo are required"})
		return
	}

	ctx, cancel := requestContext(c, ic.timeout)
	defer cancel()

	issue, fork, err := ic.issues.Assign(ctx, id, input.Priority, input.AssignedTo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"msg":        "Issue assigned to gram sevak",
		"issue":      issue.View(),
		"assignment": fork,
	})
}
