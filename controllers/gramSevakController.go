package controllers

import (
	"net/http"
	"time"

	"gramsetu-be/services"

	"github.com/gin-gonic/gin"
)

// GramSevakController serves the worker-facing assignment endpoints.
type GramSevakController struct {
	assignments *services.AssignmentService
	timeout     time.Duration
}

func NewGramSevakController(assignments *services.AssignmentService, timeout time.Duration) *GramSevakController {
	return &GramSevakController{assignments: assignments, timeout: timeout}
}

// GetAllAssignments lists forks with per-status counts. The optional
// assignedTo query narrows the list to one worker.
func (gc *GramSevakController) GetAllAssignments(c *gin.Context) {
	ctx, cancel := requestContext(c, gc.timeout)
	defer cancel()

	list, err := gc.assignments.List(ctx, c.Query("assignedTo"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(list.Assignments),
		"stats":   list.Stats,
		"issues":  list.Assignments,
	})
}

// GetCompletedAssignments lists forks marked Completed
func (gc *GramSevakController) GetCompletedAssignments(c *gin.Context) {
	ctx, cancel := requestContext(c, gc.timeout)
	defer cancel()

	completed, err := gc.assignments.ListCompleted(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(completed),
		"data":    completed,
	})
}

// PatchAssignment serves both PATCH /gramsevek/:id/approval and
// PATCH /gramsevek/:status/:id, which share one route shape.
func (gc *GramSevakController) PatchAssignment(c *gin.Context) {
	if c.Param("second") == "approval" {
		gc.UpdateAssignment(c, "first")
		return
	}
	gc.UpdateAssignmentStatus(c, "first", "second")
}

type commentBody struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// UpdateAssignment applies a partial update: status, comments, proof photos.
func (gc *GramSevakController) UpdateAssignment(c *gin.Context, idParam string) {
	id, ok := objectIDParam(c, idParam, "assignment")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Status      *string       `json:"status"`
		Comment     *commentBody  `json:"comment"`
		Comments    []commentBody `json:"comments"`
		ProofPhotos []string      `json:"proofPhotos"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	patch := services.AssignmentPatch{Status: input.Status, ProofPhotos: input.ProofPhotos}
	if input.Comment != nil {
		input.Comments = append([]commentBody{*input.Comment}, input.Comments...)
	}
	for _, cm := range input.Comments {
		patch.Comments = append(patch.Comments, services.CommentInput{Text: cm.Text, Date: cm.Date, Time: cm.Time})
	}

	ctx, cancel := requestContext(c, gc.timeout)
	defer cancel()

	updated, err := gc.assignments.Update(ctx, actor, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Assignment updated", "data": updated})
}

// UpdateAssignmentStatus sets only the fork status.
func (gc *GramSevakController) UpdateAssignmentStatus(c *gin.Context, statusParam, idParam string) {
	id, ok := objectIDParam(c, idParam, "assignment")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, gc.timeout)
	defer cancel()

	updated, err := gc.assignments.SetStatus(ctx, actor, id, c.Param(statusParam))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated successfully", "data": updated})
}
