package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApproverHandler struct {
	approverService service.ApproverService
}

func NewApproverHandler(approverService service.ApproverService) *ApproverHandler {
	return &ApproverHandler{approverService: approverService}
}

func (h *ApproverHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleMember)

	requests := router.Group("/api/requests")
	requests.Use(auth)
	{
		requests.POST("/:id/approvers", h.AssignApprovers)
	}

	approvers := router.Group("/api/approvers")
	approvers.Use(auth)
	{
		approvers.DELETE("/:id", h.RemoveApprover)
	}
}

// AssignApprovers adds members to the request's active approver set
// @Summary      Assign approvers
// @Tags         approvers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Request ID"
// @Param        payload  body      service.AssignApproversDTO true  "Member IDs"
// @Success      201      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/approvers [post]
func (h *ApproverHandler) AssignApprovers(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.AssignApproversDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approverService.AssignApprovers(c.Request.Context(), actor, requestID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// RemoveApprover soft-deletes one designation
// @Summary      Remove an approver
// @Description  Fails when the removal would leave an open request with no approvers
// @Tags         approvers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Designation ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/approvers/{id} [delete]
func (h *ApproverHandler) RemoveApprover(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	designationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.approverService.RemoveApprover(c.Request.Context(), actor, designationID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"removed": true}))
}
