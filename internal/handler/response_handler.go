package handler

import (
	"context"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ResponseHandler struct {
	responseService service.ResponseService
}

func NewResponseHandler(responseService service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseService: responseService}
}

func (h *ResponseHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleMember)

	requests := router.Group("/api/requests")
	requests.Use(auth)
	{
		requests.POST("/:id/approve", h.RecordApprove)
		requests.POST("/:id/reject", h.RecordReject)
		requests.GET("/:id/responses", h.ListResponses)
	}

	responses := router.Group("/api/responses")
	responses.Use(auth)
	{
		responses.DELETE("/:id", h.RetractResponse)
	}
}

// RecordApprove records an APPROVE decision by a designated approver
// @Summary      Approve a request
// @Description  Records the caller's APPROVE and recomputes the request status
// @Tags         responses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Request ID"
// @Param        payload  body      service.RecordResponseDTO  true  "Approve Payload"
// @Success      201      {object}  response.Response{data=service.ResponseView}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/approve [post]
func (h *ResponseHandler) RecordApprove(c *gin.Context) {
	h.record(c, h.responseService.RecordApprove)
}

// RecordReject records a REJECT decision; one rejection closes the request
// @Summary      Reject a request
// @Tags         responses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Request ID"
// @Param        payload  body      service.RecordResponseDTO  true  "Reject Payload"
// @Success      201      {object}  response.Response{data=service.ResponseView}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/reject [post]
func (h *ResponseHandler) RecordReject(c *gin.Context) {
	h.record(c, h.responseService.RecordReject)
}

func (h *ResponseHandler) record(c *gin.Context, fn func(ctx context.Context, approverID, requestID uuid.UUID, req service.RecordResponseDTO) (*service.ResponseView, error)) {
	approver, ok := actorID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.RecordResponseDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body — comment and attachments are optional
		req = service.RecordResponseDTO{}
	}

	result, err := fn(c.Request.Context(), approver, requestID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// RetractResponse soft-deletes a response and recomputes the request status
// @Summary      Retract a response
// @Description  Author or admin only; can reopen a terminal request
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Response ID"
// @Success      200  {object}  response.Response{data=service.ResponseView}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/responses/{id} [delete]
func (h *ResponseHandler) RetractResponse(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	responseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.responseService.RetractResponse(c.Request.Context(), actor, responseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListResponses lists non-deleted responses of a request, newest first
// @Summary      List responses of a request
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.ResponseView}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.responseService.ListResponses(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
