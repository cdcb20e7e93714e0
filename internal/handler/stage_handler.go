package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StageHandler struct {
	stageService service.StageService
}

func NewStageHandler(stageService service.StageService) *StageHandler {
	return &StageHandler{stageService: stageService}
}

func (h *StageHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleMember)

	projects := router.Group("/api/projects")
	projects.Use(auth)
	{
		projects.POST("", h.CreateProject)
		projects.GET("/:id/stages", h.ListStages)
	}

	stages := router.Group("/api/stages")
	stages.Use(auth)
	{
		stages.POST("", h.CreateStage)
		stages.PUT("/:id/move", h.MoveStage)
		stages.GET("/:id/tasks", h.ListTasks)
	}

	tasks := router.Group("/api/tasks")
	tasks.Use(auth)
	{
		tasks.POST("", h.CreateTask)
		tasks.PUT("/:id/move", h.MoveTask)
	}
}

// CreateProject creates a project owned by the caller
// @Summary      Create a project
// @Tags         stages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProjectDTO  true  "Project Payload"
// @Success      201      {object}  response.Response{data=model.Project}
// @Router       /api/projects [post]
func (h *StageHandler) CreateProject(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateProjectDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.stageService.CreateProject(c.Request.Context(), owner, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// CreateStage inserts a stage between the given neighbors
// @Summary      Create a pipeline stage
// @Description  Computes a fractional order key between prev_id and next_id
// @Tags         stages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateStageDTO  true  "Stage Payload"
// @Success      201      {object}  response.Response{data=model.PipelineStage}
// @Failure      422      {object}  response.Response
// @Router       /api/stages [post]
func (h *StageHandler) CreateStage(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateStageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.stageService.CreateStage(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// MoveStage repositions a stage between new neighbors
// @Summary      Move a pipeline stage
// @Tags         stages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string           true  "Stage ID"
// @Param        payload  body      service.MoveDTO  true  "Neighbors"
// @Success      200      {object}  response.Response{data=model.PipelineStage}
// @Failure      422      {object}  response.Response
// @Router       /api/stages/{id}/move [put]
func (h *StageHandler) MoveStage(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	stageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.MoveDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.stageService.MoveStage(c.Request.Context(), actor, stageID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListStages lists a project's stages in display order
// @Summary      List stages of a project
// @Tags         stages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=[]model.PipelineStage}
// @Router       /api/projects/{id}/stages [get]
func (h *StageHandler) ListStages(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.stageService.ListStages(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateTask inserts a task between the given neighbors within a stage
// @Summary      Create a task
// @Tags         stages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTaskDTO  true  "Task Payload"
// @Success      201      {object}  response.Response{data=model.Task}
// @Failure      422      {object}  response.Response
// @Router       /api/tasks [post]
func (h *StageHandler) CreateTask(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateTaskDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.stageService.CreateTask(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// MoveTask repositions a task between new neighbors
// @Summary      Move a task
// @Tags         stages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string           true  "Task ID"
// @Param        payload  body      service.MoveDTO  true  "Neighbors"
// @Success      200      {object}  response.Response{data=model.Task}
// @Failure      422      {object}  response.Response
// @Router       /api/tasks/{id}/move [put]
func (h *StageHandler) MoveTask(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.MoveDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.stageService.MoveTask(c.Request.Context(), actor, taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListTasks lists a stage's tasks in display order
// @Summary      List tasks of a stage
// @Tags         stages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Stage ID"
// @Success      200  {object}  response.Response{data=[]model.Task}
// @Router       /api/stages/{id}/tasks [get]
func (h *StageHandler) ListTasks(c *gin.Context) {
	stageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.stageService.ListTasks(c.Request.Context(), stageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
