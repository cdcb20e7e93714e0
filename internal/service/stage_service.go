package service

import (
	"context"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/ordering"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateProjectDTO struct {
	Name string `json:"name" binding:"required"`
}

type CreateStageDTO struct {
	ProjectID string  `json:"project_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	PrevID    *string `json:"prev_id"`
	NextID    *string `json:"next_id"`
}

type CreateTaskDTO struct {
	StageID     string  `json:"stage_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	PrevID      *string `json:"prev_id"`
	NextID      *string `json:"next_id"`
}

type MoveDTO struct {
	PrevID *string `json:"prev_id"`
	NextID *string `json:"next_id"`
}

// --- Interface ---

// StageService manages projects, their ordered pipeline stages and the
// ordered tasks within a stage. Order keys are computed and consumed inside
// one transaction so two concurrent inserts cannot collide on the same
// midpoint.
type StageService interface {
	CreateProject(ctx context.Context, ownerID uuid.UUID, req CreateProjectDTO) (*model.Project, error)

	CreateStage(ctx context.Context, actorID uuid.UUID, req CreateStageDTO) (*model.PipelineStage, error)
	MoveStage(ctx context.Context, actorID, stageID uuid.UUID, req MoveDTO) (*model.PipelineStage, error)
	ListStages(ctx context.Context, projectID uuid.UUID) ([]model.PipelineStage, error)

	CreateTask(ctx context.Context, actorID uuid.UUID, req CreateTaskDTO) (*model.Task, error)
	MoveTask(ctx context.Context, actorID, taskID uuid.UUID, req MoveDTO) (*model.Task, error)
	ListTasks(ctx context.Context, stageID uuid.UUID) ([]model.Task, error)
}

type stageService struct {
	repo  repository.StageRepository
	audit AuditService
	txm   repository.TransactionManager
}

func NewStageService(repo repository.StageRepository, audit AuditService, txm repository.TransactionManager) StageService {
	return &stageService{repo: repo, audit: audit, txm: txm}
}

// --- Implementation ---

func (s *stageService) CreateProject(ctx context.Context, ownerID uuid.UUID, req CreateProjectDTO) (*model.Project, error) {
	project := model.Project{Name: req.Name, OwnerID: ownerID}
	if err := s.repo.CreateProject(ctx, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// stageNeighborKeys resolves the neighbor stages and returns their order
// keys. A neighbor from another project fails the insertion.
func (s *stageService) stageNeighborKeys(ctx context.Context, projectID uuid.UUID, prevID, nextID *string) (prev, next *float64, err error) {
	if prevID != nil {
		stage, lookupErr := s.lookupStage(ctx, *prevID)
		if lookupErr != nil {
			return nil, nil, lookupErr
		}
		if stage.ProjectID != projectID {
			return nil, nil, apperr.ErrCrossContainer
		}
		prev = &stage.OrderKey
	}
	if nextID != nil {
		stage, lookupErr := s.lookupStage(ctx, *nextID)
		if lookupErr != nil {
			return nil, nil, lookupErr
		}
		if stage.ProjectID != projectID {
			return nil, nil, apperr.ErrCrossContainer
		}
		next = &stage.OrderKey
	}
	return prev, next, nil
}

func (s *stageService) lookupStage(ctx context.Context, raw string) (*model.PipelineStage, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "INVALID_STAGE_ID", "invalid stage id: "+raw)
	}
	return s.repo.GetStage(ctx, id)
}

func (s *stageService) CreateStage(ctx context.Context, actorID uuid.UUID, req CreateStageDTO) (*model.PipelineStage, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "INVALID_PROJECT_ID", "invalid project id")
	}

	var stage model.PipelineStage
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.repo.GetProject(txCtx, projectID); findErr != nil {
			return findErr
		}

		prev, next, neighborErr := s.stageNeighborKeys(txCtx, projectID, req.PrevID, req.NextID)
		if neighborErr != nil {
			return neighborErr
		}
		orderKey, computeErr := ordering.Compute(prev, next)
		if computeErr != nil {
			return computeErr
		}

		stage = model.PipelineStage{
			ProjectID: projectID,
			Name:      req.Name,
			OrderKey:  orderKey,
		}
		if createErr := s.repo.CreateStage(txCtx, &stage); createErr != nil {
			return createErr
		}
		return s.audit.Record(txCtx, &actorID, model.ActionCreateStage, stage.ID.String(), stage.Name,
			nil, map[string]interface{}{"order_key": orderKey})
	})
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (s *stageService) MoveStage(ctx context.Context, actorID, stageID uuid.UUID, req MoveDTO) (*model.PipelineStage, error) {
	var stage *model.PipelineStage
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		found, findErr := s.repo.GetStage(txCtx, stageID)
		if findErr != nil {
			return findErr
		}
		stage = found

		prev, next, neighborErr := s.stageNeighborKeys(txCtx, stage.ProjectID, req.PrevID, req.NextID)
		if neighborErr != nil {
			return neighborErr
		}
		orderKey, computeErr := ordering.Compute(prev, next)
		if computeErr != nil {
			return computeErr
		}

		if updateErr := s.repo.UpdateStageOrder(txCtx, stageID, orderKey); updateErr != nil {
			return updateErr
		}
		oldKey := stage.OrderKey
		stage.OrderKey = orderKey
		return s.audit.Record(txCtx, &actorID, model.ActionMoveStage, stageID.String(), stage.Name,
			map[string]interface{}{"order_key": oldKey},
			map[string]interface{}{"order_key": orderKey})
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *stageService) ListStages(ctx context.Context, projectID uuid.UUID) ([]model.PipelineStage, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListStages(ctx, projectID)
}

// taskNeighborKeys mirrors stageNeighborKeys for tasks within a stage
func (s *stageService) taskNeighborKeys(ctx context.Context, stageID uuid.UUID, prevID, nextID *string) (prev, next *float64, err error) {
	if prevID != nil {
		task, lookupErr := s.lookupTask(ctx, *prevID)
		if lookupErr != nil {
			return nil, nil, lookupErr
		}
		if task.StageID != stageID {
			return nil, nil, apperr.ErrCrossContainer
		}
		prev = &task.OrderKey
	}
	if nextID != nil {
		task, lookupErr := s.lookupTask(ctx, *nextID)
		if lookupErr != nil {
			return nil, nil, lookupErr
		}
		if task.StageID != stageID {
			return nil, nil, apperr.ErrCrossContainer
		}
		next = &task.OrderKey
	}
	return prev, next, nil
}

func (s *stageService) lookupTask(ctx context.Context, raw string) (*model.Task, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "INVALID_TASK_ID", "invalid task id: "+raw)
	}
	return s.repo.GetTask(ctx, id)
}

func (s *stageService) CreateTask(ctx context.Context, actorID uuid.UUID, req CreateTaskDTO) (*model.Task, error) {
	stageID, err := uuid.Parse(req.StageID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "INVALID_STAGE_ID", "invalid stage id")
	}

	var task model.Task
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.repo.GetStage(txCtx, stageID); findErr != nil {
			return findErr
		}

		prev, next, neighborErr := s.taskNeighborKeys(txCtx, stageID, req.PrevID, req.NextID)
		if neighborErr != nil {
			return neighborErr
		}
		orderKey, computeErr := ordering.Compute(prev, next)
		if computeErr != nil {
			return computeErr
		}

		task = model.Task{
			StageID:     stageID,
			Title:       req.Title,
			Description: req.Description,
			OrderKey:    orderKey,
		}
		if createErr := s.repo.CreateTask(txCtx, &task); createErr != nil {
			return createErr
		}
		return s.audit.Record(txCtx, &actorID, model.ActionCreateTask, task.ID.String(), task.Title,
			nil, map[string]interface{}{"order_key": orderKey})
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *stageService) MoveTask(ctx context.Context, actorID, taskID uuid.UUID, req MoveDTO) (*model.Task, error) {
	var task *model.Task
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		found, findErr := s.repo.GetTask(txCtx, taskID)
		if findErr != nil {
			return findErr
		}
		task = found

		prev, next, neighborErr := s.taskNeighborKeys(txCtx, task.StageID, req.PrevID, req.NextID)
		if neighborErr != nil {
			return neighborErr
		}
		orderKey, computeErr := ordering.Compute(prev, next)
		if computeErr != nil {
			return computeErr
		}

		if updateErr := s.repo.UpdateTaskOrder(txCtx, taskID, orderKey); updateErr != nil {
			return updateErr
		}
		oldKey := task.OrderKey
		task.OrderKey = orderKey
		return s.audit.Record(txCtx, &actorID, model.ActionMoveTask, taskID.String(), task.Title,
			map[string]interface{}{"order_key": oldKey},
			map[string]interface{}{"order_key": orderKey})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *stageService) ListTasks(ctx context.Context, stageID uuid.UUID) ([]model.Task, error) {
	if _, err := s.repo.GetStage(ctx, stageID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, stageID)
}
