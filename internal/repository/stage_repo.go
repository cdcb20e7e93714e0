package repository

import (
	"context"
	"errors"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StageRepository defines data access for projects, pipeline stages and tasks
type StageRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)

	CreateStage(ctx context.Context, stage *model.PipelineStage) error
	GetStage(ctx context.Context, id uuid.UUID) (*model.PipelineStage, error)
	ListStages(ctx context.Context, projectID uuid.UUID) ([]model.PipelineStage, error)
	UpdateStageOrder(ctx context.Context, id uuid.UUID, orderKey float64) error

	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListTasks(ctx context.Context, stageID uuid.UUID) ([]model.Task, error)
	UpdateTaskOrder(ctx context.Context, id uuid.UUID, orderKey float64) error
}

type stageRepository struct {
	db *gorm.DB
}

func NewStageRepository(db *gorm.DB) StageRepository {
	return &stageRepository{db: db}
}

func (r *stageRepository) CreateProject(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *stageRepository) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *stageRepository) CreateStage(ctx context.Context, stage *model.PipelineStage) error {
	return GetDB(ctx, r.db).Create(stage).Error
}

func (r *stageRepository) GetStage(ctx context.Context, id uuid.UUID) (*model.PipelineStage, error) {
	var stage model.PipelineStage
	if err := GetDB(ctx, r.db).First(&stage, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrStageNotFound
		}
		return nil, err
	}
	return &stage, nil
}

func (r *stageRepository) ListStages(ctx context.Context, projectID uuid.UUID) ([]model.PipelineStage, error) {
	var stages []model.PipelineStage
	err := GetDB(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("order_key ASC").
		Find(&stages).Error
	if err != nil {
		return nil, err
	}
	return stages, nil
}

func (r *stageRepository) UpdateStageOrder(ctx context.Context, id uuid.UUID, orderKey float64) error {
	return GetDB(ctx, r.db).Model(&model.PipelineStage{}).
		Where("id = ?", id).
		Update("order_key", orderKey).Error
}

func (r *stageRepository) CreateTask(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *stageRepository) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *stageRepository) ListTasks(ctx context.Context, stageID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := GetDB(ctx, r.db).
		Where("stage_id = ?", stageID).
		Order("order_key ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *stageRepository) UpdateTaskOrder(ctx context.Context, id uuid.UUID, orderKey float64) error {
	return GetDB(ctx, r.db).Model(&model.Task{}).
		Where("id = ?", id).
		Update("order_key", orderKey).Error
}
