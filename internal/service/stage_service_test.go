package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/ordering"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateStageOrdering(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	ctx := context.Background()

	project, err := e.stages.CreateProject(ctx, owner.ID, CreateProjectDTO{Name: "release board"})
	require.NoError(t, err)
	projectID := project.ID.String()

	// First stage of an empty project gets the initial key
	backlog, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: projectID, Name: "Backlog"})
	require.NoError(t, err)
	assert.Equal(t, ordering.InitialKey, backlog.OrderKey)

	// Appending leaves a full increment of headroom
	done, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{
		ProjectID: projectID,
		Name:      "Done",
		PrevID:    strPtr(backlog.ID.String()),
	})
	require.NoError(t, err)
	assert.Equal(t, ordering.InitialKey+ordering.Increment, done.OrderKey)

	// Inserting between the two lands on the midpoint
	review, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{
		ProjectID: projectID,
		Name:      "Review",
		PrevID:    strPtr(backlog.ID.String()),
		NextID:    strPtr(done.ID.String()),
	})
	require.NoError(t, err)
	assert.Equal(t, (backlog.OrderKey+done.OrderKey)/2, review.OrderKey)

	stages, err := e.stages.ListStages(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "Backlog", stages[0].Name)
	assert.Equal(t, "Review", stages[1].Name)
	assert.Equal(t, "Done", stages[2].Name)
}

func TestCreateStageRejectsInvertedNeighbors(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	ctx := context.Background()

	project, err := e.stages.CreateProject(ctx, owner.ID, CreateProjectDTO{Name: "board"})
	require.NoError(t, err)

	first, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: project.ID.String(), Name: "A"})
	require.NoError(t, err)
	second, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{
		ProjectID: project.ID.String(),
		Name:      "B",
		PrevID:    strPtr(first.ID.String()),
	})
	require.NoError(t, err)

	// prev after next is unsatisfiable
	_, err = e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{
		ProjectID: project.ID.String(),
		Name:      "C",
		PrevID:    strPtr(second.ID.String()),
		NextID:    strPtr(first.ID.String()),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrder)
}

func TestCreateStageRejectsForeignNeighbor(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	ctx := context.Background()

	projectA, err := e.stages.CreateProject(ctx, owner.ID, CreateProjectDTO{Name: "board A"})
	require.NoError(t, err)
	projectB, err := e.stages.CreateProject(ctx, owner.ID, CreateProjectDTO{Name: "board B"})
	require.NoError(t, err)

	foreign, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: projectB.ID.String(), Name: "elsewhere"})
	require.NoError(t, err)

	_, err = e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{
		ProjectID: projectA.ID.String(),
		Name:      "new",
		PrevID:    strPtr(foreign.ID.String()),
	})
	assert.ErrorIs(t, err, apperr.ErrCrossContainer)
}

func TestMoveStage(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	ctx := context.Background()

	project, err := e.stages.CreateProject(ctx, owner.ID, CreateProjectDTO{Name: "board"})
	require.NoError(t, err)
	projectID := project.ID.String()

	a, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: projectID, Name: "A"})
	require.NoError(t, err)
	b, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: projectID, Name: "B", PrevID: strPtr(a.ID.String())})
	require.NoError(t, err)
	c, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: projectID, Name: "C", PrevID: strPtr(b.ID.String())})
	require.NoError(t, err)

	// Move C to the front
	moved, err := e.stages.MoveStage(ctx, owner.ID, c.ID, MoveDTO{NextID: strPtr(a.ID.String())})
	require.NoError(t, err)
	assert.Less(t, moved.OrderKey, a.OrderKey)

	stages, err := e.stages.ListStages(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "C", stages[0].Name)
	assert.Equal(t, "A", stages[1].Name)
	assert.Equal(t, "B", stages[2].Name)
}

func TestTaskOrderingWithinStage(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	ctx := context.Background()

	project, err := e.stages.CreateProject(ctx, owner.ID, CreateProjectDTO{Name: "board"})
	require.NoError(t, err)
	stage, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: project.ID.String(), Name: "Doing"})
	require.NoError(t, err)
	stageID := stage.ID.String()

	first, err := e.stages.CreateTask(ctx, owner.ID, CreateTaskDTO{StageID: stageID, Title: "write spec"})
	require.NoError(t, err)
	assert.Equal(t, ordering.InitialKey, first.OrderKey)

	second, err := e.stages.CreateTask(ctx, owner.ID, CreateTaskDTO{
		StageID: stageID,
		Title:   "review spec",
		PrevID:  strPtr(first.ID.String()),
	})
	require.NoError(t, err)

	between, err := e.stages.CreateTask(ctx, owner.ID, CreateTaskDTO{
		StageID: stageID,
		Title:   "collect feedback",
		PrevID:  strPtr(first.ID.String()),
		NextID:  strPtr(second.ID.String()),
	})
	require.NoError(t, err)

	tasks, err := e.stages.ListTasks(ctx, stage.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "write spec", tasks[0].Title)
	assert.Equal(t, "collect feedback", tasks[1].Title)
	assert.Equal(t, "review spec", tasks[2].Title)

	// Move the middle task to the end
	_, err = e.stages.MoveTask(ctx, owner.ID, between.ID, MoveDTO{PrevID: strPtr(second.ID.String())})
	require.NoError(t, err)

	tasks, err = e.stages.ListTasks(ctx, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, "collect feedback", tasks[2].Title)
}

func TestMoveTaskRejectsNeighborFromOtherStage(t *testing.T) {
	e := newEnv(t)
	owner := e.seedMember(t, "owner", model.RoleMember)
	ctx := context.Background()

	project, err := e.stages.CreateProject(ctx, owner.ID, CreateProjectDTO{Name: "board"})
	require.NoError(t, err)
	doing, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: project.ID.String(), Name: "Doing"})
	require.NoError(t, err)
	done, err := e.stages.CreateStage(ctx, owner.ID, CreateStageDTO{ProjectID: project.ID.String(), Name: "Done", PrevID: strPtr(doing.ID.String())})
	require.NoError(t, err)

	task, err := e.stages.CreateTask(ctx, owner.ID, CreateTaskDTO{StageID: doing.ID.String(), Title: "ship"})
	require.NoError(t, err)
	foreign, err := e.stages.CreateTask(ctx, owner.ID, CreateTaskDTO{StageID: done.ID.String(), Title: "shipped"})
	require.NoError(t, err)

	_, err = e.stages.MoveTask(ctx, owner.ID, task.ID, MoveDTO{PrevID: strPtr(foreign.ID.String())})
	assert.ErrorIs(t, err, apperr.ErrCrossContainer)
}
