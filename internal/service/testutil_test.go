package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database and runs the production
// migration against it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// env bundles every service wired against one test database
type env struct {
	db *gorm.DB

	members     repository.MemberRepository
	requests    RequestService
	responses   ResponseService
	approvers   ApproverService
	stages      StageService
	attachments AttachmentService
	audit       AuditService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newTestDB(t)

	txm := repository.NewTransactionManager(db)
	memberRepo := repository.NewMemberRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	approverRepo := repository.NewApproverRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	stageRepo := repository.NewStageRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	audit := NewAuditService(auditRepo)
	attachments := NewAttachmentService(attachmentRepo)
	sink := NewNoopSink()

	return &env{
		db:          db,
		members:     memberRepo,
		requests:    NewRequestService(requestRepo, approverRepo, memberRepo, attachments, audit, txm, sink),
		responses:   NewResponseService(requestRepo, responseRepo, approverRepo, memberRepo, attachments, audit, txm, sink),
		approvers:   NewApproverService(requestRepo, approverRepo, memberRepo, responseRepo, audit, txm, sink),
		stages:      NewStageService(stageRepo, audit, txm),
		attachments: attachments,
		audit:       audit,
	}
}

// seedMember inserts a member directly, bypassing registration
func (e *env) seedMember(t *testing.T, username, role string) *model.Member {
	t.Helper()
	m := &model.Member{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.db.Create(m).Error)
	return m
}

// seedLocation creates a project with one stage and returns the stage id,
// the usual location for an approval request.
func (e *env) seedLocation(t *testing.T, owner uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	project, err := e.stages.CreateProject(ctx, owner, CreateProjectDTO{Name: "test project"})
	require.NoError(t, err)

	stage, err := e.stages.CreateStage(ctx, owner, CreateStageDTO{
		ProjectID: project.ID.String(),
		Name:      "Backlog",
	})
	require.NoError(t, err)
	return stage.ID
}

// seedRequest creates a request owned by owner with the given approvers
func (e *env) seedRequest(t *testing.T, owner *model.Member, approvers ...*model.Member) *RequestView {
	t.Helper()
	ctx := context.Background()

	location := e.seedLocation(t, owner.ID)
	ids := make([]string, 0, len(approvers))
	for _, a := range approvers {
		ids = append(ids, a.ID.String())
	}

	view, err := e.requests.CreateRequest(ctx, owner.ID, CreateRequestDTO{
		Title:       "purchase new laptops",
		Content:     "three machines for the platform team",
		LocationID:  location.String(),
		ApproverIDs: ids,
	})
	require.NoError(t, err)
	return view
}

func (e *env) requestStatus(t *testing.T, id string) string {
	t.Helper()
	view, err := e.requests.GetRequest(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	return view.Status
}
