package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachRejectsUnknownOwnerType(t *testing.T) {
	e := newEnv(t)

	err := e.attachments.Attach(context.Background(), "INVOICE", uuid.New(), []AttachmentInput{
		{Kind: model.AttachmentKindLink, URL: "https://example.com", Description: "x"},
	})
	assert.Equal(t, "UNKNOWN_OWNER_TYPE", apperr.CodeOf(err))
}

func TestAttachValidatesByKind(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	// Link without description
	err := e.attachments.Attach(ctx, model.OwnerTypeResponse, owner, []AttachmentInput{
		{Kind: model.AttachmentKindLink, URL: "https://example.com"},
	})
	assert.Equal(t, "INVALID_ATTACHMENT", apperr.CodeOf(err))

	// Unknown kind
	err = e.attachments.Attach(ctx, model.OwnerTypeResponse, owner, []AttachmentInput{
		{Kind: "IMAGE", URL: "https://example.com"},
	})
	assert.Equal(t, "INVALID_ATTACHMENT", apperr.CodeOf(err))

	// Valid file and link pass and are listed back
	err = e.attachments.Attach(ctx, model.OwnerTypeResponse, owner, []AttachmentInput{
		{Kind: model.AttachmentKindFile, URL: "s3://bucket/receipt.pdf", Name: "receipt.pdf"},
		{Kind: model.AttachmentKindLink, URL: "https://example.com", Description: "context"},
	})
	require.NoError(t, err)

	listed, err := e.attachments.ListFor(ctx, model.OwnerTypeResponse, owner)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
