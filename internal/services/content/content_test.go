package content

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// MockRepository реализует интерфейс content.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateContent(ctx context.Context, content models.Content) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ReadContent(ctx context.Context, id, userUID string) (*models.Content, error) {
	args := m.Called(ctx, id, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.Content), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListContent(ctx context.Context, userUID string, limit, offset int) ([]*models.Content, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if res := args.Get(0); res != nil {
		return res.([]*models.Content), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateContent(ctx context.Context, content models.Content, id, userUID string) (int, error) {
	args := m.Called(ctx, content, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RemoveContent(ctx context.Context, id, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

func newTestService(repo *MockRepository) *Service {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(repo, log)
}

func TestCreateAssignsIDAndExtractsSections(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreateContent", mock.Anything, mock.MatchedBy(func(c models.Content) bool {
		return c.ID != "" &&
			c.UserUID == "u-1" &&
			c.StructuredData != nil
	})).Return("some-id", nil)

	svc := newTestService(repo)
	id, err := svc.Create(context.Background(), "u-1", models.Content{
		Title:       "On Faith",
		Body:        "# On Faith\n\n## Introduction\n\nFaith is trust.\n",
		ContentType: models.ContentTypeSermon,
	})

	require.NoError(t, err)
	assert.Equal(t, "some-id", id)
	repo.AssertExpectations(t)
}

func TestCreateStudySkipsSectionExtraction(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreateContent", mock.Anything, mock.MatchedBy(func(c models.Content) bool {
		return c.StructuredData == nil
	})).Return("some-id", nil)

	svc := newTestService(repo)
	_, err := svc.Create(context.Background(), "u-1", models.Content{
		Title:       "Romans 8 study",
		Body:        "Observations on Romans 8.",
		ContentType: models.ContentTypeStudy,
	})
	require.NoError(t, err)
}

func TestListClampsPagination(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListContent", mock.Anything, "u-1", defaultListLimit, 0).
		Return([]*models.Content{}, nil)

	svc := newTestService(repo)
	_, err := svc.List(context.Background(), "u-1", 0, -5)
	require.NoError(t, err)

	repo.On("ListContent", mock.Anything, "u-1", maxListLimit, 10).
		Return([]*models.Content{}, nil)
	_, err = svc.List(context.Background(), "u-1", 500, 10)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateReportsOwnership(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpdateContent", mock.Anything, mock.Anything, "c-1", "u-1").Return(0, nil)

	svc := newTestService(repo)
	ok, err := svc.Update(context.Background(), "c-1", "u-1", models.Content{Title: "New"})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveReportsOwnership(t *testing.T) {
	repo := new(MockRepository)
	repo.On("RemoveContent", mock.Anything, "c-1", "u-1").Return(1, nil)

	svc := newTestService(repo)
	ok, err := svc.Remove(context.Background(), "c-1", "u-1")

	require.NoError(t, err)
	assert.True(t, ok)
}
