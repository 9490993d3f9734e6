package goal_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/services/goal"
	"github.com/magabrotheeeer/wealth-management/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateGoal(ctx context.Context, userID int64, in models.GoalInput) (*models.Goal, error) {
	args := m.Called(ctx, userID, in)
	g, _ := args.Get(0).(*models.Goal)
	return g, args.Error(1)
}

func (m *RepoMock) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*models.Goal)
	return g, args.Error(1)
}

func (m *RepoMock) ListGoals(ctx context.Context, userID int64, page models.Page) ([]*models.Goal, error) {
	args := m.Called(ctx, userID, page)
	list, _ := args.Get(0).([]*models.Goal)
	return list, args.Error(1)
}

func (m *RepoMock) UpdateGoal(ctx context.Context, id, userID int64, in models.GoalInput) (*models.Goal, error) {
	args := m.Called(ctx, id, userID, in)
	g, _ := args.Get(0).(*models.Goal)
	return g, args.Error(1)
}

func (m *RepoMock) UpdateGoalProgress(ctx context.Context, id, userID int64, currentAmount float64) (*models.Goal, error) {
	args := m.Called(ctx, id, userID, currentAmount)
	g, _ := args.Get(0).(*models.Goal)
	return g, args.Error(1)
}

func (m *RepoMock) DeleteGoal(ctx context.Context, id, userID int64) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	owner    int64 = 1
	stranger int64 = 2
)

func TestGet_HidesForeignAndMissing(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetGoal", mock.Anything, int64(5)).Return(&models.Goal{ID: 5, UserID: owner}, nil)
	repo.On("GetGoal", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
	svc := goal.New(newNoopLogger(), repo)

	_, foreignErr := svc.Get(context.Background(), stranger, 5)
	_, missingErr := svc.Get(context.Background(), stranger, 404)

	require.ErrorIs(t, foreignErr, ownership.ErrNotFound)
	require.ErrorIs(t, missingErr, ownership.ErrNotFound)
}

func TestUpdateProgress(t *testing.T) {
	tests := []struct {
		name    string
		actor   int64
		amount  float64
		wantErr error
	}{
		{name: "владелец", actor: owner, amount: 700},
		{name: "цель достигнута", actor: owner, amount: 1500},
		{name: "чужая цель", actor: stranger, amount: 700, wantErr: ownership.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetGoal", mock.Anything, int64(5)).
				Return(&models.Goal{ID: 5, UserID: owner, TargetAmount: 1000}, nil)
			repo.On("UpdateGoalProgress", mock.Anything, int64(5), owner, tt.amount).
				Return(&models.Goal{ID: 5, UserID: owner, TargetAmount: 1000, CurrentAmount: tt.amount}, nil)

			g, err := goal.New(newNoopLogger(), repo).UpdateProgress(context.Background(), tt.actor, 5, tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "UpdateGoalProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.amount, g.CurrentAmount, 1e-9)
		})
	}
}

func TestUpdate_VanishedBetweenCheckAndWrite(t *testing.T) {
	repo := new(RepoMock)
	in := models.GoalInput{Name: "House", TargetAmount: 1000, Priority: models.PriorityHigh}
	repo.On("GetGoal", mock.Anything, int64(5)).Return(&models.Goal{ID: 5, UserID: owner}, nil)
	repo.On("UpdateGoal", mock.Anything, int64(5), owner, in).Return(nil, repository.ErrNotFound)

	_, err := goal.New(newNoopLogger(), repo).Update(context.Background(), owner, 5, in)
	require.ErrorIs(t, err, ownership.ErrNotFound)
}

func TestDelete_ZeroRows(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetGoal", mock.Anything, int64(5)).Return(&models.Goal{ID: 5, UserID: owner}, nil)
	repo.On("DeleteGoal", mock.Anything, int64(5), owner).Return(0, nil)

	err := goal.New(newNoopLogger(), repo).Delete(context.Background(), owner, 5)
	require.ErrorIs(t, err, ownership.ErrNotFound)
}

func TestList(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListGoals", mock.Anything, owner, models.Page{Skip: 0, Limit: 5}).
		Return([]*models.Goal{{ID: 5, UserID: owner}}, nil)

	list, err := goal.New(newNoopLogger(), repo).List(context.Background(), owner, models.Page{Skip: -3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
