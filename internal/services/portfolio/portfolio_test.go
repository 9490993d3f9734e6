package portfolio_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/services/portfolio"
	"github.com/magabrotheeeer/wealth-management/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreatePortfolio(ctx context.Context, userID int64, in models.PortfolioInput) (*models.Portfolio, error) {
	args := m.Called(ctx, userID, in)
	p, _ := args.Get(0).(*models.Portfolio)
	return p, args.Error(1)
}

func (m *RepoMock) GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Portfolio)
	return p, args.Error(1)
}

func (m *RepoMock) ListPortfolios(ctx context.Context, userID int64, page models.Page) ([]*models.Portfolio, error) {
	args := m.Called(ctx, userID, page)
	list, _ := args.Get(0).([]*models.Portfolio)
	return list, args.Error(1)
}

func (m *RepoMock) UpdatePortfolio(ctx context.Context, id, userID int64, in models.PortfolioInput) (*models.Portfolio, error) {
	args := m.Called(ctx, id, userID, in)
	p, _ := args.Get(0).(*models.Portfolio)
	return p, args.Error(1)
}

func (m *RepoMock) DeletePortfolio(ctx context.Context, id, userID int64) (int, error) {
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

func TestCreate_OwnerIsActor(t *testing.T) {
	repo := new(RepoMock)
	in := models.PortfolioInput{Name: "Main"}
	repo.On("CreatePortfolio", mock.Anything, owner, in).Return(&models.Portfolio{ID: 3, Name: "Main", UserID: owner}, nil)

	p, err := portfolio.New(newNoopLogger(), repo).Create(context.Background(), owner, in)
	require.NoError(t, err)
	assert.Equal(t, owner, p.UserID)
	repo.AssertExpectations(t)
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		actor   int64
		id      int64
		setup   func(r *RepoMock)
		wantErr error
	}{
		{
			name:  "свой портфель",
			actor: owner,
			id:    3,
			setup: func(r *RepoMock) {
				r.On("GetPortfolio", mock.Anything, int64(3)).Return(&models.Portfolio{ID: 3, UserID: owner}, nil)
			},
		},
		{
			name:  "чужой портфель выглядит как отсутствующий",
			actor: stranger,
			id:    3,
			setup: func(r *RepoMock) {
				r.On("GetPortfolio", mock.Anything, int64(3)).Return(&models.Portfolio{ID: 3, UserID: owner}, nil)
			},
			wantErr: ownership.ErrNotFound,
		},
		{
			name:  "несуществующий портфель",
			actor: stranger,
			id:    404,
			setup: func(r *RepoMock) {
				r.On("GetPortfolio", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
			},
			wantErr: ownership.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)

			p, err := portfolio.New(newNoopLogger(), repo).Get(context.Background(), tt.actor, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, p.ID)
		})
	}
}

func TestUpdate_ForeignPortfolioNeverWritten(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetPortfolio", mock.Anything, int64(3)).Return(&models.Portfolio{ID: 3, UserID: owner}, nil)

	_, err := portfolio.New(newNoopLogger(), repo).Update(context.Background(), stranger, 3, models.PortfolioInput{Name: "x"})
	require.ErrorIs(t, err, ownership.ErrNotFound)
	repo.AssertNotCalled(t, "UpdatePortfolio", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_Owner(t *testing.T) {
	repo := new(RepoMock)
	in := models.PortfolioInput{Name: "Renamed"}
	repo.On("GetPortfolio", mock.Anything, int64(3)).Return(&models.Portfolio{ID: 3, UserID: owner}, nil)
	repo.On("UpdatePortfolio", mock.Anything, int64(3), owner, in).
		Return(&models.Portfolio{ID: 3, Name: "Renamed", UserID: owner}, nil)

	p, err := portfolio.New(newNoopLogger(), repo).Update(context.Background(), owner, 3, in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int
		delErr   error
		wantErr  error
	}{
		{name: "удалён", affected: 1},
		{name: "удалён параллельно", affected: 0, wantErr: ownership.ErrNotFound},
		{name: "ошибка хранилища", delErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetPortfolio", mock.Anything, int64(3)).Return(&models.Portfolio{ID: 3, UserID: owner}, nil)
			repo.On("DeletePortfolio", mock.Anything, int64(3), owner).Return(tt.affected, tt.delErr)

			err := portfolio.New(newNoopLogger(), repo).Delete(context.Background(), owner, 3)
			switch {
			case tt.delErr != nil:
				require.ErrorIs(t, err, tt.delErr)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestList_NormalizesPage(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListPortfolios", mock.Anything, owner, models.Page{Skip: 10, Limit: models.DefaultLimit}).
		Return([]*models.Portfolio{{ID: 3, UserID: owner}}, nil)

	list, err := portfolio.New(newNoopLogger(), repo).List(context.Background(), owner, models.Page{Skip: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
