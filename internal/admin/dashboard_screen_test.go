package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"greenthumb/internal/model"
)

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Metrics(ctx context.Context) (*model.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dashboard), args.Error(1)
}

func TestDashboardLoad(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Metrics", mock.Anything).Return(&model.Dashboard{TotalProducts: 12, TotalOrders: 3}, nil)
	screen := NewDashboardScreen(svc)

	require.NoError(t, screen.Load(context.Background()))

	require.NotNil(t, screen.Metrics())
	assert.Equal(t, 12, screen.Metrics().TotalProducts)
	assert.False(t, screen.Loading())
	assert.Empty(t, screen.Err())
}

func TestDashboardLoad_Failure(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Metrics", mock.Anything).Return(nil, errors.New("token inválido"))
	screen := NewDashboardScreen(svc)

	require.Error(t, screen.Load(context.Background()))

	assert.Nil(t, screen.Metrics())
	assert.Equal(t, "token inválido", screen.Err())
}
