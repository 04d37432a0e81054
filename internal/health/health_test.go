package health

import (
	"context"
	"testing"

	"go-marketplace-api/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCheckerReportsServing(t *testing.T) {
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)

	checker := NewChecker(db)
	assert.NoError(t, checker.Ping(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checker.Refresh(context.Background()))

	resp, err := checker.Server().Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestCheckerReportsNotServingWhenClosed(t *testing.T) {
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	checker := NewChecker(db)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checker.Refresh(context.Background()))
}
