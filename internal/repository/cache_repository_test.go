package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/plataform/plataform-api/pkg/errors"
)

// Without Redis the repository degrades to permanent cache misses so
// the leaderboard keeps serving from the database.
func TestCacheRepositoryNilClientDegrades(t *testing.T) {
	repo := NewCacheRepository(nil, nil)

	var dest []string
	err := repo.Get(context.Background(), "ranking:leaderboard", &dest)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(context.Background(), "ranking:leaderboard", []string{"a"}, time.Minute))
	require.NoError(t, repo.Close())
}
