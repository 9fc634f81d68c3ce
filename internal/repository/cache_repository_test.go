package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, "geo")
	var dest map[string]string

	err := repo.Get(context.Background(), "k", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(context.Background(), "k", "v", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "geo:k", repo.key("k"))
}
