package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/pkg/logger"
)

func newStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)
	return s
}

func TestStoreGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	key, err := s.Store(ctx, strings.NewReader("raw pdf bytes"), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", key)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "raw pdf bytes", string(data))
}

func TestGetMissingKey(t *testing.T) {
	s := newStorage(t)

	_, err := s.Get(context.Background(), "absent.pdf")
	assert.Error(t, err)
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	key, err := s.Store(ctx, strings.NewReader("x"), "doc.pdf")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, key))
	assert.NoError(t, s.Delete(ctx, key))
}

func TestCleanupBeforeRemovesOnlyStaleFiles(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	_, err := s.Store(ctx, strings.NewReader("old"), "stale.pdf")
	require.NoError(t, err)
	_, err = s.Store(ctx, strings.NewReader("new"), "fresh.pdf")
	require.NoError(t, err)

	stalePath := filepath.Join(s.dir, "stale.pdf")
	aged := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stalePath, aged, aged))

	require.NoError(t, s.CleanupBefore(ctx, time.Now().Add(-24*time.Hour)))

	_, err = s.Get(ctx, "stale.pdf")
	assert.Error(t, err)
	rc, err := s.Get(ctx, "fresh.pdf")
	require.NoError(t, err)
	rc.Close()
}
