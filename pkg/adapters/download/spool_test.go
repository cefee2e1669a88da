package download_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/hostbridge/pkg/adapters/download"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Downloader = (*download.Spool)(nil)

func TestSpool_CreateSaveRevoke(t *testing.T) {
	spoolDir := t.TempDir()
	outDir := t.TempDir()
	s := download.NewSpool(spoolDir, outDir)
	ctx := context.Background()

	url, err := s.CreateObjectURL(ctx, ports.Blob{Data: []byte("<svg/>"), Type: "image/svg+xml"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "blob:hostbridge/"))
	assert.Equal(t, 1, s.Outstanding())

	require.NoError(t, s.Save(ctx, url, "chart.svg"))
	data, err := os.ReadFile(filepath.Join(outDir, "chart.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	s.RevokeObjectURL(url)
	assert.Equal(t, 0, s.Outstanding())
	entries, err := os.ReadDir(spoolDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Revoking twice is harmless; saving a revoked handle fails.
	s.RevokeObjectURL(url)
	assert.ErrorIs(t, s.Save(ctx, url, "again.svg"), download.ErrUnknownURL)
}

func TestSpool_SaveKeepsOnlyBaseName(t *testing.T) {
	outDir := t.TempDir()
	s := download.NewSpool(t.TempDir(), outDir)
	ctx := context.Background()

	url, err := s.CreateObjectURL(ctx, ports.Blob{Data: []byte("x")})
	require.NoError(t, err)
	defer s.RevokeObjectURL(url)

	require.NoError(t, s.Save(ctx, url, "../../etc/evil.svg"))
	_, err = os.Stat(filepath.Join(outDir, "evil.svg"))
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Save(ctx, url, ""), download.ErrInvalidFileName)
	assert.ErrorIs(t, s.Save(ctx, url, "/"), download.ErrInvalidFileName)
}

func TestSpool_SaveOverwrites(t *testing.T) {
	outDir := t.TempDir()
	s := download.NewSpool(t.TempDir(), outDir)
	ctx := context.Background()

	for _, body := range []string{"first", "second"} {
		url, err := s.CreateObjectURL(ctx, ports.Blob{Data: []byte(body)})
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, url, "out.svg"))
		s.RevokeObjectURL(url)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "out.svg"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
