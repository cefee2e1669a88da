package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/hostbridge/pkg/adapters/dom"
	"github.com/aretw0/hostbridge/pkg/adapters/download"
	"github.com/aretw0/hostbridge/pkg/export"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDownloader tracks object URL lifetimes.
type recordingDownloader struct {
	created []ports.Blob
	saved   []string
	revoked []string
	saveErr error
}

func (r *recordingDownloader) CreateObjectURL(_ context.Context, b ports.Blob) (string, error) {
	r.created = append(r.created, b)
	return "blob:test/1", nil
}

func (r *recordingDownloader) Save(_ context.Context, url, fileName string) error {
	r.saved = append(r.saved, fileName)
	return r.saveErr
}

func (r *recordingDownloader) RevokeObjectURL(url string) {
	r.revoked = append(r.revoked, url)
}

const page = `<svg id="chart" width="4" height="4"><circle r="2"></circle></svg>`

func TestEmitter_ExportsMarkup(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	dl := &recordingDownloader{}

	export.New(dom.NewRegistry(doc), dl).ExportSvg(context.Background(), "chart", "badge")

	require.Len(t, dl.created, 1)
	assert.Equal(t, "image/svg+xml;charset=utf-8", dl.created[0].Type)
	assert.Contains(t, string(dl.created[0].Data), `<svg id="chart"`)
	assert.Equal(t, []string{"badge.svg"}, dl.saved)
	assert.Equal(t, []string{"blob:test/1"}, dl.revoked)
}

func TestEmitter_MissingElementIsNoOp(t *testing.T) {
	dl := &recordingDownloader{}
	export.New(dom.NewRegistry(dom.Empty()), dl).ExportSvg(context.Background(), "nope", "x")

	assert.Empty(t, dl.created)
	assert.Empty(t, dl.saved)
	assert.Empty(t, dl.revoked)
}

func TestEmitter_RevokesOnSaveFailure(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	dl := &recordingDownloader{saveErr: errors.New("disk full")}

	assert.NotPanics(t, func() {
		export.New(dom.NewRegistry(doc), dl).ExportSvg(context.Background(), "chart", "badge")
	})
	assert.Equal(t, []string{"blob:test/1"}, dl.revoked)
}

func TestEmitter_WithSpool(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	out := t.TempDir()
	spool := download.NewSpool(t.TempDir(), out)

	export.New(dom.NewRegistry(doc), spool).ExportSvg(context.Background(), "chart", "chart-2024")

	data, err := os.ReadFile(filepath.Join(out, "chart-2024.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<circle")
	assert.Equal(t, 0, spool.Outstanding())
}
