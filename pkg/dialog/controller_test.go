package dialog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/hostbridge/pkg/adapters/dom"
	"github.com/aretw0/hostbridge/pkg/adapters/frame"
	"github.com/aretw0/hostbridge/pkg/dialog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, markup string) (*dialog.Controller, *dom.Document, *frame.Queue) {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	q := frame.NewQueue()
	return dialog.New(dom.NewRegistry(doc), q), doc, q
}

func TestController_OpenIsDeferredToNextFrame(t *testing.T) {
	c, doc, q := setup(t, `<dialog id="d"></dialog>`)
	el, _ := doc.Lookup("d")

	c.Open(context.Background(), "d")
	assert.False(t, el.IsOpen(), "must not open synchronously")
	assert.Equal(t, 1, q.Pending())

	q.Flush()
	assert.True(t, el.IsOpen())
}

func TestController_Close(t *testing.T) {
	c, doc, q := setup(t, `<dialog id="d" open data-modal></dialog>`)
	el, _ := doc.Lookup("d")

	c.Close(context.Background(), "d")
	assert.True(t, el.IsOpen())

	q.Flush()
	assert.False(t, el.IsOpen())
}

func TestController_ElementAddedBeforeFrame(t *testing.T) {
	c, doc, q := setup(t, ``)

	// Requested before the element exists, found by the time the frame runs.
	c.Open(context.Background(), "late")
	require.NoError(t, doc.Replace(strings.NewReader(`<dialog id="late"></dialog>`)))
	q.Flush()

	el, ok := doc.Lookup("late")
	require.True(t, ok)
	assert.True(t, el.IsOpen())
}

func TestController_MissingElementIsSilent(t *testing.T) {
	c, _, q := setup(t, `<div></div>`)

	assert.NotPanics(t, func() {
		c.Open(context.Background(), "ghost")
		c.Close(context.Background(), "ghost")
		assert.Equal(t, 2, q.Flush())
	})
}

func TestController_HostErrorsAreSwallowed(t *testing.T) {
	c, doc, q := setup(t, `<div id="not-a-dialog"></div>`)
	el, _ := doc.Lookup("not-a-dialog")

	c.Open(context.Background(), "not-a-dialog")
	assert.NotPanics(t, func() { q.Flush() })
	assert.False(t, el.IsOpen())
}
