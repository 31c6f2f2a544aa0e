package printing

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testDocument(paper labeling.PaperSize, orientation labeling.Orientation) *labeling.LabelDocument {
	return &labeling.LabelDocument{
		Title:       "labels",
		HTML:        "<!DOCTYPE html><html><body><p>label</p></body></html>",
		PrintedAt:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		RecordIDs:   []string{"A"},
		PaperSize:   paper,
		Orientation: orientation,
		Margins:     labeling.DefaultMarginsFor(paper),
	}
}

func newUnreachableTarget(t *testing.T) *ChromedpTarget {
	t.Helper()
	s, _ := newTestStorage(t)
	target, err := NewChromedpTarget(&ChromedpConfig{
		RemoteURL: "ws://127.0.0.1:1/devtools/browser/unreachable",
		Timeout:   5 * time.Second,
		Logger:    zaptest.NewLogger(t),
	}, s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = target.Close() })
	return target
}

func TestNewChromedpTarget_RequiresStore(t *testing.T) {
	_, err := NewChromedpTarget(&ChromedpConfig{}, nil)
	assert.True(t, HasErrorCode(err, ErrCodeStorageFailed))
}

func TestNewChromedpTarget_Defaults(t *testing.T) {
	target := newUnreachableTarget(t)
	assert.Equal(t, 5*time.Second, target.config.Timeout)
	assert.Equal(t, defaultScale, target.config.Scale)
}

func TestChromedpTarget_LoadUnreachableBrowser(t *testing.T) {
	target := newUnreachableTarget(t)

	ready, err := target.Load(context.Background(), testDocument(labeling.PaperSizeLabel4x6, labeling.OrientationPortrait))

	assert.Nil(t, ready)
	require.Error(t, err)
	assert.ErrorIs(t, err, labeling.ErrRenderTargetUnavailable)
	assert.True(t, HasErrorCode(err, ErrCodeTargetUnavailable))
}

func TestChromedpTarget_LoadRejectsBadDocuments(t *testing.T) {
	target := newUnreachableTarget(t)
	ctx := context.Background()

	_, err := target.Load(ctx, nil)
	assert.True(t, HasErrorCode(err, ErrCodeInvalidHTML))

	_, err = target.Load(ctx, &labeling.LabelDocument{HTML: "  ", PaperSize: labeling.PaperSizeA4})
	assert.True(t, HasErrorCode(err, ErrCodeInvalidHTML))

	_, err = target.Load(ctx, &labeling.LabelDocument{HTML: "<p>x</p>", PaperSize: "B5"})
	assert.True(t, HasErrorCode(err, ErrCodeInvalidPaperSize))
}

func TestChromedpTarget_PrintBeforeLoad(t *testing.T) {
	target := newUnreachableTarget(t)

	err := target.Print(context.Background())
	assert.True(t, HasErrorCode(err, ErrCodeTargetNotLoaded))
	assert.Nil(t, target.LastResult())
}

func TestBuildPrintParams(t *testing.T) {
	target := &ChromedpTarget{config: ChromedpConfig{Scale: 1.0}}

	params := target.buildPrintParams(testDocument(labeling.PaperSizeA4, labeling.OrientationPortrait))
	assert.InDelta(t, mmToInches(210), params.paperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), params.paperHeight, 0.01)
	assert.InDelta(t, mmToInches(10), params.marginTop, 0.01)
	assert.False(t, params.landscape)
	assert.True(t, params.printBackground)

	params = target.buildPrintParams(testDocument(labeling.PaperSizeLabel4x6, labeling.OrientationLandscape))
	assert.InDelta(t, mmToInches(102), params.paperWidth, 0.01)
	assert.InDelta(t, mmToInches(3), params.marginLeft, 0.01)
	assert.True(t, params.landscape)
}

func TestMmToInches(t *testing.T) {
	assert.InDelta(t, 1.0, mmToInches(25.4), 0.0001)
	assert.InDelta(t, 8.27, mmToInches(210), 0.01)
}

func findChrome() string {
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func TestChromedpTarget_LoadAndPrint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	chrome := findChrome()
	if chrome == "" {
		t.Skip("no Chrome binary on PATH")
	}

	s, dir := newTestStorage(t)
	target, err := NewChromedpTarget(&ChromedpConfig{
		ExecPath:  chrome,
		NoSandbox: true,
		Logger:    zaptest.NewLogger(t),
	}, s)
	require.NoError(t, err)
	defer target.Close()

	ctx := context.Background()
	ready, err := target.Load(ctx, testDocument(labeling.PaperSizeLabel4x6, labeling.OrientationPortrait))
	require.NoError(t, err)
	require.NoError(t, <-ready)
	require.NoError(t, target.Print(ctx))

	result := target.LastResult()
	require.NotNil(t, result)
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.Path)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}
