package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	res   *Result
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, pptxPath, outputDir string) (*Result, error) {
	s.calls++
	return s.res, s.err
}

func TestPipeline_PrimarySucceeds(t *testing.T) {
	primary := &stubExtractor{res: &Result{SlideCount: 7, HasContent: true}}
	fallback := &stubExtractor{}
	p := NewPipeline(primary, fallback)

	res, err := p.Extract(context.Background(), "deck.pptx", "out")
	require.NoError(t, err)
	assert.Equal(t, 7, res.SlideCount)
	assert.Zero(t, fallback.calls)
}

func TestPipeline_FallsBackWhenPrimaryUnavailable(t *testing.T) {
	primary := &stubExtractor{err: fmt.Errorf("%w: python not found", ErrUnavailable)}
	fallback := &stubExtractor{res: &Result{SlideCount: 3, HasContent: false}}
	p := NewPipeline(primary, fallback)

	res, err := p.Extract(context.Background(), "deck.pptx", "out")
	require.NoError(t, err)
	assert.Equal(t, 3, res.SlideCount)
	assert.False(t, res.HasContent)
	assert.Equal(t, 1, fallback.calls)
}

func TestPipeline_StructuredToolFailureIsTerminal(t *testing.T) {
	primary := &stubExtractor{err: errors.New("Package not found at deck.pptx")}
	fallback := &stubExtractor{}
	p := NewPipeline(primary, fallback)

	_, err := p.Extract(context.Background(), "deck.pptx", "out")
	require.Error(t, err)
	assert.Zero(t, fallback.calls, "tool-reported failures must not trigger the fallback")
}

func TestPipeline_BothFailReportsBoth(t *testing.T) {
	primary := &stubExtractor{err: fmt.Errorf("%w: no interpreter", ErrUnavailable)}
	fallback := &stubExtractor{err: errors.New("powerpoint not installed")}
	p := NewPipeline(primary, fallback)

	_, err := p.Extract(context.Background(), "deck.pptx", "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no interpreter")
	assert.Contains(t, err.Error(), "powerpoint not installed")
}

func TestPipeline_NoFallbackPassesErrorThrough(t *testing.T) {
	primary := &stubExtractor{err: fmt.Errorf("%w: gone", ErrUnavailable)}
	p := &Pipeline{primary: primary}

	_, err := p.Extract(context.Background(), "deck.pptx", "out")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestParseOutcome(t *testing.T) {
	res, err := parseOutcome([]byte("warming up\n{\"success\": true, \"slideCount\": 12}\n"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 12, res.SlideCount)

	res, err = parseOutcome([]byte("{\"success\": false, \"error\": \"bad deck\"}"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "bad deck", res.Error)

	_, err = parseOutcome([]byte("Traceback (most recent call last):\n  boom"))
	assert.Error(t, err)

	_, err = parseOutcome([]byte("   \n  \n"))
	assert.Error(t, err)
}

func TestCappedBuffer_RejectsWritesPastCap(t *testing.T) {
	b := &cappedBuffer{max: 10}

	n, err := b.Write([]byte("12345"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = b.Write([]byte("678901"))
	require.Error(t, err)
	assert.True(t, b.overflowed)
	assert.Equal(t, "12345", b.buf.String())
}

func TestFolderName_StripsStagingSuffix(t *testing.T) {
	assert.Equal(t, "My-Deck", FolderName(filepath.Join("slides", "My-Deck"+StagingSuffix)))
	assert.Equal(t, "My-Deck", FolderName(filepath.Join("slides", "My-Deck")))
}
