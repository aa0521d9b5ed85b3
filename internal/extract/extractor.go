// Package extract drives the external slide-extraction toolchain. The
// subprocess boundary sits behind the Extractor interface so the unreliable
// parts (missing interpreter, crashed tool, garbage output) surface as typed
// results instead of parsed free text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Result is the normalized outcome of a successful extraction.
type Result struct {
	SlideCount int
	// HasContent is true when the tool produced a text-content index;
	// the image-export fallback cannot.
	HasContent bool
}

// Extractor splits a slide deck into per-slide artifacts inside outputDir.
type Extractor interface {
	Extract(ctx context.Context, pptxPath, outputDir string) (*Result, error)
}

// ErrUnavailable marks attempts where the tool never produced a usable
// result: launch failure, output over the cap, or unparsable output. The
// pipeline may still try a fallback extractor for these. A structured failure
// reported by the tool itself is terminal and is returned as a plain error.
var ErrUnavailable = errors.New("extractor unavailable")

// Options configures extractor probing at startup.
type Options struct {
	// Python overrides interpreter discovery when non-empty.
	Python string
	// VenvPython is checked first when probing (project-local venv).
	VenvPython string
	// MaxOutputBytes caps subprocess stdout; exceeding it fails the attempt.
	MaxOutputBytes int64
}

const defaultMaxOutput = 50 << 20

// New probes the host once and returns the extractor chain: the python-pptx
// content extractor, with the PowerPoint automation fallback where that
// application can exist.
func New(opts Options) Extractor {
	maxOut := opts.MaxOutputBytes
	if maxOut <= 0 {
		maxOut = defaultMaxOutput
	}

	primary := &PythonExtractor{
		python:    probePython(opts),
		maxOutput: maxOut,
	}
	if runtime.GOOS != "windows" {
		return &Pipeline{primary: primary}
	}
	return &Pipeline{
		primary:  primary,
		fallback: &COMExtractor{python: "python", maxOutput: maxOut},
	}
}

func probePython(opts Options) string {
	if opts.Python != "" {
		return opts.Python
	}
	if opts.VenvPython != "" {
		if _, err := os.Stat(opts.VenvPython); err == nil {
			return opts.VenvPython
		}
	}
	candidates := []string{"python3", "python"}
	if runtime.GOOS == "windows" {
		candidates = []string{"python", "python3"}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path
		}
	}
	// Leave discovery failure to surface at extraction time.
	return candidates[0]
}

// Pipeline runs the primary extractor and, when the primary never produced a
// usable result, the fallback. A structured failure from either tool is
// terminal.
type Pipeline struct {
	primary  Extractor
	fallback Extractor
}

func NewPipeline(primary, fallback Extractor) *Pipeline {
	return &Pipeline{primary: primary, fallback: fallback}
}

func (p *Pipeline) Extract(ctx context.Context, pptxPath, outputDir string) (*Result, error) {
	res, err := p.primary.Extract(ctx, pptxPath, outputDir)
	if err == nil {
		return res, nil
	}
	if p.fallback == nil || !errors.Is(err, ErrUnavailable) {
		return nil, err
	}
	res, fbErr := p.fallback.Extract(ctx, pptxPath, outputDir)
	if fbErr != nil {
		return nil, fmt.Errorf("primary extraction failed (%v); fallback failed: %w", err, fbErr)
	}
	return res, nil
}

// StagingSuffix marks output dirs that have not been swapped into their
// final location yet. The metadata summary always records the final name.
const StagingSuffix = ".staging"

// FolderName returns the final folder name an output dir will be published
// under.
func FolderName(outputDir string) string {
	return strings.TrimSuffix(filepath.Base(outputDir), StagingSuffix)
}

// ensureOutputDir creates the folder the tool writes into. Reuse overwrites
// whatever an earlier run left there.
func ensureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s failed: %w", filepath.Base(dir), err)
	}
	return nil
}
