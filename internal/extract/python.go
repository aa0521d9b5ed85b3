package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PythonExtractor invokes python-pptx to split a deck into per-slide files,
// a text-content index and a metadata summary.
type PythonExtractor struct {
	python    string
	maxOutput int64
}

func NewPythonExtractor(python string, maxOutput int64) *PythonExtractor {
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutput
	}
	return &PythonExtractor{python: python, maxOutput: maxOutput}
}

func (e *PythonExtractor) Extract(ctx context.Context, pptxPath, outputDir string) (*Result, error) {
	count, err := runScript(ctx, e.python, pptxScript, e.maxOutput, pptxPath, outputDir, FolderName(outputDir))
	if err != nil {
		return nil, err
	}
	return &Result{SlideCount: count, HasContent: true}, nil
}

// COMExtractor drives the PowerPoint application through COM automation and
// exports each slide as a fixed-resolution PNG. Windows only; it writes no
// content index.
type COMExtractor struct {
	python    string
	maxOutput int64
}

func NewCOMExtractor(python string, maxOutput int64) *COMExtractor {
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutput
	}
	return &COMExtractor{python: python, maxOutput: maxOutput}
}

func (e *COMExtractor) Extract(ctx context.Context, pptxPath, outputDir string) (*Result, error) {
	count, err := runScript(ctx, e.python, comScript, e.maxOutput, pptxPath, outputDir, FolderName(outputDir))
	if err != nil {
		return nil, err
	}
	return &Result{SlideCount: count, HasContent: false}, nil
}

// outcome is the single structured result line a tool prints on stdout.
type outcome struct {
	Success    bool   `json:"success"`
	SlideCount int    `json:"slideCount"`
	Error      string `json:"error"`
}

// runScript writes the script to a temp file, executes it with the deck
// path, output dir and folder name as arguments and parses the result line.
// Launch failures, output past the cap and unparsable output come back
// wrapped in ErrUnavailable; a structured failure is returned verbatim.
func runScript(ctx context.Context, python, script string, maxOutput int64, args ...string) (int, error) {
	if len(args) >= 2 {
		if err := ensureOutputDir(args[1]); err != nil {
			return 0, err
		}
	}

	tmp, err := os.CreateTemp("", "slides-extract-*.py")
	if err != nil {
		return 0, fmt.Errorf("write extraction script failed: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write extraction script failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("write extraction script failed: %w", err)
	}

	cmd := exec.CommandContext(ctx, python, append([]string{tmp.Name()}, args...)...)
	stdout := &cappedBuffer{max: maxOutput}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stdout.overflowed {
			return 0, fmt.Errorf("%w: tool output exceeded %d bytes", ErrUnavailable, maxOutput)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return 0, fmt.Errorf("%w: %s", ErrUnavailable, detail)
	}

	result, err := parseOutcome(stdout.buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !result.Success {
		return 0, errors.New(result.Error)
	}
	return result.SlideCount, nil
}

// parseOutcome reads the last non-empty stdout line as the JSON result.
func parseOutcome(out []byte) (*outcome, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var res outcome
		if err := json.Unmarshal([]byte(line), &res); err != nil {
			return nil, fmt.Errorf("unparsable extraction result: %q", truncate(line, 200))
		}
		return &res, nil
	}
	return nil, errors.New("extraction produced no result")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// cappedBuffer stops accepting writes past max so a runaway tool cannot grow
// process memory without bound.
type cappedBuffer struct {
	buf        bytes.Buffer
	max        int64
	overflowed bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len())+int64(len(p)) > b.max {
		b.overflowed = true
		return 0, fmt.Errorf("output exceeds %d bytes", b.max)
	}
	return b.buf.Write(p)
}
