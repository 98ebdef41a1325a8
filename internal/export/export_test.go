package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
	"github.com/Trawczynski/double-pendulum/internal/sim"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func samples(t *testing.T) []sim.Sample {
	t.Helper()
	p := pendulum.New(pendulum.Params{R1: 120, R2: 100, M1: 10, M2: 10, G: 1}, 1.2, 0.6, true)
	result, err := sim.New(p, integrators.MethodRK4).Run(context.Background(), sim.Config{Steps: 200})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return result.Samples
}

func TestRenderWritesPNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	paths, err := Render(dir, samples(t), Options{WidthIn: 3, HeightIn: 2, DPI: 72})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %d", len(paths))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if !bytes.HasPrefix(data, pngMagic) {
			t.Errorf("%s is not a PNG", filepath.Base(path))
		}
	}
}

func TestRenderNoSamples(t *testing.T) {
	if _, err := Render(t.TempDir(), nil, DefaultOptions()); err == nil {
		t.Error("expected error for empty run")
	}
}

func TestTrajectorySVG(t *testing.T) {
	svg := TrajectorySVG(samples(t), 120, 100, 400)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete SVG document")
	}
	if !strings.Contains(svg, "<path") || !strings.Contains(svg, "<polyline") {
		t.Error("expected trail and final pose")
	}
	if strings.Count(svg, "<circle") != 2 {
		t.Error("expected two bobs")
	}

	if TrajectorySVG(nil, 1, 1, 100) != "" {
		t.Error("expected empty output without samples")
	}
}
