package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/observability"
	"github.com/matzehuels/tavola/pkg/pipeline"
)

func writeImages(t *testing.T, dir string, sizes map[string]image.Point) {
	t.Helper()
	for name, sz := range sizes {
		img := imaging.New(sz.X, sz.Y, color.NRGBA{R: 140, G: 90, B: 50, A: 255})
		if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
}

func photos(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeImages(t, dir, map[string]image.Point{
		"rim_1.png":  {120, 90},
		"rim_2.png":  {100, 140},
		"base_1.png": {150, 80},
	})
	return dir
}

// smallPage keeps test layouts fast and free of annotations.
var smallPage = []string{
	"--page-size", "600x800", "--margin", "20", "--spacing", "5",
	"--scale-bar=false", "--table-number=false", "--captions=false",
}

// execute runs the root command with args and returns what was written to
// the command output and to the status output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var logs, out, status bytes.Buffer

	prev := stdout
	stdout = &status
	t.Cleanup(func() { stdout = prev })

	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), status.String(), err
}

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	want := []string{"cache", "completion", "compose", "config", "fields", "inspect", "sizes"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
	}
}

func TestSetLogLevelRegistersHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	c := New(&bytes.Buffer{}, LogInfo)
	c.SetLogLevel(LogInfo)
	if _, ok := observability.Pipeline().(observability.NoopPipelineHooks); !ok {
		t.Errorf("info level should keep no-op hooks, got %T", observability.Pipeline())
	}

	c.SetLogLevel(LogDebug)
	if _, ok := observability.Pipeline().(*observability.LogHooks); !ok {
		t.Errorf("debug level should trace pipeline hooks, got %T", observability.Pipeline())
	}
	if _, ok := observability.Cache().(*observability.LogHooks); !ok {
		t.Errorf("debug level should trace cache hooks, got %T", observability.Cache())
	}
}

func TestSizesCommand(t *testing.T) {
	out, _, err := execute(t, "sizes", "--format", "csv")
	if err != nil {
		t.Fatalf("sizes: %v", err)
	}
	for _, want := range []string{"Name,Width,Height,Orientation", "A4,2480,3508,portrait", "HD,1920,1080,landscape"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, _, err := execute(t, "sizes", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConfigCommand(t *testing.T) {
	out, _, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{`mode = "grid"`, `page_size = "A4"`, `table_prefix = "Tav."`} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q", want)
		}
	}

	path := filepath.Join(t.TempDir(), "catalogue.toml")
	if _, _, err := execute(t, "config", "-o", path); err != nil {
		t.Fatalf("config -o: %v", err)
	}
	if _, _, err := execute(t, "config", "--check", path); err != nil {
		t.Errorf("written config should validate: %v", err)
	}
	if _, _, err := execute(t, "config", "-o", path); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("overwriting should fail with INVALID_PATH, got %v", err)
	}
}

func TestFieldsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finds.csv")
	csv := "filename,Site,Period,Inv\nrim_1.png,Alpha,Bronze,12\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "fields", path)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if diff := cmp.Diff("Site\nPeriod\nInv\n", out); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	_, _, err = execute(t, "fields", filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file should fail with FILE_NOT_FOUND, got %v", err)
	}
}

func TestResolveConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogue.toml")
	config := `input = "photos"
mode = "masonry"
rows = 2
caption_fields = ["Site"]
`
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		args   []string
		check  func(t *testing.T, o pipeline.Options)
		errMsg string
	}{
		{
			name: "config values kept",
			args: []string{"--config", path},
			check: func(t *testing.T, o pipeline.Options) {
				if o.Input != "photos" || o.Mode != "masonry" || o.Rows != 2 {
					t.Errorf("config not applied: input=%q mode=%q rows=%d", o.Input, o.Mode, o.Rows)
				}
				if o.Cols != pipeline.DefaultCols {
					t.Errorf("unset config key should keep its default, cols=%d", o.Cols)
				}
			},
		},
		{
			name: "flags override config",
			args: []string{"--config", path, "--rows", "5", "--caption-fields", "Period,Inv", "other"},
			check: func(t *testing.T, o pipeline.Options) {
				if o.Rows != 5 || o.Mode != "masonry" || o.Input != "other" {
					t.Errorf("unexpected options: input=%q mode=%q rows=%d", o.Input, o.Mode, o.Rows)
				}
				if diff := cmp.Diff([]string{"Period", "Inv"}, o.CaptionFields); diff != "" {
					t.Errorf("caption fields mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "seed only when set",
			args: []string{"photos", "--seed", "0", "--sort", "random"},
			check: func(t *testing.T, o pipeline.Options) {
				if o.Seed == nil || *o.Seed != 0 {
					t.Errorf("seed = %v, want pointer to 0", o.Seed)
				}
			},
		},
		{
			name: "no seed",
			args: []string{"photos"},
			check: func(t *testing.T, o pipeline.Options) {
				if o.Seed != nil {
					t.Errorf("seed should stay nil, got %d", *o.Seed)
				}
			},
		},
		{
			name:   "missing input",
			args:   []string{"--mode", "grid"},
			errMsg: "no input folder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := newLayoutFlags()
			var got pipeline.Options
			var runErr error
			cmd := &cobra.Command{
				Use:  "test",
				Args: cobra.MaximumNArgs(1),
				RunE: func(cmd *cobra.Command, args []string) error {
					got, runErr = flags.resolve(cmd, args)
					return nil
				},
			}
			flags.register(cmd)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("execute: %v", err)
			}

			if tt.errMsg != "" {
				if runErr == nil || !strings.Contains(runErr.Error(), tt.errMsg) {
					t.Fatalf("error = %v, want containing %q", runErr, tt.errMsg)
				}
				return
			}
			if runErr != nil {
				t.Fatalf("resolve: %v", runErr)
			}
			tt.check(t, got)
		})
	}
}

func TestComposeCommand(t *testing.T) {
	input := photos(t)
	output := filepath.Join(t.TempDir(), "plates.png")

	args := append([]string{"compose", input, "-o", output, "--no-cache"}, smallPage...)
	_, status, err := execute(t, args...)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output not written: %v", err)
	}
	for _, want := range []string{"Composed 1 plates", output, "3 images"} {
		if !strings.Contains(status, want) {
			t.Errorf("status missing %q:\n%s", want, status)
		}
	}
}

func TestComposeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing folder", []string{"compose", filepath.Join(t.TempDir(), "nope"), "--no-cache"}, errors.ErrCodeInputNotFound},
		{"bad mode", []string{"compose", t.TempDir(), "--mode", "spiral", "--no-cache"}, errors.ErrCodeInvalidMode},
		{"bad page size", []string{"compose", t.TempDir(), "--page-size", "B5", "--no-cache"}, errors.ErrCodeInvalidPageSize},
		{"pick without metadata", []string{"compose", t.TempDir(), "--pick-fields", "--no-cache"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestInspectPlacements(t *testing.T) {
	input := photos(t)

	args := append([]string{"inspect", input, "--placements", "--format", "csv", "--cache-url", "none"}, smallPage...)
	out, _, err := execute(t, args...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 placements:\n%s", len(lines), out)
	}
	if lines[0] != "Image,Plate,X,Y,W,H" {
		t.Errorf("header = %q", lines[0])
	}
	// Alphabetical order: base_1, rim_1, rim_2.
	for i, name := range []string{"base_1.png", "rim_1.png", "rim_2.png"} {
		if !strings.HasPrefix(lines[i+1], name+",1,") {
			t.Errorf("row %d = %q, want %s on plate 1", i+1, lines[i+1], name)
		}
	}
}

func TestInspectSummaryUsesCache(t *testing.T) {
	input := photos(t)
	cacheDir := t.TempDir()

	args := append([]string{"inspect", input, "--format", "markdown", "--cache-url", cacheDir}, smallPage...)
	first, _, err := execute(t, args...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(first, "| Plan cache | fresh |") {
		t.Errorf("first run should compute the plan:\n%s", first)
	}

	second, _, err := execute(t, args...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(second, "| Plan cache | hit |") {
		t.Errorf("second run should replay the cached plan:\n%s", second)
	}

	third, _, err := execute(t, append(args, "--refresh")...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(third, "| Plan cache | fresh |") {
		t.Errorf("--refresh should recompute the plan:\n%s", third)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "cache", "path", "--cache-url", dir)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	input := photos(t)
	args := append([]string{"inspect", input, "--cache-url", dir}, smallPage...)
	if _, _, err := execute(t, args...); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	_, status, err := execute(t, "cache", "clear", "--cache-url", dir)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(status, "Cleared 1 cached plans") {
		t.Errorf("status = %q", status)
	}

	_, status, err = execute(t, "cache", "clear", "--cache-url", "none")
	if err != nil {
		t.Fatalf("cache clear none: %v", err)
	}
	if !strings.Contains(status, "nothing to clear") {
		t.Errorf("status = %q", status)
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"photos", "photos.pdf"},
		{"site/trench_2/", "trench_2.pdf"},
		{".", "tavola.pdf"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.input); got != tt.want {
			t.Errorf("defaultOutput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
