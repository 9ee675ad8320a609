package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiring/pkg/buildinfo"
	"github.com/matzehuels/wiring/pkg/cache"
	werrors "github.com/matzehuels/wiring/pkg/errors"
	"github.com/matzehuels/wiring/pkg/pipeline"
)

const harness = `devices:
  - name: PSU
    pins: [V+, GND]
  - name: MCU
    pins: [VCC, GND]
  - name: Spare
connections:
  - from: PSU, V+, GND
    to: MCU, VCC, GND
    color: RD, BK
    group: power
`

const undeclared = `devices:
  - name: A
    pins: [1]
connections:
  - from: A, 1
    to: B
`

// isolate points config and cache lookups at fresh temporary directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func executeCapture(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces trimmed", "dot, json", []string{"dot", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputStem(t *testing.T) {
	tests := []struct {
		input, dir, want string
	}{
		{"/work/loom.yaml", "", "/work/loom"},
		{"/work/loom.yml", "/out", "/out/loom"},
		{"loom", "", "loom"},
		{"/work/front.panel.yaml", "", "/work/front.panel"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := outputStem(tt.input, tt.dir); got != tt.want {
				t.Errorf("outputStem(%q, %q) = %q, want %q", tt.input, tt.dir, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	artifacts := []pipeline.Artifact{
		{Diagram: "power", Format: "dot", Data: []byte("graph G {}")},
		{Diagram: "default", Format: "dot", Data: []byte("graph G {}")},
		{Format: "json", Data: []byte("{}")},
	}

	paths, err := writeArtifacts(artifacts, "/src/loom.yaml", dir)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "loom_power.dot"),
		filepath.Join(dir, "loom.dot"),
		filepath.Join(dir, "loom.json"),
	}
	if !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestWriteArtifactsRejectsSeparator(t *testing.T) {
	artifacts := []pipeline.Artifact{{Diagram: "mains/aux", Format: "svg", Data: []byte("<svg/>")}}

	_, err := writeArtifacts(artifacts, "loom.yaml", t.TempDir())
	if !werrors.Is(err, werrors.ErrCodeInvalidPath) {
		t.Errorf("writeArtifacts() error = %v, want INVALID_PATH", err)
	}
}

func TestNewKeyerScopedByVersion(t *testing.T) {
	orig := buildinfo.Version
	t.Cleanup(func() { buildinfo.Version = orig })

	opts := cache.ArtifactKeyOpts{Format: "svg", Diagram: "power"}
	buildinfo.Version = "v1.0.0"
	old := newKeyer().ArtifactKey("h", opts)
	buildinfo.Version = "v1.1.0"
	upgraded := newKeyer().ArtifactKey("h", opts)

	if old == upgraded {
		t.Errorf("keys of different versions match: %s", old)
	}
	if !strings.HasPrefix(upgraded, "v1.1.0@") {
		t.Errorf("key %q not scoped to version", upgraded)
	}
}

func TestRenderCommand(t *testing.T) {
	isolate(t)
	input := writeInput(t, harness)
	out := t.TempDir()

	if err := execute(t, "render", input, "-f", "dot,json", "-o", out); err != nil {
		t.Fatalf("render error: %v", err)
	}

	for _, name := range []string{"harness_power.dot", "harness_unconnected.dot", "harness.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing output %s", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(out, "harness.json"))
	if err != nil {
		t.Fatal(err)
	}
	var model struct {
		Devices []struct {
			Name string `json:"name"`
		} `json:"devices"`
	}
	if err := json.Unmarshal(data, &model); err != nil {
		t.Fatal(err)
	}
	if len(model.Devices) != 3 {
		t.Errorf("devices = %d, want 3", len(model.Devices))
	}
}

func TestRenderCommandCombined(t *testing.T) {
	isolate(t)
	input := writeInput(t, harness)

	if err := execute(t, "render", input, "-f", "dot", "--combine", "--no-cache"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(input), "harness.dot"))
	if err != nil {
		t.Fatalf("combined output not written next to input: %v", err)
	}
	if !strings.Contains(string(data), "cluster_power") {
		t.Error("combined diagram missing power cluster")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	isolate(t)
	input := writeInput(t, harness)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"render", filepath.Join(t.TempDir(), "nope.yaml")}},
		{"bad format", []string{"render", input, "-f", "gif"}},
		{"unknown group", []string{"render", input, "-f", "dot", "-g", "signal", "--no-cache"}},
		{"missing palette", []string{"render", input, "--palette", filepath.Join(t.TempDir(), "none.toml")}},
		{"no args", []string{"render"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	isolate(t)
	clean := writeInput(t, harness)
	loose := writeInput(t, undeclared)

	if err := execute(t, "check", clean); err != nil {
		t.Errorf("check clean: %v", err)
	}
	if err := execute(t, "check", loose); err != nil {
		t.Errorf("lenient check should succeed with warnings: %v", err)
	}
	if err := execute(t, "check", loose, "--fail-on-warning"); !errors.Is(err, errWarnings) {
		t.Errorf("--fail-on-warning error = %v", err)
	}
	err := execute(t, "check", loose, "--strict")
	if err == nil || !strings.Contains(err.Error(), "UndeclaredDeviceReference") {
		t.Errorf("--strict error = %v", err)
	}
}

func TestCheckCommandJSON(t *testing.T) {
	isolate(t)
	loose := writeInput(t, undeclared)

	stdout, _, err := executeCapture(t, "check", loose, "--json")
	if err != nil {
		t.Fatalf("check --json: %v", err)
	}
	var model map[string]any
	if err := json.Unmarshal([]byte(stdout), &model); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}

	stdout, stderr, err := executeCapture(t, "check", loose, "--json", "--strict")
	if err == nil {
		t.Fatal("strict check should fail")
	}
	if stdout != "" {
		t.Errorf("strict abort wrote to stdout: %q", stdout)
	}
	if !strings.Contains(stderr, "UndeclaredDeviceReference") {
		t.Errorf("stderr missing fatal diagnostic: %q", stderr)
	}
}

func TestCheckCommandInvalidPath(t *testing.T) {
	isolate(t)
	err := execute(t, "check", "harness\x00.yaml")
	if !werrors.Is(err, werrors.ErrCodeInvalidPath) {
		t.Errorf("check error = %v, want INVALID_PATH", err)
	}
}

func TestCheckCommandConfig(t *testing.T) {
	isolate(t)
	loose := writeInput(t, undeclared)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("strict = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "--config", cfg, "check", loose); err == nil {
		t.Error("strict from config should fail the check")
	}
	if err := execute(t, "--config", cfg, "check", loose, "--strict=false"); err != nil {
		t.Errorf("flag should override config: %v", err)
	}
}

func TestColorsCommand(t *testing.T) {
	isolate(t)
	if err := execute(t, "colors"); err != nil {
		t.Errorf("colors: %v", err)
	}

	palette := filepath.Join(t.TempDir(), "colors.toml")
	content := "[[color]]\ncode = \"XX\"\nname = \"special\"\nvalue = \"#123456\"\n"
	if err := os.WriteFile(palette, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "colors", "--palette", palette, "--json"); err != nil {
		t.Errorf("colors --palette: %v", err)
	}
}

func TestCacheDir(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}

	t.Setenv("WIRING_CACHE_DIR", "/tmp/wiring-test-cache")
	if err := execute(t, "cache", "path"); err != nil {
		t.Fatal(err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	isolate(t)
	input := writeInput(t, harness)
	if err := execute(t, "render", input, "-f", "dot", "-o", t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCapture(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(stdout, "wiring") {
				t.Errorf("completion %s output does not mention wiring", shell)
			}
		})
	}

	if err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func TestCompleteHarness(t *testing.T) {
	exts, directive := completeHarness(nil, nil, "")
	if !slices.Equal(exts, []string{"yaml", "yml"}) || directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("completeHarness() = %v, %v", exts, directive)
	}
	if _, directive := completeHarness(nil, []string{"harness.yaml"}, ""); directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("second argument directive = %v", directive)
	}
}
