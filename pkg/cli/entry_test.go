package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_CompileWritesModule(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.rl", `
fun main = {
	("hello") print
}
`)
	code, _, stderr := run(t, "compile", input)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	out, err := os.ReadFile(filepath.Join(dir, "main.wat"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.HasPrefix(string(out), "(module") {
		t.Errorf("output does not look like module text:\n%s", out)
	}
}

func TestRun_BareSourceArgCompiles(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.rl", `fun main = { (0) exit }`)
	code, _, stderr := run(t, input)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "main.wat")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRun_ExplicitOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.rl", `fun main = { (0) exit }`)
	out := filepath.Join(dir, "custom.wat")
	code, _, stderr := run(t, "compile", input, out)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRun_CheckReportsTypeErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "bad.rl", `
val x = 1
val y = x
val z = x
`)
	code, _, stderr := run(t, "--check", input)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "[T004]") {
		t.Errorf("stderr missing diagnostic:\n%s", stderr)
	}
}

func TestRun_CheckPassesCleanSource(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "ok.rl", `fun add = x:Int, y:Int -> Int { x + y }`)
	code, _, stderr := run(t, "--check", input)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
}

func TestRun_AstDump(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.rl", `fun add = x:Int, y:Int -> Int { x + y }`)
	code, stdout, stderr := run(t, "--ast", input)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "add") {
		t.Errorf("dump missing the function name:\n%s", stdout)
	}
}

func TestRun_TokensDump(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.rl", `val x = 1`)
	code, stdout, _ := run(t, "--tokens", input)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stdout, `"val"`) || !strings.Contains(stdout, `"x"`) {
		t.Errorf("token dump incomplete:\n%s", stdout)
	}
}

func TestRun_ConfigOverridesOutputAndPages(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "ril.yaml", "output: from_config.wat\nmemory_pages: 2\n")
	input := writeSource(t, dir, "main.rl", `fun main = { (0) exit }`)
	code, _, stderr := run(t, "compile", input)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	out, err := os.ReadFile(filepath.Join(dir, "from_config.wat"))
	if err != nil {
		t.Fatalf("configured output not written: %v", err)
	}
	if !strings.Contains(string(out), "(memory 2)") {
		t.Errorf("memory_pages not applied:\n%s", out)
	}
}

func TestRun_CacheServesSecondCompile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "ril.yaml", "cache:\n  enabled: true\n")
	input := writeSource(t, dir, "main.rl", `fun main = { (0) exit }`)
	if code, _, stderr := run(t, "compile", input); code != 0 {
		t.Fatalf("first compile: exit = %d, stderr:\n%s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, ".ril", "cache.db")); err != nil {
		t.Fatalf("cache db not created: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "main.wat")); err != nil {
		t.Fatal(err)
	}
	if code, _, stderr := run(t, "compile", input); code != 0 {
		t.Fatalf("second compile: exit = %d, stderr:\n%s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "main.wat")); err != nil {
		t.Errorf("cached compile did not write output: %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "frobnicate")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := run(t, "--help")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRun_MissingInput(t *testing.T) {
	code, _, stderr := run(t, "compile", filepath.Join(t.TempDir(), "absent.rl"))
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if stderr == "" {
		t.Error("expected an error message")
	}
}
