package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (code int, out, errOut string) {
	t.Helper()
	var o, e bytes.Buffer
	stdout, stderr = &o, &e
	t.Cleanup(func() {
		stdout, stderr, stdin = os.Stdout, os.Stderr, os.Stdin
	})
	code = run(append([]string{"--no-color"}, args...))
	return code, o.String(), e.String()
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const mainJava = "package {{content.contest}};\n\npublic class {{content.Name}} {\n}\n"

func TestRender(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "Main.java.tmpl")
	writeFile(t, tmpl, mainJava)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "set flags",
			args: []string{"render", tmpl, "--set", "content.contest=abc421", "--set", "content.Name=A"},
			want: "package abc421;\n\npublic class A {\n}\n",
		},
		{
			name: "empty value",
			args: []string{"render", tmpl, "--set", "content.contest=", "--set", "content.Name=A"},
			want: "package ;\n\npublic class A {\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
			}
			if out != tt.want {
				t.Errorf("stdout = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRender_ContextFiles(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "Main.java.tmpl")
	writeFile(t, tmpl, mainJava)
	writeFile(t, filepath.Join(dir, "ctx.yaml"), "content:\n  contest: abc421\n  Name: B\n")
	writeFile(t, filepath.Join(dir, "ctx.json"), `{"content": {"contest": "arc180", "Name": "C"}}`)

	out := filepath.Join(dir, "out", "B.java")
	code, _, errOut := runCLI(t, "render", tmpl, "--context", filepath.Join(dir, "ctx.yaml"), "-o", out)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "package abc421;\n\npublic class B {\n}\n" {
		t.Errorf("output = %q", data)
	}

	code, stdoutText, errOut := runCLI(t, "render", tmpl, "-c", filepath.Join(dir, "ctx.json"), "--set", "content.Name=D")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if stdoutText != "package arc180;\n\npublic class D {\n}\n" {
		t.Errorf("stdout = %q", stdoutText)
	}
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tmpl")
	bad := filepath.Join(dir, "bad.tmpl")
	writeFile(t, good, mainJava)
	writeFile(t, bad, "class {{content.Name\n")
	writeFile(t, filepath.Join(dir, "broken.json"), "{")

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"unresolved", []string{"render", good, "--set", "content.Name=A"}, "E100"},
		{"malformed", []string{"render", bad}, "E101"},
		{"missing template", []string{"render", filepath.Join(dir, "nope.tmpl")}, "E145"},
		{"bad assignment", []string{"render", good, "--set", "novalue"}, "E144"},
		{"bad context", []string{"render", good, "--context", filepath.Join(dir, "broken.json")}, "E121"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".out")
			code, stdoutText, errOut := runCLI(t, append(tt.args, "-o", out)...)
			if code != 1 {
				t.Errorf("exit = %d, want 1", code)
			}
			if !strings.Contains(errOut, "ERROR "+tt.wantCode) {
				t.Errorf("stderr missing %s:\n%s", tt.wantCode, errOut)
			}
			if stdoutText != "" {
				t.Errorf("stdout = %q, want empty", stdoutText)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("output file written on error")
			}
		})
	}
}

func TestRender_UnresolvedShowsLocation(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "B.java")
	writeFile(t, tmpl, "class B {\n   {{content.title}}\n}\n")

	code, _, errOut := runCLI(t, "render", tmpl)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	for _, s := range []string{tmpl + ":2:4", "{{content.title}}", "^"} {
		if !strings.Contains(errOut, s) {
			t.Errorf("stderr missing %q:\n%s", s, errOut)
		}
	}
}

func TestRender_StdinAndMissing(t *testing.T) {
	stdin = strings.NewReader("{{a.b}} {{c.d}} {{a.b}}")
	code, out, errOut := runCLI(t, "render", "-", "--missing", "--set", "c.d=x")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if out != "a.b\n" {
		t.Errorf("stdout = %q, want %q", out, "a.b\n")
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	code, out, errOut := runCLI(t, "new", "ABC421", "--lang", "java,go", "--problems", "a,b", "--yes")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	for _, rel := range []string{
		"ABC421/src/main/java/abc421/A.java",
		"ABC421/src/test/java/abc421/BTest.java",
		"ABC421/B/main.go",
		"ABC421/README.md",
		"ABC421/.gitignore",
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("%s not created: %v", rel, err)
		}
	}
	if !strings.Contains(out, "Created ABC421/ (java, go)") {
		t.Errorf("stdout:\n%s", out)
	}

	code, out, _ = runCLI(t, "new", "abc421", "--lang", "java,go", "--problems", "a,b", "--yes")
	if code != 0 {
		t.Fatalf("second run exit = %d", code)
	}
	if !strings.Contains(out, "is up to date") {
		t.Errorf("second run stdout:\n%s", out)
	}
}

func TestNew_LanguagesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "default_lang.txt"), "# pick one\n\npython\n")

	code, _, errOut := runCLI(t, "new", "abc421", "-p", "A", "--yes")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "ABC421", "A.py")); err != nil {
		t.Error("A.py not created")
	}
	if _, err := os.Stat(filepath.Join(dir, "ABC421", "build.gradle")); !os.IsNotExist(err) {
		t.Error("java files created although default_lang.txt selects python only")
	}
}

func TestNew_FromProjectSubdir(t *testing.T) {
	root := t.TempDir()
	code, _, errOut := runCLI(t, "init", "--dir", root, "--lang", "python", "--problems", "A")
	if code != 0 {
		t.Fatalf("init exit = %d, stderr:\n%s", code, errOut)
	}
	sub := filepath.Join(root, "notes")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	chdir(t, sub)

	code, _, errOut = runCLI(t, "new", "abc421", "--yes")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(root, "ABC421", "A.py")); err != nil {
		t.Errorf("workspace not created next to contestgen.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(sub, "ABC421")); !os.IsNotExist(err) {
		t.Error("workspace created in the working directory")
	}
}

type fakePrompter struct {
	answer  []string
	options []string
}

func (f *fakePrompter) MultiSelect(ctx context.Context, message string, options, defaults []string) ([]string, error) {
	f.options = options
	return f.answer, nil
}

func TestNew_Prompt(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	fake := &fakePrompter{answer: []string{"go"}}
	prevPrompter, prevInteractive := newPrompter, isInteractive
	newPrompter = func() prompter { return fake }
	isInteractive = func() bool { return true }
	t.Cleanup(func() { newPrompter, isInteractive = prevPrompter, prevInteractive })

	code, _, errOut := runCLI(t, "new", "abc421", "-p", "A")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	if strings.Join(fake.options, ",") != "go,java,python" {
		t.Errorf("prompt options = %v", fake.options)
	}
	if _, err := os.Stat(filepath.Join(dir, "ABC421", "A", "main.go")); err != nil {
		t.Error("A/main.go not created")
	}
}

func TestNew_Errors(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"bad id", []string{"new", "42/abc", "--yes"}, "E143"},
		{"unsupported language", []string{"new", "abc421", "--lang", "cobol"}, "E142"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != 1 || !strings.Contains(errOut, "ERROR "+tt.wantCode) {
				t.Errorf("exit = %d, stderr:\n%s", code, errOut)
			}
		})
	}
}

func TestNew_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	metrics := filepath.Join(dir, "contestgen.prom")

	code, _, errOut := runCLI(t, "--metrics-file", metrics, "new", "abc421", "-l", "python", "-p", "A", "--dry-run")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), `contestgen_renders_total{status="ok",template="python"}`) {
		t.Errorf("metrics:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "ABC421")); !os.IsNotExist(err) {
		t.Error("dry run created the workspace")
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	code, _, errOut := runCLI(t, "init", "--dir", dir, "--lang", "go,python", "--problems", "A,B,C,D,E,F,G")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, errOut)
	}
	data, err := os.ReadFile(filepath.Join(dir, "contestgen.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{`"go"`, `"python"`, `"G"`} {
		if !strings.Contains(string(data), s) {
			t.Errorf("contestgen.json missing %s:\n%s", s, data)
		}
	}
	langs, err := os.ReadFile(filepath.Join(dir, "default_lang.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(langs), "go\npython\n") {
		t.Errorf("default_lang.txt:\n%s", langs)
	}

	code, _, errOut = runCLI(t, "init", "--dir", dir)
	if code != 1 || !strings.Contains(errOut, "ERROR E140") {
		t.Errorf("second init exit = %d, stderr:\n%s", code, errOut)
	}
	code, _, _ = runCLI(t, "init", "--dir", dir, "--force")
	if code != 0 {
		t.Errorf("forced init exit = %d", code)
	}
}

func TestTemplates(t *testing.T) {
	chdir(t, t.TempDir())

	code, out, _ := runCLI(t, "templates")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, name := range []string{"go", "java", "python"} {
		if !strings.Contains(out, "  "+name) {
			t.Errorf("templates output missing %s:\n%s", name, out)
		}
	}

	code, out, _ = runCLI(t, "templates", "java", "--paths")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "content.Name\n") || !strings.Contains(out, "case.input\n") {
		t.Errorf("paths output:\n%s", out)
	}

	code, _, errOut := runCLI(t, "templates", "cobol")
	if code != 1 || !strings.Contains(errOut, "E142") {
		t.Errorf("unknown set exit = %d, stderr:\n%s", code, errOut)
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version", "--short")
	if code != 0 || out != "dev\n" {
		t.Errorf("version --short = %d, %q", code, out)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "frobnicate")
	if code != 1 || !strings.Contains(errOut, "unknown command") {
		t.Errorf("exit = %d, stderr:\n%s", code, errOut)
	}
}
