package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/contestgen/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if diff := cmp.Diff(DefaultProblems, cfg.Problems); diff != "" {
		t.Errorf("Problems mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultLanguages, cfg.Languages); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}
	if cfg.CacheDir != DefaultCacheDir {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, DefaultCacheDir)
	}
	if cfg.TaskURL != DefaultTaskURL {
		t.Errorf("TaskURL = %q, want %q", cfg.TaskURL, DefaultTaskURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Problems[0] = "Z"
	if DefaultProblems[0] != "A" {
		t.Error("New() must not share the DefaultProblems slice")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	var ce *errors.ContestgenError
	if !errors.As(err, &ce) || ce.Code != "E141" {
		t.Fatalf("Load() on empty dir error = %v, want E141", err)
	}

	configJSON := `{
  "languages": [" Java "],
  "problems": ["a", "b", "ex"],
  "templatesDir": "my-templates",
  "force": true
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff([]string{"java"}, cfg.Languages); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B", "EX"}, cfg.Problems); diff != "" {
		t.Errorf("Problems mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Force {
		t.Error("Force = false, want true")
	}
	if cfg.CacheDir != DefaultCacheDir {
		t.Errorf("CacheDir = %q, want default", cfg.CacheDir)
	}
	if got, want := cfg.TemplatesPath(), filepath.Join(tmpDir, "my-templates"); got != want {
		t.Errorf("TemplatesPath() = %q, want %q", got, want)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{"bad json", `{"languages": [`, "E120"},
		{"unknown field", `{"port": 3000}`, "E120"},
		{"bad task url", `{"taskURL": "https://x/{{problem.id"}`, "E122"},
		{"empty problem", `{"problems": ["A", " "]}`, "E122"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(dir)
			var ce *errors.ContestgenError
			if !errors.As(err, &ce) || ce.Code != tt.wantCode {
				t.Errorf("Load() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	cfg.Languages = []string{"go"}
	cfg.MetricsFile = "metrics.prom"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if diff := cmp.Diff(cfg, loaded, cmp.AllowUnexported(Config{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	loaded.Force = true
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "ABC421", "src", "main")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
}

func TestLoadLanguagesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LanguagesFileName)

	langs, err := LoadLanguagesFile(path)
	if err != nil || langs != nil {
		t.Fatalf("missing file = %v, %v; want nil, nil", langs, err)
	}

	content := "# default languages\n\njava\n  Python  \n# go\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	langs, err = LoadLanguagesFile(path)
	if err != nil {
		t.Fatalf("LoadLanguagesFile() error = %v", err)
	}
	if diff := cmp.Diff([]string{"java", "python"}, langs); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveLanguages(t *testing.T) {
	supported := []string{"go", "java", "python"}
	tests := []struct {
		name                    string
		flags, file, fromConfig []string
		want                    []string
	}{
		{"flags win", []string{"Python", "python"}, []string{"java"}, []string{"go"}, []string{"python"}},
		{"file before config", nil, []string{"java", "cobol"}, []string{"go"}, []string{"java"}},
		{"config", nil, []string{"cobol"}, []string{"go"}, []string{"go"}},
		{"fallback to all", nil, nil, nil, supported},
		{"unsupported flags", []string{"cobol"}, nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveLanguages(tt.flags, tt.file, tt.fromConfig, supported)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveLanguages() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
