package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/contestgen/internal/errors"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "main", "java", "abc421", "A.java")

	if err := WriteFileAtomic(path, []byte("class A {}\n")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "class A {}\n" {
		t.Errorf("content = %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != filePerm {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), os.FileMode(filePerm))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestWriteFileAtomic_Error(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := WriteFileAtomic(filepath.Join(blocker, "child.txt"), []byte("y"))
	var ce *errors.ContestgenError
	if !errors.As(err, &ce) || ce.Code != "E146" {
		t.Fatalf("error = %v, want E146", err)
	}
}

func TestWriteIfAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.py")

	action, err := WriteIfAbsent(path, []byte("first"), false)
	if err != nil || action != ActionWritten {
		t.Fatalf("first write = %q, %v", action, err)
	}

	action, err = WriteIfAbsent(path, []byte("second"), false)
	if err != nil || action != ActionSkipped {
		t.Fatalf("second write = %q, %v", action, err)
	}
	if got, _ := os.ReadFile(path); string(got) != "first" {
		t.Errorf("existing file was modified: %q", got)
	}

	action, err = WriteIfAbsent(path, []byte("third"), true)
	if err != nil || action != ActionUpdated {
		t.Fatalf("forced write = %q, %v", action, err)
	}
	if got, _ := os.ReadFile(path); string(got) != "third" {
		t.Errorf("forced write content = %q", got)
	}
}

func TestEnsureBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")

	action, err := EnsureBlock(path, "gitignore:common", "cache/\n")
	if err != nil || action != ActionWritten {
		t.Fatalf("EnsureBlock(common) = %q, %v", action, err)
	}

	action, err = EnsureBlock(path, "gitignore:java", "build/\n.gradle/")
	if err != nil || action != ActionUpdated {
		t.Fatalf("EnsureBlock(java) = %q, %v", action, err)
	}

	action, err = EnsureBlock(path, "gitignore:java", "build/\n")
	if err != nil || action != ActionSkipped {
		t.Fatalf("EnsureBlock(java) again = %q, %v", action, err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "# <<< gitignore:common >>>\ncache/\n\n# <<< gitignore:java >>>\nbuild/\n.gradle/\n"
	if string(got) != want {
		t.Errorf("content =\n%q\nwant\n%q", got, want)
	}
}

func TestEnsureBlock_ExistingUserContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	if err := os.WriteFile(path, []byte("*.log"), 0644); err != nil {
		t.Fatal(err)
	}

	block := MarkerLine("gitignore:python") + "\n__pycache__/\n"
	if _, err := EnsureBlock(path, "gitignore:python", block); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "*.log\n\n# <<< gitignore:python >>>\n__pycache__/\n" {
		t.Errorf("content = %q", got)
	}
	if strings.Count(string(got), MarkerLine("gitignore:python")) != 1 {
		t.Error("marker duplicated")
	}
}

func TestHasBlock(t *testing.T) {
	tests := []struct {
		name string
		txt  string
		want bool
	}{
		{"empty", "", false},
		{"own line", "*.log\n# <<< gitignore:java >>>\nbuild/\n", true},
		{"indented", "  # <<< gitignore:java >>>  \n", true},
		{"inside a comment", "# note: # <<< gitignore:java >>> goes below\n", false},
		{"other marker", "# <<< gitignore:go >>>\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasBlock(tt.txt, "gitignore:java"); got != tt.want {
				t.Errorf("HasBlock() = %v, want %v", got, tt.want)
			}
		})
	}
}
