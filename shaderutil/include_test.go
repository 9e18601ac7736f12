// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package shaderutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
}

func TestPreprocessExpandsIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.glsl", "vec3 tonemap(vec3 c) { return c; }")

	src := []byte("#version 450\n#include \"common.glsl\"\nvoid main(){}")
	out, err := Preprocess(src, "main.frag", []string{dir})
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if !strings.Contains(string(out), "tonemap") {
		t.Fatalf("Preprocess() output missing included content: %s", out)
	}
}

func TestPreprocessDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.glsl", "#include \"b.glsl\"\n")
	writeFile(t, dir, "b.glsl", "#include \"a.glsl\"\n")

	src := []byte("#include \"a.glsl\"\n")
	_, err := Preprocess(src, "main.frag", []string{dir})
	if err == nil {
		t.Fatal("Preprocess() on cyclic includes should fail")
	}
	if !errors.Is(err, ErrIncludeCycle) {
		t.Fatalf("Preprocess() error = %v, want wrapping ErrIncludeCycle", err)
	}
}

func TestPreprocessMissingIncludeFails(t *testing.T) {
	dir := t.TempDir()
	src := []byte("#include \"missing.glsl\"\n")
	if _, err := Preprocess(src, "main.frag", []string{dir}); err == nil {
		t.Fatal("Preprocess() with missing include should fail")
	}
}
