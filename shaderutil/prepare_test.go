// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package shaderutil

import (
	"strings"
	"testing"

	"github.com/novaengine/gbal/driver"
)

func TestIsText(t *testing.T) {
	text := []driver.SourceKind{driver.SourceGLSL, driver.SourceHLSL, driver.SourceMetal, driver.SourceWGSL}
	for _, k := range text {
		if !IsText(k) {
			t.Errorf("IsText(%v) = false, want true", k)
		}
	}
	binary := []driver.SourceKind{driver.SourceSPIRV, driver.SourceBinary}
	for _, k := range binary {
		if IsText(k) {
			t.Errorf("IsText(%v) = true, want false", k)
		}
	}
}

func TestPrepareResolvesIncludesForTextSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.glsl", "vec3 tonemap(vec3 c) { return c; }")
	src := []byte("#version 450\n#include \"common.glsl\"\nvoid main(){}")

	out, err := Prepare(src, "main.frag", driver.SourceGLSL, driver.StageFragment, []string{dir})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(out), "tonemap") {
		t.Fatalf("Prepare() output missing included content: %s", out)
	}
}

func TestPreparePassesThroughBinarySource(t *testing.T) {
	data := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 0, 0}
	out, err := Prepare(data, "x.spv", driver.SourceSPIRV, driver.StageVertex, []string{"/nonexistent"})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if string(out) != string(data) {
		t.Fatal("Prepare() must return binary sources unchanged")
	}
}

func TestPrepareRejectsStageMismatch(t *testing.T) {
	src := []byte("triangle.vert cue embedded via filename")
	if _, err := Prepare(src, "triangle.vert", driver.SourceGLSL, driver.StageFragment, nil); err == nil {
		t.Fatal("Prepare() should reject a stage that disagrees with the detected stage")
	}
}

func TestPrepareAcceptsUndetectableStage(t *testing.T) {
	src := []byte("void main(){}")
	if _, err := Prepare(src, "mystery.txt", driver.SourceGLSL, driver.StageCompute, nil); err != nil {
		t.Fatalf("Prepare() should not fail when DetectStage can't infer a stage: %v", err)
	}
}
