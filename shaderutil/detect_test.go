// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package shaderutil

import (
	"testing"

	"github.com/novaengine/gbal/driver"
)

func TestDetectKindMagicBytes(t *testing.T) {
	spv := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 0, 0}
	if got := DetectKind(spv, ""); got != driver.SourceSPIRV {
		t.Fatalf("DetectKind(spirv magic) = %v, want SourceSPIRV", got)
	}
}

func TestDetectKindStructuralCues(t *testing.T) {
	cases := []struct {
		src  string
		want driver.SourceKind
	}{
		{"#version 450\nvoid main(){}", driver.SourceGLSL},
		{"cbuffer Constants : register(b0) {}", driver.SourceHLSL},
		{"#include <metal_stdlib>\nusing namespace metal;", driver.SourceMetal},
		{"@vertex\nfn vs_main() {}", driver.SourceWGSL},
	}
	for _, c := range cases {
		if got := DetectKind([]byte(c.src), ""); got != c.want {
			t.Errorf("DetectKind(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestDetectKindExtensionFallback(t *testing.T) {
	if got := DetectKind([]byte("// opaque"), "shader.hlsl"); got != driver.SourceHLSL {
		t.Fatalf("DetectKind() by extension = %v, want SourceHLSL", got)
	}
	if got := DetectKind([]byte("// opaque"), "unknown.bin"); got != driver.SourceBinary {
		t.Fatalf("DetectKind() with no cue = %v, want SourceBinary", got)
	}
}

func TestDetectStageByFilename(t *testing.T) {
	cases := []struct {
		name string
		want driver.Stage
	}{
		{"triangle.vert", driver.StageVertex},
		{"triangle_fs.glsl", driver.StageFragment},
		{"blur.comp", driver.StageCompute},
		{"outline.geom", driver.StageGeometry},
	}
	for _, c := range cases {
		got, ok := DetectStage(nil, c.name)
		if !ok || got != c.want {
			t.Errorf("DetectStage(%q) = %v, %v; want %v, true", c.name, got, ok, c.want)
		}
	}
}

func TestDetectStageByPragma(t *testing.T) {
	src := []byte("#pragma stage compute\nvoid main(){}")
	got, ok := DetectStage(src, "ambiguous.txt")
	if !ok || got != driver.StageCompute {
		t.Fatalf("DetectStage() by pragma = %v, %v; want StageCompute, true", got, ok)
	}
}

func TestDetectStageUnresolvable(t *testing.T) {
	if _, ok := DetectStage(nil, "mystery.txt"); ok {
		t.Fatal("DetectStage() should fail with no tokens or pragma")
	}
}
