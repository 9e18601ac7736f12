// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package shaderutil implements backend-agnostic shader source
// analysis: source-kind and stage detection, an #include
// preprocessor with cycle detection, and reflection record types.
//
// No lexer or shader-compiler library appears anywhere in the
// example corpus this module draws from; every backend that needs
// structural cues over shader source hand-rolls a small scanner
// the way this package does, over stdlib bufio/strings.
package shaderutil

import (
	"bytes"
	"strings"

	"github.com/novaengine/gbal/driver"
)

// spirvMagic is the little-endian SPIR-V module magic number.
const spirvMagic = 0x07230203

// DetectKind inspects data and returns the best-guess SourceKind,
// per spec §4.7: magic bytes first, then structural cues, then
// extension fallback via filename (pass "" if unknown).
func DetectKind(data []byte, filename string) driver.SourceKind {
	if len(data) >= 4 {
		le := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
		be := uint32(data[3]) | uint32(data[2])<<8 | uint32(data[1])<<16 | uint32(data[0])<<24
		if le == spirvMagic || be == spirvMagic {
			return driver.SourceSPIRV
		}
	}

	text := string(data)
	switch {
	case strings.Contains(text, "#version"):
		return driver.SourceGLSL
	case strings.Contains(text, "cbuffer") || strings.Contains(text, "RWTexture") || strings.Contains(text, "SV_Target"):
		return driver.SourceHLSL
	case strings.Contains(text, "#include <metal_stdlib>"):
		return driver.SourceMetal
	case strings.Contains(text, "@vertex") || strings.Contains(text, "@fragment") || strings.Contains(text, "@compute"):
		return driver.SourceWGSL
	}

	if filename != "" {
		switch {
		case strings.HasSuffix(filename, ".glsl"), strings.HasSuffix(filename, ".vert"),
			strings.HasSuffix(filename, ".frag"), strings.HasSuffix(filename, ".comp"):
			return driver.SourceGLSL
		case strings.HasSuffix(filename, ".hlsl"), strings.HasSuffix(filename, ".fx"):
			return driver.SourceHLSL
		case strings.HasSuffix(filename, ".metal"):
			return driver.SourceMetal
		case strings.HasSuffix(filename, ".wgsl"):
			return driver.SourceWGSL
		case strings.HasSuffix(filename, ".spv"):
			return driver.SourceSPIRV
		}
	}

	return driver.SourceBinary
}

// stageTokens maps filename substrings to their shader stage, in
// the order spec §4.7 lists them.
var stageTokens = []struct {
	tokens []string
	stage  driver.Stage
}{
	{[]string{"vert", "vs"}, driver.StageVertex},
	{[]string{"frag", "fs", "ps"}, driver.StageFragment},
	{[]string{"comp", "cs"}, driver.StageCompute},
	{[]string{"geom", "gs"}, driver.StageGeometry},
	{[]string{"tesc", "hs"}, driver.StageTessCtrl},
	{[]string{"tese", "ds"}, driver.StageTessEval},
}

// DetectStage inspects filename tokens and an optional
// "#pragma stage <name>" directive in data, returning the detected
// Stage and whether detection succeeded.
func DetectStage(data []byte, filename string) (driver.Stage, bool) {
	if stage, ok := pragmaStage(data); ok {
		return stage, true
	}

	lower := strings.ToLower(filename)
	parts := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '/'
	})
	for _, part := range parts {
		for _, st := range stageTokens {
			for _, tok := range st.tokens {
				if part == tok {
					return st.stage, true
				}
			}
		}
	}
	return 0, false
}

func pragmaStage(data []byte) (driver.Stage, bool) {
	const marker = "#pragma stage"
	idx := bytes.Index(data, []byte(marker))
	if idx < 0 {
		return 0, false
	}
	rest := data[idx+len(marker):]
	end := bytes.IndexByte(rest, '\n')
	if end >= 0 {
		rest = rest[:end]
	}
	name := strings.ToLower(strings.TrimSpace(string(rest)))
	switch name {
	case "vertex", "vert", "vs":
		return driver.StageVertex, true
	case "fragment", "frag", "fs", "pixel", "ps":
		return driver.StageFragment, true
	case "compute", "comp", "cs":
		return driver.StageCompute, true
	case "geometry", "geom", "gs":
		return driver.StageGeometry, true
	case "tess_ctrl", "tesc", "hs":
		return driver.StageTessCtrl, true
	case "tess_eval", "tese", "ds":
		return driver.StageTessEval, true
	}
	return 0, false
}
