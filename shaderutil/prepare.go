// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package shaderutil

import (
	"fmt"

	"github.com/novaengine/gbal/driver"
)

// IsText reports whether kind is a textual shader source, as opposed
// to a pre-compiled binary form (SPIR-V, raw bytecode). create_shader
// only applies #include resolution and stage-token scanning to text
// sources; binary sources pass through unexamined.
func IsText(kind driver.SourceKind) bool {
	switch kind {
	case driver.SourceGLSL, driver.SourceHLSL, driver.SourceMetal, driver.SourceWGSL:
		return true
	}
	return false
}

// Prepare resolves #include directives in data via Preprocess and,
// once expanded, cross-checks the stage DetectStage infers from the
// source against the stage create_shader's caller requested. Binary
// and SPIR-V sources are returned unchanged: neither include
// resolution nor stage-token scanning applies to them.
func Prepare(data []byte, name string, kind driver.SourceKind, stage driver.Stage, includeDirs []string) ([]byte, error) {
	if !IsText(kind) {
		return data, nil
	}
	expanded, err := Preprocess(data, name, includeDirs)
	if err != nil {
		return nil, err
	}
	if detected, ok := DetectStage(expanded, name); ok && detected != stage {
		return nil, fmt.Errorf("shaderutil: source declares stage %v, create_shader requested %v", detected, stage)
	}
	return expanded, nil
}
