// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import "github.com/novaengine/gbal/driver"

// Shader is the software backend's driver.Shader. Source text is
// discarded after construction: the backend never compiles or
// executes it, since draws produce deterministic placeholder output
// regardless of shader content.
type Shader struct {
	stage      driver.Stage
	kind       driver.SourceKind
	entry      string
	reflection *driver.ReflectionInfo
}

func (s *Shader) Destroy() {}

func (s *Shader) Stage() driver.Stage { return s.stage }

func (s *Shader) SourceKind() driver.SourceKind { return s.kind }

func (s *Shader) EntryPoint() string { return s.entry }

func (s *Shader) Reflection() *driver.ReflectionInfo { return s.reflection }
