// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package shaderutil

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preprocess resolves "#include \"...\"" directives in src, searching
// searchDirs in order for each included file. A cycle (a file
// transitively including itself) aborts with an error wrapping
// ErrIncludeCycle, matching spec §4.7's "cyclic includes abort with
// ShaderCompilationFailed" (the driver layer maps this error at the
// create_shader boundary).
func Preprocess(src []byte, sourceName string, searchDirs []string) ([]byte, error) {
	stack := map[string]bool{sourceName: true}
	return preprocess(src, sourceName, searchDirs, stack)
}

// ErrIncludeCycle is returned (wrapped) when a shader's #include
// graph contains a cycle.
var ErrIncludeCycle = fmt.Errorf("shaderutil: cyclic #include")

func preprocess(src []byte, sourceName string, searchDirs []string, stack map[string]bool) ([]byte, error) {
	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		name, ok := includeTarget(line)
		if !ok {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		if stack[name] {
			return nil, fmt.Errorf("%w: %s includes %s", ErrIncludeCycle, sourceName, name)
		}

		path, data, err := resolveInclude(name, searchDirs)
		if err != nil {
			return nil, err
		}

		stack[name] = true
		expanded, err := preprocess(data, path, searchDirs, stack)
		delete(stack, name)
		if err != nil {
			return nil, err
		}
		out.Write(expanded)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// includeTarget extracts the quoted filename from a
// #include "foo.glsl" directive, if line is one.
func includeTarget(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#include") {
		return "", false
	}
	rest := strings.TrimSpace(trimmed[len("#include"):])
	if len(rest) < 2 || rest[0] != '"' {
		return "", false
	}
	end := strings.IndexByte(rest[1:], '"')
	if end < 0 {
		return "", false
	}
	return rest[1 : 1+end], true
}

func resolveInclude(name string, searchDirs []string) (path string, data []byte, err error) {
	for _, dir := range searchDirs {
		p := filepath.Join(dir, name)
		b, e := os.ReadFile(p)
		if e == nil {
			return p, b, nil
		}
	}
	return "", nil, fmt.Errorf("shaderutil: #include %q not found in search path", name)
}
