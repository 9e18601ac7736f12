// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gerr

import (
	"errors"
	"fmt"
)

// kindError is the common plain-Go-error shape every concrete backend
// and the Manager wrap a taxonomy Kind in, so upper layers (the
// Adaptive Renderer in particular) can branch on Kind without
// importing any specific backend package.
type kindError struct{ kind Kind }

func (e kindError) Error() string { return e.kind.String() }

// WrapKind returns a plain error carrying kind, prefixed with source
// (typically a backend name or "manager") for human-readable output.
func WrapKind(source string, kind Kind) error {
	return fmt.Errorf("%s: %w", source, kindError{kind})
}

// KindOf extracts the Kind from an error produced by WrapKind, if any.
func KindOf(err error) (Kind, bool) {
	var ke kindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}
	return 0, false
}
