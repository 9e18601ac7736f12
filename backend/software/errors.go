// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import "github.com/novaengine/gbal/gerr"

// driverErr wraps a taxonomy Kind as a plain Go error for returning
// from contract methods; the severity and backend context live in
// the Record already handed to the logger at the call site.
func driverErr(kind gerr.Kind) error {
	return gerr.WrapKind("software", kind)
}

// KindOf extracts the gerr.Kind from an error produced by this
// package, if any.
func KindOf(err error) (gerr.Kind, bool) {
	return gerr.KindOf(err)
}
