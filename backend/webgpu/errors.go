// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package webgpu

import "github.com/novaengine/gbal/gerr"

func driverErr(kind gerr.Kind) error {
	return gerr.WrapKind("webgpu", kind)
}

func KindOf(err error) (gerr.Kind, bool) {
	return gerr.KindOf(err)
}
