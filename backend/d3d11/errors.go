// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package d3d11

import "github.com/novaengine/gbal/gerr"

func driverErr(kind gerr.Kind) error {
	return gerr.WrapKind("d3d11", kind)
}

func KindOf(err error) (gerr.Kind, bool) {
	return gerr.KindOf(err)
}
