// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import "github.com/novaengine/gbal/driver"

// Sampler is the software backend's driver.Sampler; sampling itself
// is a no-op since the software backend never reads texture data.
type Sampler struct {
	desc driver.Sampling
}

func (s *Sampler) Destroy() {}
