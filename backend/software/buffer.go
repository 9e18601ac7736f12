// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import "github.com/novaengine/gbal/driver"

// Buffer is the software backend's driver.Buffer: a plain byte
// slice. Every software buffer is host-visible, since there is no
// native device memory to distinguish it from.
type Buffer struct {
	data  []byte
	usage driver.Usage
}

func (b *Buffer) Destroy() { b.data = nil }

func (b *Buffer) Visible() bool { return true }

func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Size() int64 { return int64(len(b.data)) }

func (b *Buffer) Usage() driver.Usage { return b.usage }
