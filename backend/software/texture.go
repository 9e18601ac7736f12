// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import "github.com/novaengine/gbal/driver"

// Texture is the software backend's driver.Texture, backed by a
// flat byte slice sized for mip level 0 of every array layer.
type Texture struct {
	desc driver.TextureDesc
	data []byte
}

func (t *Texture) Destroy() { t.data = nil }

func (t *Texture) Dim() driver.Dim3D { return t.desc.Dim3D }

func (t *Texture) Format() driver.PixelFmt { return t.desc.Format }

func (t *Texture) Layers() int { return t.desc.Layers }

func (t *Texture) Levels() int { return t.desc.Levels }

func (t *Texture) Samples() int { return t.desc.Samples }

func (t *Texture) Usage() driver.Usage { return t.desc.Usage }

func (t *Texture) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.TextureView, error) {
	return &TextureView{owner: t, typ: typ}, nil
}

// TextureView is the software backend's driver.TextureView.
type TextureView struct {
	owner *Texture
	typ   driver.ViewType
}

func (v *TextureView) Destroy() {}
