package shaderfx

import (
	"fmt"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
)

type CopyTextureParams struct {
	Texture gpu.Texture `fx:"texture"`
	// Index selects the slot Update copies into.
	Index int `fx:"index"`
}

func DefaultCopyTextureParams() CopyTextureParams {
	return CopyTextureParams{}
}

// CopyTexture keeps N snapshots of a texture in separate targets.
type CopyTexture struct {
	*base
	store   *params.Store[CopyTextureParams]
	copier  *gpu.Material
	targets []*target.Single
}

func NewCopyTexture(device gpu.Device, cfg Config, n int) (*CopyTexture, error) {
	fx := &CopyTexture{base: newBase("copy_texture", device, cfg, false)}
	fx.store = params.NewStore(DefaultCopyTextureParams(), fx.logger)
	if n <= 0 {
		fx.Destroy()
		return nil, preconditionf(fx.name, "needs at least one target, got %d", n)
	}
	var err error
	if fx.copier, err = fx.material(shaders.Clear); err != nil {
		fx.Destroy()
		return nil, err
	}
	fx.copier.Uniforms.SetFloat("value", 1)
	w, h := cfg.pixels()
	if fx.targets, err = fx.pool.AcquireMany(n, w, h); err != nil {
		fx.Destroy()
		return nil, err
	}
	return fx, nil
}

func (fx *CopyTexture) Params() CopyTextureParams      { return fx.store.Get() }
func (fx *CopyTexture) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *CopyTexture) Len() int { return len(fx.targets) }

// Texture returns the snapshot in slot index.
func (fx *CopyTexture) Texture(index int) gpu.Texture {
	return fx.targets[index].Texture()
}

// Copy renders src into slot index and returns that slot's texture.
func (fx *CopyTexture) Copy(f *Frame, index int, src gpu.Texture) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(fx.targets) {
		return nil, preconditionf(fx.name, "index %d out of range [0, %d)", index, len(fx.targets))
	}
	if src == nil {
		return nil, &ResourceError{Effect: fx.name, Resource: "texture", Index: index}
	}
	defer f.begin(fx.name)()
	out, err := fx.pass(f, fx.targets[index], fx.copier, func(u *gpu.Uniforms, _ target.PassInputs) {
		u.SetTexture("uTexture", src)
	})
	if err != nil {
		return nil, fmt.Errorf("copy into %d: %w", index, err)
	}
	return out, nil
}

func (fx *CopyTexture) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	patch(fx.store, p)
	prm := fx.store.Get()
	return fx.Copy(f, prm.Index, prm.Texture)
}
