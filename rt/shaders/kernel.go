package shaders

import (
	"fmt"
	"strings"
)

// Kind is the type of a uniform slot.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindVec2
	KindVec3
	KindVec4
	KindTexture
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindTexture:
		return "texture"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Vertex selects how the unit quad is placed on the target.
type Vertex int

const (
	// VertexFullscreen covers the whole target.
	VertexFullscreen Vertex = iota
	// VertexRect places the quad using the u_rect, u_rotation and u_viewport slots.
	// u_rect is (center.x, center.y) in NDC and (halfWidth, halfHeight) in pixels.
	VertexRect
)

// Slot is a single named uniform of a kernel.
type Slot struct {
	Name string
	Kind Kind
}

// Kernel pairs a vertex placement with a fragment program and its uniform slot table.
// Kernels are immutable descriptions; devices compile them into programs.
type Kernel struct {
	Name     string
	Vertex   Vertex
	Slots    []Slot
	Fragment string
}

// Slot returns the slot with the given name.
func (k Kernel) Slot(name string) (Slot, bool) {
	for _, s := range k.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Textures returns the texture slots in binding order.
func (k Kernel) Textures() []Slot {
	var out []Slot
	for _, s := range k.Slots {
		if s.Kind == KindTexture {
			out = append(out, s)
		}
	}
	return out
}

// Scalars returns the non-texture slots in declaration order.
func (k Kernel) Scalars() []Slot {
	var out []Slot
	for _, s := range k.Slots {
		if s.Kind != KindTexture {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the slot table for duplicates and the rect vertex requirements.
func (k Kernel) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("kernel has no name")
	}
	seen := make(map[string]bool, len(k.Slots))
	for _, s := range k.Slots {
		if seen[s.Name] {
			return fmt.Errorf("kernel %s: duplicate slot %q", k.Name, s.Name)
		}
		seen[s.Name] = true
	}
	if len(k.Scalars()) == 0 {
		return fmt.Errorf("kernel %s: at least one non-texture slot is required", k.Name)
	}
	if k.Vertex == VertexRect {
		for name, kind := range map[string]Kind{"u_rect": KindVec4, "u_rotation": KindFloat, "u_viewport": KindVec2} {
			s, ok := k.Slot(name)
			if !ok || s.Kind != kind {
				return fmt.Errorf("kernel %s: rect vertex requires %s slot %q", k.Name, kind, name)
			}
		}
	}
	return nil
}

// SamplerBinding is the binding index of the shared linear sampler.
func (k Kernel) SamplerBinding() uint32 {
	return uint32(len(k.Textures()) + 1)
}

func wgslType(kind Kind) string {
	switch kind {
	case KindFloat:
		return "f32"
	case KindInt:
		return "i32"
	case KindBool:
		return "u32"
	case KindVec2:
		return "vec2<f32>"
	case KindVec3:
		return "vec3<f32>"
	case KindVec4:
		return "vec4<f32>"
	}
	panic(fmt.Sprintf("no WGSL scalar type for %s", kind))
}

// WGSL assembles the complete shader module: generated bindings, the shared
// vertex stage and the kernel fragment source.
func (k Kernel) WGSL() string {
	var sb strings.Builder

	sb.WriteString("struct Params {\n")
	for _, s := range k.Scalars() {
		fmt.Fprintf(&sb, "  %s: %s,\n", s.Name, wgslType(s.Kind))
	}
	sb.WriteString("};\n\n")
	sb.WriteString("@group(0) @binding(0) var<uniform> params: Params;\n")
	for i, s := range k.Textures() {
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var %s: texture_2d<f32>;\n", i+1, s.Name)
	}
	fmt.Fprintf(&sb, "@group(0) @binding(%d) var fx_sampler: sampler;\n\n", k.SamplerBinding())

	sb.WriteString(CommonWGSL)
	if k.Vertex == VertexRect {
		sb.WriteString(placeRectWGSL)
	} else {
		sb.WriteString(placeFullscreenWGSL)
	}
	sb.WriteString("\n")
	sb.WriteString(k.Fragment)
	return sb.String()
}

const placeFullscreenWGSL = `
fn place(q: vec2<f32>) -> vec2<f32> {
  return q;
}
`

const placeRectWGSL = `
fn place(q: vec2<f32>) -> vec2<f32> {
  let halfSize = params.u_rect.zw;
  let c = cos(params.u_rotation);
  let s = sin(params.u_rotation);
  let p = vec2<f32>(q.x * halfSize.x, q.y * halfSize.y);
  let r = vec2<f32>(p.x * c - p.y * s, p.x * s + p.y * c);
  return params.u_rect.xy + r / (params.u_viewport * 0.5);
}
`
