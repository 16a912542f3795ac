// Package graphicstest provides a recording graphics.Backend for tests that
// run without a GL context.
package graphicstest

import (
	"fmt"
	"image"
	"strings"

	"shadow-demo/internal/graphics"
	"shadow-demo/internal/linalg"
)

// Call is one recorded backend invocation.
type Call struct {
	Op          string
	Args        []any
	Framebuffer graphics.FramebufferHandle // bound when the call was made
}

// Recorder implements graphics.Backend by recording every call and handing
// out increasing fake object names.
type Recorder struct {
	Calls []Call

	// CompileErr, when set, is returned by every CompileProgram call.
	CompileErr error

	next     uint32
	bound    graphics.FramebufferHandle
	program  graphics.ProgramHandle
	depthFBs map[graphics.FramebufferHandle]bool
	meshes   map[uint32]bool
	textures map[graphics.TextureHandle]bool
	programs map[graphics.ProgramHandle]bool
	uniforms map[graphics.ProgramHandle]map[string]any
}

var _ graphics.Backend = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{
		depthFBs: make(map[graphics.FramebufferHandle]bool),
		meshes:   make(map[uint32]bool),
		textures: make(map[graphics.TextureHandle]bool),
		programs: make(map[graphics.ProgramHandle]bool),
		uniforms: make(map[graphics.ProgramHandle]map[string]any),
	}
}

func (r *Recorder) id() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) record(op string, args ...any) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args, Framebuffer: r.bound})
}

func (r *Recorder) UploadMesh(data graphics.MeshData) graphics.MeshHandle {
	h := graphics.MeshHandle{VAO: r.id(), VBO: r.id(), EBO: r.id(), IndexCount: int32(len(data.Indices))}
	r.meshes[h.VAO] = true
	r.record("UploadMesh", h, len(data.Positions), len(data.Normals), len(data.UVs))
	return h
}

func (r *Recorder) DeleteMesh(h graphics.MeshHandle) {
	delete(r.meshes, h.VAO)
	r.record("DeleteMesh", h)
}

func (r *Recorder) DrawMesh(h graphics.MeshHandle) {
	r.record("DrawMesh", h, r.program)
}

func (r *Recorder) UploadTexture(img *image.RGBA) graphics.TextureHandle {
	h := graphics.TextureHandle(r.id())
	r.textures[h] = true
	r.record("UploadTexture", h, img.Rect.Dx(), img.Rect.Dy())
	return h
}

func (r *Recorder) DeleteTexture(h graphics.TextureHandle) {
	delete(r.textures, h)
	r.record("DeleteTexture", h)
}

func (r *Recorder) BindTexture(unit uint32, h graphics.TextureHandle) {
	r.record("BindTexture", unit, h)
}

func (r *Recorder) CreateDepthTarget(width, height int) (graphics.DepthTarget, error) {
	t := graphics.DepthTarget{
		Framebuffer: graphics.FramebufferHandle(r.id()),
		Texture:     graphics.TextureHandle(r.id()),
		Width:       width,
		Height:      height,
	}
	r.depthFBs[t.Framebuffer] = true
	r.textures[t.Texture] = true
	r.record("CreateDepthTarget", t)
	return t, nil
}

func (r *Recorder) DeleteDepthTarget(t graphics.DepthTarget) {
	delete(r.depthFBs, t.Framebuffer)
	delete(r.textures, t.Texture)
	r.record("DeleteDepthTarget", t)
}

func (r *Recorder) BindFramebuffer(fb graphics.FramebufferHandle) {
	r.bound = fb
	r.record("BindFramebuffer", fb)
}

func (r *Recorder) Viewport(x, y, width, height int) {
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.record("ClearColor", cr, cg, cb, ca)
}

func (r *Recorder) Clear(mask graphics.ClearMask) {
	r.record("Clear", mask)
}

func (r *Recorder) CullFace(mode graphics.CullMode) {
	r.record("CullFace", mode)
}

func (r *Recorder) PolygonMode(mode graphics.PolygonMode) {
	r.record("PolygonMode", mode)
}

// CompileProgram fails with ErrCompile for empty sources, the way a driver
// rejects an empty translation unit.
func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (graphics.ProgramHandle, error) {
	r.record("CompileProgram", vertexSrc, fragmentSrc)
	if r.CompileErr != nil {
		return 0, r.CompileErr
	}
	if strings.TrimSpace(vertexSrc) == "" || strings.TrimSpace(fragmentSrc) == "" {
		return 0, fmt.Errorf("%w: 0:1(1): error: syntax error, unexpected end of file", graphics.ErrCompile)
	}
	p := graphics.ProgramHandle(r.id())
	r.programs[p] = true
	return p, nil
}

func (r *Recorder) DeleteProgram(p graphics.ProgramHandle) {
	delete(r.programs, p)
	r.record("DeleteProgram", p)
}

func (r *Recorder) UseProgram(p graphics.ProgramHandle) {
	r.program = p
	r.record("UseProgram", p)
}

func (r *Recorder) setUniform(p graphics.ProgramHandle, name string, v any) {
	if r.uniforms[p] == nil {
		r.uniforms[p] = make(map[string]any)
	}
	r.uniforms[p][name] = v
	r.record("SetUniform", p, name, v)
}

func (r *Recorder) SetUniformInt(p graphics.ProgramHandle, name string, v int32) {
	r.setUniform(p, name, v)
}

func (r *Recorder) SetUniformFloat(p graphics.ProgramHandle, name string, v float32) {
	r.setUniform(p, name, v)
}

func (r *Recorder) SetUniformVec2(p graphics.ProgramHandle, name string, v linalg.Vec2) {
	r.setUniform(p, name, v)
}

func (r *Recorder) SetUniformVec3(p graphics.ProgramHandle, name string, v linalg.Vec3) {
	r.setUniform(p, name, v)
}

func (r *Recorder) SetUniformVec4(p graphics.ProgramHandle, name string, v linalg.Vec4) {
	r.setUniform(p, name, v)
}

func (r *Recorder) SetUniformMat3(p graphics.ProgramHandle, name string, m linalg.Mat3) {
	r.setUniform(p, name, m)
}

func (r *Recorder) SetUniformMat4(p graphics.ProgramHandle, name string, m linalg.Mat4) {
	r.setUniform(p, name, m)
}

// Uniform returns the last value written to name on program p.
func (r *Recorder) Uniform(p graphics.ProgramHandle, name string) (any, bool) {
	v, ok := r.uniforms[p][name]
	return v, ok
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// CallsTo returns the calls made while fb was bound.
func (r *Recorder) CallsTo(fb graphics.FramebufferHandle) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Framebuffer == fb && c.Op != "BindFramebuffer" {
			out = append(out, c)
		}
	}
	return out
}

// ColorWritesTo counts calls that would touch a colour attachment while fb
// was bound: colour clears, and draws into anything but a depth-only target.
func (r *Recorder) ColorWritesTo(fb graphics.FramebufferHandle) int {
	n := 0
	for _, c := range r.CallsTo(fb) {
		switch c.Op {
		case "Clear":
			if c.Args[0].(graphics.ClearMask)&graphics.ClearColor != 0 {
				n++
			}
		case "DrawMesh":
			if !r.depthFBs[fb] {
				n++
			}
		}
	}
	return n
}

func (r *Recorder) LiveMeshes() int   { return len(r.meshes) }
func (r *Recorder) LiveTextures() int { return len(r.textures) }
func (r *Recorder) LivePrograms() int { return len(r.programs) }

// Reset forgets recorded calls but keeps live object bookkeeping.
func (r *Recorder) Reset() {
	r.Calls = nil
}
