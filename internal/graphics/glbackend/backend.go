// Package glbackend implements graphics.Backend on OpenGL 4.1 core.
package glbackend

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"shadow-demo/internal/graphics"
	"shadow-demo/internal/linalg"
)

// Backend issues GL calls directly. It must be created and used on the thread
// that owns the current context.
type Backend struct {
	// uniform locations per program, looked up once by name
	locations map[graphics.ProgramHandle]map[string]int32
}

var _ graphics.Backend = (*Backend)(nil)

// New loads GL function pointers for the current context and sets the fixed
// pipeline state every demo relies on.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	// meshes are imported with CCW front faces
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	return &Backend{locations: make(map[graphics.ProgramHandle]map[string]int32)}, nil
}

// Version reports the driver's GL version string.
func (b *Backend) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// UploadMesh stores positions, normals and uvs back to back in one VBO and
// binds them to attribute locations 0, 1 and 2.
func (b *Backend) UploadMesh(data graphics.MeshData) graphics.MeshHandle {
	var h graphics.MeshHandle
	gl.GenVertexArrays(1, &h.VAO)
	gl.GenBuffers(1, &h.VBO)
	gl.GenBuffers(1, &h.EBO)

	gl.BindVertexArray(h.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.VBO)

	posSize := len(data.Positions) * 4
	normSize := len(data.Normals) * 4
	uvSize := len(data.UVs) * 4
	gl.BufferData(gl.ARRAY_BUFFER, posSize+normSize+uvSize, nil, gl.STATIC_DRAW)
	if posSize > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, posSize, gl.Ptr(data.Positions))
	}
	if normSize > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, posSize, normSize, gl.Ptr(data.Normals))
	}
	if uvSize > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, posSize+normSize, uvSize, gl.Ptr(data.UVs))
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, h.EBO)
	if len(data.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
	}
	h.IndexCount = int32(len(data.Indices))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	if normSize > 0 {
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 3*4, uintptr(posSize))
	}
	if uvSize > 0 {
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, 2*4, uintptr(posSize+normSize))
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return h
}

func (b *Backend) DeleteMesh(h graphics.MeshHandle) {
	if h.VAO != 0 {
		gl.DeleteVertexArrays(1, &h.VAO)
	}
	if h.VBO != 0 {
		gl.DeleteBuffers(1, &h.VBO)
	}
	if h.EBO != 0 {
		gl.DeleteBuffers(1, &h.EBO)
	}
}

func (b *Backend) DrawMesh(h graphics.MeshHandle) {
	if !h.Valid() {
		return
	}
	gl.BindVertexArray(h.VAO)
	gl.DrawElementsWithOffset(gl.TRIANGLES, h.IndexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (b *Backend) UploadTexture(img *image.RGBA) graphics.TextureHandle {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(img.Rect.Dx()),
		int32(img.Rect.Dy()),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return graphics.TextureHandle(tex)
}

func (b *Backend) DeleteTexture(h graphics.TextureHandle) {
	if h == 0 {
		return
	}
	tex := uint32(h)
	gl.DeleteTextures(1, &tex)
}

func (b *Backend) BindTexture(unit uint32, h graphics.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(h))
}

// CreateDepthTarget allocates a depth texture and a framebuffer with no colour
// attachment. Samples outside the texture read as fully lit.
func (b *Backend) CreateDepthTarget(width, height int) (graphics.DepthTarget, error) {
	var tex, fbo uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT, int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := []float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, tex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	t := graphics.DepthTarget{
		Framebuffer: graphics.FramebufferHandle(fbo),
		Texture:     graphics.TextureHandle(tex),
		Width:       width,
		Height:      height,
	}
	if status != gl.FRAMEBUFFER_COMPLETE {
		b.DeleteDepthTarget(t)
		return graphics.DepthTarget{}, fmt.Errorf("%w: status 0x%x", graphics.ErrFramebuffer, status)
	}
	return t, nil
}

func (b *Backend) DeleteDepthTarget(t graphics.DepthTarget) {
	if t.Framebuffer != 0 {
		fbo := uint32(t.Framebuffer)
		gl.DeleteFramebuffers(1, &fbo)
	}
	b.DeleteTexture(t.Texture)
}

func (b *Backend) BindFramebuffer(fb graphics.FramebufferHandle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (b *Backend) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (b *Backend) ClearColor(r, g, bl, a float32) {
	gl.ClearColor(r, g, bl, a)
}

func (b *Backend) Clear(mask graphics.ClearMask) {
	var bits uint32
	if mask&graphics.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&graphics.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (b *Backend) CullFace(mode graphics.CullMode) {
	if mode == graphics.CullFront {
		gl.CullFace(gl.FRONT)
	} else {
		gl.CullFace(gl.BACK)
	}
}

func (b *Backend) PolygonMode(mode graphics.PolygonMode) {
	if mode == graphics.PolygonLine {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (b *Backend) CompileProgram(vertexSrc, fragmentSrc string) (graphics.ProgramHandle, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("%w: %s", graphics.ErrLink, strings.TrimRight(log, "\x00"))
	}
	return graphics.ProgramHandle(program), nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		stage := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			stage = "fragment"
		}
		return 0, fmt.Errorf("%w: %s stage: %s", graphics.ErrCompile, stage, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (b *Backend) DeleteProgram(p graphics.ProgramHandle) {
	delete(b.locations, p)
	gl.DeleteProgram(uint32(p))
}

func (b *Backend) UseProgram(p graphics.ProgramHandle) {
	gl.UseProgram(uint32(p))
}

// location caches glGetUniformLocation per program. Unknown names resolve to
// -1, which GL silently ignores.
func (b *Backend) location(p graphics.ProgramHandle, name string) int32 {
	byName := b.locations[p]
	if byName == nil {
		byName = make(map[string]int32)
		b.locations[p] = byName
	}
	loc, ok := byName[name]
	if !ok {
		loc = gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
		byName[name] = loc
	}
	return loc
}

func (b *Backend) SetUniformInt(p graphics.ProgramHandle, name string, v int32) {
	gl.ProgramUniform1i(uint32(p), b.location(p, name), v)
}

func (b *Backend) SetUniformFloat(p graphics.ProgramHandle, name string, v float32) {
	gl.ProgramUniform1f(uint32(p), b.location(p, name), v)
}

func (b *Backend) SetUniformVec2(p graphics.ProgramHandle, name string, v linalg.Vec2) {
	gl.ProgramUniform2f(uint32(p), b.location(p, name), v.X, v.Y)
}

func (b *Backend) SetUniformVec3(p graphics.ProgramHandle, name string, v linalg.Vec3) {
	gl.ProgramUniform3f(uint32(p), b.location(p, name), v.X, v.Y, v.Z)
}

func (b *Backend) SetUniformVec4(p graphics.ProgramHandle, name string, v linalg.Vec4) {
	gl.ProgramUniform4f(uint32(p), b.location(p, name), v.X, v.Y, v.Z, v.W)
}

func (b *Backend) SetUniformMat3(p graphics.ProgramHandle, name string, m linalg.Mat3) {
	cm := m.GL()
	gl.ProgramUniformMatrix3fv(uint32(p), b.location(p, name), 1, false, &cm[0])
}

func (b *Backend) SetUniformMat4(p graphics.ProgramHandle, name string, m linalg.Mat4) {
	cm := m.GL()
	gl.ProgramUniformMatrix4fv(uint32(p), b.location(p, name), 1, false, &cm[0])
}
