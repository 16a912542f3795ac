package graphics

import (
	"errors"
	"image"

	"shadow-demo/internal/linalg"
)

var (
	ErrCompile      = errors.New("shader compile failed")
	ErrLink         = errors.New("shader link failed")
	ErrResourceRead = errors.New("shader source unreadable")
	ErrFramebuffer  = errors.New("framebuffer incomplete")
)

type (
	TextureHandle     uint32
	ProgramHandle     uint32
	FramebufferHandle uint32
)

// DefaultFramebuffer is the window surface.
const DefaultFramebuffer FramebufferHandle = 0

// MeshHandle groups the GPU objects backing one uploaded mesh.
type MeshHandle struct {
	VAO, VBO, EBO uint32
	IndexCount    int32
}

func (h MeshHandle) Valid() bool { return h.VAO != 0 && h.IndexCount > 0 }

// MeshData is the flat layout uploaded to the GPU. Positions and Normals hold
// xyz triples, UVs hold uv pairs; Normals and UVs may be empty.
type MeshData struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// DepthTarget is an off-screen framebuffer with only a depth attachment.
type DepthTarget struct {
	Framebuffer   FramebufferHandle
	Texture       TextureHandle
	Width, Height int
}

type CullMode int

const (
	CullBack CullMode = iota
	CullFront
)

type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

type PolygonMode int

const (
	PolygonFill PolygonMode = iota
	PolygonLine
)

// Backend is the graphics API capability the scene and render packages drive.
// All calls must happen on the thread that owns the context.
type Backend interface {
	UploadMesh(data MeshData) MeshHandle
	DeleteMesh(h MeshHandle)
	DrawMesh(h MeshHandle)

	UploadTexture(img *image.RGBA) TextureHandle
	DeleteTexture(h TextureHandle)
	BindTexture(unit uint32, h TextureHandle)

	CreateDepthTarget(width, height int) (DepthTarget, error)
	DeleteDepthTarget(t DepthTarget)
	BindFramebuffer(fb FramebufferHandle)

	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	CullFace(mode CullMode)
	PolygonMode(mode PolygonMode)

	// CompileProgram compiles and links a vertex/fragment pair. Failures wrap
	// ErrCompile or ErrLink and carry the driver info log.
	CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error)
	DeleteProgram(p ProgramHandle)
	UseProgram(p ProgramHandle)

	SetUniformInt(p ProgramHandle, name string, v int32)
	SetUniformFloat(p ProgramHandle, name string, v float32)
	SetUniformVec2(p ProgramHandle, name string, v linalg.Vec2)
	SetUniformVec3(p ProgramHandle, name string, v linalg.Vec3)
	SetUniformVec4(p ProgramHandle, name string, v linalg.Vec4)
	SetUniformMat3(p ProgramHandle, name string, m linalg.Mat3)
	SetUniformMat4(p ProgramHandle, name string, m linalg.Mat4)
}
