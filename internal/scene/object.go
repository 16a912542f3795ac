// Package scene holds the objects drawn each frame and their transform
// hierarchy.
package scene

import (
	"github.com/google/uuid"

	"shadow-demo/internal/graphics"
	"shadow-demo/internal/linalg"
	"shadow-demo/internal/meshimport"
)

// Material carries the per object lighting terms sent to the shade pass.
type Material struct {
	Specularity float32
	Diffuse     float32
	Ambient     float32
	Specular    float32
}

func DefaultMaterial() Material {
	return Material{Specularity: 32, Diffuse: 1, Ambient: 0.1, Specular: 0.5}
}

// Object is a mesh with its GPU buffers, a local model matrix and optional
// shader and textures. The Program is shared and never released by the
// object; the mesh buffers and textures are owned.
type Object struct {
	Name  string
	Mesh  *meshimport.Mesh
	GPU   graphics.MeshHandle
	Model linalg.Mat4

	Program  *graphics.Program
	Diffuse  graphics.TextureHandle
	Specular graphics.TextureHandle
	Material Material

	CastsShadow bool

	parent Handle
}

// NewObject wraps mesh with an identity model matrix and no parent. A nil or
// empty mesh gives an object that is never drawn.
func NewObject(name string, mesh *meshimport.Mesh) *Object {
	if name == "" {
		name = uuid.NewString()
	}
	if mesh == nil {
		mesh = &meshimport.Mesh{}
	}
	return &Object{
		Name:        name,
		Mesh:        mesh,
		Model:       linalg.Identity4(),
		Material:    DefaultMaterial(),
		CastsShadow: true,
	}
}

// Parent returns the weak parent handle, the zero Handle for roots.
func (o *Object) Parent() Handle { return o.parent }

// Drawable reports whether the object has uploaded geometry.
func (o *Object) Drawable() bool { return o.GPU.Valid() }

// Upload sends the mesh to the backend, releasing any earlier buffers first.
func (o *Object) Upload(b graphics.Backend) {
	if o.GPU != (graphics.MeshHandle{}) {
		b.DeleteMesh(o.GPU)
		o.GPU = graphics.MeshHandle{}
	}
	if o.Mesh.Empty() {
		return
	}
	o.GPU = b.UploadMesh(graphics.MeshData{
		Positions: o.Mesh.FlatPositions(),
		Normals:   o.Mesh.FlatNormals(),
		UVs:       o.Mesh.FlatUVs(),
		Indices:   o.Mesh.Indices(),
	})
}

// SetTextures replaces the owned textures. Zero handles unbind. One texture
// may fill both slots; it is deleted once, when neither slot keeps it.
func (o *Object) SetTextures(b graphics.Backend, diffuse, specular graphics.TextureHandle) {
	kept := func(h graphics.TextureHandle) bool { return h == diffuse || h == specular }
	if o.Diffuse != 0 && !kept(o.Diffuse) {
		b.DeleteTexture(o.Diffuse)
	}
	if o.Specular != 0 && o.Specular != o.Diffuse && !kept(o.Specular) {
		b.DeleteTexture(o.Specular)
	}
	o.Diffuse = diffuse
	o.Specular = specular
}

// release frees everything the object owns. Calling it twice is harmless.
func (o *Object) release(b graphics.Backend) {
	if o.GPU != (graphics.MeshHandle{}) {
		b.DeleteMesh(o.GPU)
		o.GPU = graphics.MeshHandle{}
	}
	o.SetTextures(b, 0, 0)
	o.Mesh = &meshimport.Mesh{}
	o.Program = nil
	o.parent = Handle{}
}
