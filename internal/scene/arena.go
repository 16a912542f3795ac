package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"shadow-demo/internal/graphics"
	"shadow-demo/internal/linalg"
	"shadow-demo/internal/logging"
	"shadow-demo/internal/meshimport"
)

var (
	ErrParentCycle = errors.New("parent chain would form a cycle")
	ErrStaleHandle = errors.New("handle refers to a released object")
)

// MaxDepth bounds parent chains. SetParent refuses anything deeper.
const MaxDepth = 64

// Handle is a weak reference into an Arena. Handles of released objects go
// stale instead of dangling. The zero Handle means "none".
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}

type slot struct {
	obj *Object
	gen uint32
}

// Arena owns scene objects and resolves parent handles. It is used from the
// render thread only.
type Arena struct {
	backend graphics.Backend
	slots   []slot
	free    []uint32
	order   []Handle
}

func NewArena(b graphics.Backend) *Arena {
	return &Arena{backend: b}
}

// Add takes ownership of obj, uploads its mesh if that has not happened yet
// and returns its handle.
func (a *Arena) Add(obj *Object) Handle {
	if obj.Name == "" {
		obj.Name = NewObject("", nil).Name
	}
	if !obj.Drawable() && !obj.Mesh.Empty() {
		obj.Upload(a.backend)
	}

	var h Handle
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.obj = obj
		h = Handle{index: idx, gen: s.gen}
	} else {
		a.slots = append(a.slots, slot{obj: obj, gen: 1})
		h = Handle{index: uint32(len(a.slots) - 1), gen: 1}
	}
	a.order = append(a.order, h)
	logging.Debug("scene object added", "object", obj.Name, "handle", h, "vertices", obj.Mesh.VertexCount())
	return h
}

// Get resolves h. It fails for the zero handle and for released objects.
func (a *Arena) Get(h Handle) (*Object, bool) {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.index]
	if s.gen != h.gen || s.obj == nil {
		return nil, false
	}
	return s.obj, true
}

// Load imports a mesh file into a new object. Import failures are logged and
// still produce an object, with empty buffers, alongside the error.
func (a *Arena) Load(imp meshimport.Importer, path string, opts meshimport.Options) (Handle, error) {
	mesh, err := meshimport.Load(imp, path, opts)
	if err != nil {
		logging.Warn("mesh import failed", "path", path, "err", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return a.Add(NewObject(name, mesh)), err
}

// NewPivot adds a mesh-less object used only as a transform anchor.
func (a *Arena) NewPivot(name string) Handle {
	obj := NewObject(name, nil)
	obj.CastsShadow = false
	return a.Add(obj)
}

// SetParent links child under parent. The zero parent handle detaches the
// child. Links that would close a loop, or give any chain through child more
// than MaxDepth objects, are rejected with ErrParentCycle.
func (a *Arena) SetParent(child, parent Handle) error {
	obj, ok := a.Get(child)
	if !ok {
		return fmt.Errorf("set parent of %s: %w", child, ErrStaleHandle)
	}
	if parent.IsZero() {
		obj.parent = Handle{}
		return nil
	}
	if _, ok := a.Get(parent); !ok {
		return fmt.Errorf("set parent to %s: %w", parent, ErrStaleHandle)
	}

	above := 0
	for h := parent; above <= MaxDepth; above++ {
		p, ok := a.Get(h)
		if !ok {
			break
		}
		if h == child {
			return fmt.Errorf("%s under %s: %w", child, parent, ErrParentCycle)
		}
		h = p.parent
	}
	if depth := above + a.subtreeHeight(child); depth > MaxDepth {
		return fmt.Errorf("%s under %s: chain of %d exceeds %d: %w", child, parent, depth, MaxDepth, ErrParentCycle)
	}
	obj.parent = parent
	return nil
}

// subtreeHeight counts the objects on the longest chain from root down to a
// leaf, root included.
func (a *Arena) subtreeHeight(root Handle) int {
	height := 1
	for _, h := range a.order {
		cur := h
		for steps := 1; steps <= MaxDepth; steps++ {
			if cur == root {
				height = max(height, steps)
				break
			}
			o, ok := a.Get(cur)
			if !ok {
				break
			}
			cur = o.parent
		}
	}
	return height
}

// WorldMatrix composes model matrices from the root down:
// world(obj) = world(parent) * obj.Model. A parent that has been released
// ends the chain as if obj were a root.
func (a *Arena) WorldMatrix(h Handle) linalg.Mat4 {
	obj, ok := a.Get(h)
	if !ok {
		return linalg.Identity4()
	}

	var chain [MaxDepth + 1]*Object
	n := 0
	for o := obj; o != nil && n < len(chain); n++ {
		chain[n] = o
		p, ok := a.Get(o.parent)
		if !ok {
			break
		}
		o = p
	}
	if n == len(chain) {
		n--
	}

	world := chain[n].Model
	for i := n - 1; i >= 0; i-- {
		world.Multiply(chain[i].Model)
	}
	return world
}

// LocalMVP returns projection * view * model using the object's local model
// matrix only; ancestors are ignored.
func (a *Arena) LocalMVP(h Handle, view, projection linalg.Mat4) linalg.Mat4 {
	obj, ok := a.Get(h)
	if !ok {
		return projection.Mul(view)
	}
	return projection.Mul(view).Mul(obj.Model)
}

// WorldMVP returns projection * view * WorldMatrix(h).
func (a *Arena) WorldMVP(h Handle, view, projection linalg.Mat4) linalg.Mat4 {
	return projection.Mul(view).Mul(a.WorldMatrix(h))
}

// Release frees the object's buffers and textures and invalidates h. Shared
// programs and the parent are left alone. Stale or zero handles are ignored.
func (a *Arena) Release(h Handle) {
	obj, ok := a.Get(h)
	if !ok {
		return
	}
	obj.release(a.backend)

	s := &a.slots[h.index]
	s.obj = nil
	s.gen++
	a.free = append(a.free, h.index)
	for i, o := range a.order {
		if o == h {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	logging.Debug("scene object released", "object", obj.Name, "handle", h)
}

// ReleaseAll releases every live object.
func (a *Arena) ReleaseAll() {
	for len(a.order) > 0 {
		a.Release(a.order[len(a.order)-1])
	}
}

// Each calls fn for every live object in insertion order.
func (a *Arena) Each(fn func(Handle, *Object)) {
	for _, h := range a.order {
		if obj, ok := a.Get(h); ok {
			fn(h, obj)
		}
	}
}

// Len returns the number of live objects.
func (a *Arena) Len() int { return len(a.order) }
