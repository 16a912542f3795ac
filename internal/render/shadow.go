package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"shadow-demo/internal/graphics"
	"shadow-demo/internal/linalg"
	"shadow-demo/internal/scene"
)

var ErrPassOrder = errors.New("shadow pass called out of order")

// PassState tracks where a frame is in the two pass protocol.
type PassState int

const (
	Idle PassState = iota
	DepthPass
	ShadePass
)

func (s PassState) String() string {
	switch s {
	case DepthPass:
		return "depth"
	case ShadePass:
		return "shade"
	default:
		return "idle"
	}
}

// ShadowPass renders casters into an off-screen depth target from the light,
// then draws every object from the camera with that depth map bound as an
// extra sampler. A frame is Begin, DepthPass, ShadePass (any number of
// times), End.
//
// Switching framebuffers is what orders the depth writes before the shade
// pass reads them. A backend without implicit hazard tracking must put a
// barrier between the two passes.
type ShadowPass struct {
	backend graphics.Backend
	program *graphics.Program
	target  graphics.DepthTarget
	// bound in place of missing diffuse and specular maps
	white graphics.TextureHandle

	ClearColour linalg.Vec4

	state   PassState
	frame   FrameContext
	lightVP linalg.Mat4
}

// NewShadowPass allocates a square depth target of the given size. program is
// the depth-only shader; it is shared and not released by the pass.
func NewShadowPass(b graphics.Backend, program *graphics.Program, resolution int) (*ShadowPass, error) {
	target, err := b.CreateDepthTarget(resolution, resolution)
	if err != nil {
		return nil, fmt.Errorf("create %dx%d shadow map: %w", resolution, resolution, err)
	}
	px := image.NewRGBA(image.Rect(0, 0, 1, 1))
	px.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return &ShadowPass{
		backend:     b,
		program:     program,
		target:      target,
		white:       b.UploadTexture(px),
		ClearColour: linalg.Vec4{X: 0.1, Y: 0.1, Z: 0.12, W: 1},
	}, nil
}

func (s *ShadowPass) State() PassState { return s.state }

func (s *ShadowPass) Target() graphics.DepthTarget { return s.target }

// LightViewProjection is the matrix used by the current frame.
func (s *ShadowPass) LightViewProjection() linalg.Mat4 { return s.lightVP }

// Resize replaces the depth target. Only allowed between frames.
func (s *ShadowPass) Resize(resolution int) error {
	if s.state != Idle {
		return fmt.Errorf("resize during %s pass: %w", s.state, ErrPassOrder)
	}
	if resolution == s.target.Width && resolution == s.target.Height {
		return nil
	}
	target, err := s.backend.CreateDepthTarget(resolution, resolution)
	if err != nil {
		return fmt.Errorf("resize shadow map to %d: %w", resolution, err)
	}
	s.backend.DeleteDepthTarget(s.target)
	s.target = target
	return nil
}

// Begin starts a frame and fixes the light matrix for both passes.
func (s *ShadowPass) Begin(frame FrameContext) error {
	if s.state != Idle {
		return fmt.Errorf("begin during %s pass: %w", s.state, ErrPassOrder)
	}
	s.frame = frame
	s.lightVP = frame.Light.ViewProjection()
	s.state = DepthPass
	return nil
}

// DepthPass draws every drawable shadow caster into the depth target with
// front faces culled. With shadows off the target is still cleared, so the
// shade pass samples "fully lit" everywhere.
func (s *ShadowPass) DepthPass(arena *scene.Arena) error {
	if s.state != DepthPass {
		return fmt.Errorf("depth pass during %s pass: %w", s.state, ErrPassOrder)
	}
	b := s.backend
	b.BindFramebuffer(s.target.Framebuffer)
	b.Viewport(0, 0, s.target.Width, s.target.Height)
	b.PolygonMode(graphics.PolygonFill)
	b.Clear(graphics.ClearDepth)
	b.CullFace(graphics.CullFront)

	if s.frame.Shadows {
		s.program.Use()
		arena.Each(func(h scene.Handle, obj *scene.Object) {
			if !obj.CastsShadow || !obj.Drawable() {
				return
			}
			s.program.SetMat4(graphics.UniformLightCameraMat, s.lightVP.Mul(arena.WorldMatrix(h)))
			b.DrawMesh(obj.GPU)
		})
	}

	s.state = ShadePass
	return nil
}

// ShadePass draws every drawable object that has a program into the default
// framebuffer from the camera.
func (s *ShadowPass) ShadePass(arena *scene.Arena) error {
	if s.state != ShadePass {
		return fmt.Errorf("shade pass during %s pass: %w", s.state, ErrPassOrder)
	}
	b := s.backend
	f := s.frame
	b.BindFramebuffer(graphics.DefaultFramebuffer)
	b.Viewport(0, 0, f.Width, f.Height)
	b.CullFace(graphics.CullBack)
	b.ClearColor(s.ClearColour.X, s.ClearColour.Y, s.ClearColour.Z, s.ClearColour.W)
	b.Clear(graphics.ClearColor | graphics.ClearDepth)
	if f.Wireframe {
		b.PolygonMode(graphics.PolygonLine)
	}
	b.BindTexture(graphics.UnitShadowMap, s.target.Texture)

	arena.Each(func(h scene.Handle, obj *scene.Object) {
		if obj.Program == nil || !obj.Drawable() {
			return
		}
		p := obj.Program
		p.Use()

		var mvp linalg.Mat4
		if f.MVP == WorldMVP {
			mvp = arena.WorldMVP(h, f.View, f.Projection)
		} else {
			mvp = arena.LocalMVP(h, f.View, f.Projection)
		}
		p.SetMat4(graphics.UniformMVP, mvp)
		p.SetMat4(graphics.UniformModel, arena.WorldMatrix(h))
		p.SetMat4(graphics.UniformLightCameraVP, s.lightVP)
		p.SetVec3(graphics.UniformLightPos, f.Light.Position)
		p.SetVec3(graphics.UniformViewPos, f.ViewPos)

		m := obj.Material
		p.SetFloat(graphics.UniformSpecularity, m.Specularity)
		p.SetFloat(graphics.UniformDiffuseIntensity, m.Diffuse)
		p.SetFloat(graphics.UniformAmbientIntensity, m.Ambient)
		p.SetFloat(graphics.UniformSpecularIntensity, m.Specular)

		p.SetSampler(graphics.UniformDiffuseTexture, graphics.UnitDiffuse)
		p.SetSampler(graphics.UniformSpecularTexture, graphics.UnitSpecular)
		p.SetSampler(graphics.UniformShadowMap, graphics.UnitShadowMap)
		b.BindTexture(graphics.UnitDiffuse, s.orWhite(obj.Diffuse))
		b.BindTexture(graphics.UnitSpecular, s.orWhite(obj.Specular))

		b.DrawMesh(obj.GPU)
	})
	return nil
}

func (s *ShadowPass) orWhite(h graphics.TextureHandle) graphics.TextureHandle {
	if h == 0 {
		return s.white
	}
	return h
}

// End closes the frame and leaves the pipeline in its default state.
func (s *ShadowPass) End() error {
	if s.state != ShadePass {
		return fmt.Errorf("end during %s pass: %w", s.state, ErrPassOrder)
	}
	if s.frame.Wireframe {
		s.backend.PolygonMode(graphics.PolygonFill)
	}
	s.state = Idle
	return nil
}

// Dispose releases the depth target and the fallback texture.
func (s *ShadowPass) Dispose() {
	if s.white != 0 {
		s.backend.DeleteTexture(s.white)
		s.white = 0
	}
	if s.target.Framebuffer == 0 && s.target.Texture == 0 {
		return
	}
	s.backend.DeleteDepthTarget(s.target)
	s.target = graphics.DepthTarget{}
}
