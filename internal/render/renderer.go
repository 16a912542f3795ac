package render

import (
	"shadow-demo/internal/graphics"
	"shadow-demo/internal/profiling"
	"shadow-demo/internal/scene"
)

// Renderer runs the shadow protocol over an arena once per frame.
type Renderer struct {
	arena   *scene.Arena
	shadows *ShadowPass
}

// NewRenderer creates the shadow pass with its depth target. depthProgram is
// borrowed; the caller releases it.
func NewRenderer(b graphics.Backend, arena *scene.Arena, depthProgram *graphics.Program, shadowResolution int) (*Renderer, error) {
	shadows, err := NewShadowPass(b, depthProgram, shadowResolution)
	if err != nil {
		return nil, err
	}
	return &Renderer{arena: arena, shadows: shadows}, nil
}

func (r *Renderer) Shadows() *ShadowPass { return r.shadows }

// RenderFrame draws one frame. An error means the passes were driven out of
// order, which leaves the frame unfinished.
func (r *Renderer) RenderFrame(frame FrameContext) error {
	if err := r.shadows.Begin(frame); err != nil {
		return err
	}

	stop := profiling.Track("render.DepthPass")
	err := r.shadows.DepthPass(r.arena)
	stop()
	if err != nil {
		return err
	}

	stop = profiling.Track("render.ShadePass")
	err = r.shadows.ShadePass(r.arena)
	stop()
	if err != nil {
		return err
	}
	return r.shadows.End()
}

// Dispose releases the shadow map. Scene objects belong to the arena.
func (r *Renderer) Dispose() {
	r.shadows.Dispose()
}
