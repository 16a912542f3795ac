package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-demo/internal/graphics"
	"shadow-demo/internal/graphics/graphicstest"
	"shadow-demo/internal/linalg"
	"shadow-demo/internal/meshimport"
	"shadow-demo/internal/profiling"
	"shadow-demo/internal/scene"
)

const tol = 1e-5

func assertMat4(t *testing.T, want, got linalg.Mat4) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], tol, "want\n%s\ngot\n%s", want, got)
}

func quad() *meshimport.Mesh {
	return &meshimport.Mesh{
		Positions: []linalg.Vec3{{X: -1, Z: -1}, {X: 1, Z: -1}, {X: 1, Z: 1}, {X: -1, Z: 1}},
		Normals:   []linalg.Vec3{{Y: 1}, {Y: 1}, {Y: 1}, {Y: 1}},
		Faces:     []meshimport.Face{{0, 2, 1}, {0, 3, 2}},
	}
}

type fixture struct {
	rec      *graphicstest.Recorder
	arena    *scene.Arena
	depth    *graphics.Program
	phong    *graphics.Program
	renderer *Renderer
	ground   scene.Handle
	pivot    scene.Handle
	model    scene.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{rec: graphicstest.New()}
	f.arena = scene.NewArena(f.rec)

	var err error
	f.depth, err = graphics.NewProgram(f.rec, "depth.vert", "depth.frag")
	require.NoError(t, err)
	f.phong, err = graphics.NewProgram(f.rec, "phong.vert", "phong.frag")
	require.NoError(t, err)

	ground := scene.NewObject("ground", quad())
	ground.Program = f.phong
	ground.CastsShadow = false
	f.ground = f.arena.Add(ground)

	f.pivot = f.arena.NewPivot("pivot")

	model := scene.NewObject("model", quad())
	model.Program = f.phong
	model.Model.Translate(2, 1, 0)
	f.model = f.arena.Add(model)
	require.NoError(t, f.arena.SetParent(f.model, f.pivot))

	f.renderer, err = NewRenderer(f.rec, f.arena, f.depth, 1024)
	require.NoError(t, err)
	f.rec.Reset()
	return f
}

func testFrame() FrameContext {
	return FrameContext{
		View:       linalg.LookAt(linalg.Vec3{Y: 3, Z: 6}, linalg.Vec3{}, linalg.Vec3{Y: 1}),
		Projection: linalg.Perspective(linalg.DegToRad(60), 640.0/480.0, 0.1, 100),
		ViewPos:    linalg.Vec3{Y: 3, Z: 6},
		Light: LightCamera{
			Position: linalg.Vec3{Y: 6, Z: 6},
			Pitch:    linalg.DegToRad(45),
			Extent:   10,
			Near:     1,
			Far:      30,
		},
		Width:   640,
		Height:  480,
		Shadows: true,
	}
}

func TestDepthPassWritesDepthOnly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.renderer.RenderFrame(testFrame()))

	depthFB := f.renderer.Shadows().Target().Framebuffer
	assert.Zero(t, f.rec.ColorWritesTo(depthFB))

	calls := f.rec.CallsTo(depthFB)
	require.NotEmpty(t, calls)
	var draws int
	for _, c := range calls {
		switch c.Op {
		case "Clear":
			assert.Equal(t, graphics.ClearDepth, c.Args[0])
		case "Viewport":
			assert.Equal(t, []any{0, 0, 1024, 1024}, c.Args)
		case "DrawMesh":
			draws++
			assert.Equal(t, f.depth.ID, c.Args[1])
		}
	}
	// the ground does not cast and the pivot has no mesh
	assert.Equal(t, 1, draws)
}

func TestCullOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.renderer.RenderFrame(testFrame()))

	var culls []any
	for _, c := range f.rec.Calls {
		if c.Op == "CullFace" {
			culls = append(culls, c.Args[0])
		}
	}
	assert.Equal(t, []any{graphics.CullFront, graphics.CullBack}, culls)
}

func TestShadePassDrawsToScreen(t *testing.T) {
	f := newFixture(t)
	frame := testFrame()
	require.NoError(t, f.renderer.RenderFrame(frame))

	screen := f.rec.CallsTo(graphics.DefaultFramebuffer)
	var draws int
	var sawShadowMap bool
	for _, c := range screen {
		switch c.Op {
		case "DrawMesh":
			draws++
			assert.Equal(t, f.phong.ID, c.Args[1])
		case "BindTexture":
			if c.Args[0] == graphics.UnitShadowMap {
				assert.Equal(t, f.renderer.Shadows().Target().Texture, c.Args[1])
				sawShadowMap = true
			}
		case "Viewport":
			assert.Equal(t, []any{0, 0, 640, 480}, c.Args)
		}
	}
	assert.Equal(t, 2, draws)
	assert.True(t, sawShadowMap)

	// untextured objects sample a white fallback rather than texture 0
	for _, c := range screen {
		if c.Op == "BindTexture" && c.Args[0] != graphics.UnitShadowMap {
			assert.NotZero(t, c.Args[1])
		}
	}
	assert.Positive(t, f.rec.ColorWritesTo(graphics.DefaultFramebuffer))

	// depth pass happens strictly before anything reaches the screen
	firstScreenDraw, lastDepthDraw := -1, -1
	depthFB := f.renderer.Shadows().Target().Framebuffer
	for i, c := range f.rec.Calls {
		if c.Op != "DrawMesh" {
			continue
		}
		if c.Framebuffer == depthFB {
			lastDepthDraw = i
		} else if firstScreenDraw < 0 {
			firstScreenDraw = i
		}
	}
	assert.Less(t, lastDepthDraw, firstScreenDraw)
}

func TestShadePassUniforms(t *testing.T) {
	f := newFixture(t)
	frame := testFrame()
	require.NoError(t, f.renderer.RenderFrame(frame))

	// the model is drawn last, so its values are the ones left on the program
	world := f.arena.WorldMatrix(f.model)
	model, _ := f.arena.Get(f.model)

	v, ok := f.rec.Uniform(f.phong.ID, graphics.UniformMVP)
	require.True(t, ok)
	assertMat4(t, frame.Projection.Mul(frame.View).Mul(model.Model), v.(linalg.Mat4))
	v, _ = f.rec.Uniform(f.phong.ID, graphics.UniformModel)
	assertMat4(t, world, v.(linalg.Mat4))
	v, _ = f.rec.Uniform(f.phong.ID, graphics.UniformLightCameraVP)
	assertMat4(t, frame.Light.ViewProjection(), v.(linalg.Mat4))

	v, _ = f.rec.Uniform(f.phong.ID, graphics.UniformLightPos)
	assert.Equal(t, frame.Light.Position, v)
	v, _ = f.rec.Uniform(f.phong.ID, graphics.UniformViewPos)
	assert.Equal(t, frame.ViewPos, v)
	v, _ = f.rec.Uniform(f.phong.ID, graphics.UniformSpecularity)
	assert.Equal(t, model.Material.Specularity, v)
	v, _ = f.rec.Uniform(f.phong.ID, graphics.UniformShadowMap)
	assert.Equal(t, int32(graphics.UnitShadowMap), v)

	v, _ = f.rec.Uniform(f.depth.ID, graphics.UniformLightCameraMat)
	assertMat4(t, frame.Light.ViewProjection().Mul(world), v.(linalg.Mat4))
}

func TestWorldMVPMode(t *testing.T) {
	f := newFixture(t)
	pivot, _ := f.arena.Get(f.pivot)
	pivot.Model.RotateY(1)

	frame := testFrame()
	frame.MVP = WorldMVP
	require.NoError(t, f.renderer.RenderFrame(frame))

	v, _ := f.rec.Uniform(f.phong.ID, graphics.UniformMVP)
	assertMat4(t, f.arena.WorldMVP(f.model, frame.View, frame.Projection), v.(linalg.Mat4))
}

func TestShadowsDisabledKeepsProtocol(t *testing.T) {
	f := newFixture(t)
	frame := testFrame()
	frame.Shadows = false
	require.NoError(t, f.renderer.RenderFrame(frame))

	depthFB := f.renderer.Shadows().Target().Framebuffer
	var ops []string
	for _, c := range f.rec.CallsTo(depthFB) {
		ops = append(ops, c.Op)
	}
	assert.Contains(t, ops, "Clear")
	assert.NotContains(t, ops, "DrawMesh")
	assert.Equal(t, Idle, f.renderer.Shadows().State())
}

func TestWireframeRestoresFill(t *testing.T) {
	f := newFixture(t)
	frame := testFrame()
	frame.Wireframe = true
	require.NoError(t, f.renderer.RenderFrame(frame))

	var modes []any
	for _, c := range f.rec.Calls {
		if c.Op == "PolygonMode" {
			modes = append(modes, c.Args[0])
		}
	}
	assert.Equal(t, []any{graphics.PolygonFill, graphics.PolygonLine, graphics.PolygonFill}, modes)
}

func TestPassOrder(t *testing.T) {
	f := newFixture(t)
	s := f.renderer.Shadows()
	assert.Equal(t, Idle, s.State())

	assert.ErrorIs(t, s.DepthPass(f.arena), ErrPassOrder)
	assert.ErrorIs(t, s.ShadePass(f.arena), ErrPassOrder)
	assert.ErrorIs(t, s.End(), ErrPassOrder)

	require.NoError(t, s.Begin(testFrame()))
	assert.Equal(t, DepthPass, s.State())
	assert.ErrorIs(t, s.Begin(testFrame()), ErrPassOrder)
	assert.ErrorIs(t, s.ShadePass(f.arena), ErrPassOrder)
	assert.ErrorIs(t, s.Resize(512), ErrPassOrder)

	require.NoError(t, s.DepthPass(f.arena))
	assert.Equal(t, ShadePass, s.State())
	assert.ErrorIs(t, s.DepthPass(f.arena), ErrPassOrder)

	require.NoError(t, s.ShadePass(f.arena))
	require.NoError(t, s.End())
	assert.Equal(t, Idle, s.State())
}

func TestRenderFrameProfiles(t *testing.T) {
	f := newFixture(t)
	profiling.ResetFrame()
	require.NoError(t, f.renderer.RenderFrame(testFrame()))
	assert.Equal(t, 1, profiling.Count("render.DepthPass"))
	assert.Equal(t, 1, profiling.Count("render.ShadePass"))
}

func TestResizeAndDispose(t *testing.T) {
	f := newFixture(t)
	s := f.renderer.Shadows()
	old := s.Target()

	require.NoError(t, s.Resize(2048))
	assert.Equal(t, 2048, s.Target().Width)
	assert.NotEqual(t, old.Framebuffer, s.Target().Framebuffer)
	require.NoError(t, s.Resize(2048))
	assert.Equal(t, 1, f.rec.Count("CreateDepthTarget"))

	f.renderer.Dispose()
	f.renderer.Dispose()
	assert.Equal(t, 2, f.rec.Count("DeleteDepthTarget"))
	assert.Equal(t, 1, f.rec.Count("DeleteTexture"))
	assert.Zero(t, f.rec.LiveTextures())
}

func TestLightCamera(t *testing.T) {
	l := testFrame().Light

	want := linalg.Identity4()
	want.RotateX(l.Pitch)
	want.Translate(0, -6, -6)
	assertMat4(t, want, l.View())

	// pitched 45 degrees down from (0,6,6) the light looks at the origin
	p := l.View().TransformPoint(linalg.Vec3{})
	assert.InDelta(t, 0, p.X, tol)
	assert.InDelta(t, 0, p.Y, tol)
	assert.Less(t, p.Z, float32(0))

	gl := mgl32.Ortho(-10, 10, -10, 10, 1, 30)
	assertMat4(t, linalg.FromGL(gl), l.Projection())

	ndc := l.ViewProjection().MulVec4(linalg.Vec4{W: 1})
	assert.InDelta(t, 0, ndc.X, tol)
	assert.InDelta(t, 0, ndc.Y, tol)
	assert.True(t, ndc.Z > -1 && ndc.Z < 1)
}

func TestLightOrbitAimsAtOrigin(t *testing.T) {
	for _, angles := range [][2]float32{{45, 0}, {30, 90}, {60, -135}, {10, 200}} {
		l := LightCamera{Pitch: linalg.DegToRad(angles[0]), Yaw: linalg.DegToRad(angles[1])}
		l.Orbit(8)
		assert.InDelta(t, 8, l.Position.Magnitude(), 1e-4)

		p := l.View().TransformPoint(linalg.Vec3{})
		assert.InDelta(t, 0, p.X, 1e-4, "angles %v", angles)
		assert.InDelta(t, 0, p.Y, 1e-4, "angles %v", angles)
		assert.InDelta(t, -8, p.Z, 1e-4, "angles %v", angles)
	}
}

func TestMVPModeString(t *testing.T) {
	assert.Equal(t, "world", WorldMVP.String())
	assert.Equal(t, "local", LocalMVP.String())
	assert.Equal(t, LocalMVP, FrameContext{}.MVP)
}
