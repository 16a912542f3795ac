package main

import (
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"

	"shadow-demo/internal/config"
	"shadow-demo/internal/graphics"
	"shadow-demo/internal/input"
	"shadow-demo/internal/linalg"
	"shadow-demo/internal/logging"
	"shadow-demo/internal/meshimport"
	"shadow-demo/internal/profiling"
	"shadow-demo/internal/render"
	"shadow-demo/internal/scene"
)

const (
	lightTurnRate = 1.2   // radians per second
	orbitRate     = 1.0   // radians per second
	zoomRate      = 6.0   // units per second
	dragTurn      = 0.005 // radians per pixel
	scrollZoom    = 0.5   // units per wheel step

	slowFrame = 16 * time.Millisecond
)

type spinner struct {
	handle scene.Handle
	rate   float32 // radians per second
}

type app struct {
	window   *glfw.Window
	backend  graphics.Backend
	input    *input.Manager
	cfg      config.Config
	settings *config.RuntimeSettings

	arena    *scene.Arena
	renderer *render.Renderer
	depth    *graphics.Program
	phong    *graphics.Program
	watcher  *graphics.ShaderWatcher
	pivot    scene.Handle
	spinners []spinner

	width, height int
	lightRadius   float32
	profile       bool
	lastTime      time.Time

	quit atomic.Bool
	done chan struct{}
}

func newApp(window *glfw.Window, b graphics.Backend, im *input.Manager, cfg config.Config) (*app, error) {
	a := &app{
		window:      window,
		backend:     b,
		input:       im,
		cfg:         cfg,
		settings:    config.NewRuntimeSettings(cfg),
		arena:       scene.NewArena(b),
		lightRadius: cfg.Light.PositionVec().Magnitude(),
		done:        make(chan struct{}),
	}
	if a.lightRadius <= 0 {
		a.lightRadius = (cfg.Shadow.Near + cfg.Shadow.Far) / 2
	}

	// Build failures leave inert programs; the demo keeps running so a fixed
	// shader can be picked up by the watcher.
	a.depth, _ = graphics.LoadProgram(b, cfg.Shaders.DepthVertex, cfg.Shaders.DepthFragment)
	a.phong, _ = graphics.LoadProgram(b, cfg.Shaders.PhongVertex, cfg.Shaders.PhongFragment)

	if cfg.Shaders.HotReload {
		w, err := graphics.NewShaderWatcher()
		if err != nil {
			logging.Warn("shader hot reload disabled", "err", err)
		} else {
			a.watcher = w
			for _, p := range []*graphics.Program{a.depth, a.phong} {
				if err := w.Watch(p); err != nil {
					logging.Warn("cannot watch shader", "err", err)
				}
			}
		}
	}

	a.buildScene()

	r, err := render.NewRenderer(b, a.arena, a.depth, cfg.Shadow.Resolution)
	if err != nil {
		a.dispose()
		return nil, err
	}
	a.renderer = r

	a.width, a.height = window.GetFramebufferSize()
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		a.width, a.height = width, height
	})
	return a, nil
}

// buildScene loads every configured model. A model that fails to import
// stays in the arena as an empty object and is simply not drawn.
func (a *app) buildScene() {
	imp := meshimport.NewFileImporter()
	a.pivot = a.arena.NewPivot("pivot")

	material := scene.Material{
		Specularity: a.cfg.Material.Specularity,
		Diffuse:     a.cfg.Material.Diffuse,
		Ambient:     a.cfg.Material.Ambient,
		Specular:    a.cfg.Material.Specular,
	}

	byName := map[string]scene.Handle{"pivot": a.pivot}
	for _, mc := range a.cfg.Models {
		h, _ := a.arena.Load(imp, mc.Path, mc.ImportOptions())
		obj, _ := a.arena.Get(h)
		if mc.Name != "" {
			obj.Name = mc.Name
			byName[mc.Name] = h
		}
		obj.Program = a.phong
		obj.Material = material
		obj.CastsShadow = mc.Shadow

		p := mc.PositionVec()
		obj.Model.Translate(p.X, p.Y, p.Z)
		if mc.Scale != 0 && mc.Scale != 1 {
			obj.Model.Scale(mc.Scale, mc.Scale, mc.Scale)
		}

		var diffuse, specular graphics.TextureHandle
		if mc.Diffuse != "" {
			diffuse, _ = graphics.LoadTexture(a.backend, mc.Diffuse)
		}
		if mc.Specular != "" {
			specular, _ = graphics.LoadTexture(a.backend, mc.Specular)
		}
		obj.SetTextures(a.backend, diffuse, specular)

		if mc.Spin != 0 {
			a.spinners = append(a.spinners, spinner{handle: h, rate: linalg.DegToRad(mc.Spin)})
		}
	}

	// parents are linked once every name is known
	for _, mc := range a.cfg.Models {
		if mc.Parent == "" {
			continue
		}
		if err := a.arena.SetParent(byName[mc.Name], byName[mc.Parent]); err != nil {
			logging.Warn("cannot parent model", "model", mc.Name, "parent", mc.Parent, "err", err)
		}
	}
	logging.Info("scene ready", "objects", a.arena.Len())
}

func (a *app) requestQuit() { a.quit.Store(true) }

func (a *app) run() {
	a.lastTime = time.Now()
	for !a.window.ShouldClose() && !a.quit.Load() {
		a.tick()
	}
}

func (a *app) tick() {
	profiling.ResetFrame()
	start := time.Now()
	dt := start.Sub(a.lastTime).Seconds()
	a.lastTime = start

	glfw.PollEvents()
	a.handleInput(dt)
	a.animate(dt)

	if a.watcher != nil {
		a.watcher.ReloadChanged()
	}

	if a.width > 0 && a.height > 0 {
		if err := a.renderer.RenderFrame(a.frameContext()); err != nil {
			logging.Error("frame aborted", "err", err)
		}
	}
	a.window.SwapBuffers()

	if d := time.Since(start); a.profile || d > slowFrame {
		logging.Debug("frame", "took", d, "top", profiling.TopN(3), "render", profiling.SumWithPrefix("render."))
	}
	a.input.PostUpdate()
}

func (a *app) handleInput(dt float64) {
	im, rs := a.input, a.settings
	step := float32(dt)

	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}

	var dyaw, dpitch float32
	if im.IsActive(input.ActionLightYawLeft) {
		dyaw -= lightTurnRate * step
	}
	if im.IsActive(input.ActionLightYawRight) {
		dyaw += lightTurnRate * step
	}
	if im.IsActive(input.ActionLightPitchUp) {
		dpitch += lightTurnRate * step
	}
	if im.IsActive(input.ActionLightPitchDown) {
		dpitch -= lightTurnRate * step
	}
	if dyaw != 0 || dpitch != 0 {
		rs.RotateLight(dyaw, dpitch)
	}

	orbit := float32(0)
	if im.IsActive(input.ActionOrbitLeft) {
		orbit -= orbitRate * step
	}
	if im.IsActive(input.ActionOrbitRight) {
		orbit += orbitRate * step
	}
	dx, _ := im.Drag()
	orbit += float32(dx) * dragTurn
	if orbit != 0 {
		rs.OrbitCamera(orbit)
	}

	zoom := float32(-im.Scroll()) * scrollZoom
	if im.IsActive(input.ActionZoomIn) {
		zoom -= zoomRate * step
	}
	if im.IsActive(input.ActionZoomOut) {
		zoom += zoomRate * step
	}
	if zoom != 0 {
		rs.Zoom(zoom)
	}

	if im.JustPressed(input.ActionToggleWireframe) {
		logging.Info("wireframe", "on", rs.ToggleWireframe())
	}
	if im.JustPressed(input.ActionToggleShadows) {
		logging.Info("shadows", "on", rs.ToggleShadows())
	}
	if im.JustPressed(input.ActionToggleMVP) {
		logging.Info("mvp", "world", rs.ToggleWorldMVP())
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		a.profile = !a.profile
		if a.profile {
			logging.SetLevel("debug")
		} else {
			logging.SetLevel(a.cfg.LogLevel)
		}
	}
	if im.JustPressed(input.ActionReloadShaders) {
		for _, p := range []*graphics.Program{a.depth, a.phong} {
			_ = p.Reload()
		}
	}
}

// animate turns the pivot, which carries its children around it, and spins
// configured models in place.
func (a *app) animate(dt float64) {
	if pivot, ok := a.arena.Get(a.pivot); ok {
		pivot.Model.RotateY(0.5 * float32(dt))
	}
	for _, s := range a.spinners {
		if obj, ok := a.arena.Get(s.handle); ok {
			obj.Model.RotateY(s.rate * float32(dt))
		}
	}
}

func (a *app) frameContext() render.FrameContext {
	s := a.settings.Snapshot()
	cam := a.cfg.Camera

	sy, cy := math32.Sincos(s.CameraYaw)
	eye := linalg.Vec3{X: s.CameraDistance * sy, Y: cam.Height, Z: s.CameraDistance * cy}
	view := linalg.LookAt(eye, linalg.Vec3{}, linalg.Vec3{Y: 1})
	aspect := float32(a.width) / float32(a.height)
	projection := linalg.Perspective(linalg.DegToRad(cam.FOV), aspect, cam.Near, cam.Far)

	light := render.LightCamera{
		Pitch:  s.LightPitch,
		Yaw:    s.LightYaw,
		Extent: a.cfg.Shadow.Extent,
		Near:   a.cfg.Shadow.Near,
		Far:    a.cfg.Shadow.Far,
	}
	light.Orbit(a.lightRadius)

	mode := render.LocalMVP
	if s.WorldMVP {
		mode = render.WorldMVP
	}
	return render.FrameContext{
		View:       view,
		Projection: projection,
		ViewPos:    eye,
		Light:      light,
		Width:      a.width,
		Height:     a.height,
		Wireframe:  s.Wireframe,
		Shadows:    s.Shadows,
		MVP:        mode,
	}
}

// dispose releases scene objects, then the shared programs exactly once.
func (a *app) dispose() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			logging.Warn("closing shader watcher", "err", err)
		}
	}
	if a.renderer != nil {
		a.renderer.Dispose()
	}
	a.arena.ReleaseAll()
	a.depth.Delete()
	a.phong.Delete()
}
