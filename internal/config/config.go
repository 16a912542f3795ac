package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"shadow-demo/internal/linalg"
	"shadow-demo/internal/meshimport"
)

const (
	MinShadowResolution = 256
	MaxShadowResolution = 8192
)

// Config is the demo's startup configuration, read from a TOML file.
type Config struct {
	LogLevel string `toml:"log_level"`
	// MVP is "local" (ancestors ignored in u_mvp) or "world".
	MVP string `toml:"mvp"`

	Window   WindowConfig   `toml:"window"`
	Camera   CameraConfig   `toml:"camera"`
	Light    LightConfig    `toml:"light"`
	Shadow   ShadowConfig   `toml:"shadow"`
	Material MaterialConfig `toml:"material"`
	Shaders  ShaderConfig   `toml:"shaders"`
	Models   []ModelConfig  `toml:"models"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// CameraConfig describes the orbit camera. Angles are in degrees.
type CameraConfig struct {
	FOV      float32 `toml:"fov"`
	Near     float32 `toml:"near"`
	Far      float32 `toml:"far"`
	Distance float32 `toml:"distance"`
	Height   float32 `toml:"height"`
}

type LightConfig struct {
	Position [3]float32 `toml:"position"`
	Pitch    float32    `toml:"pitch"` // degrees
	Yaw      float32    `toml:"yaw"`   // degrees
}

type ShadowConfig struct {
	Enabled    bool    `toml:"enabled"`
	Resolution int     `toml:"resolution"`
	Extent     float32 `toml:"extent"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
}

type MaterialConfig struct {
	Specularity float32 `toml:"specularity"`
	Diffuse     float32 `toml:"diffuse"`
	Ambient     float32 `toml:"ambient"`
	Specular    float32 `toml:"specular"`
}

type ShaderConfig struct {
	DepthVertex   string `toml:"depth_vertex"`
	DepthFragment string `toml:"depth_fragment"`
	PhongVertex   string `toml:"phong_vertex"`
	PhongFragment string `toml:"phong_fragment"`
	HotReload     bool   `toml:"hot_reload"`
}

// ModelConfig is one mesh in the demo scene. Flags uses the import bitset
// (0b10000000 centre, 0b01000000 rescale, 0b00100000 flip normals,
// 0b00010000 flip winding), which TOML can write as a binary literal.
// Parent names another model or the built-in "pivot".
type ModelConfig struct {
	Name     string     `toml:"name"`
	Path     string     `toml:"path"`
	Flags    uint8      `toml:"flags"`
	Diffuse  string     `toml:"diffuse"`
	Specular string     `toml:"specular"`
	Parent   string     `toml:"parent"`
	Position [3]float32 `toml:"position"`
	Scale    float32    `toml:"scale"`
	Spin     float32    `toml:"spin"` // degrees per second about y
	Shadow   bool       `toml:"casts_shadow"`
}

// ImportOptions returns the default import pipeline with Flags applied.
func (m ModelConfig) ImportOptions() meshimport.Options {
	return meshimport.OptionsFromFlags(meshimport.Flags(m.Flags))
}

// WorldMVP reports whether mvp selects the full world matrix. Anything other
// than "world" or "world_mvp" means local.
func (c Config) WorldMVP() bool {
	return c.MVP == "world" || c.MVP == "world_mvp"
}

func vec3(a [3]float32) linalg.Vec3 { return linalg.Vec3{X: a[0], Y: a[1], Z: a[2]} }

func (m ModelConfig) PositionVec() linalg.Vec3 { return vec3(m.Position) }

func (l LightConfig) PositionVec() linalg.Vec3 { return vec3(l.Position) }

// Default returns the built-in configuration: a 640x480 window, a 2048 shadow
// map and a 60 degree camera.
func Default() Config {
	return Config{
		LogLevel: "info",
		MVP:      "world",
		Window: WindowConfig{
			Width:  640,
			Height: 480,
			Title:  "shadow-demo",
			VSync:  true,
		},
		Camera: CameraConfig{FOV: 60, Near: 0.1, Far: 100, Distance: 8, Height: 3},
		Light: LightConfig{
			Position: [3]float32{0, 6, 6},
			Pitch:    45,
		},
		Shadow: ShadowConfig{
			Enabled:    true,
			Resolution: 2048,
			Extent:     10,
			Near:       1,
			Far:        30,
		},
		Material: MaterialConfig{Specularity: 32, Diffuse: 1, Ambient: 0.1, Specular: 0.5},
		Shaders: ShaderConfig{
			DepthVertex:   "assets/shaders/depth.vert",
			DepthFragment: "assets/shaders/depth.frag",
			PhongVertex:   "assets/shaders/phong_shadow.vert",
			PhongFragment: "assets/shaders/phong_shadow.frag",
			HotReload:     true,
		},
		Models: []ModelConfig{
			{Name: "ground", Path: "assets/models/plane.obj", Scale: 1},
			{
				Name:     "cube",
				Path:     "assets/models/cube.obj",
				Flags:    uint8(meshimport.FlagCentre | meshimport.FlagUnitRescale),
				Parent:   "pivot",
				Position: [3]float32{2.5, 1, 0},
				Scale:    1,
				Spin:     45,
				Shadow:   true,
			},
		},
	}
}

// Load reads path over the defaults. A missing file is not an error; unknown
// keys are.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// [[models]] in the file replaces the default scene rather than extending it
	cfg.Models = nil
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Default(), fmt.Errorf("parse %s:%d:%d: %w", path, row, col, err)
		}
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Models == nil {
		cfg.Models = Default().Models
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate clamps the shadow map resolution and rejects values the math
// layer would divide by zero on.
func (c *Config) Validate() error {
	c.Shadow.Resolution = min(max(c.Shadow.Resolution, MinShadowResolution), MaxShadowResolution)

	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera far %g must exceed near %g", c.Camera.Far, c.Camera.Near))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera fov %g out of (0, 180)", c.Camera.FOV))
	}
	if c.Shadow.Far <= c.Shadow.Near {
		errs = append(errs, fmt.Errorf("shadow far %g must exceed near %g", c.Shadow.Far, c.Shadow.Near))
	}
	if c.Shadow.Extent <= 0 {
		errs = append(errs, fmt.Errorf("shadow extent %g must be positive", c.Shadow.Extent))
	}
	names := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Path == "" {
			errs = append(errs, fmt.Errorf("model %d has no path", i))
		}
		if m.Name != "" {
			names[m.Name] = true
		}
	}
	for _, m := range c.Models {
		if m.Parent != "" && m.Parent != "pivot" && !names[m.Parent] {
			errs = append(errs, fmt.Errorf("model %q: unknown parent %q", m.Name, m.Parent))
		}
	}
	return errors.Join(errs...)
}

// Marshal renders the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
