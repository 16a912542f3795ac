package config

import (
	"sync"

	"shadow-demo/internal/linalg"
)

// Light pitch stays above the horizon so the shadow box never looks up.
var (
	minLightPitch = linalg.DegToRad(5)
	maxLightPitch = linalg.DegToRad(89)
)

const (
	minCameraDistance = 2
	maxCameraDistance = 50
)

// RuntimeSettings holds the values input handling changes while the demo
// runs. The render loop reads a copy each frame.
type RuntimeSettings struct {
	mu sync.RWMutex

	lightYaw, lightPitch float32 // radians
	cameraYaw            float32 // radians
	cameraDistance       float32
	wireframe            bool
	shadows              bool
	worldMVP             bool
}

// RuntimeSnapshot is a consistent copy of RuntimeSettings.
type RuntimeSnapshot struct {
	LightYaw, LightPitch float32
	CameraYaw            float32
	CameraDistance       float32
	Wireframe            bool
	Shadows              bool
	WorldMVP             bool
}

// NewRuntimeSettings seeds the run-time values from the startup config.
func NewRuntimeSettings(cfg Config) *RuntimeSettings {
	rs := &RuntimeSettings{
		shadows:  cfg.Shadow.Enabled,
		worldMVP: cfg.WorldMVP(),
	}
	rs.SetLightAngles(linalg.DegToRad(cfg.Light.Yaw), linalg.DegToRad(cfg.Light.Pitch))
	rs.SetCameraDistance(cfg.Camera.Distance)
	return rs
}

func (rs *RuntimeSettings) Snapshot() RuntimeSnapshot {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return RuntimeSnapshot{
		LightYaw:       rs.lightYaw,
		LightPitch:     rs.lightPitch,
		CameraYaw:      rs.cameraYaw,
		CameraDistance: rs.cameraDistance,
		Wireframe:      rs.wireframe,
		Shadows:        rs.shadows,
		WorldMVP:       rs.worldMVP,
	}
}

// SetLightAngles sets the light direction, clamping pitch.
func (rs *RuntimeSettings) SetLightAngles(yaw, pitch float32) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.lightYaw = yaw
	rs.lightPitch = min(max(pitch, minLightPitch), maxLightPitch)
}

// RotateLight adds to the light angles.
func (rs *RuntimeSettings) RotateLight(dyaw, dpitch float32) {
	rs.mu.RLock()
	yaw, pitch := rs.lightYaw+dyaw, rs.lightPitch+dpitch
	rs.mu.RUnlock()
	rs.SetLightAngles(yaw, pitch)
}

func (rs *RuntimeSettings) OrbitCamera(dyaw float32) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.cameraYaw += dyaw
}

// SetCameraDistance clamps the orbit radius to [2, 50].
func (rs *RuntimeSettings) SetCameraDistance(d float32) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.cameraDistance = min(max(d, minCameraDistance), maxCameraDistance)
}

func (rs *RuntimeSettings) Zoom(delta float32) {
	rs.mu.RLock()
	d := rs.cameraDistance + delta
	rs.mu.RUnlock()
	rs.SetCameraDistance(d)
}

func (rs *RuntimeSettings) ToggleWireframe() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.wireframe = !rs.wireframe
	return rs.wireframe
}

func (rs *RuntimeSettings) ToggleShadows() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.shadows = !rs.shadows
	return rs.shadows
}

func (rs *RuntimeSettings) ToggleWorldMVP() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.worldMVP = !rs.worldMVP
	return rs.worldMVP
}
