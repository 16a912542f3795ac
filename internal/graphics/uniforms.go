package graphics

// Uniform names shared with the GLSL sources under assets/shaders.
const (
	UniformMVP               = "u_mvp"
	UniformModel             = "u_model"
	UniformLightPos          = "u_light_pos"
	UniformViewPos           = "u_view_pos"
	UniformSpecularity       = "u_specularity"
	UniformDiffuseIntensity  = "u_diffuse_intensity"
	UniformAmbientIntensity  = "u_ambient_intensity"
	UniformSpecularIntensity = "u_specular_intensity"
	UniformLightCameraMat    = "u_light_camera_mat" // light view-projection * world, depth pass
	UniformLightCameraVP     = "u_light_camera_vp"  // light view-projection, shade pass
	UniformDiffuseTexture    = "u_diffuse_texture"
	UniformSpecularTexture   = "u_specular_texture"
	UniformShadowMap         = "u_shadow_map"
)

// Texture units the shade pass binds samplers to.
const (
	UnitDiffuse uint32 = iota
	UnitSpecular
	UnitShadowMap
)
