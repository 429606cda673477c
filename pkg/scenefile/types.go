package scenefile

// Document is the top level of a scene file
type Document struct {
	SceneObjects []Record `json:"SceneObjects"`
}

// Record is one serialized entity. Color and Attenuation are only written
// for lights and are optional on read.
type Record struct {
	Type     string     `json:"type"`
	Tag      string     `json:"tag"`
	Position [3]float32 `json:"position"`
	Rotation [3]float32 `json:"rotation"`
	Scale    [3]float32 `json:"scale"`
	Texture  string     `json:"texture"`
	Shader   string     `json:"shader"`
	IsActive bool       `json:"isActive"`
	IsLight  bool       `json:"isLight"`

	Color       *[4]float32  `json:"color,omitempty"`
	Attenuation *Attenuation `json:"attenuation,omitempty"`
}

type Attenuation struct {
	Constant  float32 `json:"constant"`
	Linear    float32 `json:"linear"`
	Quadratic float32 `json:"quadratic"`
}

// Field names as they appear in the document
const (
	FieldType        = "type"
	FieldTag         = "tag"
	FieldPosition    = "position"
	FieldRotation    = "rotation"
	FieldScale       = "scale"
	FieldTexture     = "texture"
	FieldShader      = "shader"
	FieldIsActive    = "isActive"
	FieldIsLight     = "isLight"
	FieldColor       = "color"
	FieldAttenuation = "attenuation"
)
