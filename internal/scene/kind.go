package scene

// Kind identifies the geometry variant of a scene entity
type Kind int

// Kind constants using iota. The order matches the primitive generator's
// combo box (Cube, Quad, Sphere, Light) so a combo index converts directly.
const (
	KindCube Kind = iota
	KindQuad
	KindSphere
	KindLight
	KindModel
	KindNone
)

var kindNames = map[Kind]string{
	KindCube:   "CUBE",
	KindQuad:   "QUAD",
	KindSphere: "SPHERE",
	KindLight:  "LIGHT",
	KindModel:  "MODEL",
	KindNone:   "NONE",
}

// String returns the scene file name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "NONE"
}

// Valid reports whether k names a constructible variant
func (k Kind) Valid() bool {
	return k >= KindCube && k < KindNone
}

// ParseKind maps a scene file type string to a Kind. Anything outside the
// fixed table maps to KindNone.
func ParseKind(s string) Kind {
	switch s {
	case "CUBE":
		return KindCube
	case "QUAD":
		return KindQuad
	case "SPHERE":
		return KindSphere
	case "LIGHT":
		return KindLight
	case "MODEL":
		return KindModel
	}
	return KindNone
}
