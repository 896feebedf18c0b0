package gtex

// Component selects the source of one channel of a sampled texel.
type Component uint8

// Channel sources. ComponentIdentity keeps the channel in place.
const (
	ComponentIdentity Component = iota
	ComponentZero
	ComponentOne
	ComponentR
	ComponentG
	ComponentB
	ComponentA
)

// Swizzle remaps the channels seen by shaders through a sampling view.
// Attachment views always use Identity.
type Swizzle struct {
	R, G, B, A Component
}

// Identity leaves every channel in place.
var Identity = Swizzle{}

// IsIdentity reports whether s leaves every channel in place, including
// explicit self-mappings such as R->R.
func (s Swizzle) IsIdentity() bool {
	return (s.R == ComponentIdentity || s.R == ComponentR) &&
		(s.G == ComponentIdentity || s.G == ComponentG) &&
		(s.B == ComponentIdentity || s.B == ComponentB) &&
		(s.A == ComponentIdentity || s.A == ComponentA)
}
