package impel

import "math"

// Debug enables internal invariant assertions. Release builds leave it off and
// tolerate invariant violations as no-ops.
const Debug = false

func assert(a bool) {
	if Debug && !a {
		panic("impel: assertion failed")
	}
}

const maxFloat = math.MaxFloat64

// Epsilon treats near-zero separations as contact so that touching shapes do
// not jitter between contact and no-contact from floating point noise.
const Epsilon = 1e-9

// MaxManifoldPoints2 is the maximum number of contact points between two
// convex shapes in 2D. Two points fully describe an edge-edge contact patch.
const MaxManifoldPoints2 = 2

// MaxManifoldPoints3 is the maximum number of contact points between two
// convex shapes in 3D. Four points describe a face-face contact patch.
const MaxManifoldPoints3 = 4

// MaxPolygonVertices bounds the vertex count of a convex polygon or hull.
const MaxPolygonVertices = 8

// aabbExtension fattens bounds in the dynamic tree so a body can move a small
// amount without breaking the conservative-containment invariant mid-tick.
const aabbExtension = 0.1

// CombineRule selects how a material coefficient of two touching bodies is
// merged into one value for the contact.
type CombineRule uint8

const (
	// CombineMin takes the lower of the two coefficients.
	CombineMin CombineRule = iota
	// CombineMax takes the higher of the two coefficients.
	CombineMax
	// CombineAverage takes the arithmetic mean.
	CombineAverage
	// CombineMultiply takes the geometric mean, letting either body drive the
	// value toward zero (anything slides on ice).
	CombineMultiply
)

// Combine merges two material coefficients under the rule.
func (r CombineRule) Combine(a, b float64) float64 {
	switch r {
	case CombineMax:
		return math.Max(a, b)
	case CombineAverage:
		return 0.5 * (a + b)
	case CombineMultiply:
		return math.Sqrt(a * b)
	default:
		return math.Min(a, b)
	}
}

// Config carries the tuning parameters of the resolver and integrator.
// All fields have physically meaningful defaults; see DefaultConfig.
type Config struct {
	// VelocityIterations is the number of sequential impulse passes over the
	// manifold set per tick.
	VelocityIterations int

	// PositionIterations is the number of positional correction passes per
	// tick, applied after velocities are integrated.
	PositionIterations int

	// Baumgarte is the fraction of the remaining penetration corrected per
	// position pass. Values near 1 remove overlap in one step but overshoot.
	Baumgarte float64

	// LinearSlop is the penetration depth tolerated without positional
	// correction. Keeping a small overlap avoids jitter at rest.
	LinearSlop float64

	// MaxLinearCorrection caps the positional correction applied per pass to
	// prevent overshoot on deep penetrations.
	MaxLinearCorrection float64

	// VelocityThreshold is the approach speed below which a collision is
	// treated as inelastic regardless of restitution.
	VelocityThreshold float64

	// MaxTranslation and MaxRotation clamp per-tick motion so extreme
	// velocities cannot produce non-finite poses.
	MaxTranslation float64
	MaxRotation    float64

	// RestitutionRule combines the two bodies' restitution coefficients.
	RestitutionRule CombineRule

	// FrictionRule combines the two bodies' friction coefficients.
	FrictionRule CombineRule
}

// DefaultConfig returns the documented defaults: 8 velocity and 3 position
// iterations, 20% positional correction above a 0.01 slop, restitution
// combined by minimum and friction by geometric mean.
func DefaultConfig() Config {
	return Config{
		VelocityIterations:  8,
		PositionIterations:  3,
		Baumgarte:           0.2,
		LinearSlop:          0.01,
		MaxLinearCorrection: 0.2,
		VelocityThreshold:   1.0,
		MaxTranslation:      2.0,
		MaxRotation:         0.5 * math.Pi,
		RestitutionRule:     CombineMin,
		FrictionRule:        CombineMultiply,
	}
}
