package impel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// IsValidFloat reports whether x is neither NaN nor an infinity.
func IsValidFloat(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// IsValidVec2 reports whether every component of v is finite.
func IsValidVec2(v mgl64.Vec2) bool {
	return IsValidFloat(v.X()) && IsValidFloat(v.Y())
}

// IsValidVec3 reports whether every component of v is finite.
func IsValidVec3(v mgl64.Vec3) bool {
	return IsValidFloat(v.X()) && IsValidFloat(v.Y()) && IsValidFloat(v.Z())
}

// IsValidQuat reports whether every component of q is finite.
func IsValidQuat(q mgl64.Quat) bool {
	return IsValidFloat(q.W) && IsValidVec3(q.V)
}

// Cross2 is the 2D cross product, a scalar.
func Cross2(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// CrossScalarVec2 is the cross product of the out-of-plane scalar s with a.
func CrossScalarVec2(s float64, a mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-s * a.Y(), s * a.X()}
}

// CrossVec2Scalar is the cross product of a with the out-of-plane scalar s.
func CrossVec2Scalar(a mgl64.Vec2, s float64) mgl64.Vec2 {
	return mgl64.Vec2{s * a.Y(), -s * a.X()}
}

// Skew returns the vector perpendicular to v such that
// dot(skew(v), w) == cross(v, w).
func Skew(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v.Y(), v.X()}
}

func minVec2(a, b mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y())}
}

func maxVec2(a, b mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y())}
}

func minVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()), math.Min(a.Z(), b.Z())}
}

func maxVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()), math.Max(a.Z(), b.Z())}
}

func absVec2(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{math.Abs(v.X()), math.Abs(v.Y())}
}

func absFloat(x float64) float64 {
	return math.Abs(x)
}

func clampFloat(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}

// Rot2 is a 2D rotation stored as sine and cosine.
type Rot2 struct {
	S, C float64
}

// MakeRot2 builds a rotation from an angle in radians.
func MakeRot2(angle float64) Rot2 {
	return Rot2{S: math.Sin(angle), C: math.Cos(angle)}
}

// Rot2Identity is the zero rotation.
func Rot2Identity() Rot2 {
	return Rot2{S: 0, C: 1}
}

// Angle returns the rotation angle in radians, in (-pi, pi].
func (r Rot2) Angle() float64 {
	return math.Atan2(r.S, r.C)
}

// XAxis returns the rotated x axis.
func (r Rot2) XAxis() mgl64.Vec2 {
	return mgl64.Vec2{r.C, r.S}
}

// YAxis returns the rotated y axis.
func (r Rot2) YAxis() mgl64.Vec2 {
	return mgl64.Vec2{-r.S, r.C}
}

// Rotate applies the rotation to v.
func (r Rot2) Rotate(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{r.C*v.X() - r.S*v.Y(), r.S*v.X() + r.C*v.Y()}
}

// RotateInv applies the inverse rotation to v.
func (r Rot2) RotateInv(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{r.C*v.X() + r.S*v.Y(), -r.S*v.X() + r.C*v.Y()}
}

// Mul composes two rotations: r then q.
func (r Rot2) Mul(q Rot2) Rot2 {
	return Rot2{
		S: r.S*q.C + r.C*q.S,
		C: r.C*q.C - r.S*q.S,
	}
}

// MulT composes the inverse of r with q.
func (r Rot2) MulT(q Rot2) Rot2 {
	return Rot2{
		S: r.C*q.S - r.S*q.C,
		C: r.C*q.C + r.S*q.S,
	}
}

// Transform2 is a 2D pose: a translation and a rotation.
type Transform2 struct {
	P mgl64.Vec2
	Q Rot2
}

// MakeTransform2 builds a pose from a position and an angle in radians.
func MakeTransform2(position mgl64.Vec2, angle float64) Transform2 {
	return Transform2{P: position, Q: MakeRot2(angle)}
}

// Transform2Identity is the identity pose.
func Transform2Identity() Transform2 {
	return Transform2{Q: Rot2Identity()}
}

// Apply maps a local point to world space.
func (t Transform2) Apply(v mgl64.Vec2) mgl64.Vec2 {
	return t.Q.Rotate(v).Add(t.P)
}

// ApplyInv maps a world point to local space.
func (t Transform2) ApplyInv(v mgl64.Vec2) mgl64.Vec2 {
	return t.Q.RotateInv(v.Sub(t.P))
}

// MulT returns the transform mapping t's local space into u's local space.
func (t Transform2) MulT(u Transform2) Transform2 {
	return Transform2{
		Q: t.Q.MulT(u.Q),
		P: t.Q.RotateInv(u.P.Sub(t.P)),
	}
}

// IsValid reports whether the pose has finite position and a normalized
// rotation.
func (t Transform2) IsValid() bool {
	if !IsValidVec2(t.P) || !IsValidFloat(t.Q.S) || !IsValidFloat(t.Q.C) {
		return false
	}
	n := t.Q.S*t.Q.S + t.Q.C*t.Q.C
	return math.Abs(n-1.0) < 1e-6
}

// Transform3 is a 3D pose: a translation and a unit quaternion.
type Transform3 struct {
	P mgl64.Vec3
	Q mgl64.Quat
}

// MakeTransform3 builds a pose from a position and an orientation.
func MakeTransform3(position mgl64.Vec3, orientation mgl64.Quat) Transform3 {
	return Transform3{P: position, Q: orientation}
}

// Transform3Identity is the identity pose.
func Transform3Identity() Transform3 {
	return Transform3{Q: mgl64.QuatIdent()}
}

// Apply maps a local point to world space.
func (t Transform3) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return t.Q.Rotate(v).Add(t.P)
}

// ApplyInv maps a world point to local space.
func (t Transform3) ApplyInv(v mgl64.Vec3) mgl64.Vec3 {
	return t.Q.Conjugate().Rotate(v.Sub(t.P))
}

// IsValid reports whether the pose has finite position and a near-unit
// orientation.
func (t Transform3) IsValid() bool {
	if !IsValidVec3(t.P) || !IsValidQuat(t.Q) {
		return false
	}
	return math.Abs(t.Q.Len()-1.0) < 1e-6
}

// QuatMat3 converts a unit quaternion to its rotation matrix.
func QuatMat3(q mgl64.Quat) mgl64.Mat3 {
	w, x, y, z := q.W, q.V.X(), q.V.Y(), q.V.Z()

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	// Column-major.
	return mgl64.Mat3{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy),
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx),
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy),
	}
}

// tangentBasis returns two unit vectors orthogonal to the unit normal n,
// chosen deterministically from n alone.
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(n.X()) >= 0.57735 {
		t1 = mgl64.Vec3{n.Y(), -n.X(), 0}
	} else {
		t1 = mgl64.Vec3{0, n.Z(), -n.Y()}
	}
	t1 = t1.Normalize()
	return t1, n.Cross(t1)
}
