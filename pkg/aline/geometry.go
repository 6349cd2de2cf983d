// Geometry helpers (C2): vector length, unit vector, and the two jerk-limited
// S-curve distance/velocity functions the region solver and backplanner
// build everything else on top of.
//
// Grounded on TinyG's mp_get_axis_vector_length/_mp_get_unit_vector
// (planner.c) for the vector helpers; the S-curve length/velocity relations
// come from the jerk-limited motion equations referenced in planner.c's
// mp_aline() header comment (Ed Red's ME537 course notes).
package aline

import (
	"math"

	"aline-planner/pkg/pool"
)

// AxisVectorLength returns the Cartesian distance between a and b.
func AxisVectorLength(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// UnitVector writes the unit-length direction from b to a into dst. dst, a,
// and b must have equal length; dst may be reused scratch from the
// Float64Slice pool.
func UnitVector(dst, a, b []float64) {
	length := AxisVectorLength(a, b)
	if length == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	for i := range dst {
		dst[i] = (a[i] - b[i]) / length
	}
}

// UnitVectorPooled computes the unit vector using pooled scratch and
// returns a pool-backed slice the caller must return with pool.PutFloat64Slice.
func UnitVectorPooled(a, b []float64) []float64 {
	dst := pool.GetFloat64Slice(len(a))
	UnitVector(dst, a, b)
	return dst
}

// Len returns the distance required for a jerk-limited S-curve velocity
// transition from Vi to Vf under jerk Jm:
//
//	len(Vi,Vf) = |Vf-Vi| * sqrt(|Vf-Vi| / Jm)
func Len(Vi, Vf, Jm float64) float64 {
	dV := math.Abs(Vf - Vi)
	if dV == 0 || Jm <= 0 {
		return 0
	}
	return dV * math.Sqrt(dV/Jm)
}

// Vel returns the velocity attainable after travelling distance L starting
// at V under jerk Jm, the inverse of Len:
//
//	vel(V,L) = Jm^(1/3) * L^(2/3) + V
func Vel(V, L, Jm float64) float64 {
	if L <= 0 {
		return V
	}
	if Jm <= 0 {
		return V
	}
	return math.Cbrt(Jm)*math.Pow(L, 2.0/3.0) + V
}

// CorneringFactor scales the entry velocity of a new move against the exit
// direction of the previous one: cos(acos(dot(u_prev,u_cur))/2). 1 for a
// straight join, 0 for a 180-degree reversal.
func CorneringFactor(uPrev, uCur []float64) float64 {
	dot := 0.0
	for i := range uPrev {
		dot += uPrev[i] * uCur[i]
	}
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return math.Cos(math.Acos(dot) / 2)
}
