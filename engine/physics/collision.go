package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	maxManifoldPoints = 4

	// Boxes closer than this are reported as touching so resting contacts exist before
	// gravity pushes them into overlap.
	contactMargin float32 = 0.01
)

type aabb struct {
	min, max mgl32.Vec3
}

func (a aabb) overlaps(b aabb) bool {
	return a.min.X() <= b.max.X() && a.max.X() >= b.min.X() &&
		a.min.Y() <= b.max.Y() && a.max.Y() >= b.min.Y() &&
		a.min.Z() <= b.max.Z() && a.max.Z() >= b.min.Z()
}

func (a aabb) expand(d float32) aabb {
	e := mgl32.Vec3{d, d, d}
	return aabb{min: a.min.Sub(e), max: a.max.Add(e)}
}

// bodyPair is a broad-phase candidate with a < b in slot order.
type bodyPair struct {
	a, b uint32
}

type contactPoint struct {
	point mgl32.Vec3
	// penetration is negative while the boxes are still apart by less than contactMargin.
	penetration float32
	// localA is the point in a's body frame, used to carry impulses over to the next step.
	localA mgl32.Vec3

	rA mgl32.Vec3
	rB mgl32.Vec3

	normalMass   float32
	tangentMass  [2]float32
	velocityBias float32

	normalImpulse  float32
	tangentImpulse [2]float32
}

// manifold holds the contacts between two boxes. normal points from b towards a.
type manifold struct {
	hit         bool
	a, b        uint32
	normal      mgl32.Vec3
	tangents    [2]mgl32.Vec3
	penetration float32
	friction    float32
	restitution float32
	invIA       mgl32.Mat3
	invIB       mgl32.Mat3
	points      [maxManifoldPoints]contactPoint
	count       int
}

type axisKind int

const (
	axisFaceA axisKind = iota
	axisFaceB
	axisEdge
)

func boxAxes(rot mgl32.Quat) [3]mgl32.Vec3 {
	m := rot.Mat4()
	return [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
}

// worldBounds returns the world-space AABB enclosing the body's oriented box.
func worldBounds(b *rigidBody) aabb {
	axes := boxAxes(b.rot)
	var ext mgl32.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ext[i] += math32.Abs(axes[j][i]) * b.halfExtents[j]
		}
	}
	return aabb{min: b.pos.Sub(ext), max: b.pos.Add(ext)}
}

// projectedOverlap returns how far the two boxes overlap when projected onto axis.
// A negative result is the gap between them along that axis.
func projectedOverlap(a, b *rigidBody, axesA, axesB [3]mgl32.Vec3, axis, delta mgl32.Vec3) float32 {
	var projA, projB float32
	for i := 0; i < 3; i++ {
		projA += math32.Abs(axesA[i].Dot(axis)) * a.halfExtents[i]
		projB += math32.Abs(axesB[i].Dot(axis)) * b.halfExtents[i]
	}
	return projA + projB - math32.Abs(delta.Dot(axis))
}

// collideBoxes runs a separating-axis test between two oriented boxes and fills m when they
// overlap or lie within contactMargin of each other.
// Face axes are preferred over edge cross products unless an edge axis is clearly shallower.
// Face contacts clip the incident face against the reference face and keep at most four points.
func collideBoxes(a, b *rigidBody, m *manifold) bool {
	axesA := boxAxes(a.rot)
	axesB := boxAxes(b.rot)
	delta := b.pos.Sub(a.pos)

	bestScore := float32(math32.MaxFloat32)
	var (
		minOverlap float32
		normal     mgl32.Vec3
		kind       axisKind
		edgeA      int
		edgeB      int
	)

	test := func(axis mgl32.Vec3, k axisKind, i, j int, bias float32) bool {
		overlap := projectedOverlap(a, b, axesA, axesB, axis, delta)
		if overlap <= -contactMargin {
			return false
		}
		score := overlap*bias + (bias-1)*contactMargin
		if score < bestScore {
			bestScore = score
			minOverlap = overlap
			normal = axis
			kind, edgeA, edgeB = k, i, j
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(axesA[i], axisFaceA, i, 0, 1) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		if !test(axesB[i], axisFaceB, i, 0, 1) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := axesA[i].Cross(axesB[j])
			if cross.LenSqr() <= 1e-4 {
				continue
			}
			if !test(cross.Normalize(), axisEdge, i, j, 1.05) {
				return false
			}
		}
	}

	if delta.Dot(normal) > 0 {
		normal = normal.Mul(-1)
	}

	m.hit = true
	m.normal = normal
	m.tangents = tangentBasis(normal)
	m.penetration = minOverlap
	m.friction = math32.Sqrt(a.friction * b.friction)
	m.restitution = max(a.restitution, b.restitution)
	m.count = 0

	switch kind {
	case axisFaceA:
		// a's face points towards b, against the manifold normal
		faceContacts(a, axesA, b, axesB, normal.Mul(-1), m)
	case axisFaceB:
		faceContacts(b, axesB, a, axesA, normal, m)
	default:
		edgeContact(a, axesA, edgeA, b, axesB, edgeB, normal, minOverlap, m)
	}
	if m.count == 0 {
		m.points[0] = contactPoint{point: a.pos.Add(b.pos).Mul(0.5), penetration: minOverlap}
		m.count = 1
	}

	inv := a.rot.Conjugate()
	for c := 0; c < m.count; c++ {
		m.points[c].localA = inv.Rotate(m.points[c].point.Sub(a.pos))
	}
	return true
}

// faceContacts clips the face of inc that faces ref against ref's face with outward normal
// closest to n, and writes the points below that face (within contactMargin) into m.
func faceContacts(ref *rigidBody, refAxes [3]mgl32.Vec3, inc *rigidBody, incAxes [3]mgl32.Vec3, n mgl32.Vec3, m *manifold) {
	r := dominantAxis(refAxes, n)
	faceN := refAxes[r]
	if faceN.Dot(n) < 0 {
		faceN = faceN.Mul(-1)
	}
	faceC := ref.pos.Add(faceN.Mul(ref.halfExtents[r]))

	k := dominantAxis(incAxes, faceN)
	incN := incAxes[k]
	if incN.Dot(faceN) > 0 {
		incN = incN.Mul(-1)
	}
	incC := inc.pos.Add(incN.Mul(inc.halfExtents[k]))
	eu := incAxes[(k+1)%3].Mul(inc.halfExtents[(k+1)%3])
	ev := incAxes[(k+2)%3].Mul(inc.halfExtents[(k+2)%3])

	var bufA, bufB [8]mgl32.Vec3
	poly := append(bufA[:0],
		incC.Add(eu).Add(ev),
		incC.Sub(eu).Add(ev),
		incC.Sub(eu).Sub(ev),
		incC.Add(eu).Sub(ev),
	)
	out := bufB[:0]
	for _, side := range [2]int{(r + 1) % 3, (r + 2) % 3} {
		axis := refAxes[side]
		limit := ref.halfExtents[side] + 1e-4
		out = clipPolygon(poly, axis, axis.Dot(faceC)+limit, out[:0])
		poly, out = out, poly
		out = clipPolygon(poly, axis.Mul(-1), -axis.Dot(faceC)+limit, out[:0])
		poly, out = out, poly
	}

	var (
		pts   [8]mgl32.Vec3
		depth [8]float32
		count int
	)
	for _, p := range poly {
		sep := p.Sub(faceC).Dot(faceN)
		if sep > contactMargin {
			continue
		}
		// halfway between the incident point and the reference face
		pts[count] = p.Sub(faceN.Mul(sep * 0.5))
		depth[count] = -sep
		count++
	}

	idx, n4 := reduceContacts(pts[:count], depth[:count], faceN)
	for i := 0; i < n4; i++ {
		m.points[i] = contactPoint{point: pts[idx[i]], penetration: depth[idx[i]]}
	}
	m.count = n4
}

// edgeContact writes the midpoint of the closest points between the two crossing edges.
func edgeContact(a *rigidBody, axesA [3]mgl32.Vec3, i int, b *rigidBody, axesB [3]mgl32.Vec3, j int, n mgl32.Vec3, depth float32, m *manifold) {
	// a's edge lies on the side facing b (-n), b's edge on the side facing a (+n)
	pA := a.pos
	for k := 0; k < 3; k++ {
		if k == i {
			continue
		}
		if axesA[k].Dot(n) > 0 {
			pA = pA.Sub(axesA[k].Mul(a.halfExtents[k]))
		} else {
			pA = pA.Add(axesA[k].Mul(a.halfExtents[k]))
		}
	}
	pB := b.pos
	for k := 0; k < 3; k++ {
		if k == j {
			continue
		}
		if axesB[k].Dot(n) > 0 {
			pB = pB.Add(axesB[k].Mul(b.halfExtents[k]))
		} else {
			pB = pB.Sub(axesB[k].Mul(b.halfExtents[k]))
		}
	}

	dA, dB := axesA[i], axesB[j]
	w := pA.Sub(pB)
	d := dA.Dot(dB)
	c := dA.Dot(w)
	f := dB.Dot(w)

	var sA float32
	if denom := 1 - d*d; denom > 1e-6 {
		sA = (d*f - c) / denom
	}
	sA = mgl32.Clamp(sA, -a.halfExtents[i], a.halfExtents[i])
	sB := mgl32.Clamp(f+sA*d, -b.halfExtents[j], b.halfExtents[j])

	cA := pA.Add(dA.Mul(sA))
	cB := pB.Add(dB.Mul(sB))
	m.points[0] = contactPoint{point: cA.Add(cB).Mul(0.5), penetration: depth}
	m.count = 1
}

// dominantAxis returns the index of the axis most parallel (or anti-parallel) to dir.
func dominantAxis(axes [3]mgl32.Vec3, dir mgl32.Vec3) int {
	best, bestDot := 0, float32(-1)
	for i := 0; i < 3; i++ {
		if d := math32.Abs(axes[i].Dot(dir)); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best
}

// clipPolygon keeps the part of the convex polygon in where dot(planeN, p) <= offset.
func clipPolygon(in []mgl32.Vec3, planeN mgl32.Vec3, offset float32, out []mgl32.Vec3) []mgl32.Vec3 {
	if len(in) == 0 {
		return out
	}
	prev := in[len(in)-1]
	dPrev := planeN.Dot(prev) - offset
	for _, cur := range in {
		dCur := planeN.Dot(cur) - offset
		switch {
		case dPrev <= 0 && dCur <= 0:
			out = append(out, cur)
		case dPrev <= 0:
			out = append(out, prev.Add(cur.Sub(prev).Mul(dPrev/(dPrev-dCur))))
		case dCur <= 0:
			out = append(out, prev.Add(cur.Sub(prev).Mul(dPrev/(dPrev-dCur))), cur)
		}
		prev, dPrev = cur, dCur
	}
	return out
}

// reduceContacts picks up to four of the points: the deepest, the one farthest from it, and
// the two spanning the largest area on either side of that pair.
func reduceContacts(pts []mgl32.Vec3, depth []float32, n mgl32.Vec3) ([maxManifoldPoints]int, int) {
	var idx [maxManifoldPoints]int
	if len(pts) <= maxManifoldPoints {
		for i := range pts {
			idx[i] = i
		}
		return idx, len(pts)
	}

	i0 := 0
	for i := range pts {
		if depth[i] > depth[i0] {
			i0 = i
		}
	}
	i1 := i0
	var far float32
	for i := range pts {
		if d := pts[i].Sub(pts[i0]).LenSqr(); d > far {
			i1, far = i, d
		}
	}
	edge := pts[i1].Sub(pts[i0])
	i2, i3 := i0, i0
	var most, least float32
	for i := range pts {
		area := edge.Cross(pts[i].Sub(pts[i0])).Dot(n)
		if area > most {
			i2, most = i, area
		}
		if area < least {
			i3, least = i, area
		}
	}

	count := 0
	for _, i := range [4]int{i0, i1, i2, i3} {
		dup := false
		for k := 0; k < count; k++ {
			if idx[k] == i {
				dup = true
				break
			}
		}
		if !dup {
			idx[count] = i
			count++
		}
	}
	return idx, count
}

// tangentBasis returns two unit vectors orthogonal to n and to each other.
func tangentBasis(n mgl32.Vec3) [2]mgl32.Vec3 {
	var t1 mgl32.Vec3
	if math32.Abs(n.X()) >= 0.57735 {
		t1 = mgl32.Vec3{n.Y(), -n.X(), 0}
	} else {
		t1 = mgl32.Vec3{0, n.Z(), -n.Y()}
	}
	t1 = t1.Normalize()
	return [2]mgl32.Vec3{t1, n.Cross(t1)}
}
