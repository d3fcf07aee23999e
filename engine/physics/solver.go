package physics

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	penetrationSlop    float32 = 0.005
	baumgarte          float32 = 0.2
	maxPushVelocity    float32 = 1.0 // cap on the separation speed used to resolve overlap
	restitutionMinimum float32 = 1.0 // approach speed below which contacts do not bounce

	// contact points from consecutive steps closer than this (in a's body frame) are the same
	// point and carry their impulses over
	contactMatchDistance float32 = 0.05
	contactMatchNormal   float32 = 0.95
)

// contactKey identifies a pair across steps. Handles include the slot generation, so a pair's
// cached impulses never reach the next occupant of a freed slot.
type contactKey struct {
	a, b BodyHandle
}

// step advances the world by dt seconds. Caller must hold the write lock.
func (s *simulation) step(dt float32) {
	s.integrateForces(dt)
	s.broadPhase()
	s.narrowPhase()
	s.wakeContacts()
	s.prepareContacts(dt)
	s.warmStart()
	for i := 0; i < s.velocityIterations; i++ {
		s.solveVelocities()
	}
	s.integratePositions(dt)
	s.cacheContacts()
	if s.sleepingEnabled {
		s.updateSleep(dt)
	}
}

func (s *simulation) integrateForces(dt float32) {
	linScale := 1 / (1 + dt*s.linearDamping)
	angScale := 1 / (1 + dt*s.angularDamping)
	for i := range s.slots {
		slot := &s.slots[i]
		if !slot.alive || slot.body.kind != BodyKindDynamic || slot.body.sleeping {
			continue
		}
		b := &slot.body
		b.vel = b.vel.Add(s.gravity.Mul(dt)).Mul(linScale)
		b.angVel = b.angVel.Mul(angScale)
	}
}

// narrowPhase tests every candidate pair. Large pair sets are split into chunks across the
// worker pool; each chunk writes only its own result slots.
func (s *simulation) narrowPhase() {
	n := len(s.pairs)
	if cap(s.contacts) < n {
		s.contacts = make([]manifold, n)
	}
	s.contacts = s.contacts[:n]
	if n == 0 {
		return
	}

	if s.pool == nil || n < s.parallelThreshold {
		s.collideRange(0, n)
		return
	}

	chunk := (n + s.workers - 1) / s.workers
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		lo, hi := start, end
		wg.Add(1)
		id := taskID
		taskID++
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				s.collideRange(lo, hi)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *simulation) collideRange(lo, hi int) {
	for k := lo; k < hi; k++ {
		p := s.pairs[k]
		m := &s.contacts[k]
		m.hit = false
		m.a, m.b = p.a, p.b
		collideBoxes(&s.slots[p.a].body, &s.slots[p.b].body, m)
	}
}

// wakeContacts wakes sleeping bodies touched by an awake movable body.
func (s *simulation) wakeContacts() {
	if !s.sleepingEnabled {
		return
	}
	for k := range s.contacts {
		m := &s.contacts[k]
		if !m.hit {
			continue
		}
		a, b := &s.slots[m.a].body, &s.slots[m.b].body
		if a.sleeping && b.movable() && !b.sleeping {
			a.wake()
		}
		if b.sleeping && a.movable() && !a.sleeping {
			b.wake()
		}
	}
}

func (s *simulation) contactKey(m *manifold) contactKey {
	return contactKey{
		a: newBodyHandle(m.a, s.slots[m.a].generation),
		b: newBodyHandle(m.b, s.slots[m.b].generation),
	}
}

// prepareContacts computes per-point effective masses and velocity targets, and seeds each
// point's accumulated impulses from the matching point of the previous step.
//
// The velocity target is the larger of the restitution bounce and the overlap push. Overlap
// beyond penetrationSlop is removed at baumgarte/dt per second, capped at maxPushVelocity.
// Points still apart allow an approach speed that exactly closes the gap within the step.
func (s *simulation) prepareContacts(dt float32) {
	invDt := 1 / dt
	for k := range s.contacts {
		m := &s.contacts[k]
		if !m.hit {
			continue
		}
		a, b := &s.slots[m.a].body, &s.slots[m.b].body
		m.invIA, m.invIB = a.worldInvInertia(), b.worldInvInertia()

		var prev *manifold
		if idx, ok := s.previous[s.contactKey(m)]; ok {
			if old := &s.prevContacts[idx]; old.normal.Dot(m.normal) > contactMatchNormal {
				prev = old
			}
		}

		for c := 0; c < m.count; c++ {
			cp := &m.points[c]
			cp.rA = cp.point.Sub(a.pos)
			cp.rB = cp.point.Sub(b.pos)

			cp.normalMass = safeInv(effectiveMass(a, b, m.invIA, m.invIB, cp.rA, cp.rB, m.normal))
			for t := 0; t < 2; t++ {
				cp.tangentMass[t] = safeInv(effectiveMass(a, b, m.invIA, m.invIB, cp.rA, cp.rB, m.tangents[t]))
			}

			var bias float32
			switch {
			case cp.penetration < 0:
				bias = cp.penetration * invDt
			case cp.penetration > penetrationSlop:
				bias = min(baumgarte*invDt*(cp.penetration-penetrationSlop), maxPushVelocity)
			}
			vn := relativeVelocity(a, b, cp.rA, cp.rB).Dot(m.normal)
			if vn < -restitutionMinimum {
				bias = max(bias, -m.restitution*vn)
			}
			cp.velocityBias = bias

			cp.normalImpulse = 0
			cp.tangentImpulse = [2]float32{}
			if prev != nil {
				matchContact(cp, prev)
			}
		}
	}
}

// matchContact copies the impulses of the nearest point in prev, if one is close enough.
func matchContact(cp *contactPoint, prev *manifold) {
	best := -1
	bestDist := contactMatchDistance * contactMatchDistance
	for i := 0; i < prev.count; i++ {
		if d := prev.points[i].localA.Sub(cp.localA).LenSqr(); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return
	}
	cp.normalImpulse = prev.points[best].normalImpulse
	cp.tangentImpulse = prev.points[best].tangentImpulse
}

// warmStart applies the impulses carried over from the previous step.
func (s *simulation) warmStart() {
	for k := range s.contacts {
		m := &s.contacts[k]
		if !m.hit {
			continue
		}
		a, b := &s.slots[m.a].body, &s.slots[m.b].body
		for c := 0; c < m.count; c++ {
			cp := &m.points[c]
			p := m.normal.Mul(cp.normalImpulse).
				Add(m.tangents[0].Mul(cp.tangentImpulse[0])).
				Add(m.tangents[1].Mul(cp.tangentImpulse[1]))
			if p.LenSqr() == 0 {
				continue
			}
			applyImpulse(a, b, m.invIA, m.invIB, cp.rA, cp.rB, p)
		}
	}
}

func (s *simulation) solveVelocities() {
	for k := range s.contacts {
		m := &s.contacts[k]
		if !m.hit {
			continue
		}
		a, b := &s.slots[m.a].body, &s.slots[m.b].body

		for c := 0; c < m.count; c++ {
			cp := &m.points[c]

			// friction first so the non-penetration impulse has the last word
			maxFriction := m.friction * cp.normalImpulse
			for t := 0; t < 2; t++ {
				vt := relativeVelocity(a, b, cp.rA, cp.rB).Dot(m.tangents[t])
				lambda := -vt * cp.tangentMass[t]
				prev := cp.tangentImpulse[t]
				cp.tangentImpulse[t] = mgl32.Clamp(prev+lambda, -maxFriction, maxFriction)
				applyImpulse(a, b, m.invIA, m.invIB, cp.rA, cp.rB, m.tangents[t].Mul(cp.tangentImpulse[t]-prev))
			}

			vn := relativeVelocity(a, b, cp.rA, cp.rB).Dot(m.normal)
			lambda := (cp.velocityBias - vn) * cp.normalMass
			prev := cp.normalImpulse
			cp.normalImpulse = max(prev+lambda, 0)
			applyImpulse(a, b, m.invIA, m.invIB, cp.rA, cp.rB, m.normal.Mul(cp.normalImpulse-prev))
		}
	}
}

func (s *simulation) integratePositions(dt float32) {
	for i := range s.slots {
		slot := &s.slots[i]
		if !slot.alive || !slot.body.movable() || slot.body.sleeping {
			continue
		}
		b := &slot.body
		b.pos = b.pos.Add(b.vel.Mul(dt))
		if b.angVel.LenSqr() > 0 {
			spin := mgl32.Quat{W: 0, V: b.angVel}.Mul(b.rot).Scale(0.5 * dt)
			b.rot = b.rot.Add(spin).Normalize()
		}
	}
}

// cacheContacts keeps this step's manifolds for warm starting the next one.
func (s *simulation) cacheContacts() {
	clear(s.previous)
	for k := range s.contacts {
		if m := &s.contacts[k]; m.hit {
			s.previous[s.contactKey(m)] = k
		}
	}
	s.contacts, s.prevContacts = s.prevContacts, s.contacts
}

func (s *simulation) updateSleep(dt float32) {
	threshold := s.sleepThreshold * s.sleepThreshold
	for i := range s.slots {
		slot := &s.slots[i]
		if !slot.alive || slot.body.kind != BodyKindDynamic || slot.body.sleeping {
			continue
		}
		b := &slot.body
		if b.vel.LenSqr() < threshold && b.angVel.LenSqr() < threshold {
			b.idleTime += dt
			if b.idleTime >= s.sleepTime {
				b.sleeping = true
				b.vel = mgl32.Vec3{}
				b.angVel = mgl32.Vec3{}
			}
			continue
		}
		b.idleTime = 0
	}
}

func relativeVelocity(a, b *rigidBody, rA, rB mgl32.Vec3) mgl32.Vec3 {
	va := a.vel.Add(a.angVel.Cross(rA))
	vb := b.vel.Add(b.angVel.Cross(rB))
	return va.Sub(vb)
}

func effectiveMass(a, b *rigidBody, invIA, invIB mgl32.Mat3, rA, rB, dir mgl32.Vec3) float32 {
	rnA := rA.Cross(dir)
	rnB := rB.Cross(dir)
	k := a.invMass + b.invMass
	k += invIA.Mul3x1(rnA).Cross(rA).Dot(dir)
	k += invIB.Mul3x1(rnB).Cross(rB).Dot(dir)
	return k
}

// applyImpulse applies p to a and -p to b at the given contact offsets.
func applyImpulse(a, b *rigidBody, invIA, invIB mgl32.Mat3, rA, rB, p mgl32.Vec3) {
	if a.invMass > 0 {
		a.vel = a.vel.Add(p.Mul(a.invMass))
		a.angVel = a.angVel.Add(invIA.Mul3x1(rA.Cross(p)))
	}
	if b.invMass > 0 {
		b.vel = b.vel.Sub(p.Mul(b.invMass))
		b.angVel = b.angVel.Sub(invIB.Mul3x1(rB.Cross(p)))
	}
}
