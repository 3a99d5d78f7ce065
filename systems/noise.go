package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Noise is seeded 3D gradient noise. Agents sample it along (ID, time) to
// get a smooth per-agent wander that is reproducible for a given seed.
type Noise struct {
	perm [512]int
}

// NewNoise builds the permutation table from seed.
func NewNoise(seed int64) *Noise {
	n := &Noise{}
	rng := rand.New(rand.NewSource(seed))
	base := rng.Perm(256)
	for i := range n.perm {
		n.perm[i] = base[i&255]
	}
	return n
}

// Edge midpoints of the unit cube, the classic gradient set.
var gradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// Sample returns the noise value at (x, y, z), roughly in [-1, 1].
func (n *Noise) Sample(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	ix, iy, iz := int(fx)&255, int(fy)&255, int(fz)&255
	x, y, z = x-fx, y-fy, z-fz

	var corners [8]float64
	for k := range corners {
		dx, dy, dz := k&1, (k>>1)&1, (k>>2)&1
		h := n.perm[n.perm[n.perm[ix+dx]+iy+dy]+iz+dz]
		g := gradients[h%12]
		corners[k] = g[0]*(x-float64(dx)) + g[1]*(y-float64(dy)) + g[2]*(z-float64(dz))
	}

	u, v, w := smoothstep(x), smoothstep(y), smoothstep(z)
	x00 := lerp(u, corners[0], corners[1])
	x10 := lerp(u, corners[2], corners[3])
	x01 := lerp(u, corners[4], corners[5])
	x11 := lerp(u, corners[6], corners[7])
	return lerp(w, lerp(v, x00, x10), lerp(v, x01, x11))
}

// Jitter returns a wander vector for agent id at time t. Each component is
// clamped to [-1, 1].
func (n *Noise) Jitter(id uint32, t float64) r2.Vec {
	s := float64(id) * 0.618
	return r2.Vec{
		X: clampUnit(n.Sample(s, t, 0.5)),
		Y: clampUnit(n.Sample(s, t, 17.5)),
	}
}

func smoothstep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
