package mesh

import (
	"math"

	"github.com/soypat/techdraw/brep"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func lessEdge(a, b [2]int) int {
	if a[0] != b[0] {
		return a[0] - b[0]
	}
	return a[1] - b[1]
}

// adjacency returns the triangles sharing each edge and the edges in
// ascending order.
func (m *Mesh) adjacency() (map[[2]int][]int, [][2]int) {
	adj := make(map[[2]int][]int)
	for t, v := range m.Triangles {
		for j := 0; j < 3; j++ {
			k := edgeKey(v[j], v[(j+1)%3])
			adj[k] = append(adj[k], t)
		}
	}
	keys := make([][2]int, 0, len(adj))
	for k := range adj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, lessEdge)
	return adj, keys
}

// FeatureEdges returns the edges bounding a single triangle, shared by more
// than two, or between two triangles whose normals differ by more than angle
// degrees. Edges are returned in ascending vertex order.
func (m *Mesh) FeatureEdges(angle float64) [][2]int {
	cos := math.Cos(angle * math.Pi / 180)
	adj, keys := m.adjacency()
	var feats [][2]int
	for _, k := range keys {
		ts := adj[k]
		if len(ts) != 2 || r3.Dot(m.Normals[ts[0]], m.Normals[ts[1]]) < cos {
			feats = append(feats, k)
		}
	}
	return feats
}

// loop is a closed chain of vertex indices.
type loop []int

func (l loop) edges() [][2]int {
	out := make([][2]int, len(l))
	for i := range l {
		out[i] = edgeKey(l[i], l[(i+1)%len(l)])
	}
	return out
}

// loops splits feats into connected chains. Chains whose vertices all join
// exactly two edges are returned as loops, the edges of all other chains are
// returned as open.
func (m *Mesh) loops(feats [][2]int) (loops []loop, open [][2]int) {
	at := make(map[int][]int)
	for i, e := range feats {
		at[e[0]] = append(at[e[0]], i)
		at[e[1]] = append(at[e[1]], i)
	}
	seen := make([]bool, len(feats))
	for i := range feats {
		if seen[i] {
			continue
		}
		// Collect the component of edge i.
		var comp []int
		stack := []int{i}
		seen[i] = true
		closed := true
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, e)
			for _, v := range feats[e] {
				if len(at[v]) != 2 {
					closed = false
				}
				for _, n := range at[v] {
					if !seen[n] {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
		if !closed || len(comp) < 3 {
			slices.Sort(comp)
			for _, e := range comp {
				open = append(open, feats[e])
			}
			continue
		}
		loops = append(loops, walk(feats, at, i))
	}
	return loops, open
}

// walk follows a closed chain starting at edge start.
func walk(feats [][2]int, at map[int][]int, start int) loop {
	first := feats[start][0]
	l := loop{first}
	prev, cur := start, feats[start][1]
	for cur != first {
		l = append(l, cur)
		next := at[cur][0]
		if next == prev {
			next = at[cur][1]
		}
		prev = next
		if feats[next][0] == cur {
			cur = feats[next][1]
		} else {
			cur = feats[next][0]
		}
	}
	return l
}

type circle struct {
	center, axis r3.Vec
	radius       float64
	concave      bool
}

// fitCircle reports whether the loop lies on a circle and returns it. The
// circle is concave when the facets leaving the loop face its axis.
func (m *Mesh) fitCircle(l loop, adj map[[2]int][]int, opts Options) (circle, bool) {
	if len(l) < opts.MinCircleSegments {
		return circle{}, false
	}
	pts := make([]r3.Vec, len(l))
	var c, n r3.Vec
	for i, v := range l {
		pts[i] = m.Vertices[v]
		c = r3.Add(c, pts[i])
	}
	c = r3.Scale(1/float64(len(pts)), c)
	// Newell's method.
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	if r3.Norm(n) == 0 {
		return circle{}, false
	}
	axis := canonical(r3.Unit(n))
	radial := func(p r3.Vec) (r3.Vec, float64) {
		d := r3.Sub(p, c)
		h := r3.Dot(d, axis)
		return r3.Sub(d, r3.Scale(h, axis)), h
	}
	var r float64
	for _, p := range pts {
		d, _ := radial(p)
		r += r3.Norm(d)
	}
	r /= float64(len(pts))
	tol := opts.CircleTolerance * r
	if r == 0 {
		return circle{}, false
	}
	var turn float64
	for i, p := range pts {
		d, h := radial(p)
		if math.Abs(r3.Norm(d)-r) > tol || math.Abs(h) > tol {
			return circle{}, false
		}
		next, _ := radial(pts[(i+1)%len(pts)])
		turn += math.Atan2(r3.Dot(r3.Cross(d, next), axis), r3.Dot(d, next))
	}
	// A simple loop around the center turns once.
	if math.Abs(math.Abs(turn)-2*math.Pi) > 1e-6 {
		return circle{}, false
	}

	var in, out int
	for _, e := range l.edges() {
		for _, t := range adj[e] {
			nt := m.Normals[t]
			if math.Abs(r3.Dot(nt, axis)) > 0.5 {
				continue
			}
			d, _ := radial(m.centroid(t))
			if r3.Dot(nt, d) < 0 {
				in++
			} else {
				out++
			}
		}
	}
	return circle{center: c, axis: axis, radius: r, concave: in > out}, true
}

// canonical flips v so its largest component is positive.
func canonical(v r3.Vec) r3.Vec {
	a := []float64{v.X, v.Y, v.Z}
	big := 0
	for i := range a {
		if math.Abs(a[i]) > math.Abs(a[big]) {
			big = i
		}
	}
	if a[big] < 0 {
		return r3.Scale(-1, v)
	}
	return v
}

// cylinder is a set of coaxial circles of equal radius.
type cylinder struct {
	circles []circle
	edges   []brep.Edge
}

func cylinders(circles []circle, tol float64) []cylinder {
	var cyls []cylinder
next:
	for _, c := range circles {
		e := brep.NewCircle(c.center, c.axis, c.radius)
		for i := range cyls {
			if cyls[i].holds(c, tol) {
				cyls[i].circles = append(cyls[i].circles, c)
				cyls[i].edges = append(cyls[i].edges, e)
				continue next
			}
		}
		cyls = append(cyls, cylinder{circles: []circle{c}, edges: []brep.Edge{e}})
	}
	return cyls
}

func (c cylinder) base() circle { return c.circles[0] }

func (c cylinder) holds(o circle, tol float64) bool {
	b := c.base()
	if math.Abs(o.radius-b.radius) > tol*b.radius || math.Abs(r3.Dot(o.axis, b.axis)) < 1-1e-6 {
		return false
	}
	return c.offAxis(o.center) <= tol*b.radius
}

// offAxis returns the distance from p to the cylinder axis.
func (c cylinder) offAxis(p r3.Vec) float64 {
	b := c.base()
	d := r3.Sub(p, b.center)
	return r3.Norm(r3.Sub(d, r3.Scale(r3.Dot(d, b.axis), b.axis)))
}

// span returns the lowest and highest circle position along the axis.
func (c cylinder) span() (lo, hi float64) {
	b := c.base()
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, o := range c.circles {
		h := r3.Dot(r3.Sub(o.center, b.center), b.axis)
		lo, hi = math.Min(lo, h), math.Max(hi, h)
	}
	return lo, hi
}

func (c cylinder) face() brep.Face {
	b := c.base()
	var in int
	for _, o := range c.circles {
		if o.concave {
			in++
		}
	}
	lo, hi := c.span()
	mid := r3.Add(b.center, r3.Scale((lo+hi)/2, b.axis))
	surf := brep.Cylindrical(r3.Add(b.center, r3.Scale(lo, b.axis)), b.axis, b.radius, 2*in > len(c.circles))
	return brep.NewFace(surf, 2*math.Pi*b.radius*(hi-lo), mid, c.edges...)
}

// Patch is a connected set of coplanar triangles.
type Patch struct {
	Triangles []int
	Normal    r3.Vec
	Area      float64
	Centroid  r3.Vec
}

// Patches groups triangles into connected patches whose normals are within
// angle degrees of the first triangle of the patch.
func (m *Mesh) Patches(angle float64) []Patch {
	cos := math.Cos(angle * math.Pi / 180)
	adj, _ := m.adjacency()
	seen := make([]bool, len(m.Triangles))
	var patches []Patch
	for seed := range m.Triangles {
		if seen[seed] {
			continue
		}
		p := Patch{Normal: m.Normals[seed]}
		seen[seed] = true
		stack := []int{seed}
		var weighted r3.Vec
		for len(stack) > 0 {
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.Triangles = append(p.Triangles, t)
			a := m.area(t)
			p.Area += a
			weighted = r3.Add(weighted, r3.Scale(a, m.centroid(t)))
			v := m.Triangles[t]
			for j := 0; j < 3; j++ {
				ts := adj[edgeKey(v[j], v[(j+1)%3])]
				if len(ts) != 2 {
					continue
				}
				for _, n := range ts {
					if !seen[n] && r3.Dot(m.Normals[n], p.Normal) >= cos {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
		slices.Sort(p.Triangles)
		p.Centroid = r3.Scale(1/p.Area, weighted)
		patches = append(patches, p)
	}
	return patches
}

// onCylinder reports whether every vertex of p lies on the wall of one of
// cyls.
func (p Patch) onCylinder(m *Mesh, cyls []cylinder, tol float64) bool {
	for _, c := range cyls {
		lo, hi := c.span()
		b := c.base()
		on := true
		for _, t := range p.Triangles {
			for _, v := range m.Triangles[t] {
				q := m.Vertices[v]
				h := r3.Dot(r3.Sub(q, b.center), b.axis)
				if math.Abs(c.offAxis(q)-b.radius) > tol*b.radius || h < lo-tol*b.radius || h > hi+tol*b.radius {
					on = false
					break
				}
			}
			if !on {
				break
			}
		}
		if on {
			return true
		}
	}
	return false
}

func (p Patch) face() brep.Face {
	return brep.NewFace(brep.Planar(p.Centroid, p.Normal), p.Area, p.Centroid)
}
