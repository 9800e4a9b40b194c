package scene

import "cogentcore.org/core/math32"

// Vertex is a mesh vertex with a normal and a texture coordinate.
type Vertex struct {
	Position math32.Vector3
	Normal   math32.Vector3
	UV       math32.Vector2
}

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Triangles returns the number of triangles.
func (g *Geometry) Triangles() int { return len(g.Indices) / 3 }

// AddQuad appends an axis-aligned quad in the XY plane at depth z,
// facing +Z. uv runs from (0,0) at the top-left to (1,1) at the
// bottom-right.
func (g *Geometry) AddQuad(x0, y0, x1, y1, z float32) {
	g.AddQuadUV(x0, y0, x1, y1, z, math32.Vec2(0, 0), math32.Vec2(1, 1))
}

// AddQuadUV is AddQuad with an explicit uv rectangle. uvMin maps to the
// top-left corner (x0, y1).
func (g *Geometry) AddQuadUV(x0, y0, x1, y1, z float32, uvMin, uvMax math32.Vector2) {
	base := uint32(len(g.Vertices))
	n := math32.Vec3(0, 0, 1)
	g.Vertices = append(g.Vertices,
		Vertex{Position: math32.Vec3(x0, y1, z), Normal: n, UV: math32.Vec2(uvMin.X, uvMin.Y)},
		Vertex{Position: math32.Vec3(x1, y1, z), Normal: n, UV: math32.Vec2(uvMax.X, uvMin.Y)},
		Vertex{Position: math32.Vec3(x1, y0, z), Normal: n, UV: math32.Vec2(uvMax.X, uvMax.Y)},
		Vertex{Position: math32.Vec3(x0, y0, z), Normal: n, UV: math32.Vec2(uvMin.X, uvMax.Y)},
	)
	g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
}

// NewPlane returns a single quad of the given size centred on the origin.
func NewPlane(width, height float32) *Geometry {
	g := &Geometry{}
	g.AddQuad(-width/2, -height/2, width/2, height/2, 0)
	return g
}
