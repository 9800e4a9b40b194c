package shirt

import "github.com/gogpu/subcanvas/scene"

// decalDepth keeps the decal just in front of the subject.
const decalDepth = 0.02

// subjectGeometry is a flat T-shaped silhouette facing +Z: a torso and
// two short sleeves.
func subjectGeometry() *scene.Geometry {
	g := &scene.Geometry{}
	g.AddQuad(-1, -1.5, 1, 1.1, 0)       // torso
	g.AddQuad(-1.8, 0.3, -1, 1.1, 0)     // left sleeve
	g.AddQuad(1, 0.3, 1.8, 1.1, 0)       // right sleeve
	g.AddQuad(-0.35, 1.1, 0.35, 1.25, 0) // collar
	return g
}

// decalGeometry sizes the decal quad: 2*scale wide, 2*scale/aspect tall,
// centred on the subject and shifted down by baseline.
func decalGeometry(scale, baseline, aspect float32) *scene.Geometry {
	if aspect <= 0 {
		aspect = 1
	}
	w := 2 * scale
	h := 2 * scale / aspect
	cy := -baseline
	g := &scene.Geometry{}
	g.AddQuad(-w/2, cy-h/2, w/2, cy+h/2, decalDepth)
	return g
}
