package scene

import (
	"image/color"

	"cogentcore.org/core/math32"
)

// Node is an element of the scene tree. A node may carry a mesh (Geometry
// plus Material), a light, or nothing and only group its children.
type Node struct {
	Name     string
	Position math32.Vector3
	Rotation math32.Vector3 // Euler angles in radians, XYZ order
	Scale    math32.Vector3
	Visible  bool

	Geometry *Geometry
	Material Material
	Light    *DirectionalLight

	parent    *Node
	children  []*Node
	listeners Listeners
}

// NewNode returns a visible node with unit scale.
func NewNode(name string) *Node {
	return &Node{Name: name, Scale: math32.Vec3(1, 1, 1), Visible: true}
}

// NewMesh returns a node drawing g with material m.
func NewMesh(name string, g *Geometry, m Material) *Node {
	n := NewNode(name)
	n.Geometry = g
	n.Material = m
	return n
}

// Add appends child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Children returns the direct children of n.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the parent of n or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Listeners returns the node's event listeners.
func (n *Node) Listeners() *Listeners { return &n.listeners }

// On is shorthand for n.Listeners().On.
func (n *Node) On(typ EventType, fn func(Event)) ListenerID {
	return n.listeners.On(typ, fn)
}

// Local returns the node's transform relative to its parent.
func (n *Node) Local() math32.Matrix4 {
	var m math32.Matrix4
	m.SetTransform(n.Position, math32.NewQuatEuler(n.Rotation), n.Scale)
	return m
}

// World returns the node's transform relative to the scene root.
func (n *Node) World() math32.Matrix4 {
	m := n.Local()
	for p := n.parent; p != nil; p = p.parent {
		local := p.Local()
		var w math32.Matrix4
		w.MulMatrices(&local, &m)
		m = w
	}
	return m
}

// Scene is the root of a node tree with a background color.
// A zero Background is fully transparent.
type Scene struct {
	Root       *Node
	Background color.RGBA
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{Root: NewNode("root")}
}

// Add appends n to the scene root.
func (s *Scene) Add(n *Node) { s.Root.Add(n) }

// Walk visits every node depth-first, parents before children. Returning
// false from fn skips the node's children.
func (s *Scene) Walk(fn func(*Node) bool) {
	walk(s.Root, fn)
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range append([]*Node(nil), n.children...) {
		walk(c, fn)
	}
}

// Find returns the first node named name, or nil.
func (s *Scene) Find(name string) *Node {
	var found *Node
	s.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// NodeCount returns the number of nodes below the root.
func (s *Scene) NodeCount() int {
	count := -1
	s.Walk(func(*Node) bool { count++; return true })
	return count
}

// Dispatch pushes ev through every node of the scene: the node's own
// listeners first, then its material's, then its children.
func (s *Scene) Dispatch(ev Event) {
	s.Walk(func(n *Node) bool {
		n.listeners.Call(ev)
		if n.Material != nil {
			n.Material.Listeners().Call(ev)
		}
		return true
	})
}

// Lights returns every directional light in the scene with its world
// position.
func (s *Scene) Lights() []PlacedLight {
	var out []PlacedLight
	s.Walk(func(n *Node) bool {
		if n.Light != nil && n.Visible {
			w := n.World()
			out = append(out, PlacedLight{Light: n.Light, Position: math32.Vector3{}.MulMatrix4AsVector4(&w, 1)})
		}
		return n.Visible
	})
	return out
}
