// Package scene provides the small retained 3D scene graph each virtual
// canvas draws: a node tree with transforms, meshes, materials, a
// directional light and a perspective camera. Vectors and transforms are
// cogentcore math32 types.
//
// Every scene carries an event bus. Scene.Dispatch pushes a structured
// event (tick, updateProps, destroy, loadedTexture) through every node and
// every node's material, so components attach behavior by listening
// rather than by being called directly.
package scene
