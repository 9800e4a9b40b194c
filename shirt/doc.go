// Package shirt builds the scene each virtual canvas renders: a camera,
// a directional light, a procedural shirt silhouette and a decal showing
// the motif texture.
//
// The decal material follows the motif's texture state. A resolved
// texture is shown as is; a failed one gets a firebrick placeholder; while
// the texture is pending, or when there is no motif, a goldenrod
// placeholder rotates on every tick. The factory reports readiness
// (setShirtReady, setDecalReady) through a protocol.Outbox.
package shirt
