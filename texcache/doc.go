// Package texcache holds decoded motif textures by URL.
//
// A URL moves from absent to pending when first requested and then to
// exactly one of ready or failed. Decoding happens at most once per URL,
// either inside the worker through a Loader or on the control side, whose
// result arrives through Ingest. Every scene learns about a resolution
// through a scene.TextureEvent broadcast; code that asked for a URL
// through Request is also called back once.
package texcache
