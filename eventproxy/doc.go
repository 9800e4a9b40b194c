// Package eventproxy stands in for control-side elements inside the
// worker. Each virtual canvas gets a Proxy that keeps the element's last
// known geometry and re-dispatches relayed pointer and keyboard events to
// listeners registered through the InputTarget interface.
package eventproxy
