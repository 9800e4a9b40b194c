// Package control is the page side of subcanvas.
//
// A Host gives each mounted canvas a uuid, sends the worker the init,
// move, props, input and destroy messages for it, decodes motifs and
// uploads each URL once, and keeps the readiness the worker reports so a
// caller can decide when to drop a canvas's cover. A cron job
// periodically unmounts canvases whose host element has gone.
package control
