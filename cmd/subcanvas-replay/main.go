// Command subcanvas-replay feeds a script of control messages to a worker
// and writes every canvas it ends up with to a PNG file.
//
// The script is JSON lines, one message per line, in the wire format of
// package protocol. Surfaces are created for init messages, and
// updateTexture messages are loaded from their URL before replay starts.
// Messages the worker sends back are printed to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/subcanvas"
	"github.com/gogpu/subcanvas/protocol"
	"github.com/gogpu/subcanvas/render"
	"github.com/gogpu/subcanvas/texcache"
	"github.com/gogpu/subcanvas/worker"
)

func main() {
	var (
		script   = flag.String("script", "-", "message script (JSON lines), - for stdin")
		config   = flag.String("config", "", "YAML config file")
		outDir   = flag.String("out", ".", "directory for PNG output")
		settle   = flag.Duration("settle", 500*time.Millisecond, "time to keep rendering after the last message")
		step     = flag.Duration("step", 0, "pause between messages")
		loads    = flag.Int("loads", 4, "concurrent texture loads")
		metrics  = flag.Bool("metrics", false, "print metrics to stderr on exit")
		logLevel = flag.String("log", "", "log level, overrides the config")
	)
	flag.Parse()

	cfg := subcanvas.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = subcanvas.LoadConfig(*config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := subcanvas.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	subcanvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	msgs, err := readScript(*script)
	if err != nil {
		log.Fatalf("Failed to read script: %v", err)
	}

	r := &replay{
		cfg:    cfg,
		outDir: *outDir,
		settle: *settle,
		step:   *step,
		reg:    prometheus.NewRegistry(),
	}
	if err := r.run(context.Background(), msgs, *loads); err != nil {
		log.Fatalf("Replay failed: %v", err)
	}
	if *metrics {
		if err := dumpMetrics(os.Stderr, r.reg); err != nil {
			log.Printf("Failed to write metrics: %v", err)
		}
	}
}

func readScript(path string) ([]protocol.Message, error) {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var msgs []protocol.Message
	rd := protocol.NewReader(in)
	for {
		m, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", len(msgs)+1, err)
		}
		msgs = append(msgs, m)
	}
}

type replay struct {
	cfg    subcanvas.Config
	outDir string
	settle time.Duration
	step   time.Duration
	reg    *prometheus.Registry

	outMu sync.Mutex
}

func (r *replay) run(ctx context.Context, msgs []protocol.Message, loads int) error {
	bitmaps, err := preload(ctx, msgs, loads)
	if err != nil {
		return err
	}

	out := protocol.NewWriter(os.Stdout)
	w, err := worker.New(r.cfg,
		worker.WithLoader(texcache.DecodeLoader{}),
		worker.WithRegisterer(r.reg),
		worker.WithOutbox(protocol.OutboxFunc(func(m protocol.Message) {
			r.outMu.Lock()
			defer r.outMu.Unlock()
			if err := out.Write(m); err != nil {
				subcanvas.Logger().Warn("replay: write outbound message", "err", err)
			}
		})),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for _, m := range msgs {
		if err := w.Post(ctx, attach(m, bitmaps)); err != nil {
			return err
		}
		if r.step > 0 {
			time.Sleep(r.step)
		}
	}
	time.Sleep(r.settle)

	var saveErr error
	if err := w.Do(ctx, func() { saveErr = r.save(w) }); err != nil {
		return err
	}
	cancel()
	<-done
	return saveErr
}

// attach gives init and updateTexture messages the values that do not
// travel in JSON.
func attach(m protocol.Message, bitmaps map[string]image.Image) protocol.Message {
	switch m := m.(type) {
	case protocol.Init:
		m.Surface = protocol.Own[render.Surface](render.NewPixmapTarget(m.Width, m.Height))
		return m
	case protocol.UpdateTexture:
		if img, ok := bitmaps[m.URL]; ok && !m.Failed {
			m.Bitmap = protocol.Own(img)
		} else {
			m.Failed = true
		}
		return m
	}
	return m
}

// preload decodes every updateTexture URL in the script. A URL that
// fails to load is left out; its message is then sent as failed.
func preload(ctx context.Context, msgs []protocol.Message, limit int) (map[string]image.Image, error) {
	var (
		mu   sync.Mutex
		imgs = make(map[string]image.Image)
		seen = make(map[string]bool)
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	loader := texcache.DecodeLoader{}
	for _, m := range msgs {
		up, ok := m.(protocol.UpdateTexture)
		if !ok || up.Failed || seen[up.URL] {
			continue
		}
		seen[up.URL] = true
		url := up.URL
		g.Go(func() error {
			img, err := loader.Load(ctx, url)
			if err != nil {
				subcanvas.Logger().Warn("replay: texture load failed", "url", url, "err", err)
				return nil
			}
			mu.Lock()
			imgs[url] = img
			mu.Unlock()
			return nil
		})
	}
	return imgs, g.Wait()
}

// save runs on the worker goroutine.
func (r *replay) save(w *worker.Worker) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return err
	}
	for _, e := range w.Registry().List() {
		path := filepath.Join(r.outDir, e.ID+".png")
		if err := render.SavePNG(path, e.Surface.Image()); err != nil {
			return fmt.Errorf("save %s: %w", e.ID, err)
		}
		log.Printf("Canvas %s saved to %s (%dx%d)\n", e.ID, path, e.Rect.Width, e.Rect.Height)
	}
	bb := w.Scheduler().BackBuffer()
	if !bb.Created() {
		return nil
	}
	path := filepath.Join(r.outDir, "backbuffer.png")
	if err := bb.Context().Target().SavePNG(path); err != nil {
		return fmt.Errorf("save back-buffer: %w", err)
	}
	return nil
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
