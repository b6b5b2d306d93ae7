package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/irfansharif/neonglow/internal/app"
	"github.com/irfansharif/neonglow/internal/config"
	"github.com/irfansharif/neonglow/internal/render"
	"github.com/irfansharif/neonglow/internal/telemetry"
)

var runtimeLogger = zerolog.Nop()

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()

	if os.Getenv("NEONGLOW_DEBUG_RUNTIME") == "1" {
		runtimeLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("pkg", "runtime").Logger()
	}
}

// host bundles the window with everything the loop drives.
type host struct {
	Window    *glfw.Window
	Engine    *app.Engine
	Pipeline  *render.Pipeline
	View      *app.View
	Presenter *presenter
	Hub       *telemetry.Hub

	exportDir string
	last      *render.Buffer
}

func makeTitle(st app.Status, rs render.Stats) string {
	path := "CPU"
	if st.GPU {
		path = "GPU"
	}
	mode := "anti-neon"
	if st.Neon {
		mode = "neon"
	}
	return fmt.Sprintf("Neonglow (%s %s, %.1f FPS, skip %d, quality %d, %s, %.2fms/render, %d reused)",
		st.Hex,
		mode,
		st.FPS,
		st.SkipFrames,
		st.Quality,
		path,
		rs.LastRenderTimeMs,
		rs.FramesReused,
	)
}

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (optional)")
		useGPU     = flag.Bool("gpu", true, "render on the GPU when available")
		renderW    = flag.Int("render-width", 512, "render buffer width")
		renderH    = flag.Int("render-height", 512, "render buffer height")
		statusAddr = flag.String("status-addr", "", "serve the websocket status feed on this address (e.g. :8090)")
		exportDir  = flag.String("export-dir", ".", "directory for exported frames")
		startDemo  = flag.Bool("demo", false, "start in demo mode")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Configuration: defaults, then config.yaml, then flags, then environment ----
	cfg := config.Default()
	if *configPath != "" {
		if c, err := config.Load(*configPath); err != nil {
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults")
		} else {
			cfg = c
		}
	}
	var overrides config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "gpu":
			overrides.UseGPU = useGPU
		case "render-width":
			overrides.RenderWidth = renderW
		case "render-height":
			overrides.RenderHeight = renderH
		case "status-addr":
			overrides.StatusAddr = statusAddr
		}
	})
	cfg.Apply(overrides)
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	initial, err := cfg.State()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid initial color")
	}

	if err := glfw.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize GLFW")
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, "Neonglow", nil, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create window")
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize OpenGL")
	}
	pres, err := newPresenter()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build presenter")
	}

	engine := app.NewEngine(app.Options{
		Initial:         &initial,
		Presets:         cfg.Registry(),
		DefaultDuration: cfg.DefaultDuration(),
		DemoCycle:       cfg.DemoCycle(),
		DemoStep:        cfg.DemoStep(),
	})
	pipeline, err := render.NewPipeline(cfg.Render.Width, cfg.Render.Height, cfg.UseGPU,
		render.WithFailureHandler(func(error) {
			window.SetTitle("Neonglow (GPU unavailable, using CPU)")
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create render pipeline")
	}

	cw, ch := window.GetFramebufferSize()
	h := &host{
		Window:    window,
		Engine:    engine,
		Pipeline:  pipeline,
		View:      app.NewView(cw, ch),
		Presenter: pres,
		exportDir: *exportDir,
	}
	defer h.cleanup()

	var srv *http.Server
	if cfg.StatusAddr != "" {
		h.Hub = telemetry.NewHub()
		srv = telemetry.Serve(cfg.StatusAddr, h.Hub)
		log.Info().Str("addr", cfg.StatusAddr).Msg("status feed at /status")
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			h.Hub.Close()
			_ = srv.Shutdown(ctx)
		}()
	}

	log.Info().
		Bool("gpu", cfg.UseGPU).
		Int("w", cfg.Render.Width).
		Int("h", cfg.Render.Height).
		Strs("presets", engine.ListPresetNames()).
		Msg("starting")

	eventHandlers := NewEventHandlers(h)
	if *startDemo {
		engine.StartDemo(time.Now())
	}

	frameInterval := cfg.FrameInterval()
	lastStatus := time.Now()

	// Main loop.
	for !h.Window.ShouldClose() {
		now := time.Now()

		eventHandlers.handleContinuousNudge(now)
		h.Engine.Tick(now)

		// Input and animation run every tick; rendering follows the pacer.
		if h.Engine.RenderTick() {
			buf := h.Pipeline.RenderFrame(h.Engine.Frame(now))
			h.Presenter.upload(buf)
			h.last = buf
			h.Engine.RecordRender(now)
		}

		fw, fh := h.Window.GetFramebufferSize()
		h.Presenter.draw(h.View.Placement(cfg.Render.Width, cfg.Render.Height), fw, fh)
		h.Window.SwapBuffers()
		glfw.PollEvents()

		if now.Sub(lastStatus) >= time.Second {
			lastStatus = now
			h.reportStatus(now)
		}

		if d := frameInterval - time.Since(now); d > 0 {
			time.Sleep(d)
		}
	}
}

// reportStatus updates the title, the debug log and the status feed.
func (h *host) reportStatus(now time.Time) {
	st := h.Engine.Status(now)
	rs := h.Pipeline.Stats()
	st.GPU = h.Pipeline.UsingGPU()
	st.Backend = rs.Backend.String()

	h.Window.SetTitle(makeTitle(st, rs))

	runtimeLogger.Debug().
		Str("hex", st.Hex).
		Bool("neon", st.Neon).
		Float64("fps", st.FPS).
		Int("skip", st.SkipFrames).
		Int("quality", st.Quality).
		Str("backend", st.Backend).
		Int("rendered", rs.FramesRendered).
		Int("reused", rs.FramesReused).
		Int("gpu_frames", rs.GPUFrames).
		Int("cpu_frames", rs.CPUFrames).
		Float64("render_ms", rs.LastRenderTimeMs).
		Msg("performance")

	if h.Hub != nil {
		if err := h.Hub.Broadcast(st); err != nil {
			log.Warn().Err(err).Msg("status broadcast failed")
		}
	}
}

func (h *host) cleanup() {
	h.Pipeline.Cleanup()
	h.Presenter.release()
}
