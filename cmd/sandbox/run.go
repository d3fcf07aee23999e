package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-sandbox/engine"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/config"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/input"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/timestep"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
)

var (
	flagProfile        bool
	flagFramesInFlight int
	flagVSync          bool
	flagDebug          bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the sandbox window",
	Long: `Open the sandbox window and run until it is closed, Q is pressed or the
process is interrupted.

The tuning section of the configuration file is reloaded whenever the file
is saved while the sandbox runs.

Examples:
  sandbox run
  sandbox run --frames-in-flight 3 --vsync=false
  sandbox run --profile --stats-db stats.db`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagProfile, "profile", false, "Log frame statistics once per second")
	cmd.Flags().IntVar(&flagFramesInFlight, "frames-in-flight", 0, "Frames the CPU may record ahead of the GPU, 1-4 (default from config)")
	cmd.Flags().BoolVar(&flagVSync, "vsync", true, "Present with vsync (fifo) instead of immediate")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

func init() {
	addRunFlags(runCmd)
}

// loadConfig loads the configuration and applies command line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("frames-in-flight") {
		cfg.Render.FramesInFlight = flagFramesInFlight
	}
	if cmd.Flags().Changed("vsync") {
		cfg.Render.PresentMode = "immediate"
		if flagVSync {
			cfg.Render.PresentMode = "fifo"
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runSandbox(cmd *cobra.Command, args []string) error {
	level := log.InfoLevel
	if flagDebug {
		level = log.DebugLevel
	}
	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	}))
	logger := log.WithPrefix("sandbox")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	source := cfg.Source
	if source == "" {
		source = "embedded default"
	}
	logger.Info("configuration loaded", "source", source)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profilerOpts := []profiler.ProfilerBuilderOption{profiler.WithLogging(flagProfile)}
	if flagStatsDB != "" {
		store, err := profiler.OpenStore(flagStatsDB)
		if err != nil {
			return err
		}
		defer store.Close()
		profilerOpts = append(profilerOpts, profiler.WithStore(store))
	}
	prof := profiler.NewProfiler(profilerOpts...)

	events := input.NewQueue()
	w, err := window.NewWindow(events,
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer w.Close()

	backend, err := renderer.NewWGPURendererBackend(w.SurfaceDescriptor(), w.Width(), w.Height(),
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Render.PresentMode)),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Render.MSAA)),
	)
	if err != nil {
		return fmt.Errorf("create renderer backend: %w", err)
	}
	r := renderer.NewRenderer(backend,
		renderer.WithFramesInFlight(cfg.Render.FramesInFlight),
		renderer.WithClearColor(cfg.Render.ClearColor),
		renderer.WithSize(w.Width(), w.Height()),
	)

	sim := physics.NewSimulation(
		physics.WithGravity(cfg.Physics.GravityVec()),
		physics.WithVelocityIterations(cfg.Physics.VelocityIterations),
		physics.WithSleeping(cfg.Physics.Sleeping),
		physics.WithWorkers(cfg.Physics.Workers),
	)
	defer sim.Release()
	registry := scene.NewRegistry(sim,
		loader.NewLoader(loader.BackendTypeOBJ, loader.WithRoot(cfg.Assets.Root)),
		scene.WithTextureSink(r),
		scene.WithArchetypes(cfg.Assets.ArchetypeDefs()...),
	)
	spawned, err := scene.BuildDefaultLayout(registry, cfg.Spawn.Archetype)
	if err != nil {
		// the engine releases the renderer once Run starts
		r.Release()
		return err
	}
	logger.Info("scene built", "objects", spawned)

	if cfg.Source != "" {
		watcher, err := config.NewWatcher(cfg.Source, events)
		if err != nil {
			logger.Warn("tuning hot reload disabled", "err", err)
		} else {
			defer watcher.Close()
		}
	}

	accumulator := timestep.NewAccumulator(
		timestep.WithTickRate(cfg.Physics.TickRate),
		timestep.WithMaxFrameTime(cfg.Physics.MaxFrameTime()),
	)
	if clamp := accumulator.MaxFrameTime(); clamp > 0 {
		logger.Info("physics clamp", "step", accumulator.Step(), "maxFrameTime", clamp)
	} else {
		logger.Warn("physics accumulation unbounded", "step", accumulator.Step())
	}

	eng := engine.NewEngine(w, events, r, registry,
		engine.WithCamera(camera.NewCamera()),
		engine.WithAccumulator(accumulator),
		engine.WithSpawnController(scene.NewSpawnController(
			scene.WithSpawnArchetype(cfg.Spawn.Archetype),
			scene.WithSpawnOffsets(cfg.Spawn.Distance, cfg.Spawn.XOffset, cfg.Spawn.YOffset),
		)),
		engine.WithProfiler(prof),
		engine.WithTuning(cfg.Tuning),
		engine.WithFrameLimit(float64(cfg.Render.FrameLimit)),
		engine.WithTitle(cfg.Window.Title),
		engine.WithLogger(log.WithPrefix("engine")),
	)

	fmt.Println(controlsBanner(cfg))
	if err := eng.Run(ctx); err != nil {
		return err
	}

	if flagStatsDB != "" {
		logger.Info("frame statistics recorded", "session", prof.Session(), "db", flagStatsDB)
	}
	return nil
}
