package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/warehouse-sim/backend/internal/api"
	"github.com/warehouse-sim/backend/internal/config"
	"github.com/warehouse-sim/backend/internal/engine"
	"github.com/warehouse-sim/backend/internal/layout"
	"github.com/warehouse-sim/backend/internal/models"
	"github.com/warehouse-sim/backend/internal/notify"
	"github.com/warehouse-sim/backend/internal/orders"
	"github.com/warehouse-sim/backend/internal/planner"
	"github.com/warehouse-sim/backend/internal/sim"
	"github.com/warehouse-sim/backend/internal/telemetry"
	"github.com/warehouse-sim/backend/internal/timing"
	"github.com/warehouse-sim/backend/internal/trail"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env is optional; environment overrides still apply without it
	_ = godotenv.Load()

	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration; bad timing values abort here, never mid-route
	configPath := filepath.Join(exeDir, "WarehouseSimulator.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Optional layout rules file (excluded cells, dashboard zones)
	var rules *layout.Rules
	if cfg.Storage.LayoutRulesFile != "" {
		rules, err = layout.ParseRules(cfg.Storage.LayoutRulesFile)
		if err != nil {
			fmt.Printf("Failed to load layout rules: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Layout rules loaded: %s (%d excluded cells)\n", rules.Name, len(rules.ExcludedCells))
	}

	// Random source: seeded for reproducible runs when configured
	seed := cfg.Simulation.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Build the simulation core
	catalog := orders.NewCatalog(rules)
	generator := orders.NewGenerator(cfg.GeneratorConfig(), catalog, rng)
	timingMgr := timing.NewManager(cfg.TimingConfig())
	calculator := planner.NewCalculator(timingMgr)
	trailMgr := trail.NewManager(cfg.TrailSettings())

	eng := engine.New(cfg.EngineConfig(), calculator, timingMgr, catalog, generator, rng)
	eng.AttachTrail(trailMgr)

	runner := sim.NewRunner(cfg.SimConfig(), eng, generator, trailMgr, timingMgr)

	// Telemetry event store
	store, err := telemetry.NewStore(cfg.GetDataDir())
	if err != nil {
		fmt.Printf("Failed to initialize telemetry store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// Optional MQTT notification sink
	var notifier *notify.Notifier
	if cfg.Notifier.Broker != "" {
		notifier, err = notify.NewNotifier(cfg.NotifierSettings())
		if err != nil {
			fmt.Printf("Warning: MQTT notifier unavailable: %v\n", err)
		} else {
			defer notifier.Close()
		}
	}

	// WebSocket live feed
	wsHandler := api.NewWebSocketHandler(runner)

	// Fan engine events out to every sink
	eng.SetSink(func(ev models.Event) {
		store.Record(ev)
		wsHandler.BroadcastEvent(ev)
		if notifier != nil {
			notifier.Publish(ev)
		}
	})

	runner.Start()
	defer runner.Stop()

	snapshotStop := make(chan struct{})
	go wsHandler.StartSnapshotLoop(200*time.Millisecond, snapshotStop)
	defer close(snapshotStop)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") ||
				strings.HasPrefix(path, "/api/trail") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API routes
	handlers := api.NewHandlers(&api.Dependencies{
		Controller: runner,
		Calculator: calculator,
		KPIs:       store,
		Version:    Version,
	})
	api.RegisterRoutes(e, handlers)
	e.GET("/api/ws/live", wsHandler.HandleWebSocket)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Warehouse Robot Simulator                       ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Grid:       %-45s║\n", fmt.Sprintf("%d aisles x %d racks", models.MaxAisle, models.MaxRack))
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		fmt.Println("Shutting down...")
		runner.Stop()
		store.Close()
		e.Close()
	}()

	e.Logger.Fatal(e.StartServer(s))
}
