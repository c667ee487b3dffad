package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeradesign/fiducials/tagmap"
)

// App encapsulates the application state and dependencies.
type App struct {
	Config    *tagmap.Config
	Tracker   *tagmap.Tracker
	MQTT      *tagmap.MQTTClient
	Publisher *tagmap.Publisher

	// CLI flags (effectively dependencies)
	ConfigFile      string
	MapFile         string
	OutputFile      string
	RenderFormat    string
	HTTPPort        int
	RebuildInterval time.Duration
	MQTTMode        bool
	HTTPMode        bool
}

// AppOptions carries parsed CLI options into the App.
type AppOptions struct {
	ConfigFile      string
	MapFile         string
	OutputFile      string
	RenderFormat    string
	HTTPPort        int
	RebuildInterval time.Duration
	MQTTMode        bool
	HTTPMode        bool
}

// NewApp creates a new App instance.
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance.
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.MapFile = opts.MapFile
	a.OutputFile = opts.OutputFile
	a.RenderFormat = opts.RenderFormat
	a.HTTPPort = opts.HTTPPort
	a.RebuildInterval = opts.RebuildInterval
	a.MQTTMode = opts.MQTTMode
	a.HTTPMode = opts.HTTPMode
}

// loadConfig loads the YAML config and builds the height table.
func (a *App) loadConfig() tagmap.HeightTable {
	config, err := tagmap.LoadConfig(a.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	a.Config = config
	log.Printf("Loaded config from %s", a.ConfigFile)

	heights, err := tagmap.NewHeightTable(config.TagHeights)
	if err != nil {
		log.Fatalf("Invalid tag height table: %v", err)
	}
	return heights
}

// mapFilePath resolves the persisted map path: CLI flag wins over config.
func (a *App) mapFilePath() string {
	if a.MapFile != "" {
		return a.MapFile
	}
	return a.Config.MapFile
}

// RunRender loads the persisted map, rebuilds it, and writes a rendering to
// the output file.
func (a *App) RunRender() {
	heights := a.loadConfig()

	m, err := tagmap.Load(a.mapFilePath(), heights)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}
	m.Rebuild()

	f, err := os.Create(a.OutputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	r := tagmap.NewVectorRenderer(m)
	switch a.RenderFormat {
	case "svg":
		err = r.RenderToSVG(f)
	case "png":
		err = r.RenderToPNG(f)
	default:
		log.Fatalf("Unknown render format %q (want svg or png)", a.RenderFormat)
	}
	if err != nil {
		log.Fatalf("Failed to render map: %v", err)
	}

	fmt.Printf("Rendered %d tags to %s\n", m.TagCount(), a.OutputFile)
}

// RunService runs the live mapping service: MQTT frames refine the map, a
// periodic rebuild propagates poses and publishes them, and the HTTP
// server exposes renderings and state.
func (a *App) RunService() {
	heights := a.loadConfig()

	tracker, err := tagmap.NewTracker(tagmap.NewMap(heights), a.mapFilePath(), heights)
	if err != nil {
		log.Fatalf("Failed to load persisted map: %v", err)
	}
	a.Tracker = tracker

	if a.MQTTMode {
		client, err := tagmap.InitMQTT(a.Config,
			func(raw []byte, frame *tagmap.Frame, err error) {
				if err != nil {
					return
				}
				if n := a.Tracker.HandleFrame(frame); n > 0 {
					log.Printf("Frame with %d observations updated %d arcs",
						len(frame.Observations), n)
				}
			},
			func(fix *tagmap.LocationFix) {
				a.Tracker.AddFix(*fix)
			})
		if err != nil {
			log.Fatalf("Failed to initialize MQTT: %v", err)
		}
		a.MQTT = client
		if client != nil {
			a.Publisher = tagmap.NewPublisher(client.Client(), a.Config.MQTT.PublishPrefix)
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	interval := a.RebuildInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if !a.Tracker.Rebuild() {
				continue
			}
			tags, arcs := a.Tracker.Counts()
			log.Printf("Rebuilt map: %d tags, %d arcs", tags, arcs)

			if a.Publisher != nil {
				if n, err := a.Tracker.PublishPoses(a.Publisher); err != nil {
					log.Printf("Error publishing tag poses: %v", err)
				} else {
					log.Printf("Published %d tag poses", n)
				}
			}
			if err := a.Tracker.SaveMap(); err != nil {
				log.Printf("Error saving map: %v", err)
			}
		}
	}()

	if a.HTTPMode {
		handler := newHTTPServer(a.Tracker)
		addr := fmt.Sprintf(":%d", a.HTTPPort)
		server := &http.Server{Addr: addr, Handler: handler}
		go func() {
			log.Printf("HTTP server listening on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("HTTP server error: %v", err)
			}
		}()
	}

	<-stop
	log.Println("Shutting down...")

	a.Tracker.Rebuild()
	if err := a.Tracker.SaveMap(); err != nil {
		log.Printf("Error saving map on shutdown: %v", err)
	}
	a.MQTT.Disconnect()
}
