package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

// Version is set at build time via -ldflags
var Version = "dev"

// appRunner is the surface main dispatches to; *App implements it.
type appRunner interface {
	ApplyOptions(opts AppOptions)
	RunRender()
	RunService()
}

// run parses CLI arguments and dispatches to the appropriate app mode.
func run(args []string, out io.Writer, app appRunner) error {
	fs := flag.NewFlagSet("fiducials", flag.ContinueOnError)
	fs.SetOutput(out)

	configFile := fs.String("config", "config.yaml", "Path to configuration file")
	mapFile := fs.String("map", "", "Path to persisted map XML (default: from config)")
	renderOnly := fs.Bool("render", false, "Render the persisted map and exit")
	outputFile := fs.String("output", "fiducials-map.svg", "Output file for --render mode")
	renderFormat := fs.String("format", "svg", "Render format: svg or png")
	mqttMode := fs.Bool("mqtt", false, "Subscribe to camera frames and robot fixes over MQTT")
	httpMode := fs.Bool("http", false, "Enable HTTP server for map renderings and state")
	httpPort := fs.Int("http-port", 8080, "HTTP server port")
	rebuildInterval := fs.Duration("rebuild-interval", 10*time.Second, "How often to rebuild the map from accumulated measurements")

	if err := fs.Parse(args); err != nil {
		return err
	}

	app.ApplyOptions(AppOptions{
		ConfigFile:      *configFile,
		MapFile:         *mapFile,
		OutputFile:      *outputFile,
		RenderFormat:    *renderFormat,
		HTTPPort:        *httpPort,
		RebuildInterval: *rebuildInterval,
		MQTTMode:        *mqttMode,
		HTTPMode:        *httpMode,
	})

	if *renderOnly {
		app.RunRender()
		return nil
	}

	if *mqttMode || *httpMode {
		app.RunService()
		return nil
	}

	fmt.Fprintln(out, "fiducials service starting...")
	fmt.Fprintln(out, "Use --render to render the persisted map and exit")
	fmt.Fprintln(out, "Use --mqtt to consume camera frames over MQTT")
	fmt.Fprintln(out, "Use --http to serve map renderings over HTTP")
	fmt.Fprintln(out, "Use --mqtt --http to run both together")
	fmt.Fprintln(out, "\nConfiguration:")
	fmt.Fprintln(out, "  config.yaml - MQTT settings, camera geometry, tag height table")
	fmt.Fprintln(out, "  fiducials-map.xml - persisted tag map (written after rebuilds)")
	return nil
}

func main() {
	fmt.Printf("fiducials version: %s\n", Version)
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		os.Exit(2)
	}
}
