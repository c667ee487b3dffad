package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type mockApp struct {
	opts   AppOptions
	called map[string]bool
}

func newMockApp() *mockApp {
	return &mockApp{
		called: make(map[string]bool),
	}
}

func (m *mockApp) ApplyOptions(opts AppOptions) { m.opts = opts }
func (m *mockApp) RunRender()                   { m.called["RunRender"] = true }
func (m *mockApp) RunService()                  { m.called["RunService"] = true }

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedCalled string
		verifyOpts     func(*testing.T, AppOptions)
	}{
		{
			name:           "Render",
			args:           []string{"--render", "--output", "lab.svg", "--format", "svg"},
			expectedCalled: "RunRender",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.OutputFile != "lab.svg" {
					t.Errorf("expected OutputFile lab.svg, got %s", opts.OutputFile)
				}
				if opts.RenderFormat != "svg" {
					t.Errorf("expected RenderFormat svg, got %s", opts.RenderFormat)
				}
			},
		},
		{
			name:           "RenderPNG",
			args:           []string{"--render", "--format", "png", "--map", "/data/lab.xml"},
			expectedCalled: "RunRender",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.RenderFormat != "png" {
					t.Errorf("expected RenderFormat png, got %s", opts.RenderFormat)
				}
				if opts.MapFile != "/data/lab.xml" {
					t.Errorf("expected MapFile /data/lab.xml, got %s", opts.MapFile)
				}
			},
		},
		{
			name:           "MqttMode",
			args:           []string{"--mqtt", "--rebuild-interval", "5s"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.MQTTMode {
					t.Error("expected MQTTMode true")
				}
				if opts.RebuildInterval != 5*time.Second {
					t.Errorf("expected RebuildInterval 5s, got %v", opts.RebuildInterval)
				}
			},
		},
		{
			name:           "HttpMode",
			args:           []string{"--http", "--http-port", "9090"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.HTTPMode {
					t.Error("expected HTTPMode true")
				}
				if opts.HTTPPort != 9090 {
					t.Errorf("expected HTTPPort 9090, got %d", opts.HTTPPort)
				}
			},
		},
		{
			name:           "BothModes",
			args:           []string{"--mqtt", "--http", "--config", "lab.yaml"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.MQTTMode || !opts.HTTPMode {
					t.Error("expected both MQTTMode and HTTPMode true")
				}
				if opts.ConfigFile != "lab.yaml" {
					t.Errorf("expected ConfigFile lab.yaml, got %s", opts.ConfigFile)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newMockApp()
			var out bytes.Buffer
			err := run(tt.args, &out, app)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			if !app.called[tt.expectedCalled] {
				t.Errorf("expected %s to be called", tt.expectedCalled)
			}

			if tt.verifyOpts != nil {
				tt.verifyOpts(t, app.opts)
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{"--help"}, &out, app)
	if err == nil {
		t.Error("expected error from --help, got nil")
	}
	if !strings.Contains(out.String(), "Usage of fiducials") {
		t.Errorf("expected usage info in output, got: %s", out.String())
	}
}

func TestRun_Default(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{}, &out, app)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if app.called["RunRender"] || app.called["RunService"] {
		t.Error("no mode flags should print usage without dispatching")
	}
	if !strings.Contains(out.String(), "fiducials service starting") {
		t.Errorf("expected usage summary, got: %s", out.String())
	}
}
