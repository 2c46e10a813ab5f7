package main

import (
	"log/slog"
	"sync"

	"github.com/chazu/polymesh/pkg/config"
	"github.com/chazu/polymesh/pkg/engine"
	"github.com/chazu/polymesh/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the script pipeline: evaluate, validate, tessellate. Calls to
// Evaluate are serialized; zygomys sandboxes share global state.
type App struct {
	mu      sync.Mutex
	engine  *engine.Engine
	builder tessellate.Builder
	log     *slog.Logger
}

// MeshData is the JSON-serializable draw data of one part.
type MeshData struct {
	*tessellate.DrawMesh
	Color string `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation. Parts holds the
// polygon meshes behind Meshes for exporters.
type EvalResult struct {
	Meshes   []MeshData        `json:"meshes"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalErrorData   `json:"warnings"`
	Parts    []tessellate.Part `json:"-"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default(), slog.Default())
}

// NewAppWithConfig creates an App from cfg.
func NewAppWithConfig(cfg config.Config, log *slog.Logger) *App {
	return &App{
		engine: cfg.NewEngine(),
		builder: tessellate.Builder{
			Factory: cfg.Factory(),
			Kernel:  cfg.NewKernel(),
		},
		log: log,
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate and validate the scene.
	run, err := a.engine.Run(source)
	if err != nil {
		a.log.Error("evaluation failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range run.Warnings {
		a.log.Warn("scene warning", "msg", w.Message)
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Error()})
	}
	if len(run.Errors) > 0 {
		for _, e := range run.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		a.log.Debug("evaluation reported errors", "count", len(run.Errors))
		return result
	}
	a.log.Debug("scene evaluated", "nodes", run.Scene.NodeCount(), "roots", len(run.Scene.Roots))

	// Step 2: Build one polygon mesh per part.
	parts, err := a.builder.Build(run.Scene)
	if err != nil {
		a.log.Error("tessellation failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 3: Convert non-empty parts to draw data.
	for _, p := range parts {
		if p.Mesh.IsEmpty() {
			a.log.Warn("part produced no geometry", "part", p.Name)
			continue
		}
		dm := tessellate.FromMesh(p.Mesh, p.Name)
		result.Parts = append(result.Parts, p)
		result.Meshes = append(result.Meshes, MeshData{
			DrawMesh: dm,
			Color:    colorPalette[len(result.Meshes)%len(colorPalette)],
		})
		a.log.Debug("part built", "part", p.Name,
			"vertices", p.Mesh.NumVertices(), "faces", p.Mesh.NumFaces(), "triangles", dm.TriangleCount())
	}

	return result
}
