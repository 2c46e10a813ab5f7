// Package config loads polymesh settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/polymesh/pkg/engine"
	"github.com/chazu/polymesh/pkg/factory"
	"github.com/chazu/polymesh/pkg/kernel/sdfx"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/scene"
)

// DefaultFile is the config file name looked up when none is given.
const DefaultFile = "polymesh.toml"

// Config is the full set of tunables.
type Config struct {
	Mesh     Mesh           `toml:"mesh"`
	Defaults scene.Defaults `toml:"defaults"`
	Engine   Engine         `toml:"engine"`
	Kernel   Kernel         `toml:"kernel"`
}

// Mesh controls consolidation of generated meshes.
type Mesh struct {
	// Consolidate welds coincident vertices of factory output. When false
	// meshes keep seam and pole duplicates and carry no normals.
	Consolidate   bool    `toml:"consolidate"`
	WeldTolerance float64 `toml:"weld_tolerance"`
	// Normals is one of none, uniform, area or angle.
	Normals string `toml:"normals"`
}

// Engine controls script evaluation.
type Engine struct {
	// Timeout is a Go duration string such as "5s".
	Timeout string `toml:"timeout"`
}

// Kernel controls the boolean geometry kernel.
type Kernel struct {
	// Resolution is the marching-cubes cell count along the longest axis.
	Resolution int `toml:"resolution"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mesh: Mesh{
			Consolidate:   true,
			WeldTolerance: mesh.DefaultWeldTolerance,
			Normals:       mesh.NormalWeightArea.String(),
		},
		Defaults: scene.DefaultDefaults(),
		Engine:   Engine{Timeout: engine.EvalTimeout.String()},
		Kernel:   Kernel{Resolution: sdfx.DefaultMeshCells},
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults are returned unchanged. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := cfg.decode(f); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Mesh.WeldTolerance < 0 {
		errs = append(errs, fmt.Errorf("mesh.weld_tolerance %g is negative", c.Mesh.WeldTolerance))
	}
	if _, ok := mesh.ParseNormalWeighting(c.Mesh.Normals); !ok {
		errs = append(errs, fmt.Errorf("mesh.normals %q is not one of none, uniform, area, angle", c.Mesh.Normals))
	}
	if c.Defaults.Lat < 2 {
		errs = append(errs, fmt.Errorf("defaults.lat %d is below 2", c.Defaults.Lat))
	}
	if c.Defaults.Lon < 3 {
		errs = append(errs, fmt.Errorf("defaults.lon %d is below 3", c.Defaults.Lon))
	}
	if c.Defaults.Segments < 3 {
		errs = append(errs, fmt.Errorf("defaults.segments %d is below 3", c.Defaults.Segments))
	}
	if d, err := time.ParseDuration(c.Engine.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("engine.timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("engine.timeout %s must be positive", d))
	}
	if c.Kernel.Resolution < 8 {
		errs = append(errs, fmt.Errorf("kernel.resolution %d is below 8", c.Kernel.Resolution))
	}
	return errors.Join(errs...)
}

// ConsolidateOptions returns the mesh consolidation settings. The config
// is assumed valid.
func (c Config) ConsolidateOptions() mesh.ConsolidateOptions {
	w, _ := mesh.ParseNormalWeighting(c.Mesh.Normals)
	return mesh.ConsolidateOptions{Tolerance: c.Mesh.WeldTolerance, Normals: w}
}

// Factory returns a mesh factory using the consolidation settings.
func (c Config) Factory() factory.Factory {
	return factory.Factory{Consolidate: c.ConsolidateOptions(), Raw: !c.Mesh.Consolidate}
}

// NewEngine returns an engine using the configured timeout and defaults.
func (c Config) NewEngine() *engine.Engine {
	e := engine.NewEngine()
	e.Timeout = c.Timeout()
	e.Defaults = c.Defaults
	return e
}

// NewKernel returns the sdfx kernel at the configured resolution.
func (c Config) NewKernel() *sdfx.SdfxKernel {
	return sdfx.NewWithResolution(c.Kernel.Resolution)
}

// Timeout returns the evaluation timeout, falling back to
// engine.EvalTimeout when the configured value does not parse.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Engine.Timeout)
	if err != nil || d <= 0 {
		return engine.EvalTimeout
	}
	return d
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
