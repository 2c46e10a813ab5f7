package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/chazu/polymesh/pkg/config"
	"github.com/chazu/polymesh/pkg/scene"
	"github.com/chazu/polymesh/pkg/tessellate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the persistent flags and what is derived from them.
type cli struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "polymesh",
		Short:         "Generate and inspect polygon meshes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultFile, "TOML configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(c.evalCmd(), c.genCmd(), c.infoCmd(), c.exportCmd())
	return root
}

func (c *cli) setup(stderr io.Writer) error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	c.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log.Debug("configuration loaded", "path", c.configPath, "resolution", cfg.Kernel.Resolution, "normals", cfg.Mesh.Normals)
	return nil
}

// outputFlags are shared by the commands that write a mesh.
type outputFlags struct {
	out         string
	format      string
	preserveIDs bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.out, "output", "o", "", "write the mesh to this file")
	cmd.Flags().StringVar(&o.format, "format", "", "output format: obj, stl or yaml (default from extension)")
	cmd.Flags().BoolVar(&o.preserveIDs, "preserve-ids", false, "keep vertex and face IDs in yaml output")
}

func (c *cli) evalCmd() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a scene script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res := NewAppWithConfig(c.cfg, c.log).Evaluate(string(src))
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: warning: %s\n", args[0], w.Message)
			}
			if len(res.Errors) > 0 {
				for _, e := range res.Errors {
					if e.Line > 0 {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d: %s\n", args[0], e.Line, e.Message)
					} else {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], e.Message)
					}
				}
				return fmt.Errorf("%s: %d error(s)", args[0], len(res.Errors))
			}

			if o.out == "" {
				for _, m := range res.Meshes {
					fmt.Fprintf(cmd.OutOrStdout(), "%-16s %6d vertices %6d triangles\n", m.PartName, m.VertexCount(), m.TriangleCount())
				}
				return nil
			}
			return writeMesh(o, mergeParts(res.Parts), c.log)
		},
	}
	o.register(cmd)
	return cmd
}

// shapeFlags holds every generator parameter; each shape reads the ones it
// uses.
type shapeFlags struct {
	radius, height, length, tube float64
	width, angle                 float64
	size                         []float64
	lat, lon, segments           int
	radial, tubular, nx, ny      int
}

func (c *cli) genCmd() *cobra.Command {
	var o outputFlags
	var f shapeFlags
	cmd := &cobra.Command{
		Use:   "gen SHAPE",
		Short: "Generate one primitive",
		Long: "Generate one primitive. SHAPE is one of box, sphere, hemisphere, cone,\n" +
			"cylinder, capsule, torus, plane, circle, circle-section.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := scene.ParseShapeKind(args[0])
			if !ok {
				return fmt.Errorf("unknown shape %q", args[0])
			}
			d, err := f.primitive(kind)
			if err != nil {
				return err
			}
			d = d.WithDefaults(c.cfg.Defaults)
			m, err := tessellate.Generate(c.cfg.Factory(), d)
			if err != nil {
				return err
			}
			c.log.Debug("generated", "shape", kind, "vertices", m.NumVertices(), "faces", m.NumFaces())

			if o.out == "" {
				return printInfo(cmd.OutOrStdout(), kind.String(), m)
			}
			return writeMesh(o, m, c.log)
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&f.radius, "radius", 1, "radius (torus: distance to the tube center)")
	fl.Float64Var(&f.height, "height", 1, "height")
	fl.Float64Var(&f.length, "length", 1, "capsule straight section length")
	fl.Float64Var(&f.tube, "tube", 0.25, "torus tube radius")
	fl.Float64Var(&f.width, "width", 1, "plane width")
	fl.Float64Var(&f.angle, "angle", 90, "circle-section angle in degrees")
	fl.Float64SliceVar(&f.size, "size", []float64{1, 1, 1}, "box size x,y,z")
	fl.IntVar(&f.lat, "lat", 0, "latitude subdivisions (0 uses the configured default)")
	fl.IntVar(&f.lon, "lon", 0, "longitude subdivisions (0 uses the configured default)")
	fl.IntVar(&f.segments, "segments", 0, "circle segments or cylinder height segments")
	fl.IntVar(&f.radial, "radial", 0, "torus segments around the main ring")
	fl.IntVar(&f.tubular, "tubular", 0, "torus segments around the tube")
	fl.IntVar(&f.nx, "nx", 0, "plane vertices along x")
	fl.IntVar(&f.ny, "ny", 0, "plane vertices along y")
	o.register(cmd)
	return cmd
}

func (f shapeFlags) primitive(kind scene.ShapeKind) (scene.PrimitiveData, error) {
	d := scene.PrimitiveData{
		Shape:    kind,
		Radius:   f.radius,
		Height:   f.height,
		Length:   f.length,
		Tube:     f.tube,
		Width:    f.width,
		Angle:    mgl64.DegToRad(f.angle),
		Lat:      f.lat,
		Lon:      f.lon,
		Segments: f.segments,
		Radial:   f.radial,
		Tubular:  f.tubular,
		NX:       f.nx,
		NY:       f.ny,
	}
	if kind == scene.ShapeBox {
		if len(f.size) != 3 {
			return d, fmt.Errorf("--size needs three values, got %d", len(f.size))
		}
		d.Size = mgl64.Vec3{f.size[0], f.size[1], f.size[2]}
	}
	if kind == scene.ShapeCircleSection && (f.angle <= 0 || f.angle > 360) {
		return d, fmt.Errorf("--angle %g must be in (0, 360]", f.angle)
	}
	counts := []struct {
		name string
		v    int
	}{
		{"lat", f.lat}, {"lon", f.lon}, {"segments", f.segments},
		{"radial", f.radial}, {"tubular", f.tubular}, {"nx", f.nx}, {"ny", f.ny},
	}
	for _, c := range counts {
		if c.v < 0 {
			return d, fmt.Errorf("--%s must not be negative", c.name)
		}
	}
	return d, nil
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Describe a mesh file (obj or yaml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readMesh(args[0])
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), args[0], m)
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "export IN OUT",
		Short: "Convert a mesh file between formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readMesh(args[0])
			if err != nil {
				return err
			}
			o.out = args[1]
			return writeMesh(o, m, c.log)
		},
	}
	cmd.Flags().StringVar(&o.format, "format", "", "output format: obj, stl or yaml (default from extension)")
	cmd.Flags().BoolVar(&o.preserveIDs, "preserve-ids", false, "keep vertex and face IDs in yaml output")
	return cmd
}

func formatBounds(lo, hi mgl64.Vec3) string {
	f := func(v mgl64.Vec3) string {
		parts := make([]string, 3)
		for i, x := range v {
			if math.Abs(x) < 1e-12 {
				x = 0
			}
			parts[i] = fmt.Sprintf("%.4g", x)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return f(lo) + " .. " + f(hi)
}
