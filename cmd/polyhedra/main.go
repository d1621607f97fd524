// Command polyhedra processes triangle meshes: it reads one or more input
// files and applies, always in this order, scaling, simplification, convex
// hull, plane cut, approximate convex decomposition, and mass-property
// reporting, then writes the result to one output file.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sksmith/polyhedra/meshio"
	"github.com/sksmith/polyhedra/polyhedra"
)

type options struct {
	out      string
	scale    float64
	simplify int
	agg      float64
	hull     bool
	cut      string
	decomp   float64
	mass     bool
	verbose  bool
}

func main() {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "polyhedra [flags] input...",
		Short:        "Analyze and manipulate closed triangulated polyhedra",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "out.obj", "output file")
	f.Float64Var(&opts.scale, "scale", 1, "scale input meshes")
	f.IntVar(&opts.simplify, "simplify", 0, "simplify to at most this many faces")
	f.Float64Var(&opts.agg, "agg", 0, "simplification aggregation distance")
	f.BoolVar(&opts.hull, "hull", false, "replace each mesh with its convex hull")
	f.StringVar(&opts.cut, "cut", "", "cut by plane nx,ny,nz,d")
	f.Float64Var(&opts.decomp, "decomp", -1, "approximate convex decomposition threshold")
	f.BoolVar(&opts.mass, "mass", false, "report mass properties")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts *options, inputs []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if opts.verbose {
		log = log.Level(zerolog.DebugLevel)
		polyhedra.SetLogger(log)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	var meshes []*polyhedra.VertexList
	for _, path := range inputs {
		in, err := meshio.Read(path, 1)
		if err != nil {
			return err
		}
		log.Debug().Str("file", path).Int("meshes", len(in)).Msg("read input")
		meshes = append(meshes, in...)
	}

	if opts.scale != 1 {
		for i, m := range meshes {
			scaled, err := polyhedra.ScaleList(m, float32(opts.scale))
			if err != nil {
				return err
			}
			meshes[i] = scaled
		}
	}

	if opts.simplify > 0 {
		for i, m := range meshes {
			simp, err := polyhedra.Simplify(m, opts.simplify, float32(opts.agg))
			if err != nil {
				return err
			}
			log.Debug().Int("faces", simp.TriangleCount()).Msg("simplified")
			meshes[i] = simp
		}
	}

	if opts.hull {
		for i, m := range meshes {
			hull, err := polyhedra.ConvexHull(m)
			if err != nil {
				return err
			}
			meshes[i] = hull
		}
	}

	if opts.cut != "" {
		n, d, err := parsePlane(opts.cut)
		if err != nil {
			return err
		}
		var pieces []*polyhedra.VertexList
		for _, m := range meshes {
			cut, err := polyhedra.PlaneCut(m, n, d)
			if err != nil {
				return err
			}
			pieces = append(pieces, cut...)
		}
		log.Debug().Int("pieces", len(pieces)).Msg("plane cut")
		meshes = pieces
	}

	if opts.decomp >= 0 {
		var hulls []*polyhedra.VertexList
		for _, m := range meshes {
			parts, err := polyhedra.ConvexDecomp(m, float32(opts.decomp))
			if err != nil {
				return err
			}
			hulls = append(hulls, parts...)
		}
		log.Debug().Int("parts", len(hulls)).Msg("decomposed")
		meshes = hulls
	}

	if opts.mass {
		for i, m := range meshes {
			mp, err := polyhedra.CalculateMassProperties(m)
			if err != nil {
				return err
			}
			fmt.Printf("mesh %d: volume=%g com=(%g, %g, %g)\n",
				i, mp.Volume, mp.COM[0], mp.COM[1], mp.COM[2])
			fmt.Printf("  inertia=[%g %g %g; %g %g %g; %g %g %g]\n",
				mp.Inertia[0], mp.Inertia[1], mp.Inertia[2],
				mp.Inertia[3], mp.Inertia[4], mp.Inertia[5],
				mp.Inertia[6], mp.Inertia[7], mp.Inertia[8])
		}
	}

	return meshio.Write(opts.out, meshes, 1)
}

func parsePlane(s string) (mgl32.Vec3, float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return mgl32.Vec3{}, 0, fmt.Errorf("cut plane must be nx,ny,nz,d: %q", s)
	}
	var f [4]float32
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, 0, fmt.Errorf("cut plane component %q: %w", p, err)
		}
		f[i] = float32(v)
	}
	return mgl32.Vec3{f[0], f[1], f[2]}, f[3], nil
}
