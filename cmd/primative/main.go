// Command primative generates one parametric solid (cube, cylinder,
// uvsphere, or icosphere) and writes it to a mesh file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sksmith/polyhedra/meshio"
	"github.com/sksmith/polyhedra/polyhedra"
)

func main() {
	var (
		out     string
		shape   string
		hx      float64
		hy      float64
		hz      float64
		radius  float64
		height  float64
		points  int
		segs    int
		rings   int
		subdiv  int
	)

	cmd := &cobra.Command{
		Use:   "primative",
		Short: "Generate a parametric polyhedron",
		RunE: func(cmd *cobra.Command, args []string) error {
			var vl *polyhedra.VertexList
			var err error
			switch shape {
			case "cube":
				vl, err = polyhedra.Cube(float32(hx), float32(hy), float32(hz))
			case "cylinder":
				vl, err = polyhedra.Cylinder(float32(radius), float32(height), points)
			case "uvsphere":
				vl, err = polyhedra.UVSphere(float32(radius), segs, rings)
			case "icosphere":
				vl, err = polyhedra.IcoSphere(float32(radius), subdiv)
			default:
				return fmt.Errorf("unknown shape %q (cube|cylinder|uvsphere|icosphere)", shape)
			}
			if err != nil {
				return err
			}
			return meshio.Write(out, []*polyhedra.VertexList{vl}, 1)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "out.obj", "output file")
	f.StringVarP(&shape, "type", "t", "cube", "shape: cube|cylinder|uvsphere|icosphere")
	f.Float64Var(&hx, "hx", 1, "cube half extent in x")
	f.Float64Var(&hy, "hy", 1, "cube half extent in y")
	f.Float64Var(&hz, "hz", 1, "cube half extent in z")
	f.Float64VarP(&radius, "radius", "r", 1, "radius")
	f.Float64Var(&height, "height", 2, "cylinder height")
	f.IntVar(&points, "points", 16, "cylinder points per revolution")
	f.IntVar(&segs, "segs", 16, "uvsphere meridians")
	f.IntVar(&rings, "rings", 16, "uvsphere latitude bands")
	f.IntVar(&subdiv, "subdiv", 2, "icosphere subdivisions")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
