// Command voxels-bench drives the voxel store core from the command line:
// paint brush strokes, run a fill benchmark, or inspect a procedurally
// generated volume's chunks.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	lru "github.com/hashicorp/golang-lru"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leterax/go-voxels/internal/voxelcfg"
	"github.com/leterax/go-voxels/internal/voxlog"
	"github.com/leterax/go-voxels/pkg/chunk"
	"github.com/leterax/go-voxels/pkg/geom"
	"github.com/leterax/go-voxels/pkg/painter"
	"github.com/leterax/go-voxels/pkg/rgba"
	"github.com/leterax/go-voxels/pkg/shape"
	"github.com/leterax/go-voxels/pkg/volume"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "voxels-bench",
		Short: "Exercise the go-voxels core store from the command line",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a voxelcfg file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "use the human-readable log encoder")

	root.AddCommand(newPaintCmd(), newBenchCmd(), newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() voxelcfg.Config {
	if verbose {
		voxlog.SetDevelopment()
	}
	cfg, err := voxelcfg.Load(cfgPath)
	if err != nil {
		voxlog.Warnw("voxelcfg load failed, using defaults", "err", err)
	}
	return cfg
}

func newPaintCmd() *cobra.Command {
	var (
		modeName string
		radius   float32
		cx, cy, cz int32
		colorHex string
	)
	cmd := &cobra.Command{
		Use:   "paint",
		Short: "Paint a single sphere brush stroke into a fresh volume and report chunk counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			mode, err := parseMode(modeName)
			if err != nil {
				return err
			}

			v := volume.New()
			opID := uuid.New().String()

			box := geom.BoxFromAABB(geom.AABB{
				Min:   vec3(float32(cx)-radius, float32(cy)-radius, float32(cz)-radius),
				Max:   vec3(float32(cx)+radius, float32(cy)+radius, float32(cz)+radius),
				Valid: true,
			})
			clip := clipBoxAround(vec3(float32(cx), float32(cy), float32(cz)), cfg.DefaultClipRadius)
			p := &painter.Painter{
				Shape:      shape.Sphere{},
				Mode:       mode,
				Smoothness: cfg.SmoothnessEpsilon,
				Color:      parseColor(colorHex),
				ClipBox:    &clip,
			}

			v.Apply(p, box)
			bbox, ok := v.BBox(true)
			voxlog.Infow("paint complete", "op", opID, "mode", mode.String(), "has_voxels", ok)
			if ok {
				fmt.Printf("bbox: %v..%v\n", bbox.Min, bbox.Max)
			}
			fmt.Printf("chunks: %d\n", countChunks(v))
			return nil
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", "over", "compositing mode: over,sub,max,intersect,mult_alpha,replace")
	cmd.Flags().Float32Var(&radius, "radius", 4, "brush radius in voxels")
	cmd.Flags().Int32Var(&cx, "x", 0, "brush center x")
	cmd.Flags().Int32Var(&cy, "y", 0, "brush center y")
	cmd.Flags().Int32Var(&cz, "z", 0, "brush center z")
	cmd.Flags().StringVar(&colorHex, "color", "ff0000ff", "brush RRGGBBAA color")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Paint n overlapping cube strokes and report elapsed time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			v := volume.New()
			clip := clipBoxAround(vec3(0, 0, 0), cfg.DefaultClipRadius)
			start := time.Now()
			for i := 0; i < n; i++ {
				p := &painter.Painter{
					Shape:      shape.Cube{},
					Mode:       painter.Over,
					Smoothness: cfg.SmoothnessEpsilon,
					Color:      rgba.Opaque(uint8(rand.Intn(256)), uint8(rand.Intn(256)), uint8(rand.Intn(256))),
					ClipBox:    &clip,
				}
				box := geom.BoxFromAABB(geom.AABB{
					Min:   vec3(float32(rand.Intn(64)-32), float32(rand.Intn(64)-32), float32(rand.Intn(64)-32)),
					Max:   vec3(float32(rand.Intn(64)-28), float32(rand.Intn(64)-28), float32(rand.Intn(64)-28)),
					Valid: true,
				})
				v.Apply(p, box)
			}
			elapsed := time.Since(start)
			voxlog.Infow("bench complete", "strokes", n, "elapsed_ms", elapsed.Milliseconds(), "chunks", countChunks(v))
			fmt.Printf("%d strokes in %s, %d chunks\n", n, elapsed, countChunks(v))
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 100, "number of cube strokes")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Generate a procedural volume and list its chunk origins, lru-cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			cache, err := lru.New(cfg.AccessorCacheSize)
			if err != nil {
				return err
			}

			v := volume.New()
			for i := 0; i < n; i++ {
				p := &painter.Painter{
					Shape: shape.Cube{},
					Mode:  painter.Over,
					Color: rgba.Opaque(200, 200, 200),
				}
				ox, oy, oz := int32(i*chunk.Size*2), 0, 0
				box := geom.BoxFromAABB(geom.AABB{
					Min:   vec3(float32(ox), float32(oy), float32(oz)),
					Max:   vec3(float32(ox+chunk.Size), float32(oy+chunk.Size), float32(oz+chunk.Size)),
					Valid: true,
				})
				v.Apply(p, box)
			}

			for info := range v.IterChunks() {
				if _, hit := cache.Get(info.Origin); !hit {
					cache.Add(info.Origin, info.DataID)
				}
				fmt.Printf("chunk origin=%v id=%d data_id=%d\n", info.Origin, info.ChunkID, info.DataID)
			}
			voxlog.Infow("inspect complete", "chunks", countChunks(v), "cache_len", cache.Len())
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 4, "number of procedurally placed cubes")
	return cmd
}

func countChunks(v *volume.Volume) int {
	n := 0
	for range v.IterChunks() {
		n++
	}
	return n
}

func vec3(x, y, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, y, z}
}

// clipBoxAround builds the default apply clip box centered on center with
// the configured radius, guarding against a runaway fill from a typo'd
// transform when the caller gave no explicit clip box of their own.
func clipBoxAround(center mgl32.Vec3, radius float32) geom.AABB {
	r := vec3(radius, radius, radius)
	return geom.AABB{Min: center.Sub(r), Max: center.Add(r), Valid: true}
}

func parseMode(s string) (painter.Mode, error) {
	switch s {
	case "over":
		return painter.Over, nil
	case "sub":
		return painter.Sub, nil
	case "max":
		return painter.Max, nil
	case "intersect":
		return painter.Intersect, nil
	case "mult_alpha":
		return painter.MultAlpha, nil
	case "replace":
		return painter.Replace, nil
	default:
		return painter.Over, fmt.Errorf("unknown mode %q", s)
	}
}

func parseColor(hex string) rgba.RGBA {
	var r, g, b, a uint8 = 255, 255, 255, 255
	fmt.Sscanf(hex, "%02x%02x%02x%02x", &r, &g, &b, &a)
	return rgba.RGBA{r, g, b, a}
}
