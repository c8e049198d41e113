package stages

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mifan-labs/mifan/internal/engine"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
	"github.com/mifan-labs/mifan/internal/output"
	"github.com/mifan-labs/mifan/internal/render"
)

// DefaultSkip exempts raster images, fonts and vector icons from rendering.
var DefaultSkip = []string{
	"**/*.{png,jpg,jpeg,gif,webp,apng,bpg,bmp,tif,tiff,ico}",
	"**/*.{svg,svgz,eot,otf,ttf,woff,woff2}",
}

// Render returns the stage that expands markers in every file not matched by
// DefaultSkip or skip. Up to concurrency files render at once (unbounded
// when concurrency <= 0). Results are applied only when every file succeeds.
func Render(skip []string, concurrency int) engine.Stage {
	patterns := append(slices.Clone(DefaultSkip), skip...)

	return engine.NewStage("render", func(ctx context.Context, files *fileset.FileSet, meta *metadata.Context) error {
		view := meta.Frozen()
		paths := files.Paths()
		out := make([][]byte, len(paths))
		done := make([]bool, len(paths))

		g, gctx := errgroup.WithContext(ctx)
		if concurrency > 0 {
			g.SetLimit(concurrency)
		}
		for i, p := range paths {
			if fileset.Excluded(p, patterns) {
				output.Debug("render skipped", "path", p)
				continue
			}
			f, _ := files.Get(p)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				b, err := render.Render(p, f.Contents, view)
				if err != nil {
					return err
				}
				out[i], done[i] = b, true
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, p := range paths {
			if done[i] {
				f, _ := files.Get(p)
				f.Contents = out[i]
			}
		}
		return nil
	})
}
