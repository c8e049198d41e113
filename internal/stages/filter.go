package stages

import (
	"context"
	"fmt"

	"github.com/mifan-labs/mifan/internal/descriptor"
	"github.com/mifan-labs/mifan/internal/engine"
	"github.com/mifan-labs/mifan/internal/expr"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
	"github.com/mifan-labs/mifan/internal/output"
)

// Filter returns the stage that removes every file matched by a filter glob
// whose condition is false. Each glob is evaluated independently; a file
// removed by an earlier glob stays removed.
func Filter(d *descriptor.Descriptor) engine.Stage {
	return engine.NewStage("filter", func(_ context.Context, files *fileset.FileSet, meta *metadata.Context) error {
		paths := files.Paths()
		for _, e := range d.Filters.Entries() {
			for _, p := range paths {
				if !fileset.Match(e.Key, p) {
					continue
				}
				if _, ok := files.Get(p); !ok {
					continue
				}
				keep, err := expr.Test(string(e.Value), meta)
				if err != nil {
					return fmt.Errorf("filter %q on %s: %w", e.Key, p, err)
				}
				if !keep {
					files.Delete(p)
					output.Debug("file filtered", "path", p, "glob", e.Key)
				}
			}
		}
		return nil
	})
}
