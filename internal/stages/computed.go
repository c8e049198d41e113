package stages

import (
	"context"

	"github.com/mifan-labs/mifan/internal/descriptor"
	"github.com/mifan-labs/mifan/internal/engine"
	"github.com/mifan-labs/mifan/internal/expr"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
)

// Computed returns the stage that binds every computed entry as a lazy,
// read-only key. The expression runs again on each read.
func Computed(d *descriptor.Descriptor) engine.Stage {
	return engine.NewStage("computed", func(_ context.Context, _ *fileset.FileSet, meta *metadata.Context) error {
		for _, e := range d.Computed.Entries() {
			src := string(e.Value)
			if err := meta.Bind(e.Key, func(c *metadata.Context) (any, error) {
				return expr.Value(src, c)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
