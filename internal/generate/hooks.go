package generate

import (
	"fmt"

	"github.com/mifan-labs/mifan/internal/descriptor"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
	"github.com/mifan-labs/mifan/internal/output"
	"github.com/mifan-labs/mifan/internal/render"
)

// applyHook runs the declarative hook, then the Go hook.
func applyHook(phase string, h *descriptor.Hook, fn HookFunc, files *fileset.FileSet, meta *metadata.Context) error {
	if !h.Empty() {
		if err := runHook(h, files, meta); err != nil {
			return fmt.Errorf("%s hook: %w", phase, err)
		}
	}
	if fn != nil {
		if err := fn(files, meta); err != nil {
			return fmt.Errorf("%s hook: %w", phase, err)
		}
	}
	return nil
}

func runHook(h *descriptor.Hook, files *fileset.FileSet, meta *metadata.Context) error {
	for _, e := range h.Set.Entries() {
		v := e.Value
		if s, ok := v.(string); ok {
			out, err := render.String("set."+e.Key, s, meta)
			if err != nil {
				return err
			}
			v = out
		}
		if err := meta.Set(e.Key, v); err != nil {
			return err
		}
	}

	for _, e := range h.Rename.Entries() {
		if _, ok := files.Get(e.Key); !ok {
			output.Debug("rename source missing", "path", e.Key)
			continue
		}
		to, err := render.String("rename."+e.Key, e.Value, meta)
		if err != nil {
			return err
		}
		if err := files.Rename(e.Key, to); err != nil {
			return err
		}
	}

	for _, pattern := range h.Remove {
		for _, p := range files.Glob(pattern) {
			files.Delete(p)
		}
	}
	return nil
}
