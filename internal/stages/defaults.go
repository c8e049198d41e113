package stages

import (
	"context"
	"fmt"

	"github.com/mifan-labs/mifan/internal/descriptor"
	"github.com/mifan-labs/mifan/internal/engine"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
	"github.com/mifan-labs/mifan/internal/output"
	"github.com/mifan-labs/mifan/internal/render"
)

// Defaults returns the stage that fills declared defaults for prompts whose
// key is still absent. Prompts are visited in declaration order, so a
// default may refer to one filled earlier in the same pass.
func Defaults(d *descriptor.Descriptor) engine.Stage {
	return engine.NewStage("defaults", func(_ context.Context, _ *fileset.FileSet, meta *metadata.Context) error {
		for _, e := range d.Prompts.Entries() {
			if meta.Has(e.Key) || !e.Value.Declared() {
				continue
			}
			v, err := defaultValue(e.Key, e.Value, meta)
			if err != nil {
				return err
			}
			meta.SetDefault(e.Key, v)
			output.Debug("default applied", "key", e.Key)
		}
		return nil
	})
}

// defaultValue resolves a prompt default. String defaults may contain
// markers and are rendered against the context.
func defaultValue(key string, p *descriptor.Prompt, meta *metadata.Context) (any, error) {
	if p.DefaultFunc != nil {
		v, err := p.DefaultFunc(meta)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: default: %w", key, err)
		}
		return v, nil
	}
	s, ok := p.Default.(string)
	if !ok || !render.HasMarkers([]byte(s)) {
		return p.Default, nil
	}
	out, err := render.String(key+".default", s, meta)
	if err != nil {
		return nil, fmt.Errorf("prompt %s: default: %w", key, err)
	}
	return out, nil
}
