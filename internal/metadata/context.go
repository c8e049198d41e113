package metadata

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Seed keys present in every run.
const (
	KeyName        = "name"
	KeyDestDirName = "destDirName"
	KeyInPlace     = "inPlace"
	KeyNoEscape    = "noEscape"
)

var (
	// ErrReadOnly is returned when writing to a computed key.
	ErrReadOnly = errors.New("key is computed and read-only")

	// ErrFixed is returned when removing or rebinding a seed key.
	ErrFixed = errors.New("key is fixed for the run")

	// ErrCycle is returned when a computed key reads itself.
	ErrCycle = errors.New("computed key depends on itself")
)

// Binding computes a value from the context on every read.
type Binding func(c *Context) (any, error)

// Fields are the seed values installed before any stage runs.
type Fields struct {
	Name        string
	DestDirName string
	InPlace     bool
	NoEscape    bool
}

// Context is the mutable metadata threaded through the pipeline.
type Context struct {
	keys      []string
	values    map[string]any
	bindings  map[string]Binding
	fixed     map[string]bool
	resolving map[string]bool
}

// New returns an empty context.
func New() *Context {
	return &Context{
		values:    make(map[string]any),
		bindings:  make(map[string]Binding),
		fixed:     make(map[string]bool),
		resolving: make(map[string]bool),
	}
}

// Seed installs the fixed fields. Calling Seed again replaces their values.
func (c *Context) Seed(f Fields) {
	dest := f.DestDirName
	if dest == "" {
		dest = f.Name
	}
	for _, kv := range []struct {
		key   string
		value any
	}{
		{KeyName, f.Name},
		{KeyDestDirName, dest},
		{KeyInPlace, f.InPlace},
		{KeyNoEscape, f.NoEscape},
	} {
		c.put(kv.key, kv.value)
		c.fixed[kv.key] = true
	}
}

// Has reports whether key is owned by the context, stored or computed.
func (c *Context) Has(key string) bool {
	if _, ok := c.values[key]; ok {
		return true
	}
	_, ok := c.bindings[key]
	return ok
}

// Fixed reports whether key is a seed field.
func (c *Context) Fixed(key string) bool { return c.fixed[key] }

// Computed reports whether key is backed by a Binding.
func (c *Context) Computed(key string) bool {
	_, ok := c.bindings[key]
	return ok
}

// Set stores a plain value. Computed keys reject writes.
func (c *Context) Set(key string, value any) error {
	if c.Computed(key) {
		return fmt.Errorf("setting %q: %w", key, ErrReadOnly)
	}
	c.put(key, value)
	return nil
}

// SetDefault stores value only when key is absent and reports whether it did.
func (c *Context) SetDefault(key string, value any) bool {
	if c.Has(key) {
		return false
	}
	c.put(key, value)
	return true
}

// Merge copies data into the context, overriding plain values. Seed fields
// and computed keys are left alone; their names are returned.
func (c *Context) Merge(data map[string]any, order ...string) []string {
	if len(order) == 0 {
		order = sortedKeys(data)
	}
	var skipped []string
	for _, key := range order {
		value, ok := data[key]
		if !ok {
			continue
		}
		if c.fixed[key] || c.Computed(key) {
			skipped = append(skipped, key)
			continue
		}
		c.put(key, value)
	}
	return skipped
}

// Bind installs a lazy accessor under key, replacing any stored value.
func (c *Context) Bind(key string, b Binding) error {
	if c.fixed[key] {
		return fmt.Errorf("binding %q: %w", key, ErrFixed)
	}
	if _, ok := c.values[key]; ok {
		delete(c.values, key)
	} else if !c.Computed(key) {
		c.keys = append(c.keys, key)
	}
	c.bindings[key] = b
	return nil
}

// Delete removes key. Seed fields cannot be removed; deleting an absent key
// is a no-op.
func (c *Context) Delete(key string) error {
	if c.fixed[key] {
		return fmt.Errorf("deleting %q: %w", key, ErrFixed)
	}
	if !c.Has(key) {
		return nil
	}
	delete(c.values, key)
	delete(c.bindings, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Lookup returns the value for key. Computed keys are evaluated on every
// call; a failing binding surfaces its error.
func (c *Context) Lookup(key string) (any, bool, error) {
	if v, ok := c.values[key]; ok {
		return v, true, nil
	}
	b, ok := c.bindings[key]
	if !ok {
		return nil, false, nil
	}
	if c.resolving[key] {
		return nil, true, fmt.Errorf("computing %q: %w", key, ErrCycle)
	}
	c.resolving[key] = true
	defer delete(c.resolving, key)

	v, err := b(c)
	if err != nil {
		return nil, true, fmt.Errorf("computing %q: %w", key, err)
	}
	return v, true, nil
}

// Keys returns every key in insertion order, computed keys included.
func (c *Context) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Snapshot resolves every key into a plain map.
func (c *Context) Snapshot() (map[string]any, error) {
	out := make(map[string]any, len(c.keys))
	for _, key := range c.keys {
		v, _, err := c.Lookup(key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Frozen returns a read-only view safe for concurrent use. The context must
// not be mutated while the view is in use.
func (c *Context) Frozen() *View {
	return &View{ctx: c, cache: make(map[string]entry)}
}

func (c *Context) put(key string, value any) {
	if !c.Has(key) {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

type entry struct {
	value any
	ok    bool
	err   error
}

// View is a memoizing, goroutine-safe reader over a Context.
type View struct {
	mu    sync.Mutex
	ctx   *Context
	cache map[string]entry
}

// Lookup resolves key through the underlying context once per view.
func (v *View) Lookup(key string) (any, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.cache[key]; ok {
		return e.value, e.ok, e.err
	}
	value, ok, err := v.ctx.Lookup(key)
	v.cache[key] = entry{value: value, ok: ok, err: err}
	return value, ok, err
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
