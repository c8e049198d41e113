package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/mifan-labs/mifan/internal/descriptor"
	"github.com/mifan-labs/mifan/internal/engine"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/gituser"
	"github.com/mifan-labs/mifan/internal/metadata"
	"github.com/mifan-labs/mifan/internal/output"
	"github.com/mifan-labs/mifan/internal/prompt"
	"github.com/mifan-labs/mifan/internal/render"
	"github.com/mifan-labs/mifan/internal/stages"
	"github.com/mifan-labs/mifan/internal/version"
)

// TemplateDir is the optional subdirectory holding the template tree.
const TemplateDir = "template"

// HookFunc mutates the file set or metadata outside the stage list.
type HookFunc func(files *fileset.FileSet, meta *metadata.Context) error

// CompleteFunc replaces the complete message. It receives the finished
// context and file set after they were written.
type CompleteFunc func(meta *metadata.Context, files *fileset.FileSet) error

// Options configure a generation run.
type Options struct {
	Name    string // project name, seeds name and destDirName
	Src     string // template directory on local disk
	Dest    string // destination directory
	InPlace bool   // generating into the current directory

	// Mock, when non-nil, replaces prompting. It is merged over the
	// descriptor's own mock block.
	Mock     map[string]any
	Prompter prompt.Prompter

	Before   HookFunc
	After    HookFunc
	Complete CompleteFunc

	Stdout      io.Writer
	Concurrency int
	Version     string // generator version checked against requires
}

// Result holds the outcome of a generation run.
type Result struct {
	Meta       *metadata.Context
	Descriptor *descriptor.Descriptor
	Files      []string
	Stages     []engine.StageRecord
}

// Generate runs the whole pipeline and writes the result to opts.Dest.
// The returned Result is non-nil whenever the metadata context was created,
// even on failure.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	d, err := descriptor.Load(opts.Src)
	if err != nil {
		return nil, err
	}
	if err := version.Check(d.Requires, opts.Version); err != nil {
		return nil, err
	}
	if author := gituser.Lookup(); author != "" {
		d.SetDefault("author", author)
	}

	files, err := loadFiles(opts.Src)
	if err != nil {
		return nil, err
	}

	meta := metadata.New()
	meta.Seed(metadata.Fields{
		Name:        opts.Name,
		DestDirName: opts.Name,
		InPlace:     opts.InPlace,
		NoEscape:    true,
	})
	res := &Result{Meta: meta, Descriptor: d}

	if err := applyHook("before", d.Hooks.Before, opts.Before, files, meta); err != nil {
		return res, err
	}

	pipeline := engine.New(first(d, opts)).Use(
		stages.Defaults(d),
		stages.Computed(d),
		stages.Filter(d),
		stages.Render(d.SkipInterpolation, opts.Concurrency),
	)
	output.Debug("running pipeline", "stages", pipeline.Names())
	run, err := pipeline.Run(ctx, files, meta)
	if run != nil {
		res.Stages = run.Stages
	}
	if err != nil {
		return res, err
	}

	if err := applyHook("after", d.Hooks.After, opts.After, files, meta); err != nil {
		return res, err
	}
	logAnswers(meta)

	if err := write(files, opts.Dest); err != nil {
		return res, err
	}
	res.Files = files.Paths()
	output.Info("project generated", "dest", opts.Dest, "files", len(res.Files), "duration", run.Duration)

	if opts.Complete != nil {
		if err := opts.Complete(meta, files); err != nil {
			return res, fmt.Errorf("complete: %w", err)
		}
		return res, nil
	}
	printMessage(opts.stdout(), d.CompleteMessage, meta)
	return res, nil
}

// logAnswers records the template's own keys at debug level. Seed fields
// are left out.
func logAnswers(meta *metadata.Context) {
	snap, err := meta.Snapshot()
	if err != nil {
		output.Debug("metadata not fully resolved", "err", err)
		return
	}
	keyvals := make([]any, 0, 2*len(snap))
	for _, key := range meta.Keys() {
		if meta.Fixed(key) {
			continue
		}
		keyvals = append(keyvals, key, snap[key])
	}
	output.Debug("metadata", keyvals...)
}

func (o Options) validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return errors.New("project name is required")
	}
	if o.Dest == "" {
		return errors.New("destination directory is required")
	}
	info, err := os.Stat(o.Src)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", o.Src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("template %s is not a directory", o.Src)
	}
	if o.Mock == nil && o.Prompter == nil {
		return errors.New("either mock data or a prompter is required")
	}
	return nil
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

// first picks the mock stage when mock data was supplied, else prompting.
func first(d *descriptor.Descriptor, opts Options) engine.Stage {
	if opts.Mock == nil {
		return stages.Ask(d, opts.Prompter)
	}
	data := make(map[string]any, len(d.Mock)+len(opts.Mock))
	maps.Copy(data, d.Mock)
	maps.Copy(data, opts.Mock)
	return stages.Mock(data)
}

// loadFiles reads the template tree: <src>/template when present, otherwise
// src itself minus the descriptor files.
func loadFiles(src string) (*fileset.FileSet, error) {
	root := filepath.Join(src, TemplateDir)
	var exclude []string
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		root = src
		exclude = descriptor.Files
	}
	output.Debug("loading template", "root", root)

	files, err := fileset.Load(osfs.New(root), exclude...)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", root, err)
	}
	return files, nil
}

func write(files *fileset.FileSet, dest string) error {
	dest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := files.Write(osfs.New(dest, osfs.WithBoundOS())); err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	for _, p := range files.Paths() {
		output.Debug("file written", "path", p)
	}
	return nil
}

// printMessage renders the complete message and prints it indented by
// three spaces. Rendering problems are logged, not returned.
func printMessage(w io.Writer, message string, meta *metadata.Context) {
	if message == "" {
		return
	}
	out, err := render.String("completeMessage", message, meta)
	if err != nil {
		output.Error("rendering complete message", "err", err)
		return
	}
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = "   " + line
	}
	fmt.Fprintln(w, "\n"+strings.Join(lines, "\n"))
}
