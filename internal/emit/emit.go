package emit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/xlaunch/internal/argstore"
	"github.com/specialistvlad/xlaunch/internal/ctxlog"
	"github.com/specialistvlad/xlaunch/internal/launchdoc"
	"github.com/specialistvlad/xlaunch/internal/macro"
	"github.com/specialistvlad/xlaunch/internal/reduce"
	"github.com/specialistvlad/xlaunch/internal/xerr"
)

// DefaultSuffix is appended to a descriptor's path to name its derived file.
const DefaultSuffix = ".gen"

// Result is the outcome for one input document.
type Result struct {
	Source string
	// Output is the path handed to the launcher: the derived file when the
	// document changed, the source otherwise.
	Output  string
	Changed bool
	Doc     *launchdoc.Document
}

// Plan holds the reduced documents of a batch, in input order.
type Plan struct {
	Results []Result
}

// Files returns the paths to hand to the launcher.
func (p *Plan) Files() []string {
	files := make([]string, 0, len(p.Results))
	for _, r := range p.Results {
		files = append(files, r.Output)
	}
	return files
}

// Options configures an Emitter.
type Options struct {
	// DerivedSuffix defaults to DefaultSuffix.
	DerivedSuffix string
	Macro         macro.Options
}

// Emitter processes a batch of launch descriptors sharing one set of CLI
// bindings.
type Emitter struct {
	bindings argstore.Bindings
	opts     Options
}

// New returns an Emitter. bindings are copied into a fresh argument store for
// every document.
func New(bindings argstore.Bindings, opts Options) *Emitter {
	if opts.DerivedSuffix == "" {
		opts.DerivedSuffix = DefaultSuffix
	}
	return &Emitter{bindings: bindings, opts: opts}
}

// Prepare parses and reduces every document, stopping at the first failure.
func (e *Emitter) Prepare(ctx context.Context, paths []string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	plan := &Plan{Results: make([]Result, 0, len(paths))}

	for _, path := range paths {
		doc, err := launchdoc.ParseFile(path)
		if err != nil {
			return nil, err
		}

		mopts := e.opts.Macro
		if mopts.Logger == nil {
			mopts.Logger = logger.With("document", path)
		}
		proc := reduce.New(argstore.New(e.bindings), mopts)
		changed, err := proc.Reduce(ctx, doc)
		if err != nil {
			return nil, err
		}

		out := path
		if changed {
			out = launchdoc.DerivedPath(path, e.opts.DerivedSuffix)
		}
		logger.Info("Launch descriptor reduced.", "path", path, "changed", changed, "output", out)
		plan.Results = append(plan.Results, Result{Source: path, Output: out, Changed: changed, Doc: doc})
	}
	return plan, nil
}

// Commit writes the derived file of every changed document. On failure the
// files written so far are removed.
func (e *Emitter) Commit(ctx context.Context, plan *Plan) error {
	logger := ctxlog.FromContext(ctx)

	type pending struct {
		path string
		data []byte
	}
	var writes []pending
	for _, r := range plan.Results {
		if !r.Changed {
			continue
		}
		data, err := r.Doc.Marshal()
		if err != nil {
			return xerr.InDocument(r.Source, err)
		}
		writes = append(writes, pending{path: r.Output, data: data})
	}

	var written []string
	for _, w := range writes {
		if err := writeFileAtomic(w.path, w.data); err != nil {
			var errs []error
			errs = append(errs, fmt.Errorf("failed to write derived file %s: %w", w.path, err))
			for _, p := range written {
				if rmErr := os.Remove(p); rmErr != nil {
					errs = append(errs, fmt.Errorf("failed to roll back %s: %w", p, rmErr))
				}
			}
			logger.Error("Derived file write failed, batch rolled back.", "path", w.path, "removed", written)
			return errors.Join(errs...)
		}
		written = append(written, w.path)
		logger.Debug("Derived file written.", "path", w.path, "bytes", len(w.data))
	}
	return nil
}

// Run prepares and commits paths in one go and returns the plan.
func (e *Emitter) Run(ctx context.Context, paths []string) (*Plan, error) {
	plan, err := e.Prepare(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := e.Commit(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// writeFileAtomic writes data next to path and renames it into place, so a
// reader never sees a partially written descriptor.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
