// Package reduce is the tree processor: it walks a launch descriptor once,
// depth-first and in document order, resolving macro tokens, switching off
// elements whose conditions fail and binding <arg> declarations as it goes.
//
// Order matters. Within one element the attributes are resolved first, so a
// condition or an <arg> value may itself be a token; then the conditions run;
// then the element's own <arg> binding, which the following siblings and the
// children can already see; then the children; then the element's text.
package reduce

import (
	"context"
	"fmt"

	"github.com/specialistvlad/xlaunch/internal/argstore"
	"github.com/specialistvlad/xlaunch/internal/ctxlog"
	"github.com/specialistvlad/xlaunch/internal/launchdoc"
	"github.com/specialistvlad/xlaunch/internal/macro"
	"github.com/specialistvlad/xlaunch/internal/xerr"
)

// Tags and attributes with meaning to the processor.
const (
	TagArg     = "arg"
	TagInclude = "include"

	AttrIf     = "if"
	AttrUnless = "unless"
	AttrName   = "name"
	AttrValue  = "value"
	AttrFile   = "file"
)

// Processor reduces one document. It is not safe for concurrent use; build
// one per document.
type Processor struct {
	resolver *macro.Resolver
	store    *argstore.Store
}

// New returns a processor binding arguments into store and resolving macros
// against it.
func New(store *argstore.Store, opts macro.Options) *Processor {
	return &Processor{
		resolver: macro.New(store, opts),
		store:    store,
	}
}

// Resolver exposes the processor's macro resolver.
func (p *Processor) Resolver() *macro.Resolver {
	return p.resolver
}

// Reduce processes doc in place and reports whether anything changed.
func (p *Processor) Reduce(ctx context.Context, doc *launchdoc.Document) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("document", doc.Path)
	ctx = ctxlog.WithLogger(ctx, logger)

	changed, err := p.element(ctx, doc.Root)
	if err != nil {
		return false, xerr.InDocument(doc.Path, err)
	}
	logger.Debug("Document reduced.", "changed", changed, "arguments", p.store.Snapshot())
	return changed, nil
}

func (p *Processor) element(ctx context.Context, e *launchdoc.Element) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	if e.Inactive {
		logger.Debug("Skipping element already marked inactive.", "tag", e.Tag)
		return false, nil
	}

	changed := false
	for i := range e.Attrs {
		a := &e.Attrs[i]
		out, ok, err := p.resolver.Substitute(a.Value)
		if err != nil {
			return false, &xerr.LocatedError{Element: e.Tag, Attribute: a.Key, Err: err}
		}
		if ok {
			a.Value = out
			changed = true
		}
	}

	active, err := p.conditions(e)
	if err != nil {
		return false, err
	}
	if !active {
		e.Inactive = true
		logger.Debug("Element excluded by condition.", "tag", e.Tag, "attributes", e.Attrs)
		return true, nil
	}

	if e.Tag == TagArg {
		bound, err := p.declare(e)
		if err != nil {
			return false, err
		}
		if bound {
			logger.Debug("Argument bound from document.", "attributes", e.Attrs)
			changed = true
		}
	}

	for _, c := range e.Children {
		cc, err := p.element(ctx, c)
		if err != nil {
			return false, err
		}
		changed = changed || cc
	}

	if e.Text != "" {
		out, ok, err := p.resolver.Substitute(e.Text)
		if err != nil {
			return false, &xerr.LocatedError{Element: e.Tag, Err: fmt.Errorf("text: %w", err)}
		}
		if ok {
			e.Text = out
			changed = true
		}
	}

	if e.Tag == TagInclude {
		file, _ := e.Attr(AttrFile)
		return false, &xerr.LocatedError{
			Element:   e.Tag,
			Attribute: AttrFile,
			Err:       fmt.Errorf("%w: %q", xerr.ErrUnimplementedInclude, file),
		}
	}

	return changed, nil
}

// conditions evaluates if/unless. "if" takes precedence: "unless" is only
// looked at when "if" is absent.
func (p *Processor) conditions(e *launchdoc.Element) (bool, error) {
	if cond, ok := e.Attr(AttrIf); ok {
		keep, err := p.resolver.Truth(cond)
		if err != nil {
			return false, &xerr.LocatedError{Element: e.Tag, Attribute: AttrIf, Err: err}
		}
		return keep, nil
	}
	if cond, ok := e.Attr(AttrUnless); ok {
		drop, err := p.resolver.Truth(cond)
		if err != nil {
			return false, &xerr.LocatedError{Element: e.Tag, Attribute: AttrUnless, Err: err}
		}
		return !drop, nil
	}
	return true, nil
}

func (p *Processor) declare(e *launchdoc.Element) (bool, error) {
	name, ok := e.Attr(AttrName)
	if !ok {
		return false, &xerr.LocatedError{
			Element: e.Tag,
			Err:     fmt.Errorf("%w: arg element without name", xerr.ErrMissingArgument),
		}
	}
	value, hasValue := e.Attr(AttrValue)
	return p.store.Declare(name, value, hasValue), nil
}
