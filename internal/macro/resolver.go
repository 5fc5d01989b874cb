package macro

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/specialistvlad/xlaunch/internal/argstore"
	"github.com/specialistvlad/xlaunch/internal/xerr"
)

// tokenPattern is the single-level token grammar; replacement text is never
// rescanned.
var tokenPattern = regexp.MustCompile(`\$\(([a-z]+)([^)]*)\)`)

// Func resolves one macro from its trimmed argument string.
type Func func(r *Resolver, rest string) (string, error)

// table is the fixed dispatch table of supported macros.
var table = map[string]Func{
	"arg":    (*Resolver).arg,
	"env":    (*Resolver).env,
	"optenv": (*Resolver).optenv,
	"find":   (*Resolver).find,
	"anon":   (*Resolver).anon,
	"eval":   (*Resolver).evalMacro,
}

// Names lists the supported macros.
func Names() []string {
	return []string{"arg", "env", "optenv", "find", "anon", "eval"}
}

// Options tunes a Resolver. Zero values select the process defaults.
type Options struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Suffix produces the unique part of anon names.
	Suffix func() string
	Logger *slog.Logger
}

// Resolver resolves macros against one document's argument store.
type Resolver struct {
	args      *argstore.Store
	lookupEnv func(string) (string, bool)
	suffix    func() string
	logger    *slog.Logger
}

// New returns a Resolver reading arguments from args.
func New(args *argstore.Store, opts Options) *Resolver {
	r := &Resolver{
		args:      args,
		lookupEnv: opts.LookupEnv,
		suffix:    opts.Suffix,
		logger:    opts.Logger,
	}
	if r.lookupEnv == nil {
		r.lookupEnv = os.LookupEnv
	}
	if r.suffix == nil {
		r.suffix = randomSuffix
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Args returns the store the resolver reads from.
func (r *Resolver) Args() *argstore.Store {
	return r.args
}

// Resolve runs the macro called name. Unknown macros resolve to "".
func (r *Resolver) Resolve(name, rest string) (string, error) {
	fn, ok := table[name]
	if !ok {
		r.logger.Warn("Unknown macro, substituting empty string.", "macro", name, "argument", rest)
		return "", nil
	}
	return fn(r, rest)
}

// Substitute resolves every token in value. A value that is one eval form
// as a whole is evaluated as a single expression, which lets the expression
// contain parentheses. changed reports whether anything was resolved.
func (r *Resolver) Substitute(value string) (string, bool, error) {
	if !strings.Contains(value, "$(") {
		return value, false, nil
	}
	if expr, ok := evalForm(value); ok {
		out, err := r.eval(expr, 0)
		if err != nil {
			return "", false, err
		}
		r.logger.Debug("Evaluated expression.", "expression", expr, "result", out)
		return out, true, nil
	}

	matches := tokenPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value, false, nil
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(value[last:m[0]])
		name := value[m[2]:m[3]]
		rest := strings.TrimSpace(value[m[4]:m[5]])
		out, err := r.Resolve(name, rest)
		if err != nil {
			return "", false, fmt.Errorf("resolving %s: %w", value[m[0]:m[1]], err)
		}
		r.logger.Debug("Resolved macro.", "token", value[m[0]:m[1]], "result", out)
		b.WriteString(out)
		last = m[1]
	}
	b.WriteString(value[last:])
	return b.String(), true, nil
}

// evalForm reports whether value is exactly "$(eval <expr>)", with the
// closing parenthesis matching the opening one, and returns <expr>.
func evalForm(value string) (string, bool) {
	const prefix = "$(eval"
	if !strings.HasPrefix(value, prefix) || len(value) <= len(prefix) {
		return "", false
	}
	if c := value[len(prefix)]; c != ' ' && c != '\t' && c != '\n' {
		return "", false
	}
	depth := 1
	var quote byte
	for i := 2; i < len(value); i++ {
		c := value[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				if i != len(value)-1 {
					return "", false
				}
				return value[len(prefix) : len(value)-1], true
			}
		}
	}
	return "", false
}

func (r *Resolver) arg(rest string) (string, error) {
	return r.args.Lookup(rest)
}

func (r *Resolver) env(rest string) (string, error) {
	v, ok := r.lookupEnv(rest)
	if !ok {
		return "", fmt.Errorf("%w: %s", xerr.ErrMissingEnvironmentVariable, rest)
	}
	return v, nil
}

// optenv takes "NAME default"; the default is everything after the first space.
func (r *Resolver) optenv(rest string) (string, error) {
	name, def, _ := strings.Cut(rest, " ")
	return r.optenvPair(name, def), nil
}

func (r *Resolver) optenvPair(name, def string) string {
	if v, ok := r.lookupEnv(name); ok {
		return v
	}
	return def
}

// find would resolve a package path; package lookup is not supported.
func (r *Resolver) find(string) (string, error) {
	return "", nil
}

func (r *Resolver) anon(rest string) (string, error) {
	return rest + "_" + r.suffix(), nil
}

func (r *Resolver) evalMacro(rest string) (string, error) {
	return r.eval(rest, 0)
}

func randomSuffix() string {
	id := uuid.New()
	return hex.EncodeToString(id[:6])
}
