package macro

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/specialistvlad/xlaunch/internal/xerr"
)

// maxEvalDepth bounds eval() calls nested inside expressions.
const maxEvalDepth = 16

// Eval evaluates expr and returns the result as a string.
func (r *Resolver) Eval(expr string) (string, error) {
	return r.eval(expr, 0)
}

func (r *Resolver) eval(expr string, depth int) (string, error) {
	val, err := r.evalValue(expr, depth)
	if err != nil {
		return "", err
	}
	return toString(expr, val)
}

func (r *Resolver) evalValue(expr string, depth int) (cty.Value, error) {
	if depth > maxEvalDepth {
		return cty.NilVal, fmt.Errorf("%w: eval nested deeper than %d", xerr.ErrExpressionEvaluation, maxEvalDepth)
	}
	src := normalizeQuotes(strings.TrimSpace(expr))
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "eval", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%w: parsing %q: %s", xerr.ErrExpressionEvaluation, expr, diags.Error())
	}
	val, diags := parsed.Value(r.evalContext(depth))
	if diags.HasErrors() {
		return cty.NilVal, diagError(expr, diags)
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("%w: %q has no value", xerr.ErrExpressionEvaluation, expr)
	}
	// Division by zero yields an infinity instead of failing.
	if val.Type() == cty.Number && val.AsBigFloat().IsInf() {
		return cty.NilVal, fmt.Errorf("%w: %q is not a finite number", xerr.ErrExpressionEvaluation, expr)
	}
	return val, nil
}

// diagError surfaces the error raised inside a macro function, keeping its
// kind, and reports everything else as an evaluation failure.
func diagError(expr string, diags hcl.Diagnostics) error {
	for _, d := range diags {
		extra, ok := hcl.DiagnosticExtra[hclsyntax.FunctionCallDiagExtra](d)
		if !ok {
			continue
		}
		err := extra.FunctionCallError()
		if err == nil {
			continue
		}
		if hasKind(err) {
			return fmt.Errorf("evaluating %q: %w", expr, err)
		}
		return fmt.Errorf("%w: evaluating %q: %v", xerr.ErrExpressionEvaluation, expr, err)
	}
	return fmt.Errorf("%w: evaluating %q: %s", xerr.ErrExpressionEvaluation, expr, diags.Error())
}

func hasKind(err error) bool {
	for _, kind := range []error{
		xerr.ErrMissingArgument,
		xerr.ErrMissingEnvironmentVariable,
		xerr.ErrExpressionEvaluation,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func toString(expr string, val cty.Value) (string, error) {
	s, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%w: %q yields %s, not a string: %s", xerr.ErrExpressionEvaluation, expr, val.Type().FriendlyName(), err)
	}
	return s.AsString(), nil
}

// Truth evaluates a conditional attribute. "true"/"1" and "false"/"0" are
// taken literally; anything else is evaluated as an expression whose result
// must be a bool, a number (non-zero is true) or one of those literals.
func (r *Resolver) Truth(value string) (bool, error) {
	if b, ok := literalBool(value); ok {
		return b, nil
	}
	val, err := r.evalValue(value, 0)
	if err != nil {
		return false, err
	}
	switch val.Type() {
	case cty.Bool:
		return val.True(), nil
	case cty.Number:
		return val.AsBigFloat().Sign() != 0, nil
	case cty.String:
		if b, ok := literalBool(strings.TrimSpace(val.AsString())); ok {
			return b, nil
		}
	}
	return false, fmt.Errorf("%w: condition %q is not a boolean", xerr.ErrExpressionEvaluation, value)
}

func literalBool(s string) (bool, bool) {
	switch s {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// evalContext exposes the macros, and nothing else, to expressions.
func (r *Resolver) evalContext(depth int) *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"arg":  stringFunc("name", r.arg),
			"env":  stringFunc("name", r.env),
			"find": stringFunc("pkg", r.find),
			"anon": stringFunc("base", r.anon),
			"eval": stringFunc("expr", func(expr string) (string, error) {
				return r.eval(expr, depth+1)
			}),
			"optenv": function.New(&function.Spec{
				Params:   []function.Parameter{{Name: "name", Type: cty.String}},
				VarParam: &function.Parameter{Name: "default", Type: cty.String},
				Type:     function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
					switch len(args) {
					case 1:
						out, _ := r.optenv(args[0].AsString())
						return cty.StringVal(out), nil
					case 2:
						return cty.StringVal(r.optenvPair(args[0].AsString(), args[1].AsString())), nil
					}
					return cty.NilVal, fmt.Errorf("optenv takes a name and at most one default, got %d arguments", len(args))
				},
			}),
		},
	}
}

func stringFunc(param string, fn func(string) (string, error)) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: param, Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			out, err := fn(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(out), nil
		},
	})
}

// normalizeQuotes rewrites single-quoted string literals as HCL
// double-quoted ones. Double-quoted literals are copied untouched.
func normalizeQuotes(src string) string {
	if !strings.Contains(src, "'") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src) + 8)
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			end := min(j+1, len(src))
			b.WriteString(src[i:end])
			i = end - 1
		case '\'':
			b.WriteByte('"')
			j := i + 1
			for ; j < len(src) && src[j] != '\''; j++ {
				ch := src[j]
				switch {
				case ch == '\\' && j+1 < len(src):
					j++
					if src[j] != '\'' {
						b.WriteByte('\\')
					}
					b.WriteByte(src[j])
				case ch == '"':
					b.WriteString(`\"`)
				case (ch == '$' || ch == '%') && j+1 < len(src) && src[j+1] == '{':
					// "${" and "%{" open templates in HCL strings.
					b.WriteByte(ch)
					b.WriteByte(ch)
				default:
					b.WriteByte(ch)
				}
			}
			if j < len(src) {
				b.WriteByte('"')
			}
			i = j
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
