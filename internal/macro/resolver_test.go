package macro

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/xlaunch/internal/argstore"
	"github.com/specialistvlad/xlaunch/internal/xerr"
)

// newTestResolver builds a resolver over a fixed environment and a
// deterministic anon suffix.
func newTestResolver(t *testing.T, env map[string]string, bindings ...argstore.Binding) *Resolver {
	t.Helper()
	n := 0
	return New(argstore.New(bindings), Options{
		LookupEnv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
		Suffix: func() string {
			n++
			return fmt.Sprintf("%03d", n)
		},
	})
}

func TestResolve_DispatchTable(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, map[string]string{"HOME_DIR": "/home/robot"}, argstore.Binding{Key: "x", Value: "5"})

	testCases := []struct {
		macro string
		rest  string
		want  string
	}{
		{"arg", "x", "5"},
		{"env", "HOME_DIR", "/home/robot"},
		{"optenv", "HOME_DIR /tmp", "/home/robot"},
		{"optenv", "UNSET /tmp", "/tmp"},
		{"optenv", "UNSET default with spaces", "default with spaces"},
		{"optenv", "UNSET", ""},
		{"find", "some_pkg", ""},
		{"anon", "node", "node_001"},
		{"eval", "1+1", "2"},
		{"nosuchmacro", "whatever", ""},
	}

	for _, tc := range testCases {
		got, err := r.Resolve(tc.macro, tc.rest)
		require.NoError(t, err, "%s %s", tc.macro, tc.rest)
		require.Equal(t, tc.want, got, "%s %s", tc.macro, tc.rest)
	}
}

func TestResolve_Failures(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, nil)

	_, err := r.Resolve("env", "FOO")
	require.ErrorIs(t, err, xerr.ErrMissingEnvironmentVariable)
	require.Contains(t, err.Error(), "FOO")

	_, err = r.Resolve("arg", "x")
	require.ErrorIs(t, err, xerr.ErrMissingArgument)
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	env := map[string]string{"FOO": "foo-value", "TRICKY": "$(env FOO)"}
	r := newTestResolver(t, env,
		argstore.Binding{Key: "x", Value: "5"},
		argstore.Binding{Key: "nested", Value: "$(arg x)"},
	)

	testCases := []struct {
		name        string
		input       string
		want        string
		wantChanged bool
	}{
		{name: "plain value", input: "camera", want: "camera"},
		{name: "single token", input: "$(arg x)", want: "5", wantChanged: true},
		{name: "embedded tokens", input: "/dev/$(env FOO)/$(arg x).cfg", want: "/dev/foo-value/5.cfg", wantChanged: true},
		{name: "replacement not rescanned", input: "$(arg nested)", want: "$(arg x)", wantChanged: true},
		{name: "env not rescanned", input: "$(env TRICKY)", want: "$(env FOO)", wantChanged: true},
		{name: "uppercase is not a token", input: "$(ARG x)", want: "$(ARG x)"},
		{name: "whole eval form", input: "$(eval arg('x'))", want: "5", wantChanged: true},
		{name: "whole eval arithmetic", input: "$(eval 1+1)", want: "2", wantChanged: true},
		{name: "eval token inside text", input: "n=$(eval 2*3)!", want: "n=6!", wantChanged: true},
		{name: "two eval forms are tokens", input: "$(eval 1+1)-$(eval 2+2)", want: "2-4", wantChanged: true},
		{name: "rest is trimmed", input: "$(arg   x  )", want: "5", wantChanged: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed, err := r.Substitute(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.wantChanged, changed)
		})
	}
}

func TestSubstitute_ErrorNamesToken(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, nil)
	_, _, err := r.Substitute("prefix $(env MISSING_VAR) suffix")

	require.ErrorIs(t, err, xerr.ErrMissingEnvironmentVariable)
	require.Contains(t, err.Error(), "$(env MISSING_VAR)")
}

func TestAnon_UniquePerCall(t *testing.T) {
	t.Parallel()

	r := New(argstore.New(nil), Options{})
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name, err := r.Resolve("anon", "talker")
		require.NoError(t, err)
		require.Regexp(t, `^talker_[0-9a-f]{12}$`, name)
		require.False(t, seen[name], "duplicate anon name %s", name)
		seen[name] = true
	}
}

func TestEvalForm(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input  string
		expr   string
		wantOK bool
	}{
		{"$(eval 1+1)", " 1+1", true},
		{"$(eval arg('x'))", " arg('x')", true},
		{"$(eval ')')", " ')'", true},
		{"$(eval 1+1) tail", "", false},
		{"$(eval 1+1)$(eval 2)", "", false},
		{"$(evaluate 1)", "", false},
		{"$(eval", "", false},
		{"$(arg x)", "", false},
	}

	for _, tc := range testCases {
		expr, ok := evalForm(tc.input)
		require.Equal(t, tc.wantOK, ok, tc.input)
		require.Equal(t, tc.expr, expr, tc.input)
	}
}

func TestNames_MatchDispatchTable(t *testing.T) {
	t.Parallel()

	names := Names()
	require.Len(t, table, len(names))
	for _, n := range names {
		require.Contains(t, table, n)
	}
}

func TestSubstitute_DivisionByZeroFails(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, nil)

	_, changed, err := r.Substitute("$(eval 1/0)")
	require.ErrorIs(t, err, xerr.ErrExpressionEvaluation)
	require.False(t, changed)
}
