package argstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/xlaunch/internal/xerr"
)

func TestParseBinding(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    Binding
		wantErr bool
	}{
		{name: "simple", input: "x:=5", want: Binding{"x", "5"}},
		{name: "empty value", input: "x:=", want: Binding{"x", ""}},
		{name: "split once", input: "url:=a:=b", want: Binding{"url", "a:=b"}},
		{name: "value with spaces", input: "msg:=hello world", want: Binding{"msg", "hello world"}},
		{name: "no separator", input: "x=5", wantErr: true},
		{name: "empty key", input: ":=5", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBinding(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, xerr.ErrMalformedBinding)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseBindings_StopsAtFirstMalformed(t *testing.T) {
	t.Parallel()

	_, err := ParseBindings([]string{"a:=1", "broken", "b:=2"})
	require.ErrorIs(t, err, xerr.ErrMalformedBinding)
	require.Contains(t, err.Error(), `"broken"`)

	bindings, err := ParseBindings([]string{"a:=1", "b:=2"})
	require.NoError(t, err)
	require.Equal(t, Bindings{{"a", "1"}, {"b", "2"}}, bindings)
}

func TestStore_CLIBindingsResolveExactly(t *testing.T) {
	t.Parallel()

	bindings := Bindings{{"x", "5"}, {"path", "/opt/robot"}, {"empty", ""}}
	s := New(bindings)

	for _, b := range bindings {
		v, err := s.Lookup(b.Key)
		require.NoError(t, err)
		require.Equal(t, b.Value, v)
	}
}

func TestStore_FirstWins(t *testing.T) {
	t.Parallel()

	t.Run("document declarations", func(t *testing.T) {
		s := New(nil)
		require.True(t, s.Declare("x", "1", true))
		require.False(t, s.Declare("x", "2", true))

		v, err := s.Lookup("x")
		require.NoError(t, err)
		require.Equal(t, "1", v)
	})

	t.Run("cli beats document", func(t *testing.T) {
		s := New(Bindings{{"x", "cli"}})
		require.False(t, s.Declare("x", "doc", true))

		v, err := s.Lookup("x")
		require.NoError(t, err)
		require.Equal(t, "cli", v)
	})

	t.Run("repeated cli key", func(t *testing.T) {
		s := New(Bindings{{"x", "first"}, {"x", "second"}})
		v, err := s.Lookup("x")
		require.NoError(t, err)
		require.Equal(t, "first", v)
	})
}

func TestStore_MissingArguments(t *testing.T) {
	t.Parallel()

	s := New(nil)
	require.False(t, s.Declare("robot", "", false))

	_, err := s.Lookup("robot")
	require.ErrorIs(t, err, xerr.ErrMissingArgument)
	require.Contains(t, err.Error(), "mandatory argument")

	_, err = s.Lookup("nope")
	require.ErrorIs(t, err, xerr.ErrMissingArgument)
	require.Contains(t, err.Error(), "unknown argument")

	require.True(t, s.Declare("robot", "r2", true))
	v, err := s.Lookup("robot")
	require.NoError(t, err)
	require.Equal(t, "r2", v)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := New(Bindings{{"b", "2"}, {"a", "1"}})
	snap := s.Snapshot()
	snap["a"] = "changed"

	v, _ := s.Lookup("a")
	require.Equal(t, "1", v)
	require.Equal(t, []string{"a", "b"}, s.Names())
}
