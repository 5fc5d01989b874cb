package app

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/xlaunch/internal/argstore"
	"github.com/specialistvlad/xlaunch/internal/emit"
	"github.com/specialistvlad/xlaunch/internal/launcher"
	"github.com/specialistvlad/xlaunch/internal/xerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()

	base := Config{
		Documents:     []string{"a.xml"},
		Launch:        emit.LaunchOptions{Executable: "coco_launcher"},
		DerivedSuffix: ".gen",
		LogFormat:     "text",
		LogLevel:      "info",
	}

	_, err := NewConfig(base)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{"no documents", func(c *Config) { c.Documents = nil }, "launch descriptor"},
		{"no executable", func(c *Config) { c.Launch.Executable = "" }, "executable"},
		{"no suffix", func(c *Config) { c.DerivedSuffix = "" }, "suffix"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "log-level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			_, err := NewConfig(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestRun_DryRunPrintsResolvedInvocation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	dynamic := writeFile(t, dir, "robot.xml", `<launch><node name="cam" device="$(optenv CAM_DEVICE /dev/video0)" rate="$(arg rate)"/></launch>`)
	static := writeFile(t, dir, "static.xml", `<launch><node name="lidar"/></launch>`)
	port := 7000

	testApp, out, logs := SetupAppTest(t, Config{
		Documents: []string{dynamic, static},
		Bindings:  argstore.Bindings{{Key: "rate", Value: "30"}},
		Launch: emit.LaunchOptions{
			Executable: "coco_launcher",
			Disabled:   []string{"lidar"},
			WebServer:  &port,
		},
		DryRun:    true,
		LookupEnv: func(string) (string, bool) { return "", false },
	})

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	want := launcher.Format([]string{
		"coco_launcher", "-x", dynamic + ".gen", "-x", static, "-d", "lidar", "--web_server=7000",
	}) + "\n"
	require.Equal(t, want, out.String())

	data, err := os.ReadFile(dynamic + ".gen")
	require.NoError(t, err)
	require.Equal(t, `<launch><node name="cam" device="/dev/video0" rate="30"/></launch>`, string(data))
	require.NoFileExists(t, static+".gen")
	require.Contains(t, logs.String(), "Launch descriptors ready.")
}

func TestRun_FailureStopsBeforeLaunch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeFile(t, dir, "first.xml", `<launch><node if="false"/></launch>`)
	second := writeFile(t, dir, "second.xml", `<launch><include file="more.xml"/></launch>`)

	testApp, out, _ := SetupAppTest(t, Config{Documents: []string{first, second}, DryRun: true})

	err := testApp.Run(context.Background())

	require.ErrorIs(t, err, xerr.ErrUnimplementedInclude)
	require.Contains(t, err.Error(), "second.xml")
	require.Empty(t, out.String(), "nothing may be launched after a failure")
	require.NoFileExists(t, first+".gen")
}

// Not parallel: exec of a freshly written script can hit ETXTBSY while other
// tests fork.
func TestRun_LauncherExitCodePropagates(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	// The fake launcher fails when it is handed the derived file.
	dir := t.TempDir()
	script := writeFile(t, dir, "fake_launcher.sh", "#!/bin/sh\ncase \"$2\" in *.gen) exit 4;; esac\nexit 0\n")
	require.NoError(t, os.Chmod(script, 0o755))
	doc := writeFile(t, dir, "robot.xml", `<launch><node if="0"/></launch>`)

	testApp, _, _ := SetupAppTest(t, Config{
		Documents: []string{doc},
		Launch:    emit.LaunchOptions{Executable: script},
	})

	err := testApp.Run(context.Background())

	var exitErr *launcher.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 4, exitErr.ExitCode())
}
