package emit

import (
	"strconv"
)

// Launcher flags understood by the external launcher.
const (
	FlagFiles    = "-x"
	FlagDisabled = "-d"
)

// LaunchOptions are the driver options forwarded to the launcher. Nil
// pointers are options the user did not set; they are not forwarded.
type LaunchOptions struct {
	Executable  string
	Disabled    []string
	Profiling   *int
	Graph       *string
	WebRoot     *string
	WebServer   *int
	Latency     *string
	XMLTemplate *string
}

// Args assembles the launcher's argument vector: the executable, each file
// after -x, each disabled component after -d, then the pass-through options
// as --name=value in a fixed order.
func Args(opts LaunchOptions, files []string) []string {
	argv := []string{opts.Executable}
	for _, f := range files {
		argv = append(argv, FlagFiles, f)
	}
	for _, d := range opts.Disabled {
		argv = append(argv, FlagDisabled, d)
	}

	intFlag := func(name string, v *int) {
		if v != nil {
			argv = append(argv, "--"+name+"="+strconv.Itoa(*v))
		}
	}
	strFlag := func(name string, v *string) {
		if v != nil {
			argv = append(argv, "--"+name+"="+*v)
		}
	}
	intFlag("profiling", opts.Profiling)
	strFlag("graph", opts.Graph)
	strFlag("web_root", opts.WebRoot)
	intFlag("web_server", opts.WebServer)
	strFlag("latency", opts.Latency)
	strFlag("xml_template", opts.XMLTemplate)
	return argv
}
