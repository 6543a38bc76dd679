// Command rigctl builds an optical tracking rig in a frame graph and prints
// the transforms it resolves.
//
// The rig has a world frame with a tracker calibrated into it, a marker
// measured live by the tracker, a tool rigidly attached to the marker and a
// camera calibrated against the world. rigctl smooths a burst of marker
// samples, registers everything and reports the tool pose in the camera.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/framegraph/internal/config"
	"github.com/banshee-data/framegraph/internal/monitoring"
	"github.com/banshee-data/framegraph/internal/timeutil"
	"github.com/banshee-data/framegraph/internal/version"
)

var (
	configPath  = flag.String("config", "", "Tuning config JSON (defaults built in when empty)")
	debugMode   = flag.Bool("debug", false, "Log search traces and cache invalidations")
	showDump    = flag.Bool("dump", true, "Print the edge state matrix")
	showDOT     = flag.Bool("dot", false, "Print the graph in Graphviz DOT format")
	dotOut      = flag.String("dot-out", "", "Write the Graphviz DOT export to this file or directory")
	showVersion = flag.Bool("version", false, "Print version and exit")
	from        = flag.String("from", "tool", "Source frame name")
	to          = flag.String("to", "camera", "Target frame name")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("rigctl"))
		return
	}
	monitoring.SetDebug(*debugMode)

	cfg := config.DefaultTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		log.Printf("[rigctl] loaded tuning config from %s", *configPath)
	}

	opts := reportOptions{from: *from, to: *to, dump: *showDump, dot: *showDOT, dotOut: *dotOut}
	if err := run(os.Stdout, cfg, timeutil.RealClock{}, opts); err != nil {
		log.Fatalf("rigctl: %v", err)
	}
}

type reportOptions struct {
	from, to  string
	dump, dot bool
	dotOut    string
}

func run(w io.Writer, cfg *config.TuningConfig, clock timeutil.Clock, opts reportOptions) error {
	r, err := buildRig(cfg, clock)
	if err != nil {
		return err
	}
	return r.report(w, opts)
}
