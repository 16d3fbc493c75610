package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/phuslu/log"

	"sdkgen/internal/canconnect"
	"sdkgen/internal/config"
	"sdkgen/internal/logging"
	"sdkgen/internal/pipeline"
	"sdkgen/internal/sdkerr"
)

// version is set at link time.
var version = "dev"

// cli carries what the command handlers share. The logger is replaced once
// a handler has loaded its configuration.
type cli struct {
	tool   string
	now    func() time.Time
	runner pipeline.Runner
	log    *log.Logger
}

func newCLI() *cli {
	return &cli{
		tool:   filepath.Base(os.Args[0]),
		now:    time.Now,
		runner: pipeline.ExecRunner{},
		log:    logging.New(config.Default().Logging, "sdkgen"),
	}
}

func (c *cli) app() *orpheus.App {
	app := orpheus.New("sdkgen").
		SetDescription("NTV2 SDK generators and build helpers").
		SetVersion(version)

	app.AddGlobalBoolFlag("verbose", "v", false, "Debug logging")
	app.AddGlobalBoolFlag("failwarnings", "f", false, "Treat warnings as errors")
	app.AddGlobalFlag("config", "c", "", "Configuration file (default sdkgen.yaml if present)")
	app.AddGlobalFlag("log-format", "", "", "Log encoding: text or json")

	app.AddCommand(orpheus.NewCommand("generate", "Generate ntv2devicefeatures.hh/.hpp from canon and device files").
		SetHandler(c.generateCommand).
		AddFlag("ajantv2", "", ".", "Path to the ajantv2 folder").
		AddFlag("ohh", "", "", "Write ntv2devicefeatures.hh into this folder").
		AddFlag("ohpp", "", "", "Write ntv2devicefeatures.hpp into this folder").
		AddBoolFlag("unused", "u", false, "Report canonical symbols no device references"))

	app.AddCommand(orpheus.NewCommand("features", "Generate ntv2devicefeatures.hh/.hpp from the CSV tables").
		SetHandler(c.featuresCommand).
		AddFlag("csv", "", ".", "Folder holding the CSV tables").
		AddFlag("ohh", "", ".", "Output folder for ntv2devicefeatures.hh").
		AddFlag("ohpp", "", ".", "Output folder for ntv2devicefeatures.hpp"))

	app.AddCommand(orpheus.NewCommand("canconnect", "List crosspoint routes found in FPGA Verilog").
		SetHandler(c.canConnectCommand).
		AddFlag("input", "i", ".", "Root of the FPGA source tree").
		AddFlag("output", "o", ".", "Output folder for "+canconnect.OutputFile).
		AddFlag("device", "d", "", "Only this device (default all)"))

	app.AddCommand(orpheus.NewCommand("docs", "Build and publish the SDK documentation").
		SetHandler(c.docsCommand).
		AddFlag("version", "", "", "Expected SDK version, X.Y.Z[.B]").
		AddFlag("pipeline", "p", "", "Pipeline file (default built-in)").
		AddFlag("dir", "D", ".", "Working folder holding the SDK zips").
		AddFlag("dest", "", "", "rsync destination (default from config)").
		AddBoolFlag("nocompile", "", false, "Skip the doxygen build").
		AddBoolFlag("dry-run", "n", false, "Log steps without running them"))

	app.AddCommand(orpheus.NewCommand("qtdeploy", "Copy the Qt runtime a binary needs into an install tree").
		SetHandler(c.qtDeployCommand).
		AddFlag("tool", "", "", "Deploy tool (default windeployqt or macdeployqt)").
		AddFlag("binary", "b", "", "Binary to deploy").
		AddFlag("install", "", "", "Install folder (default from config)").
		AddBoolFlag("dry-run", "n", false, "List files without copying"))

	return app
}

func main() {
	c := newCLI()
	err := c.app().Run(os.Args[1:])
	if err != nil {
		report(c.log, err)
	}
	os.Exit(sdkerr.ExitCode(err))
}
