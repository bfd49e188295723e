// Command rtron converts OpenDRIVE road networks to CityGML city models and
// validates OpenDRIVE datasets.
//
// Usage:
//
//	rtron opendrive-to-citygml <inputDir> <outputDir> [options]
//	rtron validate-opendrive <inputDir> <outputDir> [options]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tum-gis/rtron-sub004/internal/batch"
	"github.com/tum-gis/rtron-sub004/internal/monitoring"
	"github.com/tum-gis/rtron-sub004/internal/params"
	"github.com/tum-gis/rtron-sub004/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return usage()
	}
	switch args[0] {
	case "opendrive-to-citygml":
		return runSubcommand(batch.ModeConvert, args[1:])
	case "validate-opendrive":
		return runSubcommand(batch.ModeValidate, args[1:])
	case "version", "-version", "--version", "-v":
		fmt.Printf("rtron %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return batch.ExitSuccess
	default:
		return usage()
	}
}

func usage() int {
	return batch.UsageError("usage: rtron <opendrive-to-citygml|validate-opendrive> <inputDir> <outputDir> [options]")
}

func runSubcommand(mode batch.Mode, args []string) int {
	fs := flag.NewFlagSet("rtron", flag.ContinueOnError)
	var (
		convertToCityGML2 = fs.Bool("convert-to-citygml2", false, "Emit CityGML 2.0 instead of 3.0")
		tolerance         = fs.Float64("tolerance", 1e-7, "Global numeric tolerance")
		crsEPSG           = fs.Int("crs-epsg", 0, "Override source CRS via EPSG code")
		offsetX           = fs.Float64("offset-x", 0, "Translate output by x")
		offsetY           = fs.Float64("offset-y", 0, "Translate output by y")
		offsetZ           = fs.Float64("offset-z", 0, "Translate output by z")
		stepSize          = fs.Float64("discretization-step-size", 0.7, "Sampling step for curves and ruled surfaces")
		sweepStepSize     = fs.Float64("sweep-discretization-step-size", 0.3, "Sampling step for parametric sweeps")
		circleSlices      = fs.Int("circle-slices", 16, "Slices for cylinders and circles")
		roadLines         = fs.Bool("transform-additional-road-lines", false, "Emit reference line, lane boundaries and center lines as generic objects")
		concurrent        = fs.Bool("concurrent-processing", false, "Transform roads in parallel workers")
		randomGeomIDs     = fs.Bool("generate-random-geometry-ids", false, "Assign random ids to anonymous geometry elements")
		crsRegistry       = fs.String("crs-registry", "", "Path to a CRS registry database (sqlite); embedded table if empty")
		parameterFile     = fs.String("parameters", "", "Load all parameters from a JSON file")
	)
	if err := fs.Parse(args); err != nil {
		return batch.ExitUsage
	}
	if fs.NArg() != 2 {
		return usage()
	}
	inputDir, outputDir := fs.Arg(0), fs.Arg(1)
	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		return batch.UsageError("input directory %s does not exist", inputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		monitoring.Logf("failed to create output directory: %v", err)
		return batch.ExitIO
	}

	opts := batch.Options{
		Mode:                         mode,
		InputDir:                     inputDir,
		OutputDir:                    outputDir,
		Tolerance:                    *tolerance,
		CrsEPSG:                      *crsEPSG,
		Offset:                       [3]float64{*offsetX, *offsetY, *offsetZ},
		DiscretizationStepSize:       *stepSize,
		SweepDiscretizationStepSize:  *sweepStepSize,
		CircleSlices:                 *circleSlices,
		ConvertToCityGML2:            *convertToCityGML2,
		TransformAdditionalRoadLines: *roadLines,
		ConcurrentProcessing:         *concurrent,
		GenerateRandomGeometryIDs:    *randomGeomIDs,
		CRSRegistryPath:              *crsRegistry,
	}

	// A parameter file provides base values; explicitly set flags win.
	if *parameterFile != "" {
		p, err := params.Load(*parameterFile)
		if err != nil {
			return batch.UsageError("parameter file: %v", err)
		}
		applyParameters(&opts, p, explicitFlags(fs))
	}

	driver, err := batch.NewDriver(opts)
	if err != nil {
		monitoring.Logf("driver setup failed: %v", err)
		return batch.ExitIO
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		driver.Stop()
	}()

	return driver.Run(ctx)
}

// explicitFlags reports which flags were set on the command line.
func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyParameters merges file values into opts for flags the user did not
// set explicitly.
func applyParameters(opts *batch.Options, p *params.Parameters, explicit map[string]bool) {
	if p.Tolerance != nil && !explicit["tolerance"] {
		opts.Tolerance = *p.Tolerance
	}
	if p.CrsEPSG != nil && !explicit["crs-epsg"] {
		opts.CrsEPSG = *p.CrsEPSG
	}
	if p.Offset != nil && !explicit["offset-x"] && !explicit["offset-y"] && !explicit["offset-z"] {
		opts.Offset = *p.Offset
	}
	if p.DiscretizationStepSize != nil && !explicit["discretization-step-size"] {
		opts.DiscretizationStepSize = *p.DiscretizationStepSize
	}
	if p.SweepDiscretizationStepSize != nil && !explicit["sweep-discretization-step-size"] {
		opts.SweepDiscretizationStepSize = *p.SweepDiscretizationStepSize
	}
	if p.CircleSlices != nil && !explicit["circle-slices"] {
		opts.CircleSlices = *p.CircleSlices
	}
	if p.ConvertToCityGML2 != nil && !explicit["convert-to-citygml2"] {
		opts.ConvertToCityGML2 = *p.ConvertToCityGML2
	}
	if p.TransformAdditionalRoadLines != nil && !explicit["transform-additional-road-lines"] {
		opts.TransformAdditionalRoadLines = *p.TransformAdditionalRoadLines
	}
	if p.ConcurrentProcessing != nil && !explicit["concurrent-processing"] {
		opts.ConcurrentProcessing = *p.ConcurrentProcessing
	}
	if p.GenerateRandomGeometryIDs != nil && !explicit["generate-random-geometry-ids"] {
		opts.GenerateRandomGeometryIDs = *p.GenerateRandomGeometryIDs
	}
}
