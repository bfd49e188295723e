// Package batch drives whole conversion runs: it walks an input tree for
// OpenDRIVE datasets, runs validation and the two transformations per
// dataset, and writes CityGML plus a JSON report mirroring the input
// structure.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/tum-gis/rtron-sub004/internal/citygml"
	"github.com/tum-gis/rtron-sub004/internal/crs"
	"github.com/tum-gis/rtron-sub004/internal/fsutil"
	"github.com/tum-gis/rtron-sub004/internal/monitoring"
	"github.com/tum-gis/rtron-sub004/internal/opendrive"
	"github.com/tum-gis/rtron-sub004/internal/opendrive/validator"
	"github.com/tum-gis/rtron-sub004/internal/report"
	"github.com/tum-gis/rtron-sub004/internal/transform/opendrive2roadspace"
	"github.com/tum-gis/rtron-sub004/internal/transform/roadspace2citygml"
)

// Exit codes of the driver.
const (
	ExitSuccess            = 0
	ExitFatal              = 1
	ExitUsage              = 2
	ExitIO                 = 3
	ExitUnsupportedVersion = 4
)

// Mode selects what the driver produces.
type Mode int

const (
	// ModeConvert validates, transforms and writes CityGML.
	ModeConvert Mode = iota
	// ModeValidate validates and writes reports only.
	ModeValidate
)

// Options configures a run.
type Options struct {
	Mode      Mode
	InputDir  string
	OutputDir string

	Tolerance                    float64
	CrsEPSG                      int
	Offset                       [3]float64
	DiscretizationStepSize       float64
	SweepDiscretizationStepSize  float64
	CircleSlices                 int
	ConvertToCityGML2            bool
	TransformAdditionalRoadLines bool
	ConcurrentProcessing         bool
	GenerateRandomGeometryIDs    bool
	// CRSRegistryPath points at an optional registry database; empty uses
	// the embedded table.
	CRSRegistryPath string
	// EmitPartialResults serializes output even after cancellation.
	EmitPartialResults bool
}

// Driver runs datasets one at a time.
type Driver struct {
	opts Options
	crs  *crs.Service
	fs   fsutil.FileSystem
	stop atomic.Bool
}

// NewDriver builds a driver; the CRS service is constructed once and
// immutable afterwards.
func NewDriver(opts Options) (*Driver, error) {
	return NewDriverWithFileSystem(opts, fsutil.OSFileSystem{})
}

// NewDriverWithFileSystem builds a driver writing through the given
// filesystem; tests use an in-memory one.
func NewDriverWithFileSystem(opts Options, fileSystem fsutil.FileSystem) (*Driver, error) {
	service, err := crs.NewService(opts.CRSRegistryPath)
	if err != nil {
		return nil, err
	}
	return &Driver{opts: opts, crs: service, fs: fileSystem}, nil
}

// Stop requests cancellation; in-flight datasets run to completion.
func (d *Driver) Stop() { d.stop.Store(true) }

// Run processes every dataset under the input directory and returns the
// process exit code.
func (d *Driver) Run(ctx context.Context) int {
	datasets, err := findDatasets(d.opts.InputDir)
	if err != nil {
		monitoring.Logf("failed to scan input directory: %v", err)
		return ExitIO
	}
	if len(datasets) == 0 {
		monitoring.Logf("no OpenDRIVE datasets found under %s", d.opts.InputDir)
		return ExitUsage
	}

	worst := ExitSuccess
	for i, path := range datasets {
		if ctx.Err() != nil || d.stop.Load() {
			monitoring.Logf("cancellation requested; %d of %d datasets processed", i, len(datasets))
			break
		}
		code := d.processDataset(path)
		if code > worst {
			worst = code
		}
		monitoring.Logf("processed dataset %d/%d: %s", i+1, len(datasets), path)
	}
	return worst
}

// findDatasets collects OpenDRIVE files under root in walk order.
func findDatasets(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xodr") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// outputBase returns the mirrored output path for a dataset without
// extension, creating the directory.
func (d *Driver) outputBase(datasetPath string) (string, error) {
	rel, err := filepath.Rel(d.opts.InputDir, datasetPath)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	outPath := filepath.Join(d.opts.OutputDir, base)
	if err := d.fs.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	return outPath, nil
}

// processDataset runs one dataset end to end and returns its exit code.
func (d *Driver) processDataset(path string) int {
	rep := &report.Report{}
	base, err := d.outputBase(path)
	if err != nil {
		monitoring.Logf("dataset %s: %v", path, err)
		return ExitIO
	}

	code := d.runDataset(path, rep)
	if code == ExitSuccess && rep.HasFatal() {
		code = ExitFatal
	}

	cancelled := d.stop.Load()
	if !cancelled || d.opts.EmitPartialResults {
		if err := d.writeReport(rep, base+".report.json"); err != nil {
			monitoring.Logf("dataset %s: failed to write report: %v", path, err)
			if code == ExitSuccess {
				code = ExitIO
			}
		}
	}
	summary := rep.Summary()
	monitoring.Logf("dataset %s: %d warnings, %d errors, %d fatals",
		path, summary.Warnings, summary.Errors, summary.Fatals)
	return code
}

func (d *Driver) runDataset(path string, rep *report.Report) int {
	loc := filepath.Base(path)

	major, minor, err := opendrive.SniffVersion(path)
	if err != nil {
		rep.Fatal(loc, "unreadable dataset header: %v", err)
		return ExitIO
	}
	model, err := opendrive.ReadFile(path)
	if err != nil {
		if errors.Is(err, opendrive.ErrUnsupportedVersion) {
			rep.Fatal(loc, "unsupported OpenDRIVE version %d.%d", major, minor)
			return ExitUnsupportedVersion
		}
		rep.Fatal(loc, "failed to read dataset: %v", err)
		return ExitIO
	}

	model = validator.Validate(model, validator.Options{Tolerance: d.opts.Tolerance}, rep)
	if d.opts.Mode == ModeValidate {
		return ExitSuccess
	}

	if d.opts.CrsEPSG != 0 && !d.crs.Known(d.opts.CrsEPSG) {
		rep.Warning(loc, "EPSG code %d not found in CRS registry", d.opts.CrsEPSG)
	}

	o2rOpts := opendrive2roadspace.DefaultOptions()
	o2rOpts.ModelName = strings.TrimSuffix(loc, filepath.Ext(loc))
	o2rOpts.Tolerance = d.opts.Tolerance
	o2rOpts.DiscretizationStepSize = d.opts.DiscretizationStepSize
	o2rOpts.SweepDiscretizationStepSize = d.opts.SweepDiscretizationStepSize
	o2rOpts.CircleSlices = d.opts.CircleSlices
	o2rOpts.CrsEPSG = d.opts.CrsEPSG
	o2rOpts.Offset = d.opts.Offset
	o2rOpts.ConcurrentProcessing = d.opts.ConcurrentProcessing

	rsModel, err := opendrive2roadspace.TransformModel(model, o2rOpts, rep)
	if err != nil {
		rep.Fatal(loc, "road space transformation failed: %v", err)
		return ExitFatal
	}

	version := citygml.Version3
	if d.opts.ConvertToCityGML2 {
		version = citygml.Version2
	}
	r2cOpts := roadspace2citygml.Options{
		Version:                      version,
		GMLIDPrefix:                  roadspace2citygml.DefaultGMLIDPrefix,
		GenerateRandomGeometryIDs:    d.opts.GenerateRandomGeometryIDs,
		TransformAdditionalRoadLines: d.opts.TransformAdditionalRoadLines,
		DiscretizationStepSize:       d.opts.DiscretizationStepSize,
		Tolerance:                    d.opts.Tolerance,
		ConcurrentProcessing:         d.opts.ConcurrentProcessing,
	}
	doc, err := roadspace2citygml.TransformModel(rsModel, r2cOpts, rep)
	if err != nil {
		rep.Fatal(loc, "CityGML transformation failed: %v", err)
		return ExitFatal
	}

	if d.stop.Load() && !d.opts.EmitPartialResults {
		return ExitSuccess
	}
	base, err := d.outputBase(path)
	if err != nil {
		return ExitIO
	}
	out, err := d.fs.Create(base + ".gml")
	if err != nil {
		rep.Fatal(loc, "failed to create CityGML output: %v", err)
		return ExitIO
	}
	writeErr := citygml.Write(doc, out)
	if closeErr := out.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		rep.Fatal(loc, "failed to write CityGML output: %v", writeErr)
		return ExitIO
	}
	return ExitSuccess
}

func (d *Driver) writeReport(rep *report.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return d.fs.WriteFile(path, data, 0o644)
}

// Usage error helper for the CLI.
func UsageError(format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return ExitUsage
}
