package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tum-gis/rtron-sub004/internal/fsutil"
	"github.com/tum-gis/rtron-sub004/internal/monitoring"
	"github.com/tum-gis/rtron-sub004/internal/report"
)

func init() {
	monitoring.SetLogger(nil)
}

const validDataset = `<?xml version="1.0"?>
<OpenDRIVE>
  <header revMajor="1" revMinor="6" name="sample"/>
  <road id="1" name="main" length="50" junction="-1">
    <planView>
      <geometry s="0" x="0" y="0" hdg="0" length="50"><line/></geometry>
    </planView>
    <lanes>
      <laneSection s="0">
        <left>
          <lane id="1" type="driving" level="false">
            <width sOffset="0" a="3.5" b="0" c="0" d="0"/>
          </lane>
        </left>
        <center><lane id="0" type="none" level="false"/></center>
        <right>
          <lane id="-1" type="sidewalk" level="false">
            <width sOffset="0" a="2" b="0" c="0" d="0"/>
          </lane>
        </right>
      </laneSection>
    </lanes>
  </road>
</OpenDRIVE>`

const unsupportedDataset = `<?xml version="1.0"?>
<OpenDRIVE>
  <header revMajor="2" revMinor="0" name="future"/>
</OpenDRIVE>`

func newTestDriver(t *testing.T, mode Mode, inputDir string) (*Driver, *fsutil.MemoryFileSystem) {
	t.Helper()
	fs := fsutil.NewMemoryFileSystem()
	driver, err := NewDriverWithFileSystem(Options{
		Mode:                        mode,
		InputDir:                    inputDir,
		OutputDir:                   "/out",
		Tolerance:                   1e-7,
		DiscretizationStepSize:      0.7,
		SweepDiscretizationStepSize: 0.3,
		CircleSlices:                16,
	}, fs)
	require.NoError(t, err)
	return driver, fs
}

func writeDataset(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDriver_ConvertSuccess(t *testing.T) {
	input := t.TempDir()
	writeDataset(t, filepath.Join(input, "town"), "main.xodr", validDataset)

	driver, fs := newTestDriver(t, ModeConvert, input)
	code := driver.Run(context.Background())
	assert.Equal(t, ExitSuccess, code)

	gml, err := fs.ReadFile("/out/town/main.gml")
	require.NoError(t, err, "CityGML output mirrors the input tree")
	assert.Contains(t, string(gml), "core:CityModel")
	assert.Contains(t, string(gml), "trans:TrafficSpace")

	reportData, err := fs.ReadFile("/out/town/main.report.json")
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(reportData, &rep))
	assert.Equal(t, 0, rep.Summary().Fatals)
}

func TestDriver_ValidateOnlyWritesReport(t *testing.T) {
	input := t.TempDir()
	writeDataset(t, input, "main.xodr", validDataset)

	driver, fs := newTestDriver(t, ModeValidate, input)
	code := driver.Run(context.Background())
	assert.Equal(t, ExitSuccess, code)

	for _, name := range fs.Files() {
		assert.False(t, strings.HasSuffix(name, ".gml"), "validation must not write CityGML: %s", name)
	}
	_, err := fs.ReadFile("/out/main.report.json")
	assert.NoError(t, err)
}

func TestDriver_UnsupportedVersion(t *testing.T) {
	input := t.TempDir()
	writeDataset(t, input, "future.xodr", unsupportedDataset)

	driver, fs := newTestDriver(t, ModeConvert, input)
	code := driver.Run(context.Background())
	assert.Equal(t, ExitUnsupportedVersion, code)

	reportData, err := fs.ReadFile("/out/future.report.json")
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(reportData, &rep))
	assert.GreaterOrEqual(t, rep.Summary().Fatals, 1)
}

func TestDriver_EmptyInputIsUsageError(t *testing.T) {
	driver, _ := newTestDriver(t, ModeConvert, t.TempDir())
	assert.Equal(t, ExitUsage, driver.Run(context.Background()))
}

func TestDriver_FatalEntryYieldsExitOne(t *testing.T) {
	// A road whose lane section misses the center lane survives reading but
	// must fail the run.
	broken := strings.Replace(validDataset,
		"<center><lane id=\"0\" type=\"none\" level=\"false\"/></center>", "", 1)
	input := t.TempDir()
	writeDataset(t, input, "broken.xodr", broken)

	driver, _ := newTestDriver(t, ModeConvert, input)
	assert.Equal(t, ExitFatal, driver.Run(context.Background()))
}

func TestDriver_StopSkipsRemainingDatasets(t *testing.T) {
	input := t.TempDir()
	writeDataset(t, input, "one.xodr", validDataset)
	writeDataset(t, input, "two.xodr", validDataset)

	driver, fs := newTestDriver(t, ModeConvert, input)
	driver.Stop()
	driver.Run(context.Background())
	assert.Empty(t, fs.Files(), "no dataset may be processed after stop")
}

func TestDriver_WorstExitCodeWins(t *testing.T) {
	input := t.TempDir()
	writeDataset(t, input, "a_good.xodr", validDataset)
	writeDataset(t, input, "b_future.xodr", unsupportedDataset)

	driver, _ := newTestDriver(t, ModeConvert, input)
	assert.Equal(t, ExitUnsupportedVersion, driver.Run(context.Background()))
}
