package nircam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hbushouse/jwreftools/beam"
	"github.com/hbushouse/jwreftools/conf"
	"github.com/hbushouse/jwreftools/poly"
	"github.com/hbushouse/jwreftools/reffile"
)

// ============================================================================
// NIRCAM BUILDER TESTS
// ============================================================================

var fixedNow = time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)

func clock() time.Time { return fixedNow }

const oneBeamConf = `INSTRUMENT NIRCAM
DISPL_A_0 0.0
DISPL_A_1 2.0
DISPX_A_0 5.0
DISPX_A_1 0.0
DISPY_A_0 -1.5
DISPY_A_1 3.0
`

const twoBeamConf = `# orders +1 and +2
XOFF_+1 0.0
DISPL_+1_0 2.4
DISPL_+1_1 2.6
DISPX_+1_0 -110.5
DISPX_+1_1 1200.0
DISPY_+1_0 0.0
DISPY_+1_1 0.0
DISPL_+2_0 2.4
DISPL_+2_1 1.3
DISPX_+2_0 -60.0
DISPX_+2_1 2400.0
DISPY_+2_0 0.0
DISPY_+2_1 0.0
SENSITIVITY_+1 NIRCam.A.1st.sensitivity.fits
`

func writeConf(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCreateGrismSpecWCSOneBeam(t *testing.T) {
	dir := t.TempDir()
	confPath := writeConf(t, dir, "NIRCAM_F444W_modA_R.conf", oneBeamConf)
	out := filepath.Join(dir, "out.asdf")

	model, err := CreateGrismSpecWCS(context.Background(), confPath,
		WithOutName(out), WithClock(clock))
	require.NoError(t, err)

	assert.Equal(t, []int{1}, model.Orders)
	for name, c := range map[string][]poly.Polynomial1D{
		"displ": model.Displ, "dispx": model.Dispx, "dispy": model.Dispy,
		"invdispl": model.Invdispl, "invdispx": model.Invdispx, "invdispy": model.Invdispy,
	} {
		assert.Len(t, c, 1, name)
	}

	assert.InDelta(t, 2.0, model.Displ[0].Eval(1), 1e-12)
	assert.InDelta(t, 1.0, model.Invdispl[0].Eval(2.0), 1e-12)
	for _, v := range []float64{-3, 0, 7.5} {
		assert.Zero(t, model.Invdispx[0].Eval(v), "zero slope inverts to zero")
	}
	assert.InDelta(t, 0.5, model.Invdispy[0].Eval(0), 1e-12)

	var onDisk reffile.GrismModel
	require.NoError(t, reffile.ReadFile(out, &onDisk))
	if diff := cmp.Diff(model, &onDisk); diff != "" {
		t.Errorf("written file mismatch (-built +read):\n%s", diff)
	}
}

func TestCreateGrismSpecWCSMetadata(t *testing.T) {
	dir := t.TempDir()
	confPath := writeConf(t, dir, "NIRCAM_F444W_modA_R.conf", oneBeamConf)

	model, err := CreateGrismSpecWCS(context.Background(), confPath,
		WithOutName(filepath.Join(dir, "nircam_wfss_specwcs.asdf")),
		WithAuthor("N. Pirzkal"),
		WithClock(clock))
	require.NoError(t, err)

	meta := model.Meta
	assert.Equal(t, "specwcs", meta.Reftype)
	assert.Equal(t, "NIRCAM Grism Parameters", meta.Title)
	assert.Equal(t, "GRISMR dispersion models", meta.Description)
	assert.Equal(t, "N. Pirzkal", meta.Author)
	assert.Equal(t, reffile.Exposure{Type: "NRC_WFSS", PExpType: "NRC_WFSS|NRC_TSGRISM"}, meta.Exposure)
	assert.Equal(t, reffile.Instrument{Name: "NIRCAM", Filter: "F444W", Pupil: "GRISMR", Module: "A"}, meta.Instrument)
	assert.Equal(t, "NIRCAMGrismModel", meta.ModelType)
	assert.Equal(t, "nircam_wfss_specwcs.asdf", meta.Filename)
	assert.Equal(t, reffile.Micron, meta.InputUnits)
	assert.Equal(t, reffile.Micron, meta.OutputUnits)

	require.Len(t, model.History, 1)
	h := model.History[0]
	assert.Equal(t, "Created from "+confPath, h.Description)
	assert.True(t, h.Time.Equal(fixedNow))
	assert.Equal(t, reffile.Software{
		Name:     "nircam_grism_reffiles.py",
		Author:   "N. Pirzkal",
		Homepage: "https://github.com/spacetelescope/jwreftools",
		Version:  "0.8.0",
	}, h.Software)
}

func TestCreateGrismSpecWCSDefaultOutName(t *testing.T) {
	dir := t.TempDir()
	confPath := writeConf(t, dir, "NIRCAM_F322W2_modB_C.conf", oneBeamConf)
	t.Chdir(dir)

	model, err := CreateGrismSpecWCS(context.Background(), confPath, WithHistory("test run"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, DefaultSpecWCSName))
	assert.NoError(t, err)
	assert.Equal(t, "test run", model.History[0].Description)
	assert.Equal(t, "NRC_WFSS", model.Meta.Exposure.PExpType)
}

func TestCreateGrismSpecWCSExplicitInstrument(t *testing.T) {
	dir := t.TempDir()
	confPath := writeConf(t, dir, "grism.conf", oneBeamConf)

	core, logs := observer.New(zapcore.InfoLevel)
	model, err := CreateGrismSpecWCS(context.Background(), confPath,
		WithFilter("F356W"), WithPupil("GRISMR"), WithModule("A"),
		WithOutName(filepath.Join(dir, "out.asdf")),
		WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, "F356W", model.Meta.Instrument.Filter)
	assert.Equal(t, 0, logs.FilterMessageSnippet("inferred").Len(), "nothing inferred")
}

func TestCreateGrismSpecWCSLogsInferredFields(t *testing.T) {
	dir := t.TempDir()
	confPath := writeConf(t, dir, "NIRCAM_F444W_modB_C.conf", oneBeamConf)

	core, logs := observer.New(zapcore.InfoLevel)
	_, err := CreateGrismSpecWCS(context.Background(), confPath,
		WithPupil("GRISMC"),
		WithOutName(filepath.Join(dir, "out.asdf")),
		WithLogger(zap.New(core)))
	require.NoError(t, err)

	inferred := logs.FilterMessageSnippet("inferred from file name").All()
	require.Len(t, inferred, 2)
	assert.Equal(t, "F444W", inferred[0].ContextMap()["filter"])
	assert.Equal(t, "B", inferred[1].ContextMap()["module"])
}

func TestCreateGrismSpecWCSTwoBeams(t *testing.T) {
	dir := t.TempDir()
	confPath := writeConf(t, dir, "NIRCAM_F444W_modA_R.conf", twoBeamConf)

	model, err := CreateGrismSpecWCS(context.Background(), confPath,
		WithOutName(filepath.Join(dir, "out.asdf")))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, model.Orders)
	assert.Equal(t, poly.Linear(-110.5, 1200.0), model.Dispx[0])
	assert.Equal(t, poly.Linear(2.4, 1.3), model.Displ[1])
}

func TestCreateGrismSpecWCSErrorsWriteNothing(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "missing dispy",
			body:    "DISPL_A_0 0\nDISPL_A_1 2\nDISPX_A_0 0\nDISPX_A_1 1\n",
			wantErr: ErrMissingCoefficients,
		},
		{
			name:    "incomplete pair dropped then missing",
			body:    "DISPL_A_0 0\nDISPX_A_0 0\nDISPX_A_1 1\nDISPY_A_0 0\nDISPY_A_1 0\n",
			wantErr: ErrMissingCoefficients,
		},
		{
			name:    "no beams",
			body:    "INSTRUMENT NIRCAM\n",
			wantErr: ErrMissingCoefficients,
		},
		{
			name:    "beam not an order",
			body:    "DISPL_Z_0 0\nDISPL_Z_1 2\nDISPX_Z_0 0\nDISPX_Z_1 1\nDISPY_Z_0 0\nDISPY_Z_1 0\n",
			wantErr: beam.ErrBeamNotInteger,
		},
		{
			name:    "unexpected range",
			body:    "DISPL_A_0 0\nDISPL_A_7 2\n",
			wantErr: beam.ErrUnexpectedRange,
		},
		{
			name:    "min max",
			body:    "BEAMA low 10\n",
			wantErr: conf.ErrMinMaxExpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			confPath := writeConf(t, dir, "NIRCAM_F444W_modA_R.conf", tt.body)
			out := filepath.Join(dir, "out.asdf")

			_, err := CreateGrismSpecWCS(context.Background(), confPath, WithOutName(out))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr), "no artifact on failure")
		})
	}
}

func TestCreateGrismSpecWCSFilenameInferenceFails(t *testing.T) {
	dir := t.TempDir()
	confPath := writeConf(t, dir, "grism.conf", oneBeamConf)

	_, err := CreateGrismSpecWCS(context.Background(), confPath,
		WithOutName(filepath.Join(dir, "out.asdf")))
	assert.ErrorIs(t, err, ErrFilenameInference)
}

func TestCreateGrismSpecWCSCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CreateGrismSpecWCS(ctx, "NIRCAM_F444W_modA_R.conf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildDispersionRejectsStringCoefficients(t *testing.T) {
	rec := conf.NewRecord()
	rec.Set("DISPL_A", conf.String("table.fits"))
	beams, err := beam.Split(rec)
	require.NoError(t, err)

	_, err = BuildDispersion(beams)
	assert.ErrorIs(t, err, ErrMissingCoefficients)
	assert.Contains(t, err.Error(), "not a pair")
}

func TestInferInstrument(t *testing.T) {
	tests := []struct {
		path string
		want Instrument
	}{
		{"NIRCAM_F444W_modA_R.conf", Instrument{"F444W", "GRISMR", "A"}},
		{"NIRCAM_F322W2_modB_C.conf", Instrument{"F322W2", "GRISMC", "B"}},
		{"/data/grism_v2/NIRCAM_F250M_modA_C.conf", Instrument{"F250M", "GRISMC", "A"}},
	}
	for _, tt := range tests {
		got, err := InferInstrument(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	for _, bad := range []string{"grism.conf", "ab", "X__.conf"} {
		_, err := InferInstrument(bad)
		assert.ErrorIs(t, err, ErrFilenameInference, bad)
	}
}

func TestPExpType(t *testing.T) {
	tests := []struct {
		inst Instrument
		want string
	}{
		{Instrument{"F277W", "GRISMR", "A"}, "NRC_WFSS|NRC_TSGRISM"},
		{Instrument{"F444W", "GRISMR", "A"}, "NRC_WFSS|NRC_TSGRISM"},
		{Instrument{"F444W", "GRISMR", "B"}, "NRC_WFSS"},
		{Instrument{"F444W", "GRISMC", "A"}, "NRC_WFSS"},
		{Instrument{"F250M", "GRISMR", "A"}, "NRC_WFSS"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PExpType(tt.inst), "%+v", tt.inst)
	}
}

// ============================================================================
// BATCH
// ============================================================================

func TestCreateGrismSpecWCSBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	var confs []string
	for _, f := range []string{"F277W", "F322W2", "F356W", "F444W"} {
		confs = append(confs, writeConf(t, dir, fmt.Sprintf("NIRCAM_%s_modA_R.conf", f), twoBeamConf))
	}

	models, err := CreateGrismSpecWCSBatch(context.Background(), confs, outDir,
		WithJobs(2), WithClock(clock))
	require.NoError(t, err)
	require.Len(t, models, len(confs))

	for i, m := range models {
		assert.Equal(t, []string{"F277W", "F322W2", "F356W", "F444W"}[i], m.Meta.Instrument.Filter, "input order kept")
		_, err := os.Stat(BatchOutName(outDir, confs[i]))
		assert.NoError(t, err)
	}
	assert.Equal(t, filepath.Join(outDir, "NIRCAM_F444W_modA_R_specwcs.asdf"), BatchOutName(outDir, confs[3]))
}

func TestCreateGrismSpecWCSBatchFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	confs := []string{
		writeConf(t, dir, "NIRCAM_F444W_modA_R.conf", oneBeamConf),
		writeConf(t, dir, "NIRCAM_F356W_modA_R.conf", "DISPL_A_0 0\n"),
	}

	_, err := CreateGrismSpecWCSBatch(context.Background(), confs, dir, WithJobs(4))
	assert.ErrorIs(t, err, ErrMissingCoefficients)
}

// ============================================================================
// WAVELENGTH RANGES
// ============================================================================

func TestCreateWFSSWavelengthRangeDefaults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wfss.asdf")

	model, err := CreateWFSSWavelengthRange(context.Background(),
		WithRangeOutName(out), WithRangeClock(clock))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, model.Order)
	assert.Len(t, model.WaverangeSelector, 12)
	assert.Len(t, model.WavelengthRange, 24)
	require.Len(t, model.ExtractOrders, 12)
	for _, x := range model.ExtractOrders {
		assert.Equal(t, []int{1, 2}, x.Orders, x.Filter)
	}
	assert.Equal(t, "F250M", model.WaverangeSelector[0])
	assert.Equal(t, "F480M", model.WaverangeSelector[11])

	meta := model.Meta
	assert.Equal(t, "wavelengthrange", meta.Reftype)
	assert.Equal(t, "NIRCAM WFSS reference file", meta.Title)
	assert.Equal(t, reffile.Exposure{Type: "NRC_WFSS", PExpType: "NRC_WFSS"}, meta.Exposure)
	assert.Equal(t, "ANY", meta.Instrument.Pupil)
	assert.Equal(t, "WavelengthrangeModel", meta.ModelType)
	assert.Equal(t, "Ground NIRCAM Grism wavelengthrange", model.History[0].Description)
	assert.Equal(t, "nircam_reftools.py", model.History[0].Software.Name)
	assert.Equal(t, "0.7.1", model.History[0].Software.Version)

	var onDisk reffile.WavelengthRangeModel
	require.NoError(t, reffile.ReadFile(out, &onDisk))
	if diff := cmp.Diff(model, &onDisk); diff != "" {
		t.Errorf("written file mismatch (-built +read):\n%s", diff)
	}
}

func TestCreateTSGrismWavelengthRangeDefaults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ts.asdf")

	model, err := CreateTSGrismWavelengthRange(context.Background(), WithRangeOutName(out))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, model.Order)
	assert.Equal(t, []string{"F277W", "F322W2", "F356W", "F444W"}, model.WaverangeSelector)
	want := []ExtractOrders{
		{Filter: "F277W", Orders: []int{1}},
		{Filter: "F322W2", Orders: []int{1}},
		{Filter: "F356W", Orders: []int{1}},
		{Filter: "F444W", Orders: []int{1}},
	}
	if diff := cmp.Diff(want, model.ExtractOrders); diff != "" {
		t.Errorf("extract orders mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "NRC_TSGRISM", model.Meta.Exposure.Type)
	assert.Equal(t, "NIRCAM TSGRISM reference file", model.Meta.Title)
	assert.Equal(t, "Ground NIRCAM TSGrism wavelengthrange", model.History[0].Description)
}

func TestWavelengthRangeOverrides(t *testing.T) {
	dir := t.TempDir()
	ranges := []RangeEntry{
		{Order: 3, Filter: "F410M", Min: 3.0, Max: 4.0},
		{Order: 1, Filter: "F410M", Min: 3.5, Max: 4.5},
		{Order: 1, Filter: "F210M", Min: 2.0, Max: 2.2},
	}

	model, err := CreateWFSSWavelengthRange(context.Background(),
		WithRanges(ranges),
		WithRangeAuthor("tester"),
		WithRangeHistory("override"),
		WithRangeOutName(filepath.Join(dir, "w.asdf")))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, model.Order)
	assert.Equal(t, []string{"F210M", "F410M"}, model.WaverangeSelector)
	assert.Equal(t, []int{1, 3}, model.ExtractOrders[0].Orders)
	assert.Equal(t, "tester", model.Meta.Author)
	assert.Equal(t, "override", model.History[0].Description)

	ranges[0].Filter = "MUTATED"
	assert.Equal(t, "F410M", model.WavelengthRange[0].Filter, "option copies its input")

	extract := []ExtractOrders{{Filter: "F410M", Orders: []int{3}}}
	model, err = CreateTSGrismWavelengthRange(context.Background(),
		WithRanges([]RangeEntry{{Order: 3, Filter: "F410M", Min: 3, Max: 4}}),
		WithExtractOrders(extract),
		WithRangeOutName(filepath.Join(dir, "t.asdf")))
	require.NoError(t, err)
	assert.Equal(t, extract, model.ExtractOrders)
}

func TestWavelengthRangeInvalidOverrideWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bad.asdf")

	_, err := CreateWFSSWavelengthRange(context.Background(),
		WithExtractOrders([]ExtractOrders{{Filter: "F999W", Orders: []int{1}}}),
		WithRangeOutName(out))
	assert.ErrorIs(t, err, reffile.ErrInvalidModel)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefaultTablesAreCopies(t *testing.T) {
	a := DefaultWFSSRanges()
	a[0].Min = -1
	assert.Len(t, DefaultWFSSRanges(), 24)
	assert.Equal(t, 2.500411072, DefaultWFSSRanges()[0].Min)

	b := DefaultTSGrismRanges()
	b[7].Filter = "X"
	assert.Equal(t, "F444W", DefaultTSGrismRanges()[7].Filter)
}

func TestDistinctOrdersFilters(t *testing.T) {
	orders, filters := DistinctOrdersFilters(nil)
	assert.Empty(t, orders)
	assert.Empty(t, filters)

	orders, filters = DistinctOrdersFilters(DefaultWFSSRanges())
	assert.Equal(t, []int{1, 2}, orders)
	assert.Len(t, filters, 12)
}
