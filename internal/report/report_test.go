package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *Store {
	t.Helper()
	store, err := Load(context.Background(), FileSource{Path: filepath.Join("testdata", name)})
	require.NoError(t, err)
	require.True(t, store.Available())
	return store
}

func TestDecodeJSONKeepsInsertionOrder(t *testing.T) {
	r := loadFixture(t, "report.json").Report()

	assert.Equal(t, []string{"CS101", "CS102", "CS103", "CS104"}, r.ByModule.Labels())
	assert.Equal(t, []float64{12, 7, 7, 20}, r.ByModule.Values())
	assert.Equal(t, []string{"High", "Medium", "Low"}, r.RiskCounts.Labels())
	assert.Equal(t, []string{"Week1", "Week2"}, r.ByWeekModuleAll.Weeks())
	require.NotNil(t, r.TotalRecords)
	assert.Equal(t, 42, *r.TotalRecords)
}

func TestDecodeCoercesValues(t *testing.T) {
	r := loadFixture(t, "report.json").Report()

	v, ok := r.ByModuleAttendance.Get("CS102")
	require.True(t, ok)
	assert.Equal(t, 3.0, v, "numeric strings coerce")

	v, ok = r.ByModuleAttendance.Get("CS103")
	require.True(t, ok)
	assert.Equal(t, 0.0, v, "null becomes zero")
}

func TestDecodeYAML(t *testing.T) {
	store := loadFixture(t, "report.yaml")
	r := store.Report()

	assert.Equal(t, []string{"CS101", "CS102", "CS103", "CS104"}, r.ByModule.Labels())
	assert.True(t, r.ResolvedCounts.Empty())
	assert.Nil(t, r.ByModuleAttendance)
	assert.Equal(t, []string{"Week1", "Week2"}, r.WeekLabels())
	assert.NotEmpty(t, store.Fingerprint())
}

func TestDecodeNonObjectMappingIsEmpty(t *testing.T) {
	r, err := Decode([]byte(`{"by_module": 5, "risk_counts": ["a"], "resolved_counts": null}`), FormatJSON)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.ByModule.Empty())
	assert.True(t, r.RiskCounts.Empty())
	assert.Nil(t, r.ResolvedCounts)
}

func TestDecodeEmptyPayload(t *testing.T) {
	for _, raw := range []string{"", "  ", "null"} {
		r, err := Decode([]byte(raw), FormatJSON)
		require.NoError(t, err)
		assert.Nil(t, r)
	}
}

func TestLoadMissingFileIsNoReport(t *testing.T) {
	store, err := Load(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)
	assert.False(t, store.Available())
	assert.Nil(t, store.Report())
	assert.Empty(t, store.Fingerprint())
}

func TestLoadMalformedPayload(t *testing.T) {
	_, err := Load(context.Background(), staticSource{raw: []byte(`{"by_module": {`)})
	require.Error(t, err)
}

func TestResolvedRelabelsNull(t *testing.T) {
	r := loadFixture(t, "report.json").Report()
	assert.Equal(t, []string{"Yes", "No", UnknownLabel}, r.Resolved().Labels())
}

func TestModuleCountsFallback(t *testing.T) {
	r := loadFixture(t, "report.json").Report()

	assert.Equal(t, []string{"CS101", "CS104"}, r.ModuleCounts(false, "Week1").Labels())
	assert.Equal(t, r.ByModule, r.ModuleCounts(false, "Week9"))
	assert.Equal(t, r.ByModule, r.ModuleCounts(false, ""))
	assert.Equal(t, r.ByModuleAttendance, r.ModuleCounts(true, "Week2"))
	assert.Equal(t, []string{"CS104", "CS101"}, r.ModuleCounts(true, "Week1").Labels())

	var nilReport *Report
	assert.Nil(t, nilReport.ModuleCounts(true, "Week1"))
}

func TestRowsKeepColumnOrder(t *testing.T) {
	r := loadFixture(t, "report.json").Report()
	require.Len(t, r.SampleRows, 1)
	assert.Equal(t, []string{"Student Number", "Module", "Week"}, r.SampleRows[0].Columns())
	assert.Equal(t, "1", r.SampleRows[0].Value("Week"))

	cols := Columns(append(r.SampleRows, NewRow("Risk", "High", "Module", "CS102")))
	assert.Equal(t, []string{"Student Number", "Module", "Week", "Risk"}, cols)
}

func TestValidateReportsWarnings(t *testing.T) {
	r, err := Decode([]byte(`{
		"by_module": {"A": 3, "B": -1},
		"resolved_rate": {"W1": 40, "W2": 140},
		"week_risk": {"weeks": ["W1", "W2"], "series": [{"name": "High", "data": [1]}]}
	}`), FormatJSON)
	require.NoError(t, err)

	warnings := Validate(r)
	require.Len(t, warnings, 3)
	assert.Equal(t, "by_module", warnings[0].Field)
	assert.Equal(t, "B", warnings[0].Label)
	assert.Equal(t, "resolved_rate", warnings[1].Field)
	assert.Equal(t, "W2", warnings[1].Label)
	assert.Equal(t, "week_risk.series", warnings[2].Field)
	assert.Contains(t, warnings[2].String(), "1 points for 2 weeks")
}

func TestValidateCleanFixture(t *testing.T) {
	assert.Empty(t, Validate(loadFixture(t, "report.json").Report()))
	assert.Empty(t, Validate(nil))
}

type staticSource struct {
	raw []byte
	err error
}

func (s staticSource) Fetch(context.Context) ([]byte, Format, error) {
	return s.raw, FormatJSON, s.err
}

type stubRow struct {
	payload *string
	err     error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(**string)) = r.payload
	return nil
}

type stubDB struct {
	row stubRow
}

func (s stubDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return s.row
}

func TestPostgresSource(t *testing.T) {
	payload := `{"by_module": {"CS101": 2}}`
	store, err := Load(context.Background(), PostgresSource{DB: stubDB{row: stubRow{payload: &payload}}})
	require.NoError(t, err)
	require.True(t, store.Available())
	assert.Equal(t, []string{"CS101"}, store.Report().ByModule.Labels())

	store, err = Load(context.Background(), PostgresSource{DB: stubDB{row: stubRow{err: pgx.ErrNoRows}}})
	require.NoError(t, err)
	assert.False(t, store.Available())

	_, err = Load(context.Background(), PostgresSource{DB: stubDB{row: stubRow{err: errors.New("boom")}}})
	require.Error(t, err)
}
