package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vnquant-lab/signal-engine/internal/logger"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

type BarSourceTestSuite struct {
	suite.Suite
	source *BarSource
}

func TestBarSourceSuite(t *testing.T) {
	suite.Run(t, new(BarSourceTestSuite))
}

func (suite *BarSourceTestSuite) SetupTest() {
	s, err := NewBarSource(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.source = s
}

func (suite *BarSourceTestSuite) TearDownTest() {
	if suite.source != nil {
		suite.source.Close()
	}
}

// writeHistoryCSV writes a small two-symbol history: HPG trades on the 8th,
// 9th and 10th, VCB only on the 8th and 9th.
func (suite *BarSourceTestSuite) writeHistoryCSV() string {
	rows := []string{
		"symbol,date,open,high,low,close,volume",
		"HPG,2024-01-08,100.0,101.0,99.0,100.5,1000000.0",
		"HPG,2024-01-09,100.5,102.0,100.0,101.5,1100000.0",
		"HPG,2024-01-10,101.5,103.0,101.0,102.5,1200000.0",
		"VCB,2024-01-08,80.0,81.0,79.5,80.5,900000.0",
		"VCB,2024-01-09,80.5,81.5,80.0,81.0,950000.0",
	}

	path := filepath.Join(suite.T().TempDir(), "history.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(joinLines(rows)), 0o644))

	return path
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}

	return out
}

func (suite *BarSourceTestSuite) TestSymbols() {
	suite.Require().NoError(suite.source.Initialize(suite.writeHistoryCSV()))

	symbols, err := suite.source.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"HPG", "VCB"}, symbols)
}

func (suite *BarSourceTestSuite) TestGetBarsOrderedAndComplete() {
	suite.Require().NoError(suite.source.Initialize(suite.writeHistoryCSV()))

	bars, err := suite.source.GetBars("HPG")
	suite.NoError(err)
	suite.Len(bars, 3)

	suite.Equal("HPG", bars[0].Symbol)
	suite.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), bars[0].Date.UTC())
	suite.Equal(100.0, bars[0].Open)
	suite.Equal(102.5, bars[2].Close)
	suite.Equal(1200000.0, bars[2].Volume)

	for i := 1; i < len(bars); i++ {
		suite.True(bars[i].Date.After(bars[i-1].Date))
	}
}

func (suite *BarSourceTestSuite) TestGetBarsUnknownSymbol() {
	suite.Require().NoError(suite.source.Initialize(suite.writeHistoryCSV()))

	_, err := suite.source.GetBars("XYZ")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *BarSourceTestSuite) TestGetBarsOn() {
	suite.Require().NoError(suite.source.Initialize(suite.writeHistoryCSV()))

	bars, err := suite.source.GetBarsOn(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	suite.NoError(err)
	suite.Len(bars, 1) // VCB has no bar on the 10th

	bar, ok := bars["HPG"]
	suite.True(ok)
	suite.Equal(101.5, bar.Open)
}

func (suite *BarSourceTestSuite) TestLatestDate() {
	suite.Require().NoError(suite.source.Initialize(suite.writeHistoryCSV()))

	latest, err := suite.source.LatestDate()
	suite.NoError(err)
	suite.Equal("2024-01-10", latest.Format("2006-01-02"))
}

func (suite *BarSourceTestSuite) TestInitializeMissingFile() {
	err := suite.source.Initialize(filepath.Join(suite.T().TempDir(), "missing.csv"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *BarSourceTestSuite) TestReinitializeReplacesView() {
	first := suite.writeHistoryCSV()
	suite.Require().NoError(suite.source.Initialize(first))

	rows := []string{
		"symbol,date,open,high,low,close,volume",
		"SSI,2024-02-01,30.0,31.0,29.5,30.5,500000.0",
	}

	second := filepath.Join(suite.T().TempDir(), "other.csv")
	suite.Require().NoError(os.WriteFile(second, []byte(joinLines(rows)), 0o644))
	suite.Require().NoError(suite.source.Initialize(second))

	symbols, err := suite.source.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"SSI"}, symbols)
}

func (suite *BarSourceTestSuite) TestParquetReaderSelection() {
	// Initialization over a parquet path must route through read_parquet; a
	// missing file surfaces as a data source error rather than a panic.
	err := suite.source.Initialize(filepath.Join(suite.T().TempDir(), "missing.parquet"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
	suite.Contains(fmt.Sprint(err), "missing.parquet")
}
