package export

import (
	"bytes"
	"testing"
	"time"

	"healthband-insight/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func summaryFixture() map[domain.MetricType]*domain.SummaryResult {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v1, v2 := 70.0, 80.0
	mean := 75.0
	return map[domain.MetricType]*domain.SummaryResult{
		domain.MetricHeartRate: {
			MetricType:  domain.MetricHeartRate,
			Unit:        "bpm",
			Granularity: domain.GranularityHour,
			Buckets: []domain.BucketStats{
				{
					BucketStart: start,
					BucketEnd:   start.Add(time.Hour),
					Count:       2,
					Min:         &v1,
					Max:         &v2,
					Mean:        &mean,
					Last:        &v2,
				},
				{
					BucketStart: start.Add(time.Hour),
					BucketEnd:   start.Add(2 * time.Hour),
					Count:       0,
				},
			},
			Range: domain.BucketStats{
				BucketStart: start,
				BucketEnd:   start.Add(2 * time.Hour),
				Count:       2,
				Min:         &v1,
				Max:         &v2,
				Mean:        &mean,
				Last:        &v2,
			},
		},
	}
}

func TestBuildSummaryWorkbook_SheetPerMetricType(t *testing.T) {
	data, err := BuildSummaryWorkbook("user-1", summaryFixture())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"HEART_RATE"}, f.GetSheetList())

	// 表头
	for col, title := range SummaryExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		got, err := f.GetCellValue("HEART_RATE", cell)
		require.NoError(t, err)
		assert.Equal(t, title, got)
	}
}

func TestBuildSummaryWorkbook_BucketAndRangeRows(t *testing.T) {
	data, err := BuildSummaryWorkbook("user-1", summaryFixture())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	// 第一桶
	got, _ := f.GetCellValue("HEART_RATE", "A2")
	assert.Equal(t, "2024-01-01T00:00:00Z", got)
	got, _ = f.GetCellValue("HEART_RATE", "C2")
	assert.Equal(t, "2", got)
	got, _ = f.GetCellValue("HEART_RATE", "F2")
	assert.Equal(t, "75", got)

	// 空桶：count 为 0，数值列留空
	got, _ = f.GetCellValue("HEART_RATE", "C3")
	assert.Equal(t, "0", got)
	got, _ = f.GetCellValue("HEART_RATE", "D3")
	assert.Empty(t, got)

	// 末行为范围级汇总
	got, _ = f.GetCellValue("HEART_RATE", "A4")
	assert.Equal(t, "RANGE", got)
	got, _ = f.GetCellValue("HEART_RATE", "C4")
	assert.Equal(t, "2", got)
}

func TestBuildSummaryWorkbook_EmptySummaries(t *testing.T) {
	data, err := BuildSummaryWorkbook("user-1", map[domain.MetricType]*domain.SummaryResult{})
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
