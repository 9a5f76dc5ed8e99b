package export

import (
	"fmt"
	"time"

	"healthband-insight/internal/domain"

	"github.com/xuri/excelize/v2"
)

// SummaryExportHeader 汇总导出表头
var SummaryExportHeader = []string{
	"Bucket Start",
	"Bucket End",
	"Count",
	"Min",
	"Max",
	"Mean",
	"Last",
	"Malformed",
}

// BuildSummaryWorkbook 生成汇总 Excel 工作簿（每个指标类型一个 sheet）
// 空桶的数值列留空，与 "no data" 语义一致
func BuildSummaryWorkbook(userID string, summaries map[domain.MetricType]*domain.SummaryResult) ([]byte, error) {
	f := excelize.NewFile()
	// 注意：WriteToBuffer 之前不能 Close
	_ = f.SetDocProps(&excelize.DocProperties{Title: "Metrics Summary - " + userID})

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	first := true
	for _, metricType := range domain.AllMetricTypes {
		result, ok := summaries[metricType]
		if !ok {
			continue
		}
		sheetName := string(metricType)
		index, err := f.NewSheet(sheetName)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheetName, err)
		}
		if first {
			f.SetActiveSheet(index)
			first = false
		}

		for col, title := range SummaryExportHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			_ = f.SetCellValue(sheetName, cell, title)
			_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		row := 2
		for _, bucket := range result.Buckets {
			writeStatsRow(f, sheetName, row, bucket.BucketStart.Format(time.RFC3339), bucket)
			row++
		}
		// 范围级汇总单独一行（对完整集合的独立计算，非桶的合成）
		writeStatsRow(f, sheetName, row, "RANGE", result.Range)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeStatsRow 写入单行统计
func writeStatsRow(f *excelize.File, sheet string, row int, label string, stats domain.BucketStats) {
	set := func(col int, v interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	set(1, label)
	set(2, stats.BucketEnd.Format(time.RFC3339))
	set(3, stats.Count)
	if stats.Min != nil {
		set(4, *stats.Min)
	}
	if stats.Max != nil {
		set(5, *stats.Max)
	}
	if stats.Mean != nil {
		set(6, *stats.Mean)
	}
	if stats.Last != nil {
		set(7, *stats.Last)
	}
	set(8, stats.MalformedCount)
}
