package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

const recordingsSheet = "Recordings"

// RecordingsExportHeader export columns, in order
var RecordingsExportHeader = []string{
	"Recorded At",
	"Recording ID",
	"Heart Rate (bpm)",
	"Respiratory Rate (/min)",
	"Body Temperature",
	"Unit",
	"Temperature Band",
	"Symptoms",
	"Status",
}

var recordingsColumnWidths = []float64{20, 38, 16, 22, 18, 8, 18, 36, 12}

// GenerateRecordingsExport writes history (newest first) to an xlsx workbook.
// The Status cell is filled with the status colour.
func GenerateRecordingsExport(history []service.HistoryEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(recordingsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	statusStyles := map[models.Status]int{}
	for _, s := range []models.Status{models.StatusGood, models.StatusMonitor, models.StatusAttention} {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{analytics.StatusColor(s)}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create status style: %w", err)
		}
		statusStyles[s] = style
	}

	for col, header := range RecordingsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(recordingsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(recordingsSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(recordingsSheet, name, name, recordingsColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, entry := range history {
		row := i + 2
		values := exportRow(entry)
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(recordingsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}

		statusCell, _ := excelize.CoordinatesToCellName(len(values), row)
		if style, ok := statusStyles[entry.Status.Status]; ok {
			if err := f.SetCellStyle(recordingsSheet, statusCell, statusCell, style); err != nil {
				return nil, fmt.Errorf("failed to set status style: %w", err)
			}
		}
	}

	if err := f.SetPanes(recordingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(entry service.HistoryEntry) []interface{} {
	row := []interface{}{
		entry.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		entry.ID,
		entry.HeartRate,
		entry.RespiratoryRate,
		nil, nil, nil,
		"",
		string(entry.Status.Status),
	}
	if s := entry.Survey; s != nil {
		row[4] = s.BodyTemperature.InexactFloat64()
		row[5] = string(s.TemperatureUnit())
		row[7] = strings.Join(s.Symptoms(), ", ")
	}
	if entry.Temperature != nil {
		row[6] = entry.Temperature.Label
	}
	return row
}
