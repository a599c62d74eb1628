package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	alarms "github.com/mhdr/Monitoring2025-sub018/internal/alarms/domain"
)

// BuildHistoryXLSX renders an alarm history range as a spreadsheet.
func BuildHistoryXLSX(entries []alarms.HistoryEntry) ([]byte, error) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	headers := []string{"Time", "Item", "Alarm", "Message", "Message (FA)"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for idx, entry := range entries {
		row := idx + 2
		values := []any{
			entry.Time.Format(time.RFC3339),
			entry.ItemID,
			entry.AlarmID,
			entry.Message,
			entry.MessageFa,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildHistoryPDF renders an alarm history range as a printable report.
// The PDF carries the English messages; Farsi text needs a shaping-capable
// renderer and stays in the XLSX export.
func BuildHistoryPDF(entries []alarms.HistoryEntry, from, to time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Alarm History")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("From: %s", from.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("To: %s", to.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Entries: %d", len(entries)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Alarm", "1", 0, "C", false, 0, "")
	pdf.CellFormat(75, 6, "Message", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, entry := range entries {
		pdf.CellFormat(45, 6, entry.Time.Format("2006-01-02 15:04:05"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, entry.ItemID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, entry.AlarmID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(75, 6, entry.Message, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	if pdf.Err() {
		return nil, errors.New("export: pdf rendering failed")
	}
	return buf.Bytes(), nil
}
