package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/primeswim/tuition/tuition"
)

// numeric columns, 1-based
const (
	colSessions = 5
	colRate     = 6
	colTuition  = 7
)

// WriteXLSX writes one sheet named after the month. Rows that need
// configuration are highlighted and a totals row closes the sheet.
func WriteXLSX(w io.Writer, result *tuition.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := result.Month
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	flagStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return err
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, row := range result.Rows {
		r := i + 2
		for c, v := range record(row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			switch c + 1 {
			case colSessions:
				f.SetCellValue(sheet, cell, row.SessionCount)
			case colRate:
				rate, _ := row.RatePerHour.Float64()
				f.SetCellValue(sheet, cell, rate)
			case colTuition:
				amount, _ := row.Tuition.Float64()
				f.SetCellValue(sheet, cell, amount)
			default:
				f.SetCellValue(sheet, cell, v)
			}
		}

		first, _ := excelize.CoordinatesToCellName(1, r)
		end, _ := excelize.CoordinatesToCellName(len(Header), r)
		style := wrapStyle
		if row.NeedsConfig {
			style = flagStyle
		}
		f.SetCellStyle(sheet, first, end, style)
	}

	totalRow := len(result.Rows) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "TOTAL")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), result.Sessions)
	total, _ := result.Total.Float64()
	f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), total)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("K%d", totalRow), headerStyle)

	f.SetColWidth(sheet, "A", "I", 16)
	f.SetColWidth(sheet, "J", "J", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
