// Package export выгружает составы расписаний в Excel.
package export

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Leganyst/golf-club/internal/calendar"
	"github.com/Leganyst/golf-club/internal/model"
)

const sheetName = "Tee Sheet"

var TeeSheetHeader = []string{
	"Team",
	"Tee Time",
	"Member",
	"Phone",
	"Status",
	"Priority",
	"Applied At",
}

var columnWidths = []float64{8, 10, 24, 16, 12, 10, 20}

// sheetOrder: сначала по командам, без команды в конце, внутри команды —
// как в списке администратора.
func sheetOrder(a, b model.Reservation) int {
	ta, tb := a.Team(), b.Team()
	if ta == 0 {
		ta = 1 << 30
	}
	if tb == 0 {
		tb = 1 << 30
	}
	return cmp.Or(
		cmp.Compare(ta, tb),
		cmp.Compare(a.Priority, b.Priority),
		a.AppliedAt.Compare(b.AppliedAt),
		cmp.Compare(a.ID, b.ID),
	)
}

// TeeSheet строит XLSX со всеми живыми заявками расписания.
// Отменённые и удалённые пропускаются. Reservation.Member должен быть загружен.
func TeeSheet(s *model.Schedule, roster []model.Reservation, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows := slices.DeleteFunc(slices.Clone(roster), func(r model.Reservation) bool {
		return !r.Status.IsActive()
	})
	slices.SortStableFunc(rows, sheetOrder)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	title := calendar.FormatPlayDate(s.Date())
	if s.Venue != nil {
		title += " " + s.Venue.Name
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}

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
		return nil, fmt.Errorf("header style: %w", err)
	}

	for col, h := range TeeSheetHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("header style %s: %w", cell, err)
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, colName, colName, columnWidths[col]); err != nil {
			return nil, err
		}
	}

	for i, r := range rows {
		name, phone := fmt.Sprintf("member #%d", r.MemberID), ""
		if r.Member != nil {
			name, phone = r.Member.Name, r.Member.Phone
		}
		team := any("")
		if r.Team() > 0 {
			team = r.Team()
		}
		values := []any{
			team,
			r.AssignedTeeTime(),
			name,
			phone,
			string(r.Status),
			r.Priority,
			r.AppliedAt.In(loc).Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+3, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
