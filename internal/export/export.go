// Package export renders booking lists as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"nomadx/internal/dashboard"
	"nomadx/internal/models"
)

const (
	bookingsSheet = "Bookings"
	summarySheet  = "Summary"
	dateLayout    = "2006-01-02 15:04"
	fileLayout    = "20060102_150405"
)

var bookingHeaders = []string{
	"ID", "Customer", "Email", "Phone", "Agency",
	"Pickup", "Dropoff", "Pickup date", "Dropoff date", "Stops",
	"Passengers", "Vehicle type", "Status",
}

// WriteBookings writes a workbook with one row per booking and a per-status summary sheet.
func WriteBookings(w io.Writer, bookings []*models.Booking) error {
	f, err := build(bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveBookings writes the workbook into dir and returns the file path.
func SaveBookings(dir string, bookings []*models.Booking, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := build(bookings)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(now))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func FileName(now time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", now.UTC().Format(fileLayout))
}

func build(bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	if err := writeRow(f, bookingsSheet, 1, toCells(bookingHeaders)); err != nil {
		f.Close()
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(bookingHeaders))
	_ = f.SetCellStyle(bookingsSheet, "A1", lastCol+"1", headerStyle)
	_ = f.SetColWidth(bookingsSheet, "A", lastCol, 20)

	for i, b := range bookings {
		if err := writeRow(f, bookingsSheet, i+2, bookingRow(b)); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := writeSummary(f, bookings, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func bookingRow(b *models.Booking) []interface{} {
	stops := make([]string, 0, len(b.Waypoints))
	for _, w := range b.Waypoints {
		stops = append(stops, w.Location)
	}
	return []interface{}{
		b.ID,
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		b.AgencyID,
		b.PickupLocation,
		b.DropoffLocation,
		dashboard.FormatDateOr(b.PickupDate, dateLayout, ""),
		dashboard.FormatDateOr(b.DropoffDate, dateLayout, ""),
		strings.Join(stops, "; "),
		b.Passengers,
		b.VehicleType,
		string(b.Status),
	}
}

func writeSummary(f *excelize.File, bookings []*models.Booking, headerStyle int) error {
	if err := writeRow(f, summarySheet, 1, []interface{}{"Status", "Bookings"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)

	row := 2
	for _, status := range models.BookingStatuses {
		if err := writeRow(f, summarySheet, row, []interface{}{string(status), dashboard.CountByStatus(bookings, status)}); err != nil {
			return err
		}
		row++
	}
	return writeRow(f, summarySheet, row, []interface{}{"Total", len(bookings)})
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
