package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportBookingsExcel renders every booking into an XLSX workbook,
// newest first. Used by the admin export endpoint.
func (s *PostgresStorage) ExportBookingsExcel(ctx context.Context) ([]byte, error) {
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headers := []string{
		"ID", "Service", "Size (m²)", "Condition", "Additional",
		"Preferred Date", "Time", "Customer", "Phone", "Email",
		"Address", "Price (Kč)", "Coupon", "Status", "Created At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, b := range bookings {
		values := []any{
			b.ID,
			b.Service,
			b.PropertySize,
			b.Condition,
			strings.Join(b.AdditionalServices, ", "),
			b.PreferredDate,
			b.PreferredTime,
			b.CustomerName,
			b.CustomerPhone,
			b.CustomerEmail,
			b.PropertyAddress,
			b.EstimatedPrice,
			b.CouponCode,
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastHeader, style)

	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
