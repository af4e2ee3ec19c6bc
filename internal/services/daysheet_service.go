package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	intconfig "bookingcore/internal/config"
	"bookingcore/internal/domain"
	"bookingcore/internal/repositories"
	"bookingcore/internal/slotmath"

	"github.com/phpdave11/gofpdf"
)

// DaySheetService renders a printable PDF of one day's pending and
// confirmed bookings, optionally narrowed to a staff member.
type DaySheetService struct {
	DB          *sql.DB
	TenantRepo  repositories.TenantRepo
	BookingRepo repositories.BookingRepo
}

func (s DaySheetService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s DaySheetService) tenants() repositories.TenantRepo {
	if s.TenantRepo.DB != nil {
		return s.TenantRepo
	}
	return repositories.TenantRepo{DB: s.db()}
}

func (s DaySheetService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

// Render builds the PDF and a suggested filename.
func (s DaySheetService) Render(ctx context.Context, tenantID int64, date string, staffID *int64) ([]byte, string, error) {
	tenant, err := s.tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	list, err := s.bookings().ListDetailedForDay(ctx, tenantID, date, staffID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Day Sheet", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "DAY SHEET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Tenant : "+tenant.Name)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date   : "+date)
	pdf.Ln(7)
	if staffID != nil && len(list) > 0 && list[0].StaffName != "" {
		pdf.Cell(0, 7, "Staff  : "+list[0].StaffName)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	if len(list) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 8, "No bookings scheduled.")
		return s.output(pdf, tenant.Slug, date)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(28, 8, "Time", "1", 0, "", false, 0, "")
	pdf.CellFormat(52, 8, "Service", "1", 0, "", false, 0, "")
	pdf.CellFormat(52, 8, "Customer", "1", 0, "", false, 0, "")
	pdf.CellFormat(32, 8, "Code", "1", 0, "", false, 0, "")
	pdf.CellFormat(26, 8, "Status", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, b := range list {
		startMin := b.StartTime.Hour()*60 + b.StartTime.Minute()
		window := fmt.Sprintf("%s-%s",
			slotmath.FormatClock(startMin),
			slotmath.FormatClock(startMin+b.DurationMinutes))
		pdf.CellFormat(28, 8, window, "1", 0, "", false, 0, "")
		pdf.CellFormat(52, 8, b.ServiceName, "1", 0, "", false, 0, "")
		pdf.CellFormat(52, 8, b.CustomerName, "1", 0, "", false, 0, "")
		pdf.CellFormat(32, 8, b.BookingCode, "1", 0, "", false, 0, "")
		pdf.CellFormat(26, 8, string(b.Status), "1", 1, "", false, 0, "")
	}

	return s.output(pdf, tenant.Slug, date)
}

func (s DaySheetService) output(pdf *gofpdf.Fpdf, slug, date string) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Err: err}
	}
	filename := fmt.Sprintf("DAYSHEET_%s_%s.pdf", slug, date)
	return buf.Bytes(), filename, nil
}
