package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/wristcare/alertband-backend/pkg/model"
	"go.uber.org/zap"
)

// SummaryGenerator renders a printable sheet for a saved device
// configuration: contact block, medical notes, the alert schedule and the
// raw device payload as an appendix.
type SummaryGenerator struct {
	logger *zap.Logger
}

// NewSummaryGenerator creates a new SummaryGenerator
func NewSummaryGenerator(logger *zap.Logger) *SummaryGenerator {
	return &SummaryGenerator{
		logger: logger,
	}
}

// Generate creates a PDF summary for the given configuration
func (g *SummaryGenerator) Generate(cfg *model.SavedConfiguration) ([]byte, error) {
	g.logger.Info("generating configuration summary PDF",
		zap.String("configuration_id", cfg.ID),
		zap.Int("device_id", cfg.DeviceID),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	g.addTitle(pdf, cfg)
	g.addContact(pdf, cfg.Contact)
	g.addMedicalInfo(pdf, cfg.MedicalInfo)
	g.addSchedule(pdf, cfg.Alerts)
	g.addPayloadAppendix(pdf, cfg.Payload)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("configuration summary PDF generated",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the sheet title and header information
func (g *SummaryGenerator) addTitle(pdf *gofpdf.Fpdf, cfg *model.SavedConfiguration) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "AlertBand Configuration", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Device ID: %d", cfg.DeviceID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Saved: %s", cfg.CreatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Printed: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *SummaryGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

// addContact adds the emergency contact section
func (g *SummaryGenerator) addContact(pdf *gofpdf.Fpdf, contact model.ContactProfile) {
	g.addSectionHeader(pdf, "Emergency Contact")

	pdf.CellFormat(0, 6, fmt.Sprintf("Name: %s", contact.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Phone: %s", contact.Phone), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Email: %s", contact.Email), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

// addMedicalInfo adds the medical notes section
func (g *SummaryGenerator) addMedicalInfo(pdf *gofpdf.Fpdf, medicalInfo string) {
	g.addSectionHeader(pdf, "Medical Notes")

	for _, line := range strings.Split(medicalInfo, "\n") {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(5)
}

// addSchedule adds the weekly alert schedule section
func (g *SummaryGenerator) addSchedule(pdf *gofpdf.Fpdf, alerts []model.AlertDefinition) {
	g.addSectionHeader(pdf, "Alert Schedule")

	if len(alerts) == 0 {
		pdf.CellFormat(0, 8, "No alerts configured.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, alert := range alerts {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("%02d:%02d  %s", alert.Hour, alert.Minute, alert.Message), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 5, fmt.Sprintf("  Type: %s", alert.Category), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("  Days: %s", describeDays(alert)), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}
	pdf.Ln(5)
}

// addPayloadAppendix adds the raw device payload section
func (g *SummaryGenerator) addPayloadAppendix(pdf *gofpdf.Fpdf, payload string) {
	g.addSectionHeader(pdf, "Device Payload")

	pdf.SetFont("Courier", "", 8)
	for _, line := range strings.Split(payload, "\n") {
		pdf.CellFormat(0, 4, line, "", 1, "L", false, 0, "")
	}
}

// describeDays renders an alert's day selection for humans
func describeDays(alert model.AlertDefinition) string {
	if alert.Everyday {
		return "Every day"
	}

	names := make([]string, 0, len(alert.Days))
	for _, day := range alert.Days {
		names = append(names, day.String())
	}
	return strings.Join(names, ", ")
}
