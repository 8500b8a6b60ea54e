package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/storage"
)

// ReportService builds account exports and settlement agreements
type ReportService struct {
	consumerRepo    repository.ConsumerRepository
	transactionRepo repository.TransactionRepository
	scheduleRepo    repository.ScheduleTransactionRepository
	storage         *storage.LocalStorage
}

func NewReportService(
	consumerRepo repository.ConsumerRepository,
	transactionRepo repository.TransactionRepository,
	scheduleRepo repository.ScheduleTransactionRepository,
	storage *storage.LocalStorage,
) *ReportService {
	return &ReportService{
		consumerRepo:    consumerRepo,
		transactionRepo: transactionRepo,
		scheduleRepo:    scheduleRepo,
		storage:         storage,
	}
}

// ExportConsumersXLSX writes the company's account book to a spreadsheet
func (s *ReportService) ExportConsumersXLSX(ctx context.Context, companyID uint, superAdmin bool) ([]byte, string, error) {
	query := repository.NewListQuery()
	query.PerPage = 10000

	consumers, _, err := s.consumerRepo.List(ctx, companyID, superAdmin, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Accounts"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Account Number", "Name", "Email", "Status", "Current Balance", "Total Balance", "Offer Accepted", "Failed Payment", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, c := range consumers {
		values := []interface{}{
			c.AccountNumber,
			c.FullName(),
			c.Email,
			c.Status,
			c.CurrentBalance,
			c.TotalBalance,
			c.OfferAccepted,
			c.HasFailedPayment,
			c.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("accounts_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// GenerateSettlementAgreement renders the accepted plan as a PDF, stores it,
// and returns the bytes with the stored relative path.
func (s *ReportService) GenerateSettlementAgreement(ctx context.Context, consumerID uint) ([]byte, string, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, "", ErrNotFound
	}
	negotiation := consumer.Negotiation
	if negotiation == nil || !negotiation.IsAccepted() {
		return nil, "", ErrInvalidState
	}

	rows, err := s.scheduleRepo.FindByConsumer(ctx, consumerID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Settlement Agreement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(60, 8, "Account Number:")
	pdf.Cell(60, 8, consumer.AccountNumber)
	pdf.Ln(7)
	pdf.Cell(60, 8, "Consumer:")
	pdf.Cell(60, 8, consumer.FullName())
	pdf.Ln(7)
	pdf.Cell(60, 8, "Creditor:")
	pdf.Cell(60, 8, consumer.Company.Name)
	pdf.Ln(7)
	pdf.Cell(60, 8, "Original Balance:")
	pdf.Cell(60, 8, fmt.Sprintf("$%.2f", consumer.TotalBalance))
	pdf.Ln(7)

	planLabel := "Installment Plan"
	if negotiation.IsPif() {
		planLabel = "One-Time Settlement"
	}
	pdf.Cell(60, 8, "Plan Type:")
	pdf.Cell(60, 8, planLabel)
	pdf.Ln(7)
	pdf.Cell(60, 8, "Settlement Amount:")
	pdf.Cell(60, 8, fmt.Sprintf("$%.2f", negotiation.AcceptedAmount()))
	pdf.Ln(7)

	paid, _ := s.transactionRepo.SumSuccessfulByConsumer(ctx, consumerID)
	pdf.Cell(60, 8, "Paid to Date:")
	pdf.Cell(60, 8, fmt.Sprintf("$%.2f", paid))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Payment Schedule")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(20, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 7, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i, row := range rows {
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 7, row.ScheduleDate.Format("01/02/2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("$%.2f", row.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, row.Status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "This agreement reflects the terms accepted between the consumer and the creditor. "+
		"Completing all payments above settles the account in full.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render agreement: %w", err)
	}

	filename := fmt.Sprintf("agreement_%s.pdf", consumer.AccountNumber)
	if _, err := s.storage.UploadFromBytes(buf.Bytes(), filename, "agreements"); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), filename, nil
}

// CompanySummary aggregates a creditor's portfolio for the dashboard
type CompanySummary struct {
	StatusCounts   map[string]int64             `json:"status_counts"`
	RecentActivity []models.TransactionResponse `json:"recent_activity"`
}

// Summary builds the creditor dashboard payload using the window-function
// latest-transaction query.
func (s *ReportService) Summary(ctx context.Context, companyID uint, superAdmin bool) (*CompanySummary, error) {
	counts, err := s.consumerRepo.CountByStatus(ctx, companyID, superAdmin)
	if err != nil {
		return nil, err
	}

	latest, err := s.transactionRepo.LatestPerConsumer(ctx, companyID, superAdmin)
	if err != nil {
		return nil, err
	}

	activity := make([]models.TransactionResponse, 0, len(latest))
	for i := range latest {
		activity = append(activity, latest[i].ToResponse())
	}

	return &CompanySummary{
		StatusCounts:   counts,
		RecentActivity: activity,
	}, nil
}
