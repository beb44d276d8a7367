package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/printer"
)

// ErrRegisterStillOpen is returned when a closing slip is requested for an open register
var ErrRegisterStillOpen = apperror.NewAppError(http.StatusConflict, "Cash register is still open")

// ReceiptConfig describes the ticket header and paper
type ReceiptConfig struct {
	PrinterType string
	StoreName   string
	Address     string
	TaxID       string
	// Width in characters: 32 for 58mm paper, 48 for 80mm
	Width int
}

// ReceiptService formats sale tickets and closing slips and sends them to the thermal printer.
type ReceiptService struct {
	printer   printer.Printer
	sales     *SaleService
	registers *CashRegisterService
	products  repository.ProductNames
	cfg       ReceiptConfig
}

// NewReceiptService creates a new receipt service
func NewReceiptService(p printer.Printer, sales *SaleService, registers *CashRegisterService, products repository.ProductNames, cfg ReceiptConfig) *ReceiptService {
	return &ReceiptService{
		printer:   p,
		sales:     sales,
		registers: registers,
		products:  products,
		cfg:       cfg,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *ReceiptService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.cfg.PrinterType != printer.TypeNone && s.cfg.PrinterType != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.cfg.PrinterType,
	}
}

func (s *ReceiptService) header() entity.ReceiptHeader {
	return entity.ReceiptHeader{
		StoreName: s.cfg.StoreName,
		Address:   s.cfg.Address,
		TaxID:     s.cfg.TaxID,
	}
}

// PrintSaleReceipt builds the ticket of a sale and prints it. When only the
// printing fails the ticket is still returned along with the error.
func (s *ReceiptService) PrintSaleReceipt(ctx context.Context, businessID, saleID uuid.UUID) (*entity.Receipt, error) {
	sale, err := s.sales.GetSale(ctx, businessID, saleID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(sale.Items))
	for _, it := range sale.Items {
		ids = append(ids, it.ProductID)
	}
	names, err := s.products.GetNames(ctx, businessID, ids)
	if err != nil {
		return nil, err
	}

	receipt := &entity.Receipt{
		Header:        s.header(),
		ReceiptNo:     sale.ReceiptNo,
		Date:          sale.CreatedAt.Format("2006-01-02 15:04"),
		SaleType:      string(sale.SaleType),
		PaymentMethod: sale.PaymentMethod,
		Cancelled:     sale.Status == enum.SaleStatusCancelled,
		SubTotal:      sale.SubTotal,
		Tax:           sale.Tax,
		Discount:      sale.Discount,
		Total:         sale.Total,
	}
	if sale.ReceiptType != nil {
		receipt.ReceiptType = *sale.ReceiptType
	}
	for _, it := range sale.Items {
		name, ok := names[it.ProductID]
		if !ok {
			name = "Product"
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.LineTotal,
		})
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.cfg.Width)); err != nil {
		log.Warn().Err(err).Str("sale_id", saleID.String()).Msg("receipt printing failed")
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// PrintClosingSlip prints the end-of-shift report of a closed register.
func (s *ReceiptService) PrintClosingSlip(ctx context.Context, businessID, registerID uuid.UUID) (*entity.ClosingSlip, error) {
	summary, err := s.registers.Summary(ctx, businessID, registerID)
	if err != nil {
		return nil, err
	}
	reg := summary.Register
	if reg.IsOpen() || reg.ClosingBalance == nil || reg.ClosedAt == nil {
		return nil, ErrRegisterStillOpen
	}

	expected := summary.ExpectedBalance
	if reg.ExpectedAtClose != nil {
		expected = *reg.ExpectedAtClose
	}
	slip := &entity.ClosingSlip{
		Header:          s.header(),
		RegisterID:      reg.ID.String(),
		OpenedAt:        reg.OpenedAt.Format("2006-01-02 15:04"),
		ClosedAt:        reg.ClosedAt.Format("2006-01-02 15:04"),
		OpeningBalance:  reg.OpeningBalance,
		TotalIncome:     summary.TotalIncome,
		TotalExpense:    summary.TotalExpense,
		ExpectedBalance: expected,
		ClosingBalance:  *reg.ClosingBalance,
		Difference:      reg.ClosingBalance.Sub(expected),
	}

	if err := s.printer.Print(ctx, FormatClosingSlip(slip, s.cfg.Width)); err != nil {
		log.Warn().Err(err).Str("register_id", registerID.String()).Msg("closing slip printing failed")
		return slip, fmt.Errorf("failed to print closing slip: %w", err)
	}
	return slip, nil
}

func storeHeader(doc *printer.Document, h entity.ReceiptHeader) {
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(h.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if h.Address != "" {
		doc.Text(h.Address)
	}
	if h.TaxID != "" {
		doc.TextF("Tax ID: %s", h.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)
	storeHeader(doc, r.Header)

	if r.ReceiptType != "" {
		doc.KeyValue("Type:", r.ReceiptType)
	}
	doc.KeyValue("Receipt:", r.ReceiptNo).
		KeyValue("Date:", r.Date).
		KeyValue("Sale:", r.SaleType).
		KeyValue("Payment:", r.PaymentMethod)

	if r.Cancelled {
		doc.SetAlign(printer.AlignCenter).
			SetBold(true).
			Text("*** CANCELLED ***").
			SetBold(false).
			SetAlign(printer.AlignLeft)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice.StringFixed(2))
		}
	}

	doc.Separator('-')

	doc.Amount("Subtotal:", r.SubTotal).
		Amount("Tax:", r.Tax)
	if r.Discount.IsPositive() {
		doc.Amount("Discount:", r.Discount.Neg())
	}
	doc.SetBold(true).
		Amount("TOTAL:", r.Total).
		SetBold(false)

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for your purchase!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

// FormatClosingSlip converts a ClosingSlip into ESC/POS bytes.
func FormatClosingSlip(s *entity.ClosingSlip, width int) []byte {
	doc := printer.NewDocument(width)
	storeHeader(doc, s.Header)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		Text("CASH REGISTER CLOSE").
		SetBold(false).
		SetAlign(printer.AlignLeft)

	doc.KeyValue("Opened:", s.OpenedAt).
		KeyValue("Closed:", s.ClosedAt).
		Separator('-')

	doc.Amount("Opening:", s.OpeningBalance).
		Amount("Income:", s.TotalIncome).
		Amount("Expense:", s.TotalExpense.Neg()).
		Separator('-').
		SetBold(true).
		Amount("Expected:", s.ExpectedBalance).
		Amount("Counted:", s.ClosingBalance).
		SetBold(false).
		Amount("Difference:", s.Difference)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
