package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/testutil"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *recordingPrinter) IsConnected(context.Context) bool { return p.err == nil }

type receiptFixture struct {
	*saleFixture
	registers *CashRegisterService
	printer   *recordingPrinter
	svc       *ReceiptService
}

func newReceiptFixture(t *testing.T) *receiptFixture {
	sf := newSaleFixture(t)
	registers := NewCashRegisterService(testutil.NewRegisterRepo())
	p := &recordingPrinter{}
	return &receiptFixture{
		saleFixture: sf,
		registers:   registers,
		printer:     p,
		svc: NewReceiptService(p, sf.svc, registers, sf.catalog, ReceiptConfig{
			PrinterType: "network",
			StoreName:   "Corner Shop",
			Width:       32,
		}),
	}
}

func TestReceipt_PrintsSale(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	coffee := f.catalog.AddNamed("Coffee beans", "12.50")
	unnamed := f.catalog.Add("3")

	_, err := f.carts.AddItem(ctx, f.business, "s", coffee, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, f.business, "s", unnamed, 1)
	require.NoError(t, err)
	sale, err := f.saleFixture.svc.Checkout(ctx, f.business, f.operator, "s", cashInput())
	require.NoError(t, err)

	receipt, err := f.svc.PrintSaleReceipt(ctx, f.business, sale.ID)
	require.NoError(t, err)

	assert.Equal(t, sale.ReceiptNo, receipt.ReceiptNo)
	assert.False(t, receipt.Cancelled)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Coffee beans", receipt.Items[0].Name)
	assert.Equal(t, "Product", receipt.Items[1].Name)
	assert.True(t, sale.Total.Equal(receipt.Total))

	require.Len(t, f.printer.jobs, 1)
	job := f.printer.jobs[0]
	assert.True(t, bytes.Contains(job, []byte("Corner Shop")))
	assert.True(t, bytes.Contains(job, []byte("2x Coffee beans")))
	assert.True(t, bytes.Contains(job, []byte(sale.Total.StringFixed(2))))
}

func TestReceipt_PrinterFailureStillReturnsTicket(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	p := f.catalog.Add("4")

	_, err := f.carts.AddItem(ctx, f.business, "s", p, 1)
	require.NoError(t, err)
	sale, err := f.saleFixture.svc.Checkout(ctx, f.business, f.operator, "s", cashInput())
	require.NoError(t, err)

	f.printer.err = errors.New("paper out")
	receipt, err := f.svc.PrintSaleReceipt(ctx, f.business, sale.ID)
	require.Error(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, sale.ReceiptNo, receipt.ReceiptNo)
	assert.False(t, apperror.IsAppError(err))
}

func TestReceipt_OtherBusinessSaleIsNotFound(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()
	p := f.catalog.Add("4")

	_, err := f.carts.AddItem(ctx, f.business, "s", p, 1)
	require.NoError(t, err)
	sale, err := f.saleFixture.svc.Checkout(ctx, f.business, f.operator, "s", cashInput())
	require.NoError(t, err)

	_, err = f.svc.PrintSaleReceipt(ctx, uuid.New(), sale.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, f.printer.jobs)
}

func TestClosingSlip(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()

	reg, err := f.registers.Open(ctx, f.business, f.operator, dec("100"))
	require.NoError(t, err)

	_, err = f.svc.PrintClosingSlip(ctx, f.business, reg.ID)
	assert.ErrorIs(t, err, ErrRegisterStillOpen)

	_, err = f.registers.AddMovement(ctx, f.business, reg.ID, f.operator, income("sales", "250"))
	require.NoError(t, err)
	_, err = f.registers.AddMovement(ctx, f.business, reg.ID, f.operator, expense("ice", "20"))
	require.NoError(t, err)
	_, err = f.registers.Close(ctx, f.business, reg.ID, f.operator, dec("325"))
	require.NoError(t, err)

	slip, err := f.svc.PrintClosingSlip(ctx, f.business, reg.ID)
	require.NoError(t, err)

	assert.True(t, dec("250").Equal(slip.TotalIncome))
	assert.True(t, dec("20").Equal(slip.TotalExpense))
	assert.True(t, dec("330").Equal(slip.ExpectedBalance))
	assert.True(t, dec("325").Equal(slip.ClosingBalance))
	assert.True(t, dec("-5").Equal(slip.Difference))

	require.Len(t, f.printer.jobs, 1)
	assert.True(t, bytes.Contains(f.printer.jobs[0], []byte("CASH REGISTER CLOSE")))
	assert.True(t, bytes.Contains(f.printer.jobs[0], []byte("-5.00")))
}

func TestPrinterStatus(t *testing.T) {
	f := newReceiptFixture(t)

	status := f.svc.GetStatus(context.Background())
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
	assert.Equal(t, "network", status.Type)
}
