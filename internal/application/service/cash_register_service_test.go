package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/register"
	"github.com/sangkips/pos-api/internal/testutil"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func income(concept, amount string) register.MovementInput {
	return register.MovementInput{Type: "INCOME", Concept: concept, Amount: dec(amount)}
}

func expense(concept, amount string) register.MovementInput {
	return register.MovementInput{Type: "EXPENSE", Concept: concept, Amount: dec(amount)}
}

func TestCashRegister_Open(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, dec("150"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, reg.ID)
	assert.Equal(t, enum.RegisterStateOpen, reg.State)
	assert.Equal(t, operator, reg.OpenedBy)
	assert.True(t, dec("150").Equal(reg.OpeningBalance))

	current, err := svc.GetOpenRegister(ctx, business)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, current.ID)
}

func TestCashRegister_OpenTwiceIsAlreadyOpen(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business := uuid.New()

	_, err := svc.Open(ctx, business, uuid.New(), decimal.Zero)
	require.NoError(t, err)

	_, err = svc.Open(ctx, business, uuid.New(), decimal.Zero)
	assert.ErrorIs(t, err, apperror.ErrAlreadyOpen)

	// a different business is unaffected
	_, err = svc.Open(ctx, uuid.New(), uuid.New(), decimal.Zero)
	assert.NoError(t, err)
}

func TestCashRegister_OpenRaceRejectedByStore(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business := uuid.New()

	_, err := svc.Open(ctx, business, uuid.New(), decimal.Zero)
	require.NoError(t, err)

	repo.HideOpen = true
	_, err = svc.Open(ctx, business, uuid.New(), decimal.Zero)

	assert.ErrorIs(t, err, apperror.ErrAlreadyOpen)
	assert.Len(t, repo.Registers, 1)
}

func TestCashRegister_OpenNegativeBalance(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)

	_, err := svc.Open(context.Background(), uuid.New(), uuid.New(), dec("-0.01"))

	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
	assert.Empty(t, repo.Registers)
}

func TestCashRegister_OpenWriteErrorIsReturnedUnmodified(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	repo.WriteErr = errors.New("connection reset")
	svc := NewCashRegisterService(repo)

	_, err := svc.Open(context.Background(), uuid.New(), uuid.New(), decimal.Zero)

	assert.Same(t, repo.WriteErr, err)
	assert.Empty(t, repo.Registers)
}

func TestCashRegister_FullShift(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, decimal.Zero)
	require.NoError(t, err)

	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("Sales", "500"))
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, business, reg.ID, operator, expense("Cleaning", "30"))
	require.NoError(t, err)

	expected, err := svc.ExpectedBalance(ctx, business, reg.ID)
	require.NoError(t, err)
	assert.True(t, dec("470").Equal(expected))

	conciliation, err := svc.Conciliate(ctx, business, reg.ID, operator, dec("470"), "")
	require.NoError(t, err)
	assert.True(t, conciliation.Reconciled)
	assert.True(t, conciliation.Difference.IsZero())

	closed, err := svc.Close(ctx, business, reg.ID, operator, dec("470"))
	require.NoError(t, err)
	assert.Equal(t, enum.RegisterStateClosed, closed.State)
	require.NotNil(t, closed.ClosingBalance)
	assert.True(t, dec("470").Equal(*closed.ClosingBalance))
	require.NotNil(t, closed.ExpectedAtClose)
	assert.True(t, dec("470").Equal(*closed.ExpectedAtClose))
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, operator, *closed.ClosedBy)

	stored, err := svc.GetRegister(ctx, business, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.RegisterStateClosed, stored.State)

	_, err = svc.GetOpenRegister(ctx, business)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCashRegister_ClosedRegisterRejectsEverything(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, dec("10"))
	require.NoError(t, err)
	_, err = svc.Close(ctx, business, reg.ID, operator, dec("10"))
	require.NoError(t, err)

	_, err = svc.Close(ctx, business, reg.ID, operator, dec("10"))
	assert.ErrorIs(t, err, apperror.ErrNotOpen)

	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("Late sale", "5"))
	assert.ErrorIs(t, err, apperror.ErrNotOpen)

	_, err = svc.Conciliate(ctx, business, reg.ID, operator, dec("10"), "")
	assert.ErrorIs(t, err, apperror.ErrNotOpen)

	assert.Empty(t, repo.Movements[reg.ID])
	assert.Empty(t, repo.Conciliations[reg.ID])
}

// lateMovementRepo stores a movement right after a caller has listed the
// movements, as a concurrent request committing in between would.
type lateMovementRepo struct {
	*testutil.RegisterRepo
	late *entity.CashMovement
}

func (r *lateMovementRepo) ListMovements(ctx context.Context, registerID uuid.UUID) ([]entity.CashMovement, error) {
	movements, err := r.RegisterRepo.ListMovements(ctx, registerID)
	if err == nil && r.late != nil {
		m := r.late
		r.late = nil
		if err := r.RegisterRepo.AppendMovement(ctx, m); err != nil {
			return nil, err
		}
	}
	return movements, err
}

func TestCashRegister_ExpectedAtCloseCoversEveryStoredMovement(t *testing.T) {
	repo := &lateMovementRepo{RegisterRepo: testutil.NewRegisterRepo()}
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, dec("100"))
	require.NoError(t, err)

	repo.late = &entity.CashMovement{
		RegisterID: reg.ID,
		BusinessID: business,
		Type:       enum.MovementTypeIncome,
		Concept:    "late sale",
		Amount:     dec("25"),
		OperatorID: operator,
	}
	closed, err := svc.Close(ctx, business, reg.ID, operator, dec("125"))
	require.NoError(t, err)
	repo.late = nil

	want := register.ExpectedBalance(dec("100"), repo.Movements[reg.ID])
	require.NotNil(t, closed.ExpectedAtClose)
	assert.True(t, want.Equal(*closed.ExpectedAtClose), "want %s, got %s", want, closed.ExpectedAtClose)
	stored, err := svc.GetRegister(ctx, business, reg.ID)
	require.NoError(t, err)
	assert.True(t, want.Equal(*stored.ExpectedAtClose))
}

func TestCashRegister_CloseWithDifference(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, dec("100"))
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("Sales", "40"))
	require.NoError(t, err)

	conciliation, err := svc.Conciliate(ctx, business, reg.ID, operator, dec("135"), "missing coins")
	require.NoError(t, err)
	assert.False(t, conciliation.Reconciled)
	assert.True(t, dec("-5").Equal(conciliation.Difference))

	closed, err := svc.Close(ctx, business, reg.ID, operator, dec("135"))
	require.NoError(t, err)
	assert.True(t, dec("140").Equal(*closed.ExpectedAtClose))
	assert.True(t, dec("135").Equal(*closed.ClosingBalance))

	list, err := svc.ListConciliations(ctx, business, reg.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCashRegister_MovementValidationDoesNotWrite(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, decimal.Zero)
	require.NoError(t, err)

	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("", "10"))
	assert.ErrorIs(t, err, apperror.ErrEmptyConcept)

	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("Sales", "0"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	_, err = svc.AddMovement(ctx, business, reg.ID, operator, register.MovementInput{Type: "TRANSFER", Concept: "x", Amount: dec("1")})
	assert.ErrorIs(t, err, apperror.ErrInvalidMovementType)

	_, err = svc.Conciliate(ctx, business, reg.ID, operator, dec("-1"), "")
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	_, err = svc.Close(ctx, business, reg.ID, operator, dec("-1"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	assert.Empty(t, repo.Movements[reg.ID])
	current, err := svc.GetOpenRegister(ctx, business)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, current.ID)
}

func TestCashRegister_WriteErrorLeavesStateUnchanged(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, dec("20"))
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("Sales", "5"))
	require.NoError(t, err)

	writeErr := errors.New("disk full")
	repo.WriteErr = writeErr

	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("Sales", "7"))
	assert.Same(t, writeErr, err)

	_, err = svc.Close(ctx, business, reg.ID, operator, dec("25"))
	assert.Same(t, writeErr, err)

	repo.WriteErr = nil

	expected, err := svc.ExpectedBalance(ctx, business, reg.ID)
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(expected))

	stored, err := svc.GetRegister(ctx, business, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.RegisterStateOpen, stored.State)
	assert.Nil(t, stored.ClosingBalance)
}

func TestCashRegister_OtherBusinessCannotSeeRegister(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()

	reg, err := svc.Open(ctx, uuid.New(), uuid.New(), decimal.Zero)
	require.NoError(t, err)

	_, err = svc.GetRegister(ctx, uuid.New(), reg.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.AddMovement(ctx, uuid.New(), reg.ID, uuid.New(), income("Sales", "1"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCashRegister_SummaryAndMovementsOrder(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	reg, err := svc.Open(ctx, business, operator, dec("50"))
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("first", "10"))
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, business, reg.ID, operator, expense("second", "4"))
	require.NoError(t, err)
	_, err = svc.AddMovement(ctx, business, reg.ID, operator, income("third", "1.50"))
	require.NoError(t, err)

	movements, err := svc.ListMovements(ctx, business, reg.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.Equal(t, "third", movements[0].Concept)
	assert.Equal(t, "first", movements[2].Concept)

	summary, err := svc.Summary(ctx, business, reg.ID)
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(summary.OpeningBalance))
	assert.True(t, dec("11.50").Equal(summary.TotalIncome))
	assert.True(t, dec("4").Equal(summary.TotalExpense))
	assert.True(t, dec("57.50").Equal(summary.ExpectedBalance))
	assert.Len(t, summary.Incomes, 2)
	assert.Len(t, summary.Expenses, 1)
}

func TestCashRegister_History(t *testing.T) {
	repo := testutil.NewRegisterRepo()
	svc := NewCashRegisterService(repo)
	ctx := context.Background()
	business, operator := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		reg, err := svc.Open(ctx, business, operator, decimal.Zero)
		require.NoError(t, err)
		_, err = svc.Close(ctx, business, reg.ID, operator, decimal.Zero)
		require.NoError(t, err)
	}

	registers, page, err := svc.History(ctx, business, &pagination.PaginationParams{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, registers, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
}

var dec = testutil.Dec
