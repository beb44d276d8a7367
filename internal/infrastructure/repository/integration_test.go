//go:build integration

// Run with: go test -tags integration ./internal/infrastructure/repository/...
package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/infrastructure/database"
	"github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pos_test"),
		tcPostgres.WithUsername("pos"),
		tcPostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newRegister(business uuid.UUID) *entity.CashRegister {
	return &entity.CashRegister{
		BusinessID:     business,
		State:          enum.RegisterStateOpen,
		OpeningBalance: dec("100"),
		OpenedBy:       uuid.New(),
		OpenedAt:       time.Now().UTC(),
	}
}

func closeRegister(reg *entity.CashRegister, closing string) {
	now := time.Now().UTC()
	c := dec(closing)
	op := uuid.New()
	reg.State = enum.RegisterStateClosed
	reg.ClosingBalance = &c
	reg.ClosedBy = &op
	reg.ClosedAt = &now
}

func TestCashRegisterRepository(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewCashRegisterRepository(db)
	business := uuid.New()
	ctx := repository.WithBusiness(context.Background(), business)

	first := newRegister(business)
	require.NoError(t, repo.CreateRegister(ctx, first))

	t.Run("second open register for the business is AlreadyOpen", func(t *testing.T) {
		err := repo.CreateRegister(ctx, newRegister(business))
		assert.ErrorIs(t, err, apperror.ErrAlreadyOpen)

		other := uuid.New()
		assert.NoError(t, repo.CreateRegister(repository.WithBusiness(context.Background(), other), newRegister(other)))
	})

	t.Run("movements append while open", func(t *testing.T) {
		for _, amount := range []string{"500", "30"} {
			require.NoError(t, repo.AppendMovement(ctx, &entity.CashMovement{
				RegisterID: first.ID,
				BusinessID: business,
				Type:       enum.MovementTypeIncome,
				Concept:    "sale",
				Amount:     dec(amount),
				OperatorID: uuid.New(),
			}))
		}
		movements, err := repo.ListMovements(ctx, first.ID)
		require.NoError(t, err)
		assert.Len(t, movements, 2)
	})

	t.Run("close takes effect once", func(t *testing.T) {
		closed := *first
		closeRegister(&closed, "630")
		require.NoError(t, repo.CloseRegister(ctx, &closed))
		require.NotNil(t, closed.ExpectedAtClose)
		assert.True(t, dec("630").Equal(*closed.ExpectedAtClose))

		again := *first
		closeRegister(&again, "1")
		assert.ErrorIs(t, repo.CloseRegister(ctx, &again), apperror.ErrNotOpen)

		stored, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, enum.RegisterStateClosed, stored.State)
		require.NotNil(t, stored.ClosingBalance)
		assert.True(t, dec("630").Equal(*stored.ClosingBalance))
		require.NotNil(t, stored.ExpectedAtClose)
		assert.True(t, dec("630").Equal(*stored.ExpectedAtClose))
	})

	t.Run("movements after close are NotOpen", func(t *testing.T) {
		err := repo.AppendMovement(ctx, &entity.CashMovement{
			RegisterID: first.ID,
			BusinessID: business,
			Type:       enum.MovementTypeExpense,
			Concept:    "late",
			Amount:     dec("1"),
			OperatorID: uuid.New(),
		})
		assert.ErrorIs(t, err, apperror.ErrNotOpen)
	})

	t.Run("a new register opens after close", func(t *testing.T) {
		assert.NoError(t, repo.CreateRegister(ctx, newRegister(business)))
		open, err := repo.GetOpenRegister(ctx, business)
		require.NoError(t, err)
		require.NotNil(t, open)
		assert.NotEqual(t, first.ID, open.ID)
	})

	t.Run("other businesses cannot read the register", func(t *testing.T) {
		stored, err := repo.GetByID(repository.WithBusiness(context.Background(), uuid.New()), first.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestSaleRepository(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewSaleRepository(db)
	business := uuid.New()
	ctx := repository.WithBusiness(context.Background(), business)

	sale := &entity.Sale{
		BusinessID:    business,
		OperatorID:    uuid.New(),
		SaleType:      enum.SaleTypeCash,
		Status:        enum.SaleStatusPaid,
		TotalProducts: 3,
		SubTotal:      dec("30"),
		Tax:           dec("5.40"),
		Discount:      decimal.Zero,
		Total:         dec("35.40"),
		PaymentMethod: "cash",
		ReceiptNo:     "R-TEST-0001",
		Items: []entity.SaleItem{
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("10"), LineTotal: dec("10")},
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: dec("10"), LineTotal: dec("20")},
		},
	}
	require.NoError(t, repo.Create(ctx, sale))

	stored, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 2)
	assert.True(t, dec("35.40").Equal(stored.Total))

	totals, err := repo.DailyTotals(ctx, business, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.EqualValues(t, 1, totals[0].Count)
	assert.True(t, dec("35.40").Equal(totals[0].Total))

	require.NoError(t, repo.Cancel(ctx, sale.ID))
	assert.ErrorIs(t, repo.Cancel(ctx, sale.ID), apperror.ErrAlreadyCancelled)

	totals, err = repo.DailyTotals(ctx, business, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestCatalogRepository(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewCatalogRepository(db)
	business := uuid.New()
	ctx := context.Background()

	active := &entity.Product{BusinessID: business, Name: "Espresso", UnitPrice: dec("2.50"), Active: true}
	retired := &entity.Product{BusinessID: business, Name: "Old blend", UnitPrice: dec("3"), Active: true}
	require.NoError(t, db.Create(active).Error)
	require.NoError(t, db.Create(retired).Error)
	require.NoError(t, db.Model(retired).Update("active", false).Error)

	price, err := repo.GetUnitPrice(ctx, business, active.ID)
	require.NoError(t, err)
	assert.True(t, dec("2.50").Equal(price))

	_, err = repo.GetUnitPrice(ctx, business, retired.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = repo.GetUnitPrice(ctx, uuid.New(), active.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	names, err := repo.GetNames(ctx, business, []uuid.UUID{active.ID, retired.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{active.ID: "Espresso", retired.ID: "Old blend"}, names)
}
