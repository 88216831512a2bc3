//go:build integration

package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/procurement"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/warehouse"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newPostgresDB starts a disposable postgres, applies the embedded migrations
// and returns a connection opened the way the server opens it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          "backoffice_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db.DB
}

type pgFixture struct {
	nodes     *GormNodeRepository
	uoms      *GormUomRepository
	items     *GormItemRepository
	suppliers *GormSupplierRepository
	orders    *GormPurchaseOrderRepository

	supplier *partner.Supplier
	item     *catalog.Item
	uom      *catalog.Uom
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	db := newPostgresDB(t)
	seq := NewSequencer(lock.NewLocalGuard(), 1)
	f := &pgFixture{
		nodes:     NewGormNodeRepository(db, seq),
		uoms:      NewGormUomRepository(db, seq),
		items:     NewGormItemRepository(db, seq),
		suppliers: NewGormSupplierRepository(db),
		orders:    NewGormPurchaseOrderRepository(db, seq),
	}
	ctx := context.Background()

	var err error
	f.uom, err = catalog.NewUom(catalog.UomInput{Code: "PCS", Name: "Pieces"}, "tester")
	require.NoError(t, err)
	require.NoError(t, f.uoms.Create(ctx, f.uom))

	f.item, err = catalog.NewItem(catalog.ItemInput{Name: "Kemeja Flanel", UomID: f.uom.ID}, "tester")
	require.NoError(t, err)
	require.NoError(t, f.items.Create(ctx, f.item))

	f.supplier, err = partner.NewSupplier(partner.SupplierInput{
		SuppID: "SUP-001", Name: "PT Tekstil Jaya", PICName: "Budi", Address: "Bandung", Phone: "0221234567",
	}, "tester")
	require.NoError(t, err)
	require.NoError(t, f.suppliers.Create(ctx, f.supplier))
	return f
}

func (f *pgFixture) order(t *testing.T, poDate time.Time, qty, price int64) *procurement.PurchaseOrder {
	t.Helper()
	po, err := procurement.NewPurchaseOrder(poInput("WH0001", poDate, f.supplier.ID, procurement.LineItemInput{
		ItemID: f.item.ID, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price),
	}), "tester")
	require.NoError(t, err)
	return po
}

func TestPostgres_Schema(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	assert.Equal(t, "UOM001", f.uom.UomID)
	assert.Equal(t, "KMJ-0001", f.item.SKU)

	t.Run("uom in use cannot be deactivated", func(t *testing.T) {
		_, err := f.uoms.Update(ctx, f.uom.ID, func(u *catalog.Uom, activeItems int64) error {
			return u.Deactivate(activeItems, "tester")
		})
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Cannot deactivate UOM: Currently used by 1 active item(s).", verr.Issues[0].Message)
	})

	t.Run("duplicate supplier code conflicts", func(t *testing.T) {
		dup, err := partner.NewSupplier(partner.SupplierInput{
			SuppID: "sup-001", Name: "Other", PICName: "X", Address: "Y", Phone: "1",
		}, "tester")
		require.NoError(t, err)
		err = f.suppliers.Create(ctx, dup)
		assert.True(t, errors.Is(err, shared.ErrConflict), "got %v", err)
	})

	t.Run("tree with cascade delete", func(t *testing.T) {
		wh, err := warehouse.NewNode(warehouse.NodeInput{Name: "Gudang", NodeType: warehouse.NodeTypeWarehouse, Address: "Jl. 1"}, "tester")
		require.NoError(t, err)
		require.NoError(t, f.nodes.Create(ctx, wh))
		aisle, err := warehouse.NewNode(warehouse.NodeInput{Name: "Lorong", NodeType: warehouse.NodeTypeAisle, ParentID: &wh.ID}, "tester")
		require.NoError(t, err)
		require.NoError(t, f.nodes.Create(ctx, aisle))
		assert.Equal(t, "AS0001", aisle.NodeID)

		n, err := f.nodes.SoftDeleteSubtree(ctx, wh.ID, "tester")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		live, err := f.nodes.FindLive(ctx)
		require.NoError(t, err)
		assert.Empty(t, live)
	})
}

func TestPostgres_ConcurrentPurchaseOrderMinting(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	jan := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	const workers = 8
	orders := make([]*procurement.PurchaseOrder, workers)
	for i := range orders {
		orders[i] = f.order(t, jan, 2, 50)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  []string
		errs []error
	)
	for _, po := range orders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.orders.Create(ctx, po)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids = append(ids, po.PoID)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Strings(ids)
	want := make([]string, workers)
	for i := range want {
		want[i] = fmt.Sprintf("WH0001-PO-2601-%04d", i+1)
	}
	assert.Equal(t, want, ids)
}

func TestPostgres_GrandTotalFollowsLineItems(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	po := f.order(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), 3, 125)
	require.NoError(t, f.orders.Create(ctx, po))
	assert.Equal(t, "WH0001-PO-2603-0001", po.PoID)

	updated, err := f.orders.UpdateItems(ctx, po.ID, func(p *procurement.PurchaseOrder) error {
		_, err := p.AddItem(procurement.LineItemInput{
			ItemID: f.item.ID, Quantity: decimal.RequireFromString("1.5"), UnitPrice: decimal.RequireFromString("10.10"),
		}, "tester")
		return err
	})
	require.NoError(t, err)
	assert.True(t, updated.GrandTotal.Equal(decimal.RequireFromString("390.15")), updated.GrandTotal.String())

	got, err := f.orders.FindByID(ctx, po.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.True(t, got.GrandTotal.Equal(decimal.RequireFromString("390.15")))

	var sum decimal.Decimal
	for _, li := range got.Items {
		sum = sum.Add(li.TotalAmount)
	}
	assert.True(t, sum.Equal(got.GrandTotal))
}
