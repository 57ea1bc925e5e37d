//go:build integration

package order_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suldaanka/dashboard/internal/database"
	"github.com/Suldaanka/dashboard/internal/events"
	"github.com/Suldaanka/dashboard/internal/order"
	"github.com/Suldaanka/dashboard/internal/order/ordertest"
)

// Run with: POSTGRES_DSN=... go test -tags integration ./internal/order/
func TestPG_SubmitRacesStatusAndDelete(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.Connect(ctx, dsn, 20)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, database.Migrate(ctx, pool))

	suffix := uuid.NewString()[:8]
	menuID, tableID := "menu-"+suffix, "table-"+suffix
	_, err = pool.Exec(ctx, `INSERT INTO menu_items (id, name, category, price) VALUES ($1, 'Tea', 'drinks', 1.50)`, menuID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO tables (id, number, capacity) VALUES ($1, (SELECT COALESCE(MAX(number), 0) + 1 FROM tables), 4)`, tableID)
	require.NoError(t, err)

	catalog := ordertest.NewCatalog(order.MenuItemDTO{ID: menuID, Name: "Tea", Price: "1.50", Status: order.MenuAvailable})
	svc := order.NewService(order.NewPGRepo(pool), catalog, &events.Recorder{})
	req := order.SubmitOrderRequest{TableID: tableID, Items: []order.SubmitOrderItem{{MenuItemID: menuID, Quantity: 1}}}

	for round := 0; round < 10; round++ {
		o, _, err := svc.Submit(ctx, "u1", req)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 6)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := svc.Submit(ctx, "u1", req)
				errs <- err
			}()
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusPaid))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			errs <- svc.Delete(ctx, o.ID, "admin")
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			// Delete and UpdateStatus may each find the other already done.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				assert.NotEqual(t, "40P01", pgErr.Code, "round %d: %v", round, err)
			}
		}

		open, err := svc.List(ctx, order.ListQuery{Status: order.StatusPending, Limit: 100})
		require.NoError(t, err)
		for _, o := range open {
			if o.TableID != nil && *o.TableID == tableID {
				require.NoError(t, svc.Delete(ctx, o.ID, "admin"))
			}
		}
	}
}
