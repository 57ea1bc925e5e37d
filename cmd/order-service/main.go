// @title       Order Service API
// @version     1.0
// @description Orders, tables, rooms, payments and reservations of the hotel and restaurant back-office.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Suldaanka/dashboard/docs/orderapi"
	"github.com/Suldaanka/dashboard/internal/access"
	"github.com/Suldaanka/dashboard/internal/config"
	"github.com/Suldaanka/dashboard/internal/dashboard"
	"github.com/Suldaanka/dashboard/internal/database"
	"github.com/Suldaanka/dashboard/internal/events"
	"github.com/Suldaanka/dashboard/internal/expense"
	"github.com/Suldaanka/dashboard/internal/httpx"
	"github.com/Suldaanka/dashboard/internal/logger"
	"github.com/Suldaanka/dashboard/internal/order"
	"github.com/Suldaanka/dashboard/internal/payment"
	"github.com/Suldaanka/dashboard/internal/reservation"
	"github.com/Suldaanka/dashboard/internal/venue"
)

type deps struct {
	orders       *order.Service
	venues       venue.Repository
	payments     payment.Repository
	reservations *reservation.Service
	dashboard    *dashboard.Service
	expenses     expense.Repository
	nav          []access.NavItem
}

func routes(r *gin.Engine, d deps, gate *httpx.Gate) {
	g := r.Group("/", httpx.Identity())
	op := gate.Require

	g.POST("/orders", op(access.OpOrderSubmit), submitOrderHandler(d.orders))
	g.GET("/orders", op(access.OpOrderList), listOrdersHandler(d.orders))
	g.GET("/orders/:id", op(access.OpOrderGet), getOrderHandler(d.orders))
	g.PATCH("/orders/:id/status", op(access.OpOrderStatus), updateOrderStatusHandler(d.orders))
	g.PUT("/orders/:id/payment", op(access.OpOrderPayment), linkPaymentHandler(d.orders))
	g.GET("/orders/:id/receipt", op(access.OpOrderReceipt), receiptHandler(d.orders))
	g.GET("/orders/:id/receipt/qr.png", op(access.OpOrderReceipt), receiptQRHandler(d.orders))
	g.DELETE("/orders/:id", op(access.OpOrderDelete), deleteOrderHandler(d.orders))

	g.GET("/tables", op(access.OpTableRead), listTablesHandler(d.venues))
	g.POST("/tables", op(access.OpTableWrite), createTableHandler(d.venues))
	g.PATCH("/tables/:id/status", op(access.OpTableStatus), setTableStatusHandler(d.venues))
	g.DELETE("/tables/:id", op(access.OpTableWrite), deleteTableHandler(d.venues))

	g.GET("/rooms", op(access.OpRoomRead), listRoomsHandler(d.venues))
	g.GET("/rooms/:id", op(access.OpRoomRead), getRoomHandler(d.venues))
	g.POST("/rooms", op(access.OpRoomWrite), createRoomHandler(d.venues))
	g.PUT("/rooms/:id", op(access.OpRoomWrite), updateRoomHandler(d.venues))
	g.PATCH("/rooms/:id/status", op(access.OpRoomWrite), setRoomStatusHandler(d.venues))
	g.DELETE("/rooms/:id", op(access.OpRoomWrite), deleteRoomHandler(d.venues))

	g.GET("/payments", op(access.OpPaymentRead), listPaymentsHandler(d.payments))
	g.POST("/payments", op(access.OpPaymentWrite), createPaymentHandler(d.payments))
	g.PATCH("/payments/:id/status", op(access.OpPaymentWrite), setPaymentStatusHandler(d.payments))

	g.GET("/reservations", op(access.OpReservationRead), listReservationsHandler(d.reservations))
	g.POST("/reservations", op(access.OpReservationWrite), createReservationHandler(d.reservations))
	g.PATCH("/reservations/:id/status", op(access.OpReservationWrite), updateReservationHandler(d.reservations))
	g.DELETE("/reservations/:id", op(access.OpReservationWrite), deleteReservationHandler(d.reservations))

	g.GET("/expenses", op(access.OpExpenseRead), listExpensesHandler(d.expenses))
	g.GET("/expenses/summary", op(access.OpExpenseRead), expenseSummaryHandler(d.expenses))
	g.POST("/expenses", op(access.OpExpenseWrite), createExpenseHandler(d.expenses))
	g.PUT("/expenses/:id", op(access.OpExpenseWrite), updateExpenseHandler(d.expenses))
	g.DELETE("/expenses/:id", op(access.OpExpenseWrite), deleteExpenseHandler(d.expenses))
	g.GET("/expenses/categories", op(access.OpExpenseRead), listExpenseCategoriesHandler(d.expenses))
	g.POST("/expenses/categories", op(access.OpExpenseWrite), createExpenseCategoryHandler(d.expenses))

	g.GET("/dashboard", op(access.OpDashboardView), dashboardHandler(d.dashboard))

	g.GET("/permissions/nav", op(access.OpPermissionRead), navHandler(d.nav))
	g.GET("/permissions/check", op(access.OpPermissionRead), checkPageHandler())
}

func publisher(ctx context.Context, url string) (events.Publisher, func()) {
	if url == "" {
		slog.Info("AMQP_URL not set, order events are not published")
		return events.Nop{}, func() {}
	}
	mq, err := events.DialRabbitMQ(ctx, url)
	if err != nil {
		// Orders keep working without the broker; events are best effort.
		slog.Warn("rabbitmq unavailable, order events disabled", "error", err)
		return events.Nop{}, func() {}
	}
	return mq, func() {
		if err := mq.Close(); err != nil {
			slog.Warn("rabbitmq close", "error", err)
		}
	}
}

// serveHealth runs the gRPC health service until ctx is done.
func serveHealth(ctx context.Context, addr string, hs *health.Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() {
		<-ctx.Done()
		hs.Shutdown()
		srv.GracefulStop()
	}()
	slog.Info("grpc health listening", "addr", addr)
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat, "order-service")
	cfg.LogSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.PostgresDSN, cfg.DBMaxConns)
	if err != nil {
		slog.Error("db connect", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		slog.Error("db migrate", "error", err)
		os.Exit(1)
	}

	pub, closePub := publisher(ctx, cfg.AMQPURL)
	defer closePub()

	d := deps{
		orders: order.NewService(
			order.NewPGRepo(pool),
			order.NewMenuClient(cfg.MenuSvcBaseURL, cfg.CatalogTimeout),
			pub,
			order.WithReleaseOnCancel(cfg.ReleaseOnCancel),
		),
		venues:       venue.NewPGRepo(pool),
		payments:     payment.NewPGRepo(pool),
		reservations: reservation.NewService(reservation.NewPGRepo(pool)),
		dashboard:    dashboard.NewService(dashboard.NewPGSource(pool)),
		expenses:     expense.NewPGRepo(pool),
		nav:          access.DefaultNav,
	}

	gin.SetMode(gin.ReleaseMode)
	r := httpx.NewEngine()
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(orderapi.SwaggerInfo.InstanceName())))
	routes(r, d, httpx.NewGate(access.DefaultPolicy()))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpx.Serve(gctx, cfg.OrderSvcAddr, r, cfg.ShutdownTimeout) })
	g.Go(func() error { return serveHealth(gctx, cfg.GRPCHealthAddr, hs) })
	if err := g.Wait(); err != nil {
		slog.Error("order-service stopped", "error", err)
		os.Exit(1)
	}
}
