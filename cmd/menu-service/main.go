// @title       Menu Service API
// @version     1.0
// @description Menu catalog of the restaurant back-office.
// @BasePath    /
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Suldaanka/dashboard/docs/menuapi"
	"github.com/Suldaanka/dashboard/internal/access"
	"github.com/Suldaanka/dashboard/internal/config"
	"github.com/Suldaanka/dashboard/internal/database"
	"github.com/Suldaanka/dashboard/internal/httpx"
	"github.com/Suldaanka/dashboard/internal/logger"
	"github.com/Suldaanka/dashboard/internal/menu"
)

func routes(r *gin.Engine, repo menu.Repository, gate *httpx.Gate) {
	r.GET("/menu", listMenuHandler(repo))
	r.GET("/menu/:id", getMenuHandler(repo))

	w := r.Group("/menu", httpx.Identity(), gate.Require(access.OpMenuWrite))
	w.POST("", createMenuHandler(repo))
	w.PUT("/:id", updateMenuHandler(repo))
	w.DELETE("/:id", deleteMenuHandler(repo))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat, "menu-service")
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

	gin.SetMode(gin.ReleaseMode)
	r := httpx.NewEngine()
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(menuapi.SwaggerInfo.InstanceName())))
	routes(r, menu.NewPGRepo(pool), httpx.NewGate(access.DefaultPolicy()))

	if err := httpx.Serve(ctx, cfg.MenuSvcAddr, r, cfg.ShutdownTimeout); err != nil {
		slog.Error("http server", "error", err)
		os.Exit(1)
	}
}
