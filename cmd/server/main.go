package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "order_trade_core/internal/domain/common"
	_ "order_trade_core/internal/domain/delivery"
	_ "order_trade_core/internal/domain/order"
	_ "order_trade_core/internal/domain/payment"
	_ "order_trade_core/internal/domain/withdrawal"

	orderRepo "order_trade_core/internal/domain/order/repository"
	orderService "order_trade_core/internal/domain/order/service"
	inventoryRepo "order_trade_core/internal/domain/inventory/repository"
	inventoryService "order_trade_core/internal/domain/inventory/service"
	pointRepo "order_trade_core/internal/domain/point/repository"
	pointService "order_trade_core/internal/domain/point/service"

	"order_trade_core/internal/pkg/config"
	"order_trade_core/internal/pkg/middleware"
	"order_trade_core/internal/pkg/registry"
	"order_trade_core/internal/pkg/sweeper"
	"order_trade_core/internal/pkg/worker"
	"order_trade_core/pkg/database"
	"order_trade_core/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	db := database.InitDatabase()
	rdb := database.InitRedis()

	gin.SetMode(config.GlobalConfig.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(100, 200)))

	// 异步通知池，交易流程投递后即返回
	worker.GlobalPool = worker.NewNotifyPool(worker.LogNotifier{}, 5, 1000)
	worker.GlobalPool.Start()

	if err := registry.InitModules(&registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: router,
	}); err != nil {
		logger.Log.Fatal("module initialization failed", zap.Error(err))
	}

	// 过期订单回收，与显式取消共用同一条归还路径
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	orders := orderService.NewOrderService(
		db,
		orderRepo.NewOrderRepository(),
		inventoryService.NewInventoryService(inventoryRepo.NewInventoryRepository()),
		pointService.NewPointService(pointRepo.NewPointRepository()),
	)
	sweeper.New(orders, rdb, config.GlobalConfig.Trade.SweepInterval()).Start(sweepCtx)

	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("port", config.GlobalConfig.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	// 优雅退出：先停收请求，再关扫描
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}
