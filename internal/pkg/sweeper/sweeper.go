package sweeper

import (
	"context"
	"time"

	orderService "order_trade_core/internal/domain/order/service"
	"order_trade_core/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockKey   = "trade:sweep:expired-orders:lock"
	batchSize = 100
)

// Sweeper 过期订单回收任务
// 周期性把过期仍 PENDING 的订单作废并归还库存，复用显式取消的同一条路径
// 多副本部署时通过 redis 锁选主，同一轮只有一个实例执行
type Sweeper struct {
	orders   orderService.OrderService
	rdb      *redis.Client
	interval time.Duration
}

func New(orders orderService.OrderService, rdb *redis.Client, interval time.Duration) *Sweeper {
	return &Sweeper{orders: orders, rdb: rdb, interval: interval}
}

// Start 启动扫描循环，ctx 取消时退出
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepOnce(ctx)
			}
		}
	}()
	logger.Log.Info("expired-order sweeper started", zap.Duration("interval", s.interval))
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	// 锁的 TTL 取扫描间隔，实例崩溃后下一轮自然接管
	ok, err := s.rdb.SetNX(ctx, lockKey, "1", s.interval).Result()
	if err != nil {
		logger.Log.Warn("sweep lock acquisition failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	defer s.rdb.Del(context.Background(), lockKey)

	reclaimed, err := s.orders.ReclaimExpired(batchSize)
	if err != nil {
		logger.Log.Error("expired-order sweep failed", zap.Error(err))
		return
	}
	if reclaimed > 0 {
		logger.Log.Info("expired orders reclaimed", zap.Int("count", reclaimed))
	}
}
