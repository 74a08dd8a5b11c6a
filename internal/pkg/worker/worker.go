package worker

import (
	"time"

	"order_trade_core/pkg/logger"

	"go.uber.org/zap"
)

// NotifyTask 用户通知任务
type NotifyTask struct {
	UserID string
	Topic  string // payment.approved / delivery.arrived / order.withdrawn
	Body   string
	Retry  int // 重试次数
}

// Notifier 通知出口，生产环境接推送/站内信，默认实现只写日志
type Notifier interface {
	Send(task NotifyTask) error
}

// LogNotifier 日志通知出口
type LogNotifier struct{}

func (LogNotifier) Send(task NotifyTask) error {
	logger.Log.Info("user notification",
		zap.String("user_id", task.UserID),
		zap.String("topic", task.Topic),
		zap.String("body", task.Body),
	)
	return nil
}

// NotifyPool 异步通知池，交易主流程不等通知结果
type NotifyPool struct {
	TaskQueue  chan NotifyTask
	RetryQueue chan NotifyTask
	Notifier   Notifier
	WorkerNum  int
	MaxRetry   int
}

// GlobalPool 全局通知池，bootstrap 时初始化；为 nil 时 Notify 静默丢弃
var GlobalPool *NotifyPool

// Notify 投递一条通知，池未初始化时直接丢弃
func Notify(userID, topic, body string) {
	if GlobalPool == nil {
		return
	}
	GlobalPool.AddTask(NotifyTask{UserID: userID, Topic: topic, Body: body})
}

func NewNotifyPool(notifier Notifier, workerNum int, bufferSize int) *NotifyPool {
	return &NotifyPool{
		TaskQueue:  make(chan NotifyTask, bufferSize),
		RetryQueue: make(chan NotifyTask, bufferSize/2),
		Notifier:   notifier,
		WorkerNum:  workerNum,
		MaxRetry:   3,
	}
}

func (p *NotifyPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	go p.retryWorker()
	logger.Log.Info("notify pool started", zap.Int("workers", p.WorkerNum))
}

func (p *NotifyPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.Notifier.Send(task); err != nil {
			logger.Log.Warn("notify failed",
				zap.Int("worker", id),
				zap.String("user_id", task.UserID),
				zap.String("topic", task.Topic),
				zap.Error(err),
			)

			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
				default:
					p.logDeadLetter(task, err)
				}
			} else {
				p.logDeadLetter(task, err)
			}
		}
	}
}

func (p *NotifyPool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			p.logDeadLetter(task, nil)
		}
	}
}

// logDeadLetter 通知只影响体验不影响账务，死信落日志即可
func (p *NotifyPool) logDeadLetter(task NotifyTask, err error) {
	logger.Log.Error("notification dropped",
		zap.String("user_id", task.UserID),
		zap.String("topic", task.Topic),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)
}

func (p *NotifyPool) AddTask(task NotifyTask) {
	select {
	case p.TaskQueue <- task:
	default:
		p.logDeadLetter(task, nil)
	}
}
