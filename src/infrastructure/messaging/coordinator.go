package messaging

import (
	"context"
	"sync"
	"time"

	"go-wa-dispatch/src/application/usecases/campaign"
	"go-wa-dispatch/src/application/usecases/queue"
	domainSettings "go-wa-dispatch/src/domain/settings"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
)

// Coordinator owns the campaign-check and queue-check timers. It is started
// once the transport is ready and stopped on shutdown or transport loss.
type Coordinator struct {
	campaignRunner campaign.ICampaignRunner
	queueDrainer   queue.IQueueUseCase
	Logger         *logger.Logger

	mu       sync.Mutex
	started  bool
	ctx      context.Context
	cancel   context.CancelFunc
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewCoordinator wires the campaign runner and the queue drainer to their timers.
func NewCoordinator(campaignRunner campaign.ICampaignRunner, queueDrainer queue.IQueueUseCase, loggerInstance *logger.Logger) *Coordinator {
	return &Coordinator{
		campaignRunner: campaignRunner,
		queueDrainer:   queueDrainer,
		Logger:         loggerInstance,
	}
}

// Start launches both timers with the intervals in cfg. Calling it again
// while running is a no-op.
func (c *Coordinator) Start(cfg *domainSettings.RuntimeConfiguration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		c.Logger.Warn("Dispatch coordinator already started")
		return
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.shutdown = make(chan struct{})

	campaignInterval := cfg.CampaignCheckInterval()
	queueInterval := cfg.QueueCheckInterval()
	c.Logger.Info("Starting dispatch coordinator",
		zap.Duration("campaignCheckInterval", campaignInterval),
		zap.Duration("queueCheckInterval", queueInterval))

	c.wg.Add(2)
	go c.watch("campaign", campaignInterval, c.checkCampaign)
	go c.watch("queue", queueInterval, func(ctx context.Context) { c.drainQueue(ctx, cfg) })
}

// watch runs fn once immediately and then on every tick. Each firing runs in
// its own goroutine so an active run does not delay the ticker; the runners'
// single-flight guards turn overlapping firings into no-ops.
func (c *Coordinator) watch(name string, interval time.Duration, fn func(ctx context.Context)) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.fire(fn)
	for {
		select {
		case <-ticker.C:
			c.fire(fn)
		case <-c.shutdown:
			c.Logger.Info("Stopping dispatch timer", zap.String("timer", name))
			return
		}
	}
}

func (c *Coordinator) fire(fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

func (c *Coordinator) checkCampaign(ctx context.Context) {
	result, err := c.campaignRunner.CheckAndRun(ctx)
	if err != nil {
		c.Logger.Error("Campaign check failed", zap.Error(err))
		return
	}
	if result.RunID != "" {
		c.Logger.Info("Campaign check completed",
			zap.String("runID", result.RunID),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.Bool("stopped", result.Stopped))
	}
}

func (c *Coordinator) drainQueue(ctx context.Context, cfg *domainSettings.RuntimeConfiguration) {
	if _, err := c.queueDrainer.DrainOnce(ctx, cfg); err != nil {
		c.Logger.Error("Queue drain failed", zap.Error(err))
	}
}

// Running reports whether Start was called and Shutdown has not run since.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Shutdown stops both timers, cancels pending waits and blocks until the
// in-flight runs return.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	close(c.shutdown)
	c.cancel()
	c.mu.Unlock()

	c.Logger.Info("Shutting down dispatch coordinator")
	c.wg.Wait()
	c.Logger.Info("Dispatch coordinator shutdown complete")
}
