package container

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"phewasview/adapters/chart"
	"phewasview/adapters/exphewas"
	"phewasview/app"
	"phewasview/internal/api"
	"phewasview/internal/catalog"
	"phewasview/internal/config"
	"phewasview/internal/session"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Upstream
	Client  *exphewas.Client
	Catalog *catalog.Cache

	// Sessions and progress
	Store  *session.Store
	SSEHub *api.SSEHub

	// Services
	LoadService    *app.LoadService
	ExploreService *app.ExploreService

	Renderer *chart.Renderer

	stopJanitor context.CancelFunc
	janitorDone sync.WaitGroup
}

// New wires every component from cfg
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	clientConfig := cfg.ExPheWAS
	if err := clientConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ExPheWAS client config: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Client:   exphewas.NewClient(&clientConfig),
		Store:    session.NewStore(),
		SSEHub:   api.NewSSEHub(),
		Renderer: chart.NewRenderer(0, 0),
	}
	c.Catalog = catalog.NewCache(c.Client)
	c.LoadService = app.NewLoadService(c.Client, cfg.Load.MaxConcurrentGenes).
		WithProgress(api.NewLoadEventBroadcaster(c.SSEHub))
	c.ExploreService = app.NewExploreService(c.LoadService, c.Store, c.Catalog, app.Defaults{
		Limit:     cfg.Explore.DefaultLimit,
		Metric:    cfg.Explore.DefaultMetric,
		Threshold: cfg.Explore.DefaultThreshold,
	})

	log.Printf("Container initialized against %s", clientConfig.BaseURL)
	return c, nil
}

// StartSessionJanitor drops sessions idle for longer than ttl, checking every interval
func (c *Container) StartSessionJanitor(ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 || c.stopJanitor != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.stopJanitor = cancel

	c.janitorDone.Add(1)
	go func() {
		defer c.janitorDone.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Store.CleanupExpired(ttl); n > 0 {
					log.Printf("[Sessions] dropped %d idle sessions", n)
				}
			}
		}
	}()
}

// Shutdown stops background work
func (c *Container) Shutdown(ctx context.Context) error {
	if c.stopJanitor != nil {
		c.stopJanitor()
	}

	done := make(chan struct{})
	go func() {
		c.janitorDone.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.SSEHub.Close()
	return nil
}
