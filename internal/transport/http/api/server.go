package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"strata/internal/analysis/indicator"
	"strata/internal/config/loader"
	"strata/internal/store"
	"strata/internal/structure"
	"strata/internal/transport/http/profile"
)

// SnapshotProvider 暴露各周期最新的结构快照。
type SnapshotProvider interface {
	Snapshot(interval string) (structure.Snapshot, bool)
	Snapshots() []structure.Snapshot
	Indicators(interval string) (indicator.Context, bool)
}

// Server 提供 Gin 接口，供前端查询结构状态与 K 线。
type Server struct {
	addr     string
	symbol   string
	provider SnapshotProvider
	klines   store.SnapshotExporter
	profiles *loader.ProfileLoader
	chartDir string
	router   *gin.Engine
}

type Config struct {
	Addr     string
	Symbol   string
	Provider SnapshotProvider
	Klines   store.SnapshotExporter
	Profiles *loader.ProfileLoader
	ChartDir string
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Provider == nil {
		return nil, errors.New("snapshot provider 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9992"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:     cfg.Addr,
		symbol:   cfg.Symbol,
		provider: cfg.Provider,
		klines:   cfg.Klines,
		profiles: cfg.Profiles,
		chartDir: cfg.ChartDir,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	if s.chartDir != "" {
		s.router.Static("/charts", s.chartDir)
	}
	api := s.router.Group("/api")
	api.GET("/structure", s.handleSnapshots)
	api.GET("/structure/:interval", s.handleSnapshot)
	api.GET("/indicators/:interval", s.handleIndicators)
	api.GET("/candles", s.handleCandles)
	if s.profiles != nil {
		profile.NewRouter(s.profiles).Register(api.Group("/profiles"))
	}
}

func (s *Server) handleSnapshots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symbol": s.symbol, "snapshots": s.provider.Snapshots()})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	interval := c.Param("interval")
	snap, ok := s.provider.Snapshot(interval)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("周期 %s 暂无快照", interval)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": s.symbol, "snapshot": snap})
}

func (s *Server) handleIndicators(c *gin.Context) {
	interval := c.Param("interval")
	rep, ok := s.provider.Indicators(interval)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("周期 %s 暂无指标", interval)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": s.symbol, "indicators": rep})
}

func (s *Server) handleCandles(c *gin.Context) {
	if s.klines == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "kline store 未启用"})
		return
	}
	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval 必填"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 非法"})
		return
	}
	data, err := s.klines.Export(c.Request.Context(), s.symbol, interval, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": s.symbol, "interval": interval, "candles": data})
}

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
