package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"strata/internal/config/loader"
	"strata/internal/logger"
)

// Router 暴露 timeframe profiles 的查询与编辑接口。
// 编辑写回 profiles.yaml，重启后生效。
type Router struct {
	loader *loader.ProfileLoader
}

func NewRouter(l *loader.ProfileLoader) *Router {
	return &Router{loader: l}
}

// Register 挂载 profiles 路由。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("", r.handleList)
	group.PUT("", r.handleUpdate)
}

func (r *Router) handleList(c *gin.Context) {
	profiles, err := r.loader.Load()
	if err != nil {
		logger.Errorf("[profile-api] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeframes": profiles})
}

func (r *Router) handleUpdate(c *gin.Context) {
	var req struct {
		Timeframes []loader.TimeframeProfile `json:"timeframes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.loader.Save(req.Timeframes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Infof("[profile-api] profiles updated: %d timeframes", len(req.Timeframes))
	c.JSON(http.StatusOK, gin.H{"timeframes": req.Timeframes, "note": "重启后生效"})
}
