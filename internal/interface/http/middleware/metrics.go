// Package middleware HTTP中间件
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/storehub/pkg/metrics"
)

// Metrics HTTP请求指标采集中间件
//
// 学习要点：
//  1. path标签使用路由模板(c.FullPath())而不是真实URL,
//     避免/api/v1/stock/1、/api/v1/stock/2产生高基数标签
//  2. Gauge在defer里递减, panic时也能正确回落
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		defer metrics.DecGauge(metrics.HTTPRequestsInProgress)

		c.Next()

		path := c.FullPath()
		if path == "" {
			// 未匹配到路由(404), 统一归档避免基数爆炸
			path = "unmatched"
		}

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, time.Since(start).Seconds())
	}
}
