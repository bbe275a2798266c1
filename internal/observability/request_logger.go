package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RouteLabels returns the matched route pattern and the method as metric
// labels. Both are copied because fiber reuses the underlying buffers once
// the request ends.
func RouteLabels(c *fiber.Ctx) (route, method string) {
	route = "unmatched"
	if r := c.Route(); r != nil && r.Path != "" {
		route = utils.CopyString(r.Path)
	}
	return route, utils.CopyString(c.Method())
}

// RequestLogger logs one line per request and feeds request metrics. The
// route label is the matched route pattern so ids do not explode cardinality.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route, method := RouteLabels(c)
		metrics.RecordRequest(route, method, status, elapsed)

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.IP()),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Warn("request", fields...)
		} else {
			logger.Info("request", fields...)
		}
		return err
	}
}
