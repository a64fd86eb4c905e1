package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/img-hub/img-hub/internal/cache"
)

// RegisterDiagnosticsRoutes 暴露 /-/ 诊断接口，供运维查询缓存目录内容。
// 诊断路径不经过编码校验，与图片路由互不干扰。
func RegisterDiagnosticsRoutes(app *fiber.App, store cache.Store) {
	if app == nil || store == nil {
		return
	}

	app.Get("/-/entries", func(c fiber.Ctx) error {
		names := store.List(c.Context())
		if names == nil {
			names = []string{}
		}
		return c.JSON(fiber.Map{
			"entries": names,
			"count":   len(names),
		})
	})

	app.Get("/-/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"entries": len(store.List(c.Context())),
		})
	})
}
