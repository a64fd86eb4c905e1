package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/img-hub/img-hub/internal/cache"
	"github.com/img-hub/img-hub/internal/imgkey"
	"github.com/img-hub/img-hub/internal/logging"
	"github.com/img-hub/img-hub/internal/resolver"
)

const imageContentType = "image/jpeg"

// imageHandler 将 HTTP 动词映射到 resolver/store 调用，并统一错误响应格式。
// 错误响应只携带稳定的 error 字段，不暴露内部路径或堆栈。
type imageHandler struct {
	logger   *logrus.Logger
	resolver *resolver.Resolver
	store    cache.Store
}

// handleGet 执行读穿透：命中返回本地字节，未命中回源，两头都没有则 404。
func (h *imageHandler) handleGet(c fiber.Ctx) error {
	started := time.Now()
	key, err := imgkey.Parse(c.Params("code"))
	if err != nil {
		return h.writeInvalidKey(c)
	}

	blob, source, err := h.resolver.Resolve(requestContext(c), key)
	if err != nil {
		h.logResult(c, key.String(), string(source), false, fiber.StatusNotFound, started)
		return writeError(c, fiber.StatusNotFound, "not found")
	}

	cacheHit := source == resolver.OriginCache
	c.Set("Content-Type", imageContentType)
	c.Set("X-Img-Hub-Cache-Hit", boolHeader(cacheHit))
	h.logResult(c, key.String(), string(source), cacheHit, fiber.StatusOK, started)
	return c.Status(fiber.StatusOK).Send(blob)
}

// handlePut 直接写入缓存存储，成功返回 201 与写入字节数。
func (h *imageHandler) handlePut(c fiber.Ctx) error {
	started := time.Now()
	key, err := imgkey.Parse(c.Params("code"))
	if err != nil {
		return h.writeInvalidKey(c)
	}

	written, err := h.store.Put(requestContext(c), key, c.Body())
	if err != nil {
		h.logger.WithError(err).
			WithFields(logrus.Fields{"action": "cache_put", "code": key.String()}).
			Error("cache_write_failed")
		return writeError(c, fiber.StatusInternalServerError, "write failed")
	}

	h.logResult(c, key.String(), "client", false, fiber.StatusCreated, started)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":    true,
		"saved": key.Filename(),
		"bytes": written,
	})
}

// handleDelete 删除缓存条目，条目不存在时返回 404。
func (h *imageHandler) handleDelete(c fiber.Ctx) error {
	started := time.Now()
	key, err := imgkey.Parse(c.Params("code"))
	if err != nil {
		return h.writeInvalidKey(c)
	}

	if err := h.store.Delete(requestContext(c), key); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			h.logResult(c, key.String(), "", false, fiber.StatusNotFound, started)
			return writeError(c, fiber.StatusNotFound, "not found")
		}
		h.logger.WithError(err).
			WithFields(logrus.Fields{"action": "cache_delete", "code": key.String()}).
			Error("cache_delete_failed")
		return writeError(c, fiber.StatusInternalServerError, "delete failed")
	}

	h.logResult(c, key.String(), "", false, fiber.StatusOK, started)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"deleted": key.Filename(),
	})
}

// handleMethodNotAllowed 兜底所有未支持的动词。非法编码仍优先返回 400。
func (h *imageHandler) handleMethodNotAllowed(c fiber.Ctx) error {
	if _, err := imgkey.Parse(c.Params("code")); err != nil {
		return h.writeInvalidKey(c)
	}
	return writeError(c, fiber.StatusMethodNotAllowed, "method not allowed")
}

func (h *imageHandler) writeInvalidKey(c fiber.Ctx) error {
	h.logger.WithFields(logrus.Fields{
		"action": "key_parse",
		"raw":    c.Params("code"),
		"method": c.Method(),
	}).Warn("invalid_key")
	return writeError(c, fiber.StatusBadRequest, "invalid key")
}

func (h *imageHandler) logResult(c fiber.Ctx, code, source string, cacheHit bool, status int, started time.Time) {
	fields := logging.RequestFields(code, c.Method(), source, cacheHit)
	fields["action"] = "image"
	fields["status"] = status
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if reqID := RequestID(c); reqID != "" {
		fields["request_id"] = reqID
	}
	h.logger.WithFields(fields).Info("image_request_complete")
}

func writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

func boolHeader(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func requestContext(c fiber.Ctx) context.Context {
	ctx := c.Context()
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
