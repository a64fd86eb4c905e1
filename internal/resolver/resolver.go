package resolver

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/img-hub/img-hub/internal/cache"
	"github.com/img-hub/img-hub/internal/imgkey"
	"github.com/img-hub/img-hub/internal/origin"
)

// ErrNotFound 表示本地缓存与远端都拿不到该编码对应的图片。
var ErrNotFound = errors.New("image not found")

// Origin 标记一次 GET 的数据来源，供响应头与日志字段复用。
type Origin string

const (
	OriginCache  Origin = "cache"
	OriginRemote Origin = "remote"
)

// Resolver 负责 orchestrate “缓存命中 → 回源 → 写缓存” 的读穿透流程。
// 回源写缓存是尽力而为：写失败只记日志，不影响已经取到的响应。
type Resolver struct {
	store   cache.Store
	fetcher origin.Fetcher
	logger  *logrus.Logger
}

// New 构造 Resolver，三个依赖均为必填。
func New(store cache.Store, fetcher origin.Fetcher, logger *logrus.Logger) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("cache store required")
	}
	if fetcher == nil {
		return nil, errors.New("origin fetcher required")
	}
	if logger == nil {
		return nil, errors.New("logger required")
	}
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
	}, nil
}

// Resolve 执行一次 GET 的完整决策：
//  1. 本地命中直接返回，绝不触碰远端；
//  2. 未命中则回源，成功后尽力写回缓存并返回远端正文；
//  3. 回源失败返回 ErrNotFound——对调用方而言这就是“没有数据”。
//
// 读缓存出现 not-found 之外的错误时按未命中处理（对 GET 语义等价），
// 仅记一条 warn。请求之间没有去重：同一编码的并发 miss 允许各自回源，
// 最后一次 rename 的字节胜出。
func (r *Resolver) Resolve(ctx context.Context, key imgkey.Key) ([]byte, Origin, error) {
	blob, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		return blob, OriginCache, nil
	case errors.Is(err, cache.ErrNotFound):
		// miss, continue
	default:
		r.logger.WithError(err).
			WithFields(logrus.Fields{"action": "cache_get", "code": key.String()}).
			Warn("cache_get_failed")
	}

	fetched, err := r.fetcher.Fetch(ctx, key)
	if err != nil {
		r.logger.WithError(err).
			WithFields(logrus.Fields{"action": "origin_fetch", "code": key.String()}).
			Info("origin_fetch_failed")
		return nil, "", ErrNotFound
	}

	if _, err := r.store.Put(ctx, key, fetched); err != nil {
		// 写回失败不改变响应：下次请求会再回源，对上游是幂等的。
		r.logger.WithError(err).
			WithFields(logrus.Fields{"action": "cache_put", "code": key.String()}).
			Warn("cache_populate_failed")
	}

	return fetched, OriginRemote, nil
}
