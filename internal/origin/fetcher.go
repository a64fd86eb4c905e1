package origin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/img-hub/img-hub/internal/imgkey"
)

// ErrUpstream 表示回源失败：网络错误或上游返回非 2xx 状态码。
var ErrUpstream = errors.New("origin fetch failed")

// Fetcher 定义回源能力：按编码抓取远端图片正文。
// 实现不做重试，单次失败即终止本次请求的回源。
type Fetcher interface {
	Fetch(ctx context.Context, key imgkey.Key) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, key imgkey.Key) ([]byte, error)

// Fetch makes FetcherFunc satisfy Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, key imgkey.Key) ([]byte, error) {
	return f(ctx, key)
}

// httpFetcher 基于共享 http.Client 与 URL 模板实现回源。
type httpFetcher struct {
	client   *http.Client
	template string
}

// NewHTTPFetcher 构造 HTTP 回源器。template 需包含一个 %s 占位符，
// 由三位编码填充，例如 https://http.cat/%s.jpg。
func NewHTTPFetcher(client *http.Client, template string) (Fetcher, error) {
	if client == nil {
		return nil, errors.New("http client required")
	}
	if template == "" {
		return nil, errors.New("origin url template required")
	}
	return &httpFetcher{
		client:   client,
		template: template,
	}, nil
}

func (f *httpFetcher) Fetch(ctx context.Context, key imgkey.Key) ([]byte, error) {
	url := fmt.Sprintf(f.template, key.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	return blob, nil
}
