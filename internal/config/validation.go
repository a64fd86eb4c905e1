package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if strings.TrimSpace(g.ListenHost) == "" {
		return newFieldError("ListenHost", "不能为空")
	}
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}
	if g.StoragePath == "" {
		return newFieldError("StoragePath", "不能为空")
	}
	if g.OriginTimeout.DurationValue() <= 0 {
		return newFieldError("OriginTimeout", "必须大于 0")
	}
	if g.LogMaxSize < 0 {
		return newFieldError("LogMaxSize", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("LogMaxBackups", "不能为负数")
	}

	return validateOriginTemplate(g.OriginURLTemplate)
}

// validateOriginTemplate 校验回源模板：恰好一个 %s 占位符，填充后必须是合法的
// http/https URL。
func validateOriginTemplate(template string) error {
	if template == "" {
		return newFieldError("OriginURLTemplate", "不能为空")
	}
	if strings.Count(template, "%s") != 1 {
		return newFieldError("OriginURLTemplate", "必须包含且仅包含一个 %s 占位符")
	}

	sample := fmt.Sprintf(template, "200")
	parsed, err := url.Parse(sample)
	if err != nil {
		return newFieldError("OriginURLTemplate", "不是合法的 URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return newFieldError("OriginURLTemplate", "仅支持 http/https")
	}
	if parsed.Host == "" {
		return newFieldError("OriginURLTemplate", "缺少主机名")
	}
	return nil
}
