package cache

import (
	"context"
	"errors"

	"github.com/img-hub/img-hub/internal/imgkey"
)

// Store 负责管理磁盘缓存的读写。磁盘布局遵循：
//
//	<StoragePath>/<code>.jpg    # 图片正文
//
// 每个条目仅由正文文件组成，无 sidecar 元数据文件，进程重启后依旧有效。
type Store interface {
	// Get 读取完整正文。条目不存在、不可读或是目录时返回 ErrNotFound。
	Get(ctx context.Context, key imgkey.Key) ([]byte, error)

	// Put 将正文写入缓存并返回写入字节数。实现需通过临时文件 + rename
	// 保证写入原子性：并发读取方只会看到旧版本或新版本的完整内容。
	Put(ctx context.Context, key imgkey.Key, blob []byte) (int, error)

	// Delete 删除正文文件。条目不存在时返回 ErrNotFound。
	Delete(ctx context.Context, key imgkey.Key) error

	// List 返回按名称排序的条目文件名，尽力而为：目录不可读时返回空序列。
	List(ctx context.Context) []string
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")
