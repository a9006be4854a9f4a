// Package redis 提供 Redis 缓存操作的封装
// 本文件实现会话默认值镜像：资料同步观察到的昵称、头像等字段
// 以 Hash 形式写入 Redis，供同机的其他进程读取
package redis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kama_sync_engine/pkg/constants"
	"kama_sync_engine/pkg/errorx"
)

// sessionDefaultsKey 会话默认值的键名
func sessionDefaultsKey(userId string) string {
	return "session_defaults_" + userId
}

// SetSessionDefaults 写入会话默认值字段
// fields: 字段名到字段值的映射，逐字段覆盖，不影响未给出的字段
func SetSessionDefaults(ctx context.Context, userId string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	key := sessionDefaultsKey(userId)
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	if err := redisClient.HSet(ctx, key, values).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis hset %s", key)
	}
	if err := redisClient.Expire(ctx, key, constants.REDIS_TIMEOUT*time.Minute).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis expire %s", key)
	}
	return nil
}

// GetSessionDefaults 读取会话默认值全部字段
func GetSessionDefaults(ctx context.Context, userId string) (map[string]string, error) {
	key := sessionDefaultsKey(userId)
	values, err := redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis hgetall %s", key)
	}
	return values, nil
}

// SessionDefaultsMirror 会话默认值镜像器
// 实现同步引擎的 DefaultsMirror 接口，写入走异步 Worker Pool
type SessionDefaultsMirror struct{}

// NewSessionDefaultsMirror 创建镜像器，需先完成 Init
func NewSessionDefaultsMirror() *SessionDefaultsMirror {
	return &SessionDefaultsMirror{}
}

// MirrorSessionDefaults 异步镜像会话默认值
// 镜像是尽力而为的：失败只记日志，不影响同步落库
func (m *SessionDefaultsMirror) MirrorSessionDefaults(userId string, fields map[string]string) {
	SubmitCacheTask(func() {
		if err := SetSessionDefaults(context.Background(), userId, fields); err != nil {
			zap.L().Warn("镜像会话默认值失败", zap.String("userId", userId), zap.Error(err))
		}
	})
}
