package constants

import "time"

const (
	CHANNEL_SIZE  = 100 // 通道大小
	REDIS_TIMEOUT = 30  // redis 会话默认值过期时间 (分钟)

	// MESSAGE_LOCAL_NEWER_INTERVAL 新消息时间戳修正步长（秒）
	// 网络来的新消息时间戳不大于本地最大时间戳时，取 max + 该步长，
	// 保证新消息总是追加在本地时间线末尾
	MESSAGE_LOCAL_NEWER_INTERVAL = 0.001

	// SECTION_DATE_LEAD_INTERVAL 日期分隔消息插入在目标消息之前的时间提前量（秒）
	SECTION_DATE_LEAD_INTERVAL = 0.0005

	// REALTIME_RECONNECT_INTERVAL 实时推送通道断线重连间隔
	REALTIME_RECONNECT_INTERVAL = 5 * time.Second
)
