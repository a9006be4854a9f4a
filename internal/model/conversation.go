package model

import (
	"gorm.io/gorm"
)

// 会话类型
const (
	ConversationTypeOneToOne int8 = 0 // 单聊
	ConversationTypeGroup    int8 = 1 // 群聊
)

// Conversation 会话模型
// 对应数据库 conversation 表
// 会话是同步过程派生出来的本地实体，远端载荷里没有它：
// 单聊会话指向对端用户（WithFriendUuid），群聊会话指向群组（WithGroupUuid），
// 两者恰有其一，建好之后不再改变归属
type Conversation struct {
	gorm.Model

	// Uuid 本地生成的会话唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(40);not null;comment:会话uuid"`

	// Type 会话类型，取值见 ConversationType* 常量
	Type int8 `gorm:"column:type;not null;comment:会话类型，0.单聊，1.群聊"`

	// WithFriendUuid 单聊对端用户 uuid，群聊时为空
	WithFriendUuid string `gorm:"column:with_friend_uuid;index;type:char(36);comment:单聊对端uuid"`

	// WithGroupUuid 群聊群组 uuid，单聊时为空
	WithGroupUuid string `gorm:"column:with_group_uuid;index;type:char(36);comment:群聊群组uuid"`

	// UpdatedUnixTime 最近一条消息的时间（unix 秒），用于会话列表排序
	UpdatedUnixTime float64 `gorm:"column:updated_unix_time;comment:最近消息时间"`
}

func (Conversation) TableName() string {
	return "conversation"
}
