// Package model 定义数据库实体模型
// 本文件定义消息模型，包括同步时本地合成的日期分隔消息
package model

import (
	"gorm.io/gorm"
)

// 消息发送状态
const (
	MessageSendStateNotSent   int8 = 0 // 未发送
	MessageSendStateFailed    int8 = 1 // 发送失败
	MessageSendStateSuccessed int8 = 2 // 已送达
	MessageSendStateRead      int8 = 3 // 对方已读
)

// 消息媒体类型
const (
	MessageMediaTypeText        int8 = 0 // 文本
	MessageMediaTypeImage       int8 = 1 // 图片
	MessageMediaTypeVideo       int8 = 2 // 视频
	MessageMediaTypeAudio       int8 = 3 // 语音
	MessageMediaTypeSticker     int8 = 4 // 贴纸
	MessageMediaTypeLocation    int8 = 5 // 位置
	MessageMediaTypeSectionDate int8 = 6 // 日期分隔（本地合成，无内容）
)

// Message 消息模型
// 对应数据库 message 表
// CreatedUnixTime 使用 unix 秒的浮点表示：对"新到达"的消息保证单调不减，
// 时间戳不大于本地最大值时会被抬高一个固定步长再入库
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 远端消息用远端 id；日期分隔消息用本地生成的 "sd-" 前缀 uuid
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(64);not null;comment:消息唯一id"`

	// ConversationUuid 所属会话 uuid
	// 同步过程中会先建出没有会话的临时消息，推导不出会话时整条删除
	ConversationUuid string `gorm:"column:conversation_uuid;index;type:char(40);comment:所属会话uuid"`

	// FromUserUuid 发送者 uuid
	FromUserUuid string `gorm:"column:from_user_uuid;index;type:char(36);comment:发送者uuid"`

	// CreatedUnixTime 消息时间（unix 秒）
	CreatedUnixTime float64 `gorm:"column:created_unix_time;index;comment:消息时间"`

	// SendState 发送状态，取值见 MessageSendState* 常量
	// 自己发出的消息同步回来时直接置为已读
	SendState int8 `gorm:"column:send_state;not null;comment:发送状态"`

	// Readed 已读标志
	Readed bool `gorm:"column:readed;comment:已读标志"`

	// TextContent 文本内容
	TextContent string `gorm:"column:text_content;type:TEXT;comment:文本内容"`

	// Longitude / Latitude 位置消息坐标，仅当远端同时给出经纬度时写入
	Longitude *float64 `gorm:"column:longitude;comment:经度"`
	Latitude  *float64 `gorm:"column:latitude;comment:纬度"`

	// AttachmentURL 主附件地址
	AttachmentURL string `gorm:"column:attachment_url;type:varchar(255);comment:附件url"`

	// ThumbnailURL 缩略图地址
	ThumbnailURL string `gorm:"column:thumbnail_url;type:varchar(255);comment:缩略图url"`

	// MediaType 媒体类型，取值见 MessageMediaType* 常量
	MediaType int8 `gorm:"column:media_type;comment:媒体类型"`

	// MediaMetaData 媒体元数据（远端原样字符串）
	MediaMetaData string `gorm:"column:media_meta_data;type:TEXT;comment:媒体元数据"`
}

func (Message) TableName() string {
	return "message"
}

// IsSectionDate 是否为日期分隔消息
func (m *Message) IsSectionDate() bool {
	return m.MediaType == MessageMediaTypeSectionDate
}
