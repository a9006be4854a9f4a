package model

import (
	"gorm.io/gorm"
)

// Attachment 附件记录
// 只新建不原地修改；重复同步同一条消息时按消息整体重建
type Attachment struct {
	gorm.Model
	MessageUuid string `gorm:"column:message_uuid;index;type:varchar(64);not null;comment:所属消息uuid"`
	Kind        string `gorm:"column:kind;type:varchar(20);comment:附件类型"`
	Metadata    string `gorm:"column:metadata;type:TEXT;comment:附件元数据"`
	URL         string `gorm:"column:url;type:varchar(255);comment:附件url"`
}

func (Attachment) TableName() string {
	return "attachment"
}
