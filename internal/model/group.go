package model

import (
	"gorm.io/gorm"
)

// Group 群组模型
// 对应数据库 group_info 表
// 远端不存在的群组整组删除（级联删除会话、消息和成员关系）
type Group struct {
	gorm.Model
	Uuid      string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:群组唯一id"`
	Name      string `gorm:"column:name;type:varchar(50);comment:群名称"`
	OwnerUuid string `gorm:"column:owner_uuid;index;type:char(36);comment:群主uuid"`
}

func (Group) TableName() string {
	return "group_info"
}
