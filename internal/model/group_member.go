package model

import (
	"gorm.io/gorm"
)

// GroupMember 群成员关系
// 每轮群同步按远端名单整体替换
type GroupMember struct {
	gorm.Model
	GroupUuid string `gorm:"column:group_uuid;index:idx_group_user,unique;type:char(36);not null;comment:群组uuid"`
	UserUuid  string `gorm:"column:user_uuid;index:idx_group_user,unique;type:char(36);not null;comment:成员uuid"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
