package model

import (
	"gorm.io/gorm"
)

// UserDoNotDisturb 免打扰时段
// 每个用户至多一条；远端把起止时间置空时整条删除
// 时区换算在入库时做一次（加上 HourOffset/MinuteOffset 并处理分钟进位），
// 之后不再重新推导
type UserDoNotDisturb struct {
	gorm.Model
	UserUuid     string `gorm:"column:user_uuid;uniqueIndex;type:char(36);not null;comment:所属用户uuid"`
	IsOn         bool   `gorm:"column:is_on;comment:是否开启"`
	FromHour     int    `gorm:"column:from_hour;comment:开始小时"`
	FromMinute   int    `gorm:"column:from_minute;comment:开始分钟"`
	ToHour       int    `gorm:"column:to_hour;comment:结束小时"`
	ToMinute     int    `gorm:"column:to_minute;comment:结束分钟"`
	HourOffset   int    `gorm:"column:hour_offset;comment:本地时区小时偏移"`
	MinuteOffset int    `gorm:"column:minute_offset;comment:本地时区分钟偏移"`
}

func (UserDoNotDisturb) TableName() string {
	return "user_do_not_disturb"
}
