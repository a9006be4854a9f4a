// Package model 定义数据库实体模型
// 本文件定义用户模型，保存远端同步下来的用户资料和好友关系状态
package model

import (
	"gorm.io/gorm"
)

// 好友状态取值
// 状态只会被同步过程显式修改：好友列表里没有的 Normal 用户降为 Stranger，
// 降级是单向的，Stranger/Blocked 保持不变
const (
	UserFriendStateStranger int8 = 0 // 陌生人
	UserFriendStateNormal   int8 = 1 // 好友
	UserFriendStateBlocked  int8 = 2 // 已拉黑
	UserFriendStateMe       int8 = 3 // 自己
)

// User 用户模型
// 对应数据库 user 表
// 所有字段来自远端快照的稀疏合并：远端没给的字段保持本地旧值
type User struct {
	gorm.Model

	// Uuid 远端签发的用户唯一标识
	// 查重的唯一键，任何 upsert 都不会为同一 id 建第二条记录
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:用户唯一id"`

	// Username 用户名
	Username string `gorm:"column:username;type:varchar(50);comment:用户名"`

	// Nickname 昵称
	Nickname string `gorm:"column:nickname;type:varchar(50);comment:昵称"`

	// Introduction 个人介绍
	Introduction string `gorm:"column:introduction;type:varchar(255);comment:个人介绍"`

	// AvatarURL 头像地址
	AvatarURL string `gorm:"column:avatar_url;type:varchar(255);comment:头像url"`

	// Badge 徽章标识
	Badge string `gorm:"column:badge;type:varchar(50);comment:徽章"`

	// Longitude / Latitude 用户位置
	Longitude float64 `gorm:"column:longitude;comment:经度"`
	Latitude  float64 `gorm:"column:latitude;comment:纬度"`

	// CreatedUnixTime 远端账号创建时间（unix 秒）
	// 仅在本地首次建档时写入
	CreatedUnixTime float64 `gorm:"column:created_unix_time;comment:远端创建时间"`

	// LastSignInUnixTime 最近登录时间（unix 秒）
	LastSignInUnixTime float64 `gorm:"column:last_sign_in_unix_time;comment:最近登录时间"`

	// FriendState 好友状态，取值见 UserFriendState* 常量
	FriendState int8 `gorm:"column:friend_state;index;not null;comment:好友状态"`

	// FriendshipId 好友关系 id，非好友时为空串
	FriendshipId string `gorm:"column:friendship_id;type:char(36);comment:好友关系id"`

	// IsBestFriend 是否星标好友
	IsBestFriend bool `gorm:"column:is_best_friend;comment:是否星标好友"`

	// BestFriendIndex 星标好友排序位置
	BestFriendIndex int `gorm:"column:best_friend_index;comment:星标好友排序"`
}

// TableName 指定表名
func (User) TableName() string {
	return "user"
}
