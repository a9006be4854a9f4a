// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与同步逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"errors"

	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.User, error)
	// FindAll 查找所有本地用户（好友关系对账需要全量扫描）
	FindAll() ([]model.User, error)
	// Create 创建新用户
	Create(user *model.User) error
	// Save 全字段保存用户
	Save(user *model.User) error
}

// DoNotDisturbRepository 免打扰时段数据访问接口
type DoNotDisturbRepository interface {
	// FindByUserUuid 查找用户的免打扰时段
	FindByUserUuid(userUuid string) (*model.UserDoNotDisturb, error)
	// Create 创建免打扰时段
	Create(dnd *model.UserDoNotDisturb) error
	// Save 保存免打扰时段
	Save(dnd *model.UserDoNotDisturb) error
	// DeleteByUserUuid 删除用户的免打扰时段
	DeleteByUserUuid(userUuid string) error
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	// FindByUuid 根据 UUID 查找群组
	FindByUuid(uuid string) (*model.Group, error)
	// FindAll 查找所有本地群组
	FindAll() ([]model.Group, error)
	// Create 创建新群组
	Create(group *model.Group) error
	// Save 全字段保存群组
	Save(group *model.Group) error
	// DeleteByUuids 批量删除群组
	DeleteByUuids(uuids []string) error
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	// FindUserUuidsByGroupUuid 查找群组的全部成员 uuid
	FindUserUuidsByGroupUuid(groupUuid string) ([]string, error)
	// ReplaceMembers 以远端名单整体替换群成员
	ReplaceMembers(groupUuid string, userUuids []string) error
	// DeleteByGroupUuids 批量删除多个群组的所有成员
	DeleteByGroupUuids(groupUuids []string) error
}

// ConversationRepository 会话数据访问接口
type ConversationRepository interface {
	// FindByUuid 根据 UUID 查找会话
	FindByUuid(uuid string) (*model.Conversation, error)
	// FindByFriendUuid 查找与指定用户的单聊会话
	FindByFriendUuid(friendUuid string) (*model.Conversation, error)
	// FindByGroupUuid 查找指定群组的会话
	FindByGroupUuid(groupUuid string) (*model.Conversation, error)
	// FindUuidsByGroupUuids 查找多个群组的会话 uuid（级联删除用）
	FindUuidsByGroupUuids(groupUuids []string) ([]string, error)
	// Create 创建新会话
	Create(conversation *model.Conversation) error
	// Save 全字段保存会话
	Save(conversation *model.Conversation) error
	// DeleteByUuids 批量删除会话
	DeleteByUuids(uuids []string) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByUuid 根据 UUID 查找消息
	FindByUuid(uuid string) (*model.Message, error)
	// Create 创建新消息
	Create(message *model.Message) error
	// Save 全字段保存消息
	Save(message *model.Message) error
	// DeleteByUuid 删除消息（推导不出会话的孤儿消息）
	DeleteByUuid(uuid string) error
	// MaxCreatedUnixTime 本地全部消息的最大时间戳，无消息时返回 0
	MaxCreatedUnixTime() (float64, error)
	// LastInConversationBefore 会话内时间戳严格小于 before 的最后一条消息
	// 不存在时返回 CodeNotFound
	LastInConversationBefore(conversationUuid string, before float64) (*model.Message, error)
	// FindUnreadSentBy 指定用户发出、已确认送达且尚未读的消息
	FindUnreadSentBy(userUuid string) ([]model.Message, error)
	// MarkRead 批量置为已读
	MarkRead(uuids []string) error
	// DeleteByConversationUuids 批量删除多个会话的全部消息（级联删除用）
	DeleteByConversationUuids(conversationUuids []string) error
}

// SkillRepository 技能目录数据访问接口
type SkillRepository interface {
	// FindByUuid 根据 UUID 查找技能
	FindByUuid(uuid string) (*model.UserSkill, error)
	// Create 创建技能
	Create(skill *model.UserSkill) error
	// Save 保存技能
	Save(skill *model.UserSkill) error
	// FindCategoryByUuid 根据 UUID 查找技能分类
	FindCategoryByUuid(uuid string) (*model.UserSkillCategory, error)
	// CreateCategory 创建技能分类
	CreateCategory(category *model.UserSkillCategory) error
}

// AttachmentRepository 附件数据访问接口
// 附件只新建不修改，重复同步按消息整体重建
type AttachmentRepository interface {
	// FindByMessageUuid 查找消息的全部附件
	FindByMessageUuid(messageUuid string) ([]model.Attachment, error)
	// ReplaceForMessage 重建消息的附件记录
	ReplaceForMessage(messageUuid string, attachments []model.Attachment) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，同步层通过此结构访问数据层
type Repositories struct {
	db           *gorm.DB
	User         UserRepository
	DoNotDisturb DoNotDisturbRepository
	Group        GroupRepository
	GroupMember  GroupMemberRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Skill        SkillRepository
	Attachment   AttachmentRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		User:         NewUserRepository(db),
		DoNotDisturb: NewDoNotDisturbRepository(db),
		Group:        NewGroupRepository(db),
		GroupMember:  NewGroupMemberRepository(db),
		Conversation: NewConversationRepository(db),
		Message:      NewMessageRepository(db),
		Skill:        NewSkillRepository(db),
		Attachment:   NewAttachmentRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
