package repository

import (
	"kama_sync_engine/internal/model"

	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话 Repository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByUuid 根据 UUID 查找会话
func (r *conversationRepository) FindByUuid(uuid string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.First(&conversation, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &conversation, nil
}

// FindByFriendUuid 查找与指定用户的单聊会话
// 同一个对端至多存在一个会话
func (r *conversationRepository) FindByFriendUuid(friendUuid string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.First(&conversation, "type = ? AND with_friend_uuid = ?", model.ConversationTypeOneToOne, friendUuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询单聊会话 friend_uuid=%s", friendUuid)
	}
	return &conversation, nil
}

// FindByGroupUuid 查找指定群组的会话
func (r *conversationRepository) FindByGroupUuid(groupUuid string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.First(&conversation, "type = ? AND with_group_uuid = ?", model.ConversationTypeGroup, groupUuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群聊会话 group_uuid=%s", groupUuid)
	}
	return &conversation, nil
}

// FindUuidsByGroupUuids 查找多个群组的会话 uuid
func (r *conversationRepository) FindUuidsByGroupUuids(groupUuids []string) ([]string, error) {
	if len(groupUuids) == 0 {
		return nil, nil
	}
	var uuids []string
	if err := r.db.Model(&model.Conversation{}).Where("with_group_uuid IN ?", groupUuids).Pluck("uuid", &uuids).Error; err != nil {
		return nil, wrapDBError(err, "查询群聊会话uuid")
	}
	return uuids, nil
}

// Create 创建会话
func (r *conversationRepository) Create(conversation *model.Conversation) error {
	if err := r.db.Create(conversation).Error; err != nil {
		return wrapDBError(err, "创建会话")
	}
	return nil
}

// Save 保存会话
func (r *conversationRepository) Save(conversation *model.Conversation) error {
	if err := r.db.Save(conversation).Error; err != nil {
		return wrapDBError(err, "更新会话")
	}
	return nil
}

// DeleteByUuids 批量删除会话
func (r *conversationRepository) DeleteByUuids(uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Delete(&model.Conversation{}).Error; err != nil {
		return wrapDBError(err, "批量删除会话")
	}
	return nil
}
