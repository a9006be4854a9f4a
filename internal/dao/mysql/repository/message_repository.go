package repository

import (
	"kama_sync_engine/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// FindByUuid 根据 UUID 查找消息
func (r *messageRepository) FindByUuid(uuid string) (*model.Message, error) {
	var message model.Message
	if err := r.db.First(&message, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%s", uuid)
	}
	return &message, nil
}

// Create 创建消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// Save 保存消息
func (r *messageRepository) Save(message *model.Message) error {
	if err := r.db.Save(message).Error; err != nil {
		return wrapDBError(err, "更新消息")
	}
	return nil
}

// DeleteByUuid 删除消息
func (r *messageRepository) DeleteByUuid(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 uuid=%s", uuid)
	}
	return nil
}

// MaxCreatedUnixTime 本地全部消息的最大时间戳
// 没有任何消息时返回 0
func (r *messageRepository) MaxCreatedUnixTime() (float64, error) {
	var max *float64
	if err := r.db.Model(&model.Message{}).Select("MAX(created_unix_time)").Scan(&max).Error; err != nil {
		return 0, wrapDBError(err, "查询最大消息时间戳")
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// LastInConversationBefore 会话内时间戳严格小于 before 的最后一条消息
func (r *messageRepository) LastInConversationBefore(conversationUuid string, before float64) (*model.Message, error) {
	var message model.Message
	err := r.db.Where("conversation_uuid = ? AND created_unix_time < ?", conversationUuid, before).
		Order("created_unix_time DESC").
		First(&message).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询会话 %s 的前一条消息", conversationUuid)
	}
	return &message, nil
}

// FindUnreadSentBy 指定用户发出、已确认送达且对方尚未读的消息
// 未发出/发送失败的消息没有已读可言；日期分隔消息是本地合成的，不参与已读对账
func (r *messageRepository) FindUnreadSentBy(userUuid string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("from_user_uuid = ? AND send_state = ? AND media_type <> ?",
		userUuid, model.MessageSendStateSuccessed, model.MessageMediaTypeSectionDate).
		Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询未读消息 from=%s", userUuid)
	}
	return messages, nil
}

// MarkRead 批量置为已读
func (r *messageRepository) MarkRead(uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	err := r.db.Model(&model.Message{}).Where("uuid IN ?", uuids).
		Updates(map[string]interface{}{
			"send_state": model.MessageSendStateRead,
			"readed":     true,
		}).Error
	if err != nil {
		return wrapDBError(err, "批量标记消息已读")
	}
	return nil
}

// DeleteByConversationUuids 批量删除多个会话的全部消息
func (r *messageRepository) DeleteByConversationUuids(conversationUuids []string) error {
	if len(conversationUuids) == 0 {
		return nil
	}
	if err := r.db.Where("conversation_uuid IN ?", conversationUuids).Delete(&model.Message{}).Error; err != nil {
		return wrapDBError(err, "批量删除会话消息")
	}
	return nil
}
