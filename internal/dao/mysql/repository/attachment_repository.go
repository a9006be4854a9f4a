package repository

import (
	"kama_sync_engine/internal/model"

	"gorm.io/gorm"
)

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository 创建附件 Repository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

// FindByMessageUuid 查找消息的全部附件
func (r *attachmentRepository) FindByMessageUuid(messageUuid string) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if err := r.db.Where("message_uuid = ?", messageUuid).Find(&attachments).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询附件 message_uuid=%s", messageUuid)
	}
	return attachments, nil
}

// ReplaceForMessage 重建消息的附件记录
// 附件只新建不原地修改，重复同步时整体重建保证幂等
func (r *attachmentRepository) ReplaceForMessage(messageUuid string, attachments []model.Attachment) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("message_uuid = ?", messageUuid).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if len(attachments) == 0 {
			return nil
		}
		for i := range attachments {
			attachments[i].MessageUuid = messageUuid
		}
		return tx.Create(&attachments).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "重建附件 message_uuid=%s", messageUuid)
	}
	return nil
}
