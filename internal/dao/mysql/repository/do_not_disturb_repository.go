package repository

import (
	"kama_sync_engine/internal/model"

	"gorm.io/gorm"
)

type doNotDisturbRepository struct {
	db *gorm.DB
}

// NewDoNotDisturbRepository 创建免打扰时段 Repository
func NewDoNotDisturbRepository(db *gorm.DB) DoNotDisturbRepository {
	return &doNotDisturbRepository{db: db}
}

// FindByUserUuid 查找用户的免打扰时段
func (r *doNotDisturbRepository) FindByUserUuid(userUuid string) (*model.UserDoNotDisturb, error) {
	var dnd model.UserDoNotDisturb
	if err := r.db.First(&dnd, "user_uuid = ?", userUuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询免打扰时段 user_uuid=%s", userUuid)
	}
	return &dnd, nil
}

// Create 创建免打扰时段
func (r *doNotDisturbRepository) Create(dnd *model.UserDoNotDisturb) error {
	if err := r.db.Create(dnd).Error; err != nil {
		return wrapDBError(err, "创建免打扰时段")
	}
	return nil
}

// Save 保存免打扰时段
func (r *doNotDisturbRepository) Save(dnd *model.UserDoNotDisturb) error {
	if err := r.db.Save(dnd).Error; err != nil {
		return wrapDBError(err, "更新免打扰时段")
	}
	return nil
}

// DeleteByUserUuid 删除用户的免打扰时段
func (r *doNotDisturbRepository) DeleteByUserUuid(userUuid string) error {
	if err := r.db.Where("user_uuid = ?", userUuid).Delete(&model.UserDoNotDisturb{}).Error; err != nil {
		return wrapDBErrorf(err, "删除免打扰时段 user_uuid=%s", userUuid)
	}
	return nil
}
