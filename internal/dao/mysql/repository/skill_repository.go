package repository

import (
	"kama_sync_engine/internal/model"

	"gorm.io/gorm"
)

type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository 创建技能目录 Repository
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

// FindByUuid 根据 UUID 查找技能
func (r *skillRepository) FindByUuid(uuid string) (*model.UserSkill, error) {
	var skill model.UserSkill
	if err := r.db.First(&skill, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询技能 uuid=%s", uuid)
	}
	return &skill, nil
}

// Create 创建技能
func (r *skillRepository) Create(skill *model.UserSkill) error {
	if err := r.db.Create(skill).Error; err != nil {
		return wrapDBError(err, "创建技能")
	}
	return nil
}

// Save 保存技能
func (r *skillRepository) Save(skill *model.UserSkill) error {
	if err := r.db.Save(skill).Error; err != nil {
		return wrapDBError(err, "更新技能")
	}
	return nil
}

// FindCategoryByUuid 根据 UUID 查找技能分类
func (r *skillRepository) FindCategoryByUuid(uuid string) (*model.UserSkillCategory, error) {
	var category model.UserSkillCategory
	if err := r.db.First(&category, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询技能分类 uuid=%s", uuid)
	}
	return &category, nil
}

// CreateCategory 创建技能分类
func (r *skillRepository) CreateCategory(category *model.UserSkillCategory) error {
	if err := r.db.Create(category).Error; err != nil {
		return wrapDBError(err, "创建技能分类")
	}
	return nil
}
