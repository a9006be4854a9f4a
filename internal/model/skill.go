package model

import (
	"gorm.io/gorm"
)

// UserSkill 技能条目
// 远端技能表示与本地归一化表示之间双向映射，按远端技能 id 查重
type UserSkill struct {
	gorm.Model
	Uuid         string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:技能唯一id"`
	Name         string `gorm:"column:name;type:varchar(50);comment:技能名"`
	LocalName    string `gorm:"column:local_name;type:varchar(50);comment:技能本地化名"`
	CoverURL     string `gorm:"column:cover_url;type:varchar(255);comment:封面url"`
	CategoryUuid string `gorm:"column:category_uuid;index:idx_user_skill_by_category;type:char(36);comment:所属分类uuid"`
}

func (UserSkill) TableName() string {
	return "user_skill"
}

// UserSkillCategory 技能分类
// 分类可选，被多个技能按引用共享
type UserSkillCategory struct {
	gorm.Model
	Uuid      string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:分类唯一id"`
	Name      string `gorm:"column:name;type:varchar(50);comment:分类名"`
	LocalName string `gorm:"column:local_name;type:varchar(50);comment:分类本地化名"`
}

func (UserSkillCategory) TableName() string {
	return "user_skill_category"
}
