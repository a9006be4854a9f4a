package sync

import (
	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/errorx"
)

// upsertSkill 把一份技能快照落成本地技能条目
// 按远端技能 id 查重；分类可缺省，给出时先落分类再挂引用
func (s *Syncer) upsertSkill(repos *repository.Repositories, snapshot *remote.SkillSnapshot) (*model.UserSkill, error) {
	if snapshot == nil || snapshot.ID == nil || *snapshot.ID == "" {
		return nil, nil
	}

	categoryUuid := ""
	if snapshot.Category != nil && snapshot.Category.ID != nil && *snapshot.Category.ID != "" {
		category, err := s.upsertSkillCategory(repos, snapshot.Category)
		if err != nil {
			return nil, err
		}
		categoryUuid = category.Uuid
	}

	skill, err := repos.Skill.FindByUuid(*snapshot.ID)
	if errorx.IsNotFound(err) {
		skill = &model.UserSkill{Uuid: *snapshot.ID}
		if err := repos.Skill.Create(skill); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if snapshot.Name != nil {
		skill.Name = *snapshot.Name
	}
	if snapshot.LocalName != nil {
		skill.LocalName = *snapshot.LocalName
	}
	if snapshot.CoverURL != nil {
		skill.CoverURL = *snapshot.CoverURL
	}
	if categoryUuid != "" {
		skill.CategoryUuid = categoryUuid
	}
	if err := repos.Skill.Save(skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// upsertSkillCategory 落地技能分类，已存在时沿用旧记录
func (s *Syncer) upsertSkillCategory(repos *repository.Repositories, snapshot *remote.SkillCategorySnapshot) (*model.UserSkillCategory, error) {
	category, err := repos.Skill.FindCategoryByUuid(*snapshot.ID)
	if err == nil {
		return category, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}
	category = &model.UserSkillCategory{Uuid: *snapshot.ID}
	if snapshot.Name != nil {
		category.Name = *snapshot.Name
	}
	if snapshot.LocalName != nil {
		category.LocalName = *snapshot.LocalName
	}
	if err := repos.Skill.CreateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// SkillToSnapshot 把本地技能条目映射回远端表示（管理接口调试用）
func SkillToSnapshot(skill *model.UserSkill, category *model.UserSkillCategory) remote.SkillSnapshot {
	snapshot := remote.SkillSnapshot{
		ID:        &skill.Uuid,
		Name:      &skill.Name,
		LocalName: &skill.LocalName,
		CoverURL:  &skill.CoverURL,
	}
	if category != nil {
		snapshot.Category = &remote.SkillCategorySnapshot{
			ID:        &category.Uuid,
			Name:      &category.Name,
			LocalName: &category.LocalName,
		}
	}
	return snapshot
}
