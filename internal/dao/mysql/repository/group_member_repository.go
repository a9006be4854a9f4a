package repository

import (
	"kama_sync_engine/internal/model"

	"gorm.io/gorm"
)

type groupMemberRepository struct {
	db *gorm.DB
}

// NewGroupMemberRepository 创建群成员 Repository
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// FindUserUuidsByGroupUuid 查找群组的全部成员 uuid
func (r *groupMemberRepository) FindUserUuidsByGroupUuid(groupUuid string) ([]string, error) {
	var uuids []string
	if err := r.db.Model(&model.GroupMember{}).Where("group_uuid = ?", groupUuid).Pluck("user_uuid", &uuids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s", groupUuid)
	}
	return uuids, nil
}

// ReplaceMembers 以远端名单整体替换群成员
// 先算差集再整体换，避免边遍历边删的下标问题
func (r *groupMemberRepository) ReplaceMembers(groupUuid string, userUuids []string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("group_uuid = ?", groupUuid).Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}
		if len(userUuids) == 0 {
			return nil
		}
		members := make([]model.GroupMember, 0, len(userUuids))
		for _, userUuid := range userUuids {
			members = append(members, model.GroupMember{GroupUuid: groupUuid, UserUuid: userUuid})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "替换群成员 group_uuid=%s", groupUuid)
	}
	return nil
}

// DeleteByGroupUuids 批量删除多个群组的所有成员
func (r *groupMemberRepository) DeleteByGroupUuids(groupUuids []string) error {
	if len(groupUuids) == 0 {
		return nil
	}
	if err := r.db.Where("group_uuid IN ?", groupUuids).Delete(&model.GroupMember{}).Error; err != nil {
		return wrapDBError(err, "批量删除群成员")
	}
	return nil
}
