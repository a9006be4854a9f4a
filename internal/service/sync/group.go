package sync

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/errorx"
)

// reconcileGroups 以远端群组列表为准对账本地群组
// 远端名单里没有的本地群组整组删除（连同会话、消息和成员关系），
// 名单里的每个群组做落档与成员整体替换
func (s *Syncer) reconcileGroups(repos *repository.Repositories, snapshots []remote.GroupSnapshot) {
	remoteGroupUuids := make(map[string]struct{}, len(snapshots))
	for i := range snapshots {
		if snapshots[i].ID != nil && *snapshots[i].ID != "" {
			remoteGroupUuids[*snapshots[i].ID] = struct{}{}
		}
	}

	localGroups, err := repos.Group.FindAll()
	if err != nil {
		zap.L().Error("扫描本地群组失败", zap.Error(err))
		return
	}
	var staleUuids []string
	for i := range localGroups {
		if _, alive := remoteGroupUuids[localGroups[i].Uuid]; !alive {
			staleUuids = append(staleUuids, localGroups[i].Uuid)
		}
	}
	if len(staleUuids) > 0 {
		if err := s.deleteGroupsCascade(repos, staleUuids); err != nil {
			zap.L().Error("级联删除失效群组失败", zap.Error(err))
		} else {
			zap.L().Info("删除远端不存在的群组", zap.Int("count", len(staleUuids)))
		}
	}

	for i := range snapshots {
		if _, err := s.reconcileGroup(repos, &snapshots[i]); err != nil {
			zap.L().Error("群组落地失败", zap.Error(err))
		}
	}
}

// reconcileGroup 把一份群组快照落成本地群组
// 成员名单整体替换：先算出远端全量成员档案，再一次换掉本地名单，
// 不做增量摘除。群组附带的话题交给外部挂载点
func (s *Syncer) reconcileGroup(repos *repository.Repositories, snapshot *remote.GroupSnapshot) (*model.Group, error) {
	if snapshot == nil || snapshot.ID == nil || *snapshot.ID == "" {
		return nil, nil
	}

	group, err := repos.Group.FindByUuid(*snapshot.ID)
	if errorx.IsNotFound(err) {
		group = &model.Group{Uuid: *snapshot.ID}
		if err := repos.Group.Create(group); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if snapshot.Name != nil {
		group.Name = *snapshot.Name
	}
	if snapshot.Owner != nil {
		owner, err := s.resolveUser(repos, snapshot.Owner)
		if err == nil && owner != nil {
			group.OwnerUuid = owner.Uuid
		}
	}
	if err := repos.Group.Save(group); err != nil {
		return nil, err
	}
	if err := s.ensureGroupConversation(repos, group.Uuid); err != nil {
		zap.L().Error("建立群会话失败", zap.String("group", group.Uuid), zap.Error(err))
	}

	if snapshot.Members != nil {
		memberUuids := make([]string, 0, len(snapshot.Members))
		for i := range snapshot.Members {
			member, err := s.resolveUser(repos, &snapshot.Members[i])
			if err != nil || member == nil {
				continue
			}
			memberUuids = append(memberUuids, member.Uuid)
		}
		if err := repos.GroupMember.ReplaceMembers(group.Uuid, memberUuids); err != nil {
			return nil, err
		}
	}

	if s.feedHook != nil && len(snapshot.Topic) > 0 {
		s.feedHook(repos, group.Uuid, snapshot.Topic)
	}
	return group, nil
}

// ensureGroupConversation 群组没有会话时补建一个
func (s *Syncer) ensureGroupConversation(repos *repository.Repositories, groupUuid string) error {
	_, err := repos.Conversation.FindByGroupUuid(groupUuid)
	if err == nil {
		return nil
	}
	if !errorx.IsNotFound(err) {
		return err
	}
	return repos.Conversation.Create(&model.Conversation{
		Uuid:          uuid.NewString(),
		Type:          model.ConversationTypeGroup,
		WithGroupUuid: groupUuid,
	})
}

// deleteGroupsCascade 整组删除群组及其派生实体
// 顺序：消息 -> 会话 -> 成员关系 -> 群组，整个级联在一个事务里完成
func (s *Syncer) deleteGroupsCascade(repos *repository.Repositories, groupUuids []string) error {
	return repos.Transaction(func(tx *repository.Repositories) error {
		conversationUuids, err := tx.Conversation.FindUuidsByGroupUuids(groupUuids)
		if err != nil {
			return err
		}
		if err := tx.Message.DeleteByConversationUuids(conversationUuids); err != nil {
			return err
		}
		if err := tx.Conversation.DeleteByUuids(conversationUuids); err != nil {
			return err
		}
		if err := tx.GroupMember.DeleteByGroupUuids(groupUuids); err != nil {
			return err
		}
		return tx.Group.DeleteByUuids(groupUuids)
	})
}
