package sync

import (
	"go.uber.org/zap"

	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/errorx"
)

// getOrCreateUser 按 uuid 取用户，不存在则建最小档
// 最小档只有 uuid 和好友状态（自己为 Me，其余为 Stranger），
// 详细资料由后续的稀疏合并补齐。同一 id 永远不会建出第二条记录
func (s *Syncer) getOrCreateUser(repos *repository.Repositories, userUuid string) (*model.User, error) {
	user, err := repos.User.FindByUuid(userUuid)
	if err == nil {
		return user, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}

	state := model.UserFriendStateStranger
	if userUuid == s.session.UserID {
		state = model.UserFriendStateMe
	}
	user = &model.User{
		Uuid:        userUuid,
		FriendState: state,
	}
	if err := repos.User.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// resolveUser 把一份用户快照落成本地用户记录
// 先建档再做详情稀疏合并；快照没给 id 时无法落地，返回 nil
func (s *Syncer) resolveUser(repos *repository.Repositories, snapshot *remote.UserSnapshot) (*model.User, error) {
	if snapshot == nil || snapshot.ID == nil || *snapshot.ID == "" {
		return nil, nil
	}
	user, err := s.getOrCreateUser(repos, *snapshot.ID)
	if err != nil {
		return nil, err
	}
	if err := s.updateUserDetail(repos, user, snapshot); err != nil {
		zap.L().Warn("用户详情合并失败", zap.String("uuid", user.Uuid), zap.Error(err))
	}
	return user, nil
}
