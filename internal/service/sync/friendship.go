package sync

import (
	"go.uber.org/zap"

	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
)

// reconcileFriendships 以远端好友列表为准对账本地好友关系
// 两步走：先清理（名单里没有的本地用户清掉好友关系 id 和星标，
// Normal 降为 Stranger，自己固定为 Me），再升级（名单里的每个好友
// 落档并置为 Normal）。降级是单向的，Stranger/Blocked 不受影响；
// 重复执行结果不变
func (s *Syncer) reconcileFriendships(repos *repository.Repositories, snapshots []remote.FriendshipSnapshot) {
	remoteFriendUuids := make(map[string]struct{}, len(snapshots))
	for i := range snapshots {
		friend := snapshots[i].Friend
		if friend == nil || friend.ID == nil || *friend.ID == "" {
			continue
		}
		remoteFriendUuids[*friend.ID] = struct{}{}
	}

	localUsers, err := repos.User.FindAll()
	if err != nil {
		zap.L().Error("扫描本地用户失败", zap.Error(err))
		return
	}
	for i := range localUsers {
		user := &localUsers[i]
		if _, stillFriend := remoteFriendUuids[user.Uuid]; stillFriend {
			continue
		}
		user.FriendshipId = ""
		user.IsBestFriend = false
		user.BestFriendIndex = 0
		if user.Uuid == s.session.UserID {
			user.FriendState = model.UserFriendStateMe
		} else if user.FriendState == model.UserFriendStateNormal {
			user.FriendState = model.UserFriendStateStranger
		}
		if err := repos.User.Save(user); err != nil {
			zap.L().Error("好友降级失败", zap.String("uuid", user.Uuid), zap.Error(err))
		}
	}

	for i := range snapshots {
		snapshot := &snapshots[i]
		if snapshot.Friend == nil {
			continue
		}
		friend, err := s.resolveUser(repos, snapshot.Friend)
		if err != nil || friend == nil {
			zap.L().Warn("好友档案落地失败", zap.Error(err))
			continue
		}
		// 远端名单里出现自己时不改写 Me 状态
		if friend.Uuid == s.session.UserID {
			continue
		}
		friend.FriendState = model.UserFriendStateNormal
		if snapshot.ID != nil {
			friend.FriendshipId = *snapshot.ID
		}
		if err := repos.User.Save(friend); err != nil {
			zap.L().Error("好友升级失败", zap.String("uuid", friend.Uuid), zap.Error(err))
		}
	}
}
