package sync

import (
	"go.uber.org/zap"

	"kama_sync_engine/internal/dao/mysql/repository"
)

// reconcileReadStatus 用集合差对账自己已发送消息的已读状态
// 远端给出"仍未读"的消息 id 列表；本地所有自己发出且未读的消息里，
// 不在该列表里的就是对方已经读过的，批量置为已读。
// 远端列表为空表示全部已读
func (s *Syncer) reconcileReadStatus(repos *repository.Repositories, remoteUnreadIDs []string) {
	localUnread, err := repos.Message.FindUnreadSentBy(s.session.UserID)
	if err != nil {
		zap.L().Error("查询本地未读消息失败", zap.Error(err))
		return
	}
	if len(localUnread) == 0 {
		return
	}

	stillUnread := make(map[string]struct{}, len(remoteUnreadIDs))
	for _, id := range remoteUnreadIDs {
		stillUnread[id] = struct{}{}
	}

	var readUuids []string
	for i := range localUnread {
		if _, unread := stillUnread[localUnread[i].Uuid]; !unread {
			readUuids = append(readUuids, localUnread[i].Uuid)
		}
	}
	if len(readUuids) == 0 {
		return
	}
	if err := repos.Message.MarkRead(readUuids); err != nil {
		zap.L().Error("批量标记已读失败", zap.Error(err))
		return
	}
	zap.L().Info("消息已读对账完成", zap.Int("marked", len(readUuids)))
}
