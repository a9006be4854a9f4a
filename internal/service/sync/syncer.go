// Package sync 实现同步对账引擎的核心逻辑
// 把远端权威快照（用户资料、好友、群组、消息）合并进本地实体图，
// 保证引用完整、时间有序、重复投递幂等
package sync

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/transport"
)

// MessageAge 消息的新旧标记
// New 表示刚到达的消息（参与时间戳单调修正），Old 表示历史回填
type MessageAge string

const (
	MessageAgeOld MessageAge = "old"
	MessageAgeNew MessageAge = "new"
)

// Session 当前登录身份
// 显式传入而不是读全局状态，所有对账决策（自己/陌生人、自发消息回显）都以它为准
type Session struct {
	UserID string
}

// Dispatcher 新消息事件发布接口
// 每个非空消息批次发布一个事件，空批次不发布
type Dispatcher interface {
	PublishNewMessages(messageIDs []string, messageAge string)
}

// DefaultsMirror 会话默认值镜像接口
// 资料同步观察到的昵称、头像等字段同步给外部进程
type DefaultsMirror interface {
	MirrorSessionDefaults(userId string, fields map[string]string)
}

// FeedHook 群组附带话题的挂载点
// feed 的落地不属于对账核心，由外部注入
type FeedHook func(repos *repository.Repositories, groupUuid string, topic json.RawMessage)

// Syncer 同步对账引擎
// 所有存储改动都经过 owner 的串行队列，远端拉取在独立 goroutine 上进行
type Syncer struct {
	session    Session
	owner      *StoreOwner
	client     *transport.Client
	dispatcher Dispatcher
	defaults   DefaultsMirror
	feedHook   FeedHook

	fetchingUnread atomic.Bool
	fullPassCount  atomic.Int64
	lastFullPassAt atomic.Int64
}

// NewSyncer 创建同步引擎
// dispatcher/defaults 允许为 nil（不发布事件、不做镜像）
func NewSyncer(session Session, owner *StoreOwner, client *transport.Client, dispatcher Dispatcher, defaults DefaultsMirror) *Syncer {
	return &Syncer{
		session:    session,
		owner:      owner,
		client:     client,
		dispatcher: dispatcher,
		defaults:   defaults,
	}
}

// SetFeedHook 注入群组话题挂载点
func (s *Syncer) SetFeedHook(hook FeedHook) {
	s.feedHook = hook
}

// SyncMyInfo 同步当前用户资料
// 拉取失败时也会调用 furtherAction，保持尽力而为的链式推进
func (s *Syncer) SyncMyInfo(furtherAction func()) {
	go func() {
		snapshot, err := s.client.UserInfo(context.Background())
		if err != nil {
			zap.L().Error("拉取用户资料失败", zap.Error(err))
			if furtherAction != nil {
				furtherAction()
			}
			return
		}
		s.owner.Submit(func(repos *repository.Repositories) {
			s.reconcileMyInfo(repos, snapshot)
			if furtherAction != nil {
				furtherAction()
			}
		})
	}()
}

// SyncFriendships 同步全量好友关系
func (s *Syncer) SyncFriendships(furtherAction func()) {
	go func() {
		snapshots, err := s.client.Friendships(context.Background())
		if err != nil {
			zap.L().Error("拉取好友列表失败", zap.Error(err))
			if furtherAction != nil {
				furtherAction()
			}
			return
		}
		s.owner.Submit(func(repos *repository.Repositories) {
			s.reconcileFriendships(repos, snapshots)
			if furtherAction != nil {
				furtherAction()
			}
		})
	}()
}

// SyncGroups 同步全量群组
func (s *Syncer) SyncGroups(furtherAction func()) {
	go func() {
		snapshots, err := s.client.Groups(context.Background())
		if err != nil {
			zap.L().Error("拉取群组列表失败", zap.Error(err))
			if furtherAction != nil {
				furtherAction()
			}
			return
		}
		s.owner.Submit(func(repos *repository.Repositories) {
			s.reconcileGroups(repos, snapshots)
			if furtherAction != nil {
				furtherAction()
			}
		})
	}()
}

// SyncUnreadMessages 同步未读消息
// furtherAction 收到本轮新落库（含合成的日期分隔）的消息 id 列表
func (s *Syncer) SyncUnreadMessages(furtherAction func(messageIDs []string)) {
	s.fetchingUnread.Store(true)
	go func() {
		snapshots, err := s.client.UnreadMessages(context.Background())
		if err != nil {
			zap.L().Error("拉取未读消息失败", zap.Error(err))
			s.fetchingUnread.Store(false)
			if furtherAction != nil {
				furtherAction(nil)
			}
			return
		}
		zap.L().Info("拉取到未读消息", zap.Int("count", len(snapshots)))
		s.owner.Submit(func(repos *repository.Repositories) {
			var messageIDs []string
			for i := range snapshots {
				s.reconcileMessage(repos, &snapshots[i], MessageAgeNew, func(ids []string) {
					messageIDs = append(messageIDs, ids...)
				})
			}
			s.dispatchNewMessages(messageIDs, MessageAgeNew)
			if furtherAction != nil {
				furtherAction(messageIDs)
			}
			s.fetchingUnread.Store(false)
		})
	}()
}

// SyncMessagesReadStatus 对账已发送消息的已读状态
func (s *Syncer) SyncMessagesReadStatus() {
	go func() {
		snapshot, err := s.client.SentButUnreadMessages(context.Background())
		if err != nil {
			zap.L().Error("拉取未读回执失败", zap.Error(err))
			return
		}
		s.owner.Submit(func(repos *repository.Repositories) {
			s.reconcileReadStatus(repos, snapshot.MessageIDs)
		})
	}()
}

// IngestMessage 送入一条消息快照（实时推送通道的入口）
func (s *Syncer) IngestMessage(snapshot remote.MessageSnapshot, age MessageAge) {
	s.owner.Submit(func(repos *repository.Repositories) {
		var messageIDs []string
		s.reconcileMessage(repos, &snapshot, age, func(ids []string) {
			messageIDs = append(messageIDs, ids...)
		})
		s.dispatchNewMessages(messageIDs, age)
	})
}

// RunFullPass 按固定顺序跑一轮全量同步
// 各步骤之间用 furtherAction 链式衔接，任一步失败不阻断后续步骤
func (s *Syncer) RunFullPass() {
	s.SyncMyInfo(func() {
		s.SyncFriendships(func() {
			s.SyncGroups(func() {
				s.SyncUnreadMessages(func(messageIDs []string) {
					s.SyncMessagesReadStatus()
					s.fullPassCount.Add(1)
					s.lastFullPassAt.Store(time.Now().Unix())
				})
			})
		})
	})
}

// dispatchNewMessages 发布一批新落库消息的事件，空批次不发布
func (s *Syncer) dispatchNewMessages(messageIDs []string, age MessageAge) {
	if len(messageIDs) == 0 || s.dispatcher == nil {
		return
	}
	s.dispatcher.PublishNewMessages(messageIDs, string(age))
}

// Status 引擎运行状态
type Status struct {
	SessionUserId  string `json:"sessionUserId"`
	FetchingUnread bool   `json:"fetchingUnread"`
	FullPassCount  int64  `json:"fullPassCount"`
	LastFullPassAt int64  `json:"lastFullPassAt"`
}

// Status 返回引擎当前状态（管理接口用）
func (s *Syncer) Status() Status {
	return Status{
		SessionUserId:  s.session.UserID,
		FetchingUnread: s.fetchingUnread.Load(),
		FullPassCount:  s.fullPassCount.Load(),
		LastFullPassAt: s.lastFullPassAt.Load(),
	}
}
