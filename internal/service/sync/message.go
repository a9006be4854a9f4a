package sync

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/constants"
	"kama_sync_engine/pkg/errorx"
)

// reconcileMessage 把一条消息快照落成本地消息
// 步骤：查重建档（新消息做时间戳单调修正）-> 发送者落档 -> 推导所属会话
// -> 必要时合成日期分隔 -> 合并消息详情。推导不出会话的消息整条删除，
// 不留悬空记录。furtherAction 收到本条新落库的消息 id（可能含日期分隔）
func (s *Syncer) reconcileMessage(repos *repository.Repositories, snapshot *remote.MessageSnapshot, age MessageAge, furtherAction func(messageIDs []string)) {
	if snapshot == nil || snapshot.ID == nil || *snapshot.ID == "" {
		zap.L().Warn("消息快照缺少 id，忽略")
		return
	}

	createdAt := float64(0)
	if snapshot.CreatedUnixTime != nil {
		createdAt = *snapshot.CreatedUnixTime
	}
	message, created, err := s.getOrCreateMessage(repos, *snapshot.ID, createdAt, age)
	if err != nil {
		zap.L().Error("消息建档失败", zap.String("id", *snapshot.ID), zap.Error(err))
		return
	}

	sender, err := s.resolveUser(repos, snapshot.Sender)
	if err != nil || sender == nil {
		// 已入库的消息不因一次缺发送者的重复投递被删
		if created {
			s.dropOrphanMessage(repos, message, "缺少发送者")
		}
		return
	}
	message.FromUserUuid = sender.Uuid

	// 重复投递：详情合并照常重跑（修补首次失败或补齐的字段），
	// 会话归属、日期分隔和通知不再重复
	if !created {
		if err := s.recordMessageDetail(repos, message, snapshot, sender); err != nil {
			zap.L().Error("合并消息详情失败", zap.String("id", message.Uuid), zap.Error(err))
		}
		return
	}

	conversation, err := s.deriveConversation(repos, snapshot, sender)
	if err != nil || conversation == nil {
		s.dropOrphanMessage(repos, message, "推导不出会话")
		return
	}
	message.ConversationUuid = conversation.Uuid
	if message.CreatedUnixTime > conversation.UpdatedUnixTime {
		conversation.UpdatedUnixTime = message.CreatedUnixTime
		if err := repos.Conversation.Save(conversation); err != nil {
			zap.L().Error("更新会话时间失败", zap.Error(err))
		}
	}

	var messageIDs []string
	if sectionUuid := s.tryCreateSectionDateMessage(repos, message); sectionUuid != "" {
		messageIDs = append(messageIDs, sectionUuid)
	}

	if err := s.recordMessageDetail(repos, message, snapshot, sender); err != nil {
		zap.L().Error("合并消息详情失败", zap.String("id", message.Uuid), zap.Error(err))
		return
	}

	messageIDs = append(messageIDs, message.Uuid)
	if furtherAction != nil {
		furtherAction(messageIDs)
	}
}

// getOrCreateMessage 按远端 id 取消息，不存在则建最小档
// 新到达的消息保证时间戳单调不减：时间戳不大于本地最大值时
// 抬高到 max 加一个固定步长再入库；历史回填消息保持原始时间戳
func (s *Syncer) getOrCreateMessage(repos *repository.Repositories, messageUuid string, createdAt float64, age MessageAge) (*model.Message, bool, error) {
	message, err := repos.Message.FindByUuid(messageUuid)
	if err == nil {
		return message, false, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, false, err
	}

	timestamp := createdAt
	if age == MessageAgeNew {
		max, err := repos.Message.MaxCreatedUnixTime()
		if err != nil {
			return nil, false, err
		}
		if max > 0 && timestamp <= max {
			timestamp = max + constants.MESSAGE_LOCAL_NEWER_INTERVAL
		}
	}

	message = &model.Message{
		Uuid:            messageUuid,
		CreatedUnixTime: timestamp,
		SendState:       model.MessageSendStateSuccessed,
	}
	if err := repos.Message.Create(message); err != nil {
		return nil, false, err
	}
	return message, true, nil
}

// deriveConversation 推导消息所属的会话
// 群聊消息归到群组会话；单聊消息归到对端用户的会话，
// 自己发出的消息回显时对端取收件人而不是发送者。
// 会话是派生实体，不存在则即刻创建，同一对端只会有一个会话
func (s *Syncer) deriveConversation(repos *repository.Repositories, snapshot *remote.MessageSnapshot, sender *model.User) (*model.Conversation, error) {
	isGroupMessage := snapshot.RecipientType != nil && *snapshot.RecipientType == remote.RecipientTypeCircle

	if isGroupMessage {
		group, err := s.resolveMessageGroup(repos, snapshot)
		if err != nil || group == nil {
			return nil, err
		}
		conversation, err := repos.Conversation.FindByGroupUuid(group.Uuid)
		if err == nil {
			return conversation, nil
		}
		if !errorx.IsNotFound(err) {
			return nil, err
		}
		conversation = &model.Conversation{
			Uuid:          uuid.NewString(),
			Type:          model.ConversationTypeGroup,
			WithGroupUuid: group.Uuid,
		}
		if err := repos.Conversation.Create(conversation); err != nil {
			return nil, err
		}
		return conversation, nil
	}

	partnerUuid := sender.Uuid
	if sender.Uuid == s.session.UserID {
		// 自己发出的消息回显，对端是收件人
		if snapshot.RecipientID == nil || *snapshot.RecipientID == "" {
			return nil, nil
		}
		partnerUuid = *snapshot.RecipientID
	}
	if _, err := s.getOrCreateUser(repos, partnerUuid); err != nil {
		return nil, err
	}

	conversation, err := repos.Conversation.FindByFriendUuid(partnerUuid)
	if err == nil {
		return conversation, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}
	conversation = &model.Conversation{
		Uuid:           uuid.NewString(),
		Type:           model.ConversationTypeOneToOne,
		WithFriendUuid: partnerUuid,
	}
	if err := repos.Conversation.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// resolveMessageGroup 落地群聊消息携带的群组
// 优先用内嵌的群组快照（顺带刷新群资料），否则用收件人 id 建最小档
func (s *Syncer) resolveMessageGroup(repos *repository.Repositories, snapshot *remote.MessageSnapshot) (*model.Group, error) {
	if snapshot.Circle != nil {
		return s.reconcileGroup(repos, snapshot.Circle)
	}
	if snapshot.RecipientID == nil || *snapshot.RecipientID == "" {
		return nil, nil
	}
	group, err := repos.Group.FindByUuid(*snapshot.RecipientID)
	if err == nil {
		return group, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}
	group = &model.Group{Uuid: *snapshot.RecipientID}
	if err := repos.Group.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

// tryCreateSectionDateMessage 必要时在消息前插入日期分隔
// 仅当会话里存在更早的消息、且两者不在同一个日历日时插入；
// 分隔消息的时间戳取目标消息时间减一个固定提前量，保证排在它前面。
// 会话的第一条消息不出分隔
func (s *Syncer) tryCreateSectionDateMessage(repos *repository.Repositories, message *model.Message) string {
	previous, err := repos.Message.LastInConversationBefore(message.ConversationUuid, message.CreatedUnixTime)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Error("查询前一条消息失败", zap.Error(err))
		}
		return ""
	}
	if sameCalendarDay(previous.CreatedUnixTime, message.CreatedUnixTime) {
		return ""
	}

	section := &model.Message{
		Uuid:             "sd-" + uuid.NewString(),
		ConversationUuid: message.ConversationUuid,
		CreatedUnixTime:  message.CreatedUnixTime - constants.SECTION_DATE_LEAD_INTERVAL,
		SendState:        model.MessageSendStateSuccessed,
		Readed:           true,
		MediaType:        model.MessageMediaTypeSectionDate,
	}
	if err := repos.Message.Create(section); err != nil {
		zap.L().Error("创建日期分隔失败", zap.Error(err))
		return ""
	}
	return section.Uuid
}

// sameCalendarDay 两个 unix 秒时间戳是否落在同一个本地日历日
func sameCalendarDay(a, b float64) bool {
	ta := time.Unix(int64(a), 0).In(time.Local)
	tb := time.Unix(int64(b), 0).In(time.Local)
	ya, ma, da := ta.Date()
	yb, mb, db := tb.Date()
	return ya == yb && ma == mb && da == db
}

// recordMessageDetail 合并消息详情
// 位置坐标只在经纬度都给出时写入；附件按消息整体重建，
// thumbnail 归到缩略图地址，其余归到主附件地址；
// 自己发出的消息直接置为已读
func (s *Syncer) recordMessageDetail(repos *repository.Repositories, message *model.Message, snapshot *remote.MessageSnapshot, sender *model.User) error {
	if snapshot.TextContent != nil {
		message.TextContent = *snapshot.TextContent
	}
	if snapshot.Longitude != nil && snapshot.Latitude != nil {
		message.Longitude = snapshot.Longitude
		message.Latitude = snapshot.Latitude
	}
	if snapshot.MediaType != nil {
		message.MediaType = mediaTypeFromString(*snapshot.MediaType)
	}

	if len(snapshot.Attachments) > 0 {
		records := make([]model.Attachment, 0, len(snapshot.Attachments))
		for i := range snapshot.Attachments {
			attachment := &snapshot.Attachments[i]
			if attachment.File == nil || attachment.File.URL == nil || *attachment.File.URL == "" {
				continue
			}
			kind := ""
			if attachment.Kind != nil {
				kind = *attachment.Kind
			}
			metadata := ""
			if attachment.Metadata != nil {
				metadata = *attachment.Metadata
			}
			if kind == "thumbnail" {
				message.ThumbnailURL = *attachment.File.URL
			} else {
				message.AttachmentURL = *attachment.File.URL
				if metadata != "" {
					message.MediaMetaData = metadata
				}
			}
			records = append(records, model.Attachment{
				MessageUuid: message.Uuid,
				Kind:        kind,
				Metadata:    metadata,
				URL:         *attachment.File.URL,
			})
		}
		if err := repos.Attachment.ReplaceForMessage(message.Uuid, records); err != nil {
			zap.L().Error("重建消息附件失败", zap.Error(err))
		}
	}

	if sender.Uuid == s.session.UserID {
		message.SendState = model.MessageSendStateRead
		message.Readed = true
	} else {
		message.SendState = model.MessageSendStateSuccessed
	}
	return repos.Message.Save(message)
}

// dropOrphanMessage 删除推导不出归属的消息
func (s *Syncer) dropOrphanMessage(repos *repository.Repositories, message *model.Message, reason string) {
	zap.L().Warn("删除孤儿消息", zap.String("id", message.Uuid), zap.String("reason", reason))
	if err := repos.Message.DeleteByUuid(message.Uuid); err != nil {
		zap.L().Error("删除孤儿消息失败", zap.String("id", message.Uuid), zap.Error(err))
	}
}

// mediaTypeFromString 远端媒体类型字符串到本地常量的映射
func mediaTypeFromString(value string) int8 {
	switch value {
	case "text":
		return model.MessageMediaTypeText
	case "image":
		return model.MessageMediaTypeImage
	case "video":
		return model.MessageMediaTypeVideo
	case "audio":
		return model.MessageMediaTypeAudio
	case "sticker":
		return model.MessageMediaTypeSticker
	case "location":
		return model.MessageMediaTypeLocation
	default:
		return model.MessageMediaTypeText
	}
}
