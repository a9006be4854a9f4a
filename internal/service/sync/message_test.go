package sync

import (
	"testing"
	"time"

	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/constants"
	"kama_sync_engine/pkg/errorx"
)

func TestReconcileMessageCreatesConversation(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	ids := reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 10, 0)), MessageAgeOld)
	if len(ids) != 1 || ids[0] != "m1" {
		t.Fatalf("expected [m1], got %v", ids)
	}

	msg, err := repos.Message.FindByUuid("m1")
	if err != nil {
		t.Fatalf("find message: %v", err)
	}
	if msg.FromUserUuid != "alice" {
		t.Fatalf("expected sender alice, got %s", msg.FromUserUuid)
	}
	conv, err := repos.Conversation.FindByUuid(msg.ConversationUuid)
	if err != nil {
		t.Fatalf("find conversation: %v", err)
	}
	if conv.Type != model.ConversationTypeOneToOne || conv.WithFriendUuid != "alice" {
		t.Fatalf("unexpected conversation %+v", conv)
	}
	if !almostEqual(conv.UpdatedUnixTime, msg.CreatedUnixTime) {
		t.Fatalf("conversation time not updated")
	}
}

func TestReconcileMessageReusesConversation(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 10, 0)), MessageAgeOld)
	reconcileOne(s, repos, textMessage("m2", "alice", "User", "me", ts(2024, time.March, 1, 11, 0)), MessageAgeOld)

	m1, _ := repos.Message.FindByUuid("m1")
	m2, _ := repos.Message.FindByUuid("m2")
	if m1.ConversationUuid != m2.ConversationUuid {
		t.Fatalf("same partner should share one conversation")
	}
}

func TestReconcileMessageDuplicateDelivery(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	snapshot := textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 10, 0))
	first := reconcileOne(s, repos, snapshot, MessageAgeOld)

	// 重复投递带着修正过的字段：详情要重新合并，但不重复通知
	snapshot.TextContent = strPtr("updated text")
	second := reconcileOne(s, repos, snapshot, MessageAgeOld)

	if len(first) != 1 {
		t.Fatalf("first delivery should land, got %v", first)
	}
	if len(second) != 0 {
		t.Fatalf("duplicate delivery should not be re-announced, got %v", second)
	}
	msg, _ := repos.Message.FindByUuid("m1")
	if msg.TextContent != "updated text" {
		t.Fatalf("redelivery should re-merge detail, got %q", msg.TextContent)
	}

	conv, _ := repos.Conversation.FindByFriendUuid("alice")
	if conv == nil {
		t.Fatalf("conversation missing")
	}
	messages, err := repos.Message.FindUnreadSentBy("alice")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("duplicate delivery should not duplicate the message, got %d", len(messages))
	}
}

func TestDuplicateDeliveryKeepsSelfReadForcing(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	snapshot := textMessage("m1", "me", "User", "bob", ts(2024, time.March, 1, 10, 0))
	reconcileOne(s, repos, snapshot, MessageAgeOld)
	reconcileOne(s, repos, snapshot, MessageAgeOld)

	msg, _ := repos.Message.FindByUuid("m1")
	if msg.SendState != model.MessageSendStateRead || !msg.Readed {
		t.Fatalf("own message should stay read after redelivery, got state=%d", msg.SendState)
	}
}

func TestBackfillDoesNotRegressConversationTime(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	latest := ts(2024, time.March, 1, 12, 0)
	reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", latest), MessageAgeOld)

	// 历史回填一条更早的消息，会话的排序时间不应倒退
	reconcileOne(s, repos, textMessage("m0", "alice", "User", "me", latest-3600), MessageAgeOld)

	conv, err := repos.Conversation.FindByFriendUuid("alice")
	if err != nil {
		t.Fatalf("find conversation: %v", err)
	}
	if !almostEqual(conv.UpdatedUnixTime, latest) {
		t.Fatalf("conversation time regressed to %f, want %f", conv.UpdatedUnixTime, latest)
	}
}

func TestNewMessageTimestampClamp(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	latest := ts(2024, time.March, 1, 12, 0)
	reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", latest), MessageAgeOld)

	// 新消息带着一个更早的时间戳到达，入库时间应抬到 max 之后
	reconcileOne(s, repos, textMessage("m2", "alice", "User", "me", latest-3600), MessageAgeNew)

	m2, err := repos.Message.FindByUuid("m2")
	if err != nil {
		t.Fatalf("find m2: %v", err)
	}
	if !almostEqual(m2.CreatedUnixTime, latest+constants.MESSAGE_LOCAL_NEWER_INTERVAL) {
		t.Fatalf("expected clamped timestamp %f, got %f", latest+constants.MESSAGE_LOCAL_NEWER_INTERVAL, m2.CreatedUnixTime)
	}
}

func TestOldMessageTimestampPreserved(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	latest := ts(2024, time.March, 1, 12, 0)
	reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", latest), MessageAgeOld)
	reconcileOne(s, repos, textMessage("m2", "alice", "User", "me", latest-3600), MessageAgeOld)

	m2, _ := repos.Message.FindByUuid("m2")
	if !almostEqual(m2.CreatedUnixTime, latest-3600) {
		t.Fatalf("history backfill should keep original timestamp, got %f", m2.CreatedUnixTime)
	}
}

func TestSectionDateInsertedAcrossDays(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 23, 0)), MessageAgeOld)
	ids := reconcileOne(s, repos, textMessage("m2", "alice", "User", "me", ts(2024, time.March, 2, 9, 0)), MessageAgeOld)

	if len(ids) != 2 {
		t.Fatalf("expected section + message, got %v", ids)
	}
	section, err := repos.Message.FindByUuid(ids[0])
	if err != nil {
		t.Fatalf("find section: %v", err)
	}
	if !section.IsSectionDate() {
		t.Fatalf("first id should be a section date message")
	}
	m2, _ := repos.Message.FindByUuid("m2")
	if !almostEqual(section.CreatedUnixTime, m2.CreatedUnixTime-constants.SECTION_DATE_LEAD_INTERVAL) {
		t.Fatalf("section should lead the message by the fixed interval")
	}
	if section.ConversationUuid != m2.ConversationUuid {
		t.Fatalf("section should live in the same conversation")
	}
}

func TestNoSectionDateSameDay(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 9, 0)), MessageAgeOld)
	ids := reconcileOne(s, repos, textMessage("m2", "alice", "User", "me", ts(2024, time.March, 1, 21, 0)), MessageAgeOld)

	if len(ids) != 1 {
		t.Fatalf("same day should not produce a section, got %v", ids)
	}
}

func TestNoSectionDateForFirstMessage(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	ids := reconcileOne(s, repos, textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 9, 0)), MessageAgeOld)
	if len(ids) != 1 {
		t.Fatalf("first message in conversation should not produce a section, got %v", ids)
	}
}

func TestOrphanMessageDeleted(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	// 没有发送者，推导不出会话，消息不应留在库里
	snapshot := remote.MessageSnapshot{
		ID:              strPtr("m1"),
		CreatedUnixTime: f64Ptr(ts(2024, time.March, 1, 9, 0)),
	}
	ids := reconcileOne(s, repos, snapshot, MessageAgeOld)
	if len(ids) != 0 {
		t.Fatalf("orphan should not be reported, got %v", ids)
	}
	if _, err := repos.Message.FindByUuid("m1"); !errorx.IsNotFound(err) {
		t.Fatalf("orphan message should be deleted, got err=%v", err)
	}
}

func TestSelfEchoConversationUsesRecipient(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	// 自己发出的消息回显：会话对端是收件人，消息直接已读
	reconcileOne(s, repos, textMessage("m1", "me", "User", "bob", ts(2024, time.March, 1, 9, 0)), MessageAgeOld)

	msg, err := repos.Message.FindByUuid("m1")
	if err != nil {
		t.Fatalf("find message: %v", err)
	}
	conv, _ := repos.Conversation.FindByUuid(msg.ConversationUuid)
	if conv.WithFriendUuid != "bob" {
		t.Fatalf("self echo should target recipient, got %s", conv.WithFriendUuid)
	}
	if msg.SendState != model.MessageSendStateRead || !msg.Readed {
		t.Fatalf("own message should be marked read, got state=%d", msg.SendState)
	}
}

func TestGroupMessageConversation(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	snapshot := textMessage("m1", "alice", remote.RecipientTypeCircle, "g1", ts(2024, time.March, 1, 9, 0))
	snapshot.Circle = &remote.GroupSnapshot{
		ID:   strPtr("g1"),
		Name: strPtr("组队"),
		Members: []remote.UserSnapshot{
			{ID: strPtr("alice")},
			{ID: strPtr("me")},
		},
	}
	reconcileOne(s, repos, snapshot, MessageAgeOld)

	msg, _ := repos.Message.FindByUuid("m1")
	conv, err := repos.Conversation.FindByUuid(msg.ConversationUuid)
	if err != nil {
		t.Fatalf("find conversation: %v", err)
	}
	if conv.Type != model.ConversationTypeGroup || conv.WithGroupUuid != "g1" {
		t.Fatalf("unexpected conversation %+v", conv)
	}
	group, err := repos.Group.FindByUuid("g1")
	if err != nil {
		t.Fatalf("group should be created: %v", err)
	}
	if group.Name != "组队" {
		t.Fatalf("group name not merged, got %s", group.Name)
	}
	members, _ := repos.GroupMember.FindUserUuidsByGroupUuid("g1")
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}
}

func TestRecordMessageDetailAttachments(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	snapshot := textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 9, 0))
	snapshot.MediaType = strPtr("image")
	snapshot.Attachments = []remote.AttachmentSnapshot{
		{
			Kind:     strPtr("image"),
			Metadata: strPtr(`{"width":800}`),
			File:     &remote.FileSnapshot{URL: strPtr("https://cdn.example.com/a.jpg")},
		},
		{
			Kind: strPtr("thumbnail"),
			File: &remote.FileSnapshot{URL: strPtr("https://cdn.example.com/a_thumb.jpg")},
		},
	}
	reconcileOne(s, repos, snapshot, MessageAgeOld)

	msg, _ := repos.Message.FindByUuid("m1")
	if msg.MediaType != model.MessageMediaTypeImage {
		t.Fatalf("expected image media type, got %d", msg.MediaType)
	}
	if msg.AttachmentURL != "https://cdn.example.com/a.jpg" {
		t.Fatalf("main attachment url not recorded, got %s", msg.AttachmentURL)
	}
	if msg.ThumbnailURL != "https://cdn.example.com/a_thumb.jpg" {
		t.Fatalf("thumbnail url not recorded, got %s", msg.ThumbnailURL)
	}
	if msg.MediaMetaData != `{"width":800}` {
		t.Fatalf("metadata not recorded, got %s", msg.MediaMetaData)
	}
	records, _ := repos.Attachment.FindByMessageUuid("m1")
	if len(records) != 2 {
		t.Fatalf("expected 2 attachment rows, got %d", len(records))
	}
}

func TestLocationMessageCoordinates(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	snapshot := textMessage("m1", "alice", "User", "me", ts(2024, time.March, 1, 9, 0))
	snapshot.MediaType = strPtr("location")
	snapshot.Longitude = f64Ptr(116.4)
	snapshot.Latitude = f64Ptr(39.9)
	reconcileOne(s, repos, snapshot, MessageAgeOld)

	msg, _ := repos.Message.FindByUuid("m1")
	if msg.Longitude == nil || msg.Latitude == nil {
		t.Fatalf("coordinates should be recorded")
	}
	if !almostEqual(*msg.Longitude, 116.4) || !almostEqual(*msg.Latitude, 39.9) {
		t.Fatalf("unexpected coordinates %v %v", *msg.Longitude, *msg.Latitude)
	}

	// 只给一个坐标时不写入
	snapshot2 := textMessage("m2", "alice", "User", "me", ts(2024, time.March, 1, 9, 30))
	snapshot2.Longitude = f64Ptr(116.4)
	reconcileOne(s, repos, snapshot2, MessageAgeOld)
	m2, _ := repos.Message.FindByUuid("m2")
	if m2.Longitude != nil || m2.Latitude != nil {
		t.Fatalf("partial coordinates should be ignored")
	}
}
