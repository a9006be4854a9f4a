package sync

import (
	"testing"
	"time"

	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/pkg/errorx"
)

func groupSnapshot(id, name, ownerId string, memberIds ...string) remote.GroupSnapshot {
	members := make([]remote.UserSnapshot, 0, len(memberIds))
	for _, m := range memberIds {
		members = append(members, remote.UserSnapshot{ID: strPtr(m)})
	}
	return remote.GroupSnapshot{
		ID:      strPtr(id),
		Name:    strPtr(name),
		Owner:   &remote.UserSnapshot{ID: strPtr(ownerId)},
		Members: members,
	}
}

func TestReconcileGroupsCreatesAndReplacesMembers(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	s.reconcileGroups(repos, []remote.GroupSnapshot{
		groupSnapshot("g1", "周末组队", "alice", "alice", "bob", "me"),
	})

	group, err := repos.Group.FindByUuid("g1")
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if group.Name != "周末组队" || group.OwnerUuid != "alice" {
		t.Fatalf("unexpected group %+v", group)
	}
	members, _ := repos.GroupMember.FindUserUuidsByGroupUuid("g1")
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %v", members)
	}
	if _, err := repos.Conversation.FindByGroupUuid("g1"); err != nil {
		t.Fatalf("group should get a conversation: %v", err)
	}

	// 成员名单整体替换：bob 被移出
	s.reconcileGroups(repos, []remote.GroupSnapshot{
		groupSnapshot("g1", "周末组队", "alice", "alice", "me"),
	})
	members, _ = repos.GroupMember.FindUserUuidsByGroupUuid("g1")
	if len(members) != 2 {
		t.Fatalf("members should be wholesale replaced, got %v", members)
	}
	for _, m := range members {
		if m == "bob" {
			t.Fatalf("bob should have been removed")
		}
	}
}

func TestReconcileGroupsCascadeDelete(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	s.reconcileGroups(repos, []remote.GroupSnapshot{
		groupSnapshot("g1", "旧群", "alice", "alice", "me"),
	})

	// 往群里落一条消息，形成会话和消息记录
	snapshot := textMessage("m1", "alice", remote.RecipientTypeCircle, "g1", ts(2024, time.March, 1, 9, 0))
	reconcileOne(s, repos, snapshot, MessageAgeOld)

	msg, err := repos.Message.FindByUuid("m1")
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
	conversationUuid := msg.ConversationUuid

	// 远端名单里不再有 g1，应连同会话、消息、成员一起删除
	s.reconcileGroups(repos, nil)

	if _, err := repos.Group.FindByUuid("g1"); !errorx.IsNotFound(err) {
		t.Fatalf("group should be deleted, got err=%v", err)
	}
	if _, err := repos.Conversation.FindByUuid(conversationUuid); !errorx.IsNotFound(err) {
		t.Fatalf("conversation should be deleted, got err=%v", err)
	}
	if _, err := repos.Message.FindByUuid("m1"); !errorx.IsNotFound(err) {
		t.Fatalf("messages should be deleted, got err=%v", err)
	}
	members, _ := repos.GroupMember.FindUserUuidsByGroupUuid("g1")
	if len(members) != 0 {
		t.Fatalf("members should be deleted, got %v", members)
	}
}

func TestReconcileGroupsIdempotent(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	snapshots := []remote.GroupSnapshot{groupSnapshot("g1", "组队", "alice", "alice")}
	s.reconcileGroups(repos, snapshots)
	s.reconcileGroups(repos, snapshots)

	groups, err := repos.Group.FindAll()
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("repeated sync should not duplicate groups, got %d", len(groups))
	}
}
