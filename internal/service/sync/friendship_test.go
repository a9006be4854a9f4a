package sync

import (
	"testing"

	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
)

func friendship(id, friendId string) remote.FriendshipSnapshot {
	return remote.FriendshipSnapshot{
		ID:     strPtr(id),
		Friend: &remote.UserSnapshot{ID: strPtr(friendId)},
	}
}

func TestReconcileFriendshipsUpgrade(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	s.reconcileFriendships(repos, []remote.FriendshipSnapshot{
		{
			ID: strPtr("f1"),
			Friend: &remote.UserSnapshot{
				ID:              strPtr("alice"),
				Nickname:        strPtr("爱丽丝"),
				Favored:         boolPtr(true),
				FavoredPosition: intPtr(2),
			},
		},
	})

	alice, err := repos.User.FindByUuid("alice")
	if err != nil {
		t.Fatalf("find alice: %v", err)
	}
	if alice.FriendState != model.UserFriendStateNormal {
		t.Fatalf("expected Normal, got %d", alice.FriendState)
	}
	if alice.FriendshipId != "f1" {
		t.Fatalf("friendship id not recorded, got %s", alice.FriendshipId)
	}
	if !alice.IsBestFriend || alice.BestFriendIndex != 2 {
		t.Fatalf("favored info not merged, got %+v", alice)
	}
}

func TestReconcileFriendshipsDemotesMissing(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	s.reconcileFriendships(repos, []remote.FriendshipSnapshot{
		friendship("f1", "alice"),
		friendship("f2", "bob"),
	})

	// bob 从远端名单里消失，应降为陌生人；alice 保持好友
	s.reconcileFriendships(repos, []remote.FriendshipSnapshot{
		friendship("f1", "alice"),
	})

	bob, _ := repos.User.FindByUuid("bob")
	if bob.FriendState != model.UserFriendStateStranger {
		t.Fatalf("bob should be demoted, got %d", bob.FriendState)
	}
	if bob.FriendshipId != "" {
		t.Fatalf("demotion should clear friendship id")
	}
	alice, _ := repos.User.FindByUuid("alice")
	if alice.FriendState != model.UserFriendStateNormal {
		t.Fatalf("alice should stay Normal, got %d", alice.FriendState)
	}
}

func TestReconcileFriendshipsLeavesBlockedAndMe(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	if err := repos.User.Create(&model.User{Uuid: "carol", FriendState: model.UserFriendStateBlocked}); err != nil {
		t.Fatalf("seed carol: %v", err)
	}
	if err := repos.User.Create(&model.User{Uuid: "me", FriendState: model.UserFriendStateNormal, FriendshipId: "fx"}); err != nil {
		t.Fatalf("seed me: %v", err)
	}

	s.reconcileFriendships(repos, nil)

	carol, _ := repos.User.FindByUuid("carol")
	if carol.FriendState != model.UserFriendStateBlocked {
		t.Fatalf("blocked user should not change, got %d", carol.FriendState)
	}
	// 自己的记录不降为陌生人，固定回 Me，好友关系字段照常清理
	me, _ := repos.User.FindByUuid("me")
	if me.FriendState != model.UserFriendStateMe {
		t.Fatalf("own record should be forced to Me, got %d", me.FriendState)
	}
	if me.FriendshipId != "" {
		t.Fatalf("own friendship id should be cleared")
	}
}

func TestReconcileFriendshipsIdempotent(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	snapshots := []remote.FriendshipSnapshot{friendship("f1", "alice")}
	s.reconcileFriendships(repos, snapshots)
	s.reconcileFriendships(repos, snapshots)

	users, err := repos.User.FindAll()
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("repeated sync should not duplicate users, got %d", len(users))
	}
}
