package sync

import (
	"testing"

	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/errorx"
)

// captureMirror 记录镜像调用的测试替身
type captureMirror struct {
	userId string
	fields map[string]string
}

func (m *captureMirror) MirrorSessionDefaults(userId string, fields map[string]string) {
	m.userId = userId
	m.fields = fields
}

func TestReconcileMyInfoSparseMerge(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	s.reconcileMyInfo(repos, &remote.UserSnapshot{
		ID:           strPtr("me"),
		Nickname:     strPtr("阿狸"),
		Introduction: strPtr("hello world"),
		AvatarURL:    strPtr("https://cdn.example.com/me.png"),
	})

	// 第二次快照只带昵称，其余字段应保持不动
	s.reconcileMyInfo(repos, &remote.UserSnapshot{
		ID:       strPtr("me"),
		Nickname: strPtr("阿狸二号"),
	})

	user, err := repos.User.FindByUuid("me")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.FriendState != model.UserFriendStateMe {
		t.Fatalf("own record should be state Me, got %d", user.FriendState)
	}
	if user.Nickname != "阿狸二号" {
		t.Fatalf("nickname should be updated, got %s", user.Nickname)
	}
	if user.Introduction != "hello world" || user.AvatarURL != "https://cdn.example.com/me.png" {
		t.Fatalf("absent fields should keep local values, got %+v", user)
	}
}

func TestCreatedTimeOnlyWrittenOnce(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	s.reconcileMyInfo(repos, &remote.UserSnapshot{
		ID:              strPtr("me"),
		CreatedUnixTime: f64Ptr(1000),
	})
	s.reconcileMyInfo(repos, &remote.UserSnapshot{
		ID:              strPtr("me"),
		CreatedUnixTime: f64Ptr(2000),
	})

	user, _ := repos.User.FindByUuid("me")
	if !almostEqual(user.CreatedUnixTime, 1000) {
		t.Fatalf("remote created time should only be written on first sight, got %f", user.CreatedUnixTime)
	}
}

func TestMirrorSessionDefaults(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")
	mirror := &captureMirror{}
	s.defaults = mirror

	s.reconcileMyInfo(repos, &remote.UserSnapshot{
		ID:       strPtr("me"),
		Nickname: strPtr("阿狸"),
		Mobile:   strPtr("13800000000"),
	})

	if mirror.userId != "me" {
		t.Fatalf("mirror not invoked")
	}
	if mirror.fields["nickname"] != "阿狸" || mirror.fields["mobile"] != "13800000000" {
		t.Fatalf("unexpected mirrored fields %v", mirror.fields)
	}
}

func TestDoNotDisturbCreateAndConvert(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	// 预置已知偏移的记录，换算结果与运行环境时区无关
	if err := repos.DoNotDisturb.Create(&model.UserDoNotDisturb{
		UserUuid:     "me",
		HourOffset:   8,
		MinuteOffset: 30,
	}); err != nil {
		t.Fatalf("seed dnd: %v", err)
	}

	if err := s.reconcileDoNotDisturb(repos, "me", strPtr("22:45"), strPtr("07:00")); err != nil {
		t.Fatalf("reconcile dnd: %v", err)
	}

	dnd, err := repos.DoNotDisturb.FindByUserUuid("me")
	if err != nil {
		t.Fatalf("find dnd: %v", err)
	}
	if !dnd.IsOn {
		t.Fatalf("dnd should be on")
	}
	// 22:45 +8:30 = 31:15 -> 7:15
	if dnd.FromHour != 7 || dnd.FromMinute != 15 {
		t.Fatalf("unexpected from %d:%d", dnd.FromHour, dnd.FromMinute)
	}
	// 07:00 +8:30 = 15:30
	if dnd.ToHour != 15 || dnd.ToMinute != 30 {
		t.Fatalf("unexpected to %d:%d", dnd.ToHour, dnd.ToMinute)
	}
}

func TestDoNotDisturbDeletedOnEmpty(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	if err := repos.DoNotDisturb.Create(&model.UserDoNotDisturb{UserUuid: "me", IsOn: true}); err != nil {
		t.Fatalf("seed dnd: %v", err)
	}
	if err := s.reconcileDoNotDisturb(repos, "me", strPtr(""), strPtr("07:00")); err != nil {
		t.Fatalf("reconcile dnd: %v", err)
	}
	if _, err := repos.DoNotDisturb.FindByUserUuid("me"); !errorx.IsNotFound(err) {
		t.Fatalf("dnd should be deleted, got err=%v", err)
	}
}

func TestDoNotDisturbUntouchedWhenAbsent(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	if err := repos.DoNotDisturb.Create(&model.UserDoNotDisturb{UserUuid: "me", IsOn: true, FromHour: 23}); err != nil {
		t.Fatalf("seed dnd: %v", err)
	}
	if err := s.reconcileDoNotDisturb(repos, "me", nil, nil); err != nil {
		t.Fatalf("reconcile dnd: %v", err)
	}
	dnd, err := repos.DoNotDisturb.FindByUserUuid("me")
	if err != nil || dnd.FromHour != 23 {
		t.Fatalf("absent fields should leave dnd untouched")
	}
}

func TestConvertServerTime(t *testing.T) {
	cases := []struct {
		hour, minute, hourOffset, minuteOffset int
		wantHour, wantMinute                   int
	}{
		{22, 45, 8, 30, 7, 15},  // 分钟进位再过 24 点
		{7, 0, 8, 0, 15, 0},     // 普通正偏移
		{1, 10, -2, -30, 22, 40}, // 负偏移借位
		{0, 0, 0, 0, 0, 0},
	}
	for _, c := range cases {
		gotHour, gotMinute := convertServerTime(c.hour, c.minute, c.hourOffset, c.minuteOffset)
		if gotHour != c.wantHour || gotMinute != c.wantMinute {
			t.Fatalf("convert %02d:%02d offset %d:%d = %02d:%02d, want %02d:%02d",
				c.hour, c.minute, c.hourOffset, c.minuteOffset, gotHour, gotMinute, c.wantHour, c.wantMinute)
		}
	}
}

func TestUpsertSkillWithCategory(t *testing.T) {
	repos := newTestRepos(t)
	s := newTestSyncer("me")

	s.reconcileMyInfo(repos, &remote.UserSnapshot{
		ID: strPtr("me"),
		MasterSkills: []remote.SkillSnapshot{
			{
				ID:        strPtr("sk1"),
				Name:      strPtr("guitar"),
				LocalName: strPtr("吉他"),
				Category: &remote.SkillCategorySnapshot{
					ID:        strPtr("cat1"),
					Name:      strPtr("music"),
					LocalName: strPtr("音乐"),
				},
			},
		},
	})

	skill, err := repos.Skill.FindByUuid("sk1")
	if err != nil {
		t.Fatalf("find skill: %v", err)
	}
	if skill.LocalName != "吉他" || skill.CategoryUuid != "cat1" {
		t.Fatalf("unexpected skill %+v", skill)
	}
	category, err := repos.Skill.FindCategoryByUuid("cat1")
	if err != nil {
		t.Fatalf("find category: %v", err)
	}

	// 反向映射回远端表示
	snapshot := SkillToSnapshot(skill, category)
	if *snapshot.ID != "sk1" || *snapshot.Category.ID != "cat1" || *snapshot.Category.LocalName != "音乐" {
		t.Fatalf("unexpected reverse mapping %+v", snapshot)
	}
}
