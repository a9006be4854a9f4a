package sync

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/model"
	"kama_sync_engine/pkg/errorx"
)

// reconcileMyInfo 把当前登录用户的资料快照合并进本地
// 自己的记录好友状态固定为 Me；合并完成后把会话默认值镜像给外部进程
func (s *Syncer) reconcileMyInfo(repos *repository.Repositories, snapshot *remote.UserSnapshot) {
	if snapshot == nil || snapshot.ID == nil || *snapshot.ID == "" {
		zap.L().Warn("用户资料快照缺少 id，忽略")
		return
	}
	user, err := s.getOrCreateUser(repos, *snapshot.ID)
	if err != nil {
		zap.L().Error("建立当前用户档案失败", zap.Error(err))
		return
	}
	user.FriendState = model.UserFriendStateMe
	if err := s.updateUserDetail(repos, user, snapshot); err != nil {
		zap.L().Error("合并当前用户资料失败", zap.Error(err))
		return
	}
	s.mirrorSessionDefaults(snapshot)
}

// updateUserDetail 稀疏合并用户详情
// 远端没给的字段（指针为 nil）保持本地旧值；远端账号创建时间只在首次写入
func (s *Syncer) updateUserDetail(repos *repository.Repositories, user *model.User, snapshot *remote.UserSnapshot) error {
	if snapshot.Username != nil {
		user.Username = *snapshot.Username
	}
	if snapshot.Nickname != nil {
		user.Nickname = *snapshot.Nickname
	}
	if snapshot.Introduction != nil {
		user.Introduction = *snapshot.Introduction
	}
	if snapshot.AvatarURL != nil {
		user.AvatarURL = *snapshot.AvatarURL
	}
	if snapshot.Badge != nil {
		user.Badge = *snapshot.Badge
	}
	if snapshot.Longitude != nil {
		user.Longitude = *snapshot.Longitude
	}
	if snapshot.Latitude != nil {
		user.Latitude = *snapshot.Latitude
	}
	if snapshot.CreatedUnixTime != nil && user.CreatedUnixTime == 0 {
		user.CreatedUnixTime = *snapshot.CreatedUnixTime
	}
	if snapshot.LastSignInUnixTime != nil {
		user.LastSignInUnixTime = *snapshot.LastSignInUnixTime
	}
	if snapshot.Favored != nil {
		user.IsBestFriend = *snapshot.Favored
	}
	if snapshot.FavoredPosition != nil {
		user.BestFriendIndex = *snapshot.FavoredPosition
	}
	if err := repos.User.Save(user); err != nil {
		return err
	}

	if err := s.reconcileDoNotDisturb(repos, user.Uuid, snapshot.MuteStartedAt, snapshot.MuteEndedAt); err != nil {
		zap.L().Warn("免打扰时段合并失败", zap.String("uuid", user.Uuid), zap.Error(err))
	}

	for i := range snapshot.MasterSkills {
		if _, err := s.upsertSkill(repos, &snapshot.MasterSkills[i]); err != nil {
			zap.L().Warn("技能合并失败", zap.Error(err))
		}
	}
	for i := range snapshot.LearningSkills {
		if _, err := s.upsertSkill(repos, &snapshot.LearningSkills[i]); err != nil {
			zap.L().Warn("技能合并失败", zap.Error(err))
		}
	}
	return nil
}

// reconcileDoNotDisturb 合并免打扰时段
// 起止时间都缺省时不动；都给出且非空时写入；任一为空串时删除本地时段
// 时区偏移只在建档时计算一次，之后沿用记录里的偏移量换算
func (s *Syncer) reconcileDoNotDisturb(repos *repository.Repositories, userUuid string, mutedFrom, mutedTo *string) error {
	if mutedFrom == nil || mutedTo == nil {
		return nil
	}
	if *mutedFrom == "" || *mutedTo == "" {
		return repos.DoNotDisturb.DeleteByUserUuid(userUuid)
	}

	// 某一端格式不合法时只跳过该端，另一端照常写入
	fromHour, fromMinute, okFrom := parseHourMinute(*mutedFrom)
	toHour, toMinute, okTo := parseHourMinute(*mutedTo)
	if !okFrom && !okTo {
		zap.L().Warn("免打扰时段格式不合法",
			zap.String("from", *mutedFrom), zap.String("to", *mutedTo))
		return nil
	}

	dnd, err := repos.DoNotDisturb.FindByUserUuid(userUuid)
	if errorx.IsNotFound(err) {
		_, offset := time.Now().In(time.Local).Zone()
		dnd = &model.UserDoNotDisturb{
			UserUuid:     userUuid,
			HourOffset:   offset / 3600,
			MinuteOffset: (offset % 3600) / 60,
		}
		if err := repos.DoNotDisturb.Create(dnd); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	dnd.IsOn = true
	if okFrom {
		dnd.FromHour, dnd.FromMinute = convertServerTime(fromHour, fromMinute, dnd.HourOffset, dnd.MinuteOffset)
	}
	if okTo {
		dnd.ToHour, dnd.ToMinute = convertServerTime(toHour, toMinute, dnd.HourOffset, dnd.MinuteOffset)
	}
	return repos.DoNotDisturb.Save(dnd)
}

// parseHourMinute 解析 "HH:MM" 格式
func parseHourMinute(value string) (hour, minute int, ok bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}

// convertServerTime 把服务端时刻按记录里的时区偏移换算成本地时刻
// 分钟溢出向小时进位，小时按 24 取模
func convertServerTime(hour, minute, hourOffset, minuteOffset int) (int, int) {
	hour += hourOffset
	minute += minuteOffset
	if minute >= 60 {
		minute -= 60
		hour++
	}
	if minute < 0 {
		minute += 60
		hour--
	}
	hour = ((hour % 24) + 24) % 24
	return hour, minute
}

// mirrorSessionDefaults 把资料同步观察到的字段镜像给外部进程
func (s *Syncer) mirrorSessionDefaults(snapshot *remote.UserSnapshot) {
	if s.defaults == nil {
		return
	}
	fields := make(map[string]string)
	if snapshot.Username != nil {
		fields["username"] = *snapshot.Username
	}
	if snapshot.Nickname != nil {
		fields["nickname"] = *snapshot.Nickname
	}
	if snapshot.AvatarURL != nil {
		fields["avatarURL"] = *snapshot.AvatarURL
	}
	if snapshot.Badge != nil {
		fields["badge"] = *snapshot.Badge
	}
	if snapshot.PhoneCode != nil {
		fields["phoneCode"] = *snapshot.PhoneCode
	}
	if snapshot.Mobile != nil {
		fields["mobile"] = *snapshot.Mobile
	}
	if len(fields) == 0 {
		return
	}
	s.defaults.MirrorSessionDefaults(*snapshot.ID, fields)
}
