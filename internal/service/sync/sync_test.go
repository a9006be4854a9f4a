package sync

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kama_sync_engine/internal/dao/mysql"
	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/dto/remote"
)

// newTestRepos 建一个独立的内存库
// 每个测试用自己的库名，互不串数据
func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewRepositories(db)
}

// newTestSyncer 建一个不挂远端、不发事件的引擎
func newTestSyncer(sessionUserId string) *Syncer {
	return &Syncer{session: Session{UserID: sessionUserId}}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }
func intPtr(i int) *int         { return &i }

// ts 以本地时区构造 unix 秒时间戳，日历日断言不受运行环境时区影响
func ts(year int, month time.Month, day, hour, minute int) float64 {
	return float64(time.Date(year, month, day, hour, minute, 0, 0, time.Local).Unix())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// textMessage 构造一条文本消息快照
func textMessage(id, senderId, recipientType, recipientId string, at float64) remote.MessageSnapshot {
	return remote.MessageSnapshot{
		ID:              strPtr(id),
		CreatedUnixTime: f64Ptr(at),
		Sender:          &remote.UserSnapshot{ID: strPtr(senderId)},
		RecipientType:   strPtr(recipientType),
		RecipientID:     strPtr(recipientId),
		TextContent:     strPtr("hello"),
		MediaType:       strPtr("text"),
	}
}

// reconcileOne 同步一条消息并收集落库的消息 id
func reconcileOne(s *Syncer, repos *repository.Repositories, snapshot remote.MessageSnapshot, age MessageAge) []string {
	var ids []string
	s.reconcileMessage(repos, &snapshot, age, func(messageIDs []string) {
		ids = append(ids, messageIDs...)
	})
	return ids
}
