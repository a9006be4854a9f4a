package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kama_sync_engine/internal/config"
	dao "kama_sync_engine/internal/dao/mysql"
	myredis "kama_sync_engine/internal/dao/redis"
	"kama_sync_engine/internal/gateway/realtime"
	"kama_sync_engine/internal/handler"
	"kama_sync_engine/internal/http_server"
	"kama_sync_engine/internal/infrastructure/logger"
	mq "kama_sync_engine/internal/infrastructure/mq"
	syncsvc "kama_sync_engine/internal/service/sync"
	"kama_sync_engine/internal/transport"
	"kama_sync_engine/pkg/util/snowflake"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	if conf.SyncConfig.SessionUserId == "" {
		zap.L().Fatal("缺少 sessionUserId 配置，无法确定同步身份")
	}

	// 3. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化雪花算法节点
	snowflake.Init()

	// 6. 初始化 Kafka 事件发布
	mq.KafkaService.KafkaInit()
	producer := mq.NewNewMessagesProducer()
	zap.L().Info("Kafka 初始化成功")

	// 7. 启动存储单写者
	owner := syncsvc.NewStoreOwner(repos)
	go owner.Start()

	// 8. 组装同步引擎
	session := syncsvc.Session{UserID: conf.SyncConfig.SessionUserId}
	client := transport.NewClient(&conf.RemoteConfig)
	syncer := syncsvc.NewSyncer(session, owner, client, producer, myredis.NewSessionDefaultsMirror())
	zap.L().Info("同步引擎初始化成功", zap.String("sessionUserId", session.UserID))

	// 9. 启动实时推送通道（未配置地址时跳过）
	gateway := realtime.NewGateway(&conf.RemoteConfig, syncer)
	if gateway != nil {
		go gateway.Start()
		zap.L().Info("实时通道启动成功")
	}

	// 10. 初始化管理接口服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化 validator 翻译器失败", zap.Error(err))
	}
	engine := http_server.Init(handler.NewSyncHandler(syncer, repos))

	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault")
			return
		}
	}()

	// 11. 周期性全量同步，interval 为 0 时只跑一轮
	syncer.RunFullPass()
	interval := conf.SyncConfig.Interval * time.Second
	var ticker *time.Ticker
	var tick <-chan time.Time
	if interval > 0 {
		ticker = time.NewTicker(interval)
		tick = ticker.C
	}

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-tick:
			syncer.RunFullPass()
		case <-quit:
			zap.L().Info("关闭服务器...")
			if ticker != nil {
				ticker.Stop()
			}
			if gateway != nil {
				gateway.Stop()
			}
			owner.Stop()
			mq.KafkaService.KafkaClose()
			myredis.Close()
			zap.L().Info("服务器已关闭")
			return
		}
	}
}
