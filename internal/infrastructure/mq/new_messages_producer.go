package mq

import (
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"kama_sync_engine/pkg/util/snowflake"
)

// NewMessagesEvent 新消息批次事件
// 一批落库的消息对应一条事件；空批次不发布
type NewMessagesEvent struct {
	EventId    string   `json:"eventId"`    // 事件唯一 id（雪花算法生成）
	MessageIDs []string `json:"messageIds"` // 本批次落库的消息 id（含合成的日期分隔）
	MessageAge string   `json:"messageAge"` // "new" 为实时到达，"old" 为历史回填
	EmittedAt  int64    `json:"emittedAt"`  // 发布时间（unix 毫秒）
}

// NewMessagesProducer 把新消息批次事件发布到 Kafka
// 实现同步引擎的 Dispatcher 接口
type NewMessagesProducer struct{}

// NewNewMessagesProducer 创建事件发布器，需先完成 KafkaInit
func NewNewMessagesProducer() *NewMessagesProducer {
	return &NewMessagesProducer{}
}

// PublishNewMessages 发布一批新消息事件
// 发布是尽力而为的：失败只记日志，不影响同步落库
func (p *NewMessagesProducer) PublishNewMessages(messageIDs []string, messageAge string) {
	if len(messageIDs) == 0 || KafkaService.NewMessagesWriter == nil {
		return
	}
	event := NewMessagesEvent{
		EventId:    snowflake.GenerateIDString(),
		MessageIDs: messageIDs,
		MessageAge: messageAge,
		EmittedAt:  time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("序列化新消息事件失败", zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(event.EventId),
		Value: payload,
	}
	if err := KafkaService.NewMessagesWriter.WriteMessages(ctx, msg); err != nil {
		zap.L().Error("发布新消息事件失败", zap.Error(err))
		return
	}
	zap.L().Debug("新消息事件已发布",
		zap.String("eventId", event.EventId),
		zap.Int("count", len(messageIDs)),
		zap.String("age", messageAge))
}
