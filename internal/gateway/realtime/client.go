// Package realtime 实现远端实时推送通道的接入
// 通过 websocket 长连接接收服务端推来的消息快照，
// 逐条送进同步引擎落库（按实时消息处理，参与时间戳单调修正）
package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kama_sync_engine/internal/config"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/internal/service/sync"
	"kama_sync_engine/pkg/constants"
)

// pushEnvelope 推送帧的外层结构
type pushEnvelope struct {
	Type    string                  `json:"type"`    // 帧类型，"message" 为消息推送
	Message *remote.MessageSnapshot `json:"message"` // 消息快照
}

// Gateway 实时推送通道客户端
type Gateway struct {
	url    string
	token  string
	syncer *sync.Syncer
	quit   chan struct{}
}

// NewGateway 创建实时推送通道客户端
// url 为空时返回 nil，表示不启用实时通道
func NewGateway(cfg *config.RemoteConfig, syncer *sync.Syncer) *Gateway {
	if cfg.RealtimeURL == "" {
		return nil
	}
	return &Gateway{
		url:    cfg.RealtimeURL,
		token:  cfg.AccessToken,
		syncer: syncer,
		quit:   make(chan struct{}),
	}
}

// Start 启动连接循环，断线后固定间隔重连
// 应在独立 goroutine 中运行
func (g *Gateway) Start() {
	for {
		select {
		case <-g.quit:
			return
		default:
		}
		if err := g.runOnce(); err != nil {
			zap.L().Warn("实时通道断开，稍后重连", zap.Error(err))
		}
		select {
		case <-g.quit:
			return
		case <-time.After(constants.REALTIME_RECONNECT_INTERVAL):
		}
	}
}

// Stop 停止连接循环
func (g *Gateway) Stop() {
	close(g.quit)
}

// runOnce 建立一次连接并持续读帧，直到出错
func (g *Gateway) runOnce() error {
	header := map[string][]string{}
	if g.token != "" {
		header["Authorization"] = []string{"Token token=\"" + g.token + "\""}
	}
	conn, _, err := websocket.DefaultDialer.Dial(g.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	zap.L().Info("实时通道已连接", zap.String("url", g.url))

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		g.handleFrame(payload)
	}
}

// handleFrame 解码一帧并送入同步引擎
// 未知帧类型和解码失败只记日志，不断开连接
func (g *Gateway) handleFrame(payload []byte) {
	var envelope pushEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		zap.L().Warn("实时帧解码失败", zap.Error(err))
		return
	}
	if envelope.Type != "message" || envelope.Message == nil {
		return
	}
	g.syncer.IngestMessage(*envelope.Message, sync.MessageAgeNew)
}
