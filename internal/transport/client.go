// Package transport 封装远端服务的拉取接口
// 只负责取回快照并解码成 dto/remote 结构，重试/退避策略不在本层
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kama_sync_engine/internal/config"
	"kama_sync_engine/internal/dto/remote"
	"kama_sync_engine/pkg/errorx"
)

// Client 远端接口客户端
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient 根据配置创建远端接口客户端
func NewClient(cfg *config.RemoteConfig) *Client {
	timeout := cfg.Timeout * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// get 发起一次带鉴权的 GET 请求并解码 JSON 响应
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeRemoteError, "构造请求 %s", path)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Token token=\""+c.accessToken+"\"")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeRemoteError, "请求 %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorx.Newf(errorx.CodeRemoteError, "请求 %s 返回 %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorx.Wrapf(err, errorx.CodeRemoteError, "解码 %s 响应", path)
	}
	return nil
}

// UserInfo 拉取当前登录用户的资料快照
func (c *Client) UserInfo(ctx context.Context) (*remote.UserSnapshot, error) {
	var snapshot remote.UserSnapshot
	if err := c.get(ctx, "/user", &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Friendships 拉取全量好友关系列表
func (c *Client) Friendships(ctx context.Context) ([]remote.FriendshipSnapshot, error) {
	var snapshots []remote.FriendshipSnapshot
	if err := c.get(ctx, "/friendships", &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Groups 拉取全量群组列表
func (c *Client) Groups(ctx context.Context) ([]remote.GroupSnapshot, error) {
	var snapshots []remote.GroupSnapshot
	if err := c.get(ctx, "/circles", &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// UnreadMessages 拉取未读消息列表
func (c *Client) UnreadMessages(ctx context.Context) ([]remote.MessageSnapshot, error) {
	var snapshots []remote.MessageSnapshot
	if err := c.get(ctx, "/messages/unread", &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// SentButUnreadMessages 拉取已发送但对方未读的消息 id 列表
func (c *Client) SentButUnreadMessages(ctx context.Context) (*remote.SentUnreadSnapshot, error) {
	var snapshot remote.SentUnreadSnapshot
	if err := c.get(ctx, "/messages/sent_unread", &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// String 便于日志输出
func (c *Client) String() string {
	return fmt.Sprintf("transport.Client{baseURL: %s}", c.baseURL)
}
