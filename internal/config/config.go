// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 管理接口监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 管理接口监听端口，如 8040
}

// MysqlConfig MySQL 数据库连接配置
// 本地实体图（用户、群组、会话、消息）持久化在该库中
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// RedisConfig Redis 连接配置
// 会话默认值（昵称、头像等）镜像到 Redis 供其他进程读取
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 消息队列配置
// 同步产生的新消息事件发布到 newMessagesTopic
type KafkaConfig struct {
	HostPort         string        `toml:"hostPort"`         // Kafka 服务器地址，如 "localhost:9092"
	NewMessagesTopic string        `toml:"newMessagesTopic"` // 新消息事件主题
	Partition        int           `toml:"partition"`        // 分区数
	Timeout          time.Duration `toml:"timeout"`          // 超时时间
}

// RemoteConfig 远端服务接口配置
// 同步引擎从这些接口拉取服务端权威快照
type RemoteConfig struct {
	BaseURL     string        `toml:"baseURL"`     // REST 接口基地址，如 "https://api.example.com/v1"
	RealtimeURL string        `toml:"realtimeURL"` // 实时推送 WebSocket 地址，留空则不启用
	AccessToken string        `toml:"accessToken"` // 访问令牌，置于 Authorization 头
	Timeout     time.Duration `toml:"timeout"`     // 单次请求超时（秒）
}

// SyncConfig 同步引擎配置
type SyncConfig struct {
	SessionUserId string        `toml:"sessionUserId"` // 当前登录身份的用户 id，驱动整个同步
	Interval      time.Duration `toml:"interval"`      // 全量同步周期（秒），0 表示只跑一轮
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	MysqlConfig     `toml:"mysqlConfig"`     // MySQL 配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	KafkaConfig     `toml:"kafkaConfig"`     // Kafka 配置
	RemoteConfig    `toml:"remoteConfig"`    // 远端接口配置
	SyncConfig      `toml:"syncConfig"`      // 同步配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花算法配置
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
// 返回值：加载成功返回 nil，否则返回错误
func LoadConfig() error {
	if config == nil {
		config = new(Config)
	}
	// 候选配置文件路径（优先加载本地配置）
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",       // 从子目录运行时的路径
	}

	// 依次尝试加载配置文件
	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil // 加载成功
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}
