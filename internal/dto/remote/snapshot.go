// Package remote 定义远端快照的解码结构
// 远端接口返回的是字段可缺省的 JSON，这里统一用指针字段表示可选：
// 指针为 nil 表示远端没给该字段，稀疏合并时保持本地旧值不动
package remote

import "encoding/json"

// UserSnapshot 用户资料快照
// 出现在 userInfo、friendships[].friend、groups[].owner/members、消息 sender 中
type UserSnapshot struct {
	ID                 *string  `json:"id"`
	Username           *string  `json:"username"`
	Nickname           *string  `json:"nickname"`
	Introduction       *string  `json:"introduction"`
	AvatarURL          *string  `json:"avatar_url"`
	Badge              *string  `json:"badge"`
	Longitude          *float64 `json:"longitude"`
	Latitude           *float64 `json:"latitude"`
	CreatedUnixTime    *float64 `json:"created_at"`
	LastSignInUnixTime *float64 `json:"last_sign_in_at"`

	// 免打扰时段的起止时间，"HH:MM" 格式
	// 两个都非空才会写入，任一为空串则删除本地时段
	MuteStartedAt *string `json:"mute_started_at_string"`
	MuteEndedAt   *string `json:"mute_ended_at_string"`

	// 好友记录里附带的星标信息
	Favored         *bool `json:"favored"`
	FavoredPosition *int  `json:"favored_position"`

	// 会话默认值镜像的附加字段
	PhoneCode *string `json:"phone_code"`
	Mobile    *string `json:"mobile"`

	// 技能目录
	MasterSkills   []SkillSnapshot `json:"master_skills"`
	LearningSkills []SkillSnapshot `json:"learning_skills"`
}

// FriendshipSnapshot 好友关系快照
type FriendshipSnapshot struct {
	ID     *string       `json:"id"`
	Friend *UserSnapshot `json:"friend"`
}

// GroupSnapshot 群组快照
type GroupSnapshot struct {
	ID      *string         `json:"id"`
	Name    *string         `json:"name"`
	Owner   *UserSnapshot   `json:"owner"`
	Members []UserSnapshot  `json:"members"`
	Topic   json.RawMessage `json:"topic"` // 群组附带的话题/feed，交给外部挂载点处理
}

// MessageSnapshot 消息快照
type MessageSnapshot struct {
	ID              *string              `json:"id"`
	CreatedUnixTime *float64             `json:"created_at"`
	Sender          *UserSnapshot        `json:"sender"`
	RecipientType   *string              `json:"recipient_type"` // "Circle" 表示群聊
	RecipientID     *string              `json:"recipient_id"`
	Circle          *GroupSnapshot       `json:"circle"`
	TextContent     *string              `json:"text_content"`
	Longitude       *float64             `json:"longitude"`
	Latitude        *float64             `json:"latitude"`
	Attachments     []AttachmentSnapshot `json:"attachments"`
	MediaType       *string              `json:"media_type"`
}

// AttachmentSnapshot 消息附件快照
type AttachmentSnapshot struct {
	Kind     *string       `json:"kind"` // "thumbnail" 为缩略图，其余为主附件
	Metadata *string       `json:"metadata"`
	File     *FileSnapshot `json:"file"`
}

// FileSnapshot 附件文件信息
type FileSnapshot struct {
	URL *string `json:"url"`
}

// SkillSnapshot 技能快照
type SkillSnapshot struct {
	ID        *string                `json:"id"`
	Name      *string                `json:"name"`
	LocalName *string                `json:"name_string"`
	CoverURL  *string                `json:"cover_url"`
	Category  *SkillCategorySnapshot `json:"category"`
}

// SkillCategorySnapshot 技能分类快照
type SkillCategorySnapshot struct {
	ID        *string `json:"id"`
	Name      *string `json:"name"`
	LocalName *string `json:"name_string"`
}

// SentUnreadSnapshot 已发送但对方未读的消息 id 列表
type SentUnreadSnapshot struct {
	MessageIDs []string `json:"message_ids"`
}

// RecipientTypeCircle 群聊收件方类型标记
const RecipientTypeCircle = "Circle"
