// Package handler 提供管理接口的 HTTP 请求处理器
// 同步引擎以后台进程运行，这里暴露少量运维端点：
// 手动触发同步、查询引擎状态、查询技能目录
package handler

import (
	"github.com/gin-gonic/gin"

	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/internal/service/sync"
	"kama_sync_engine/pkg/errorx"
)

// TriggerSyncRequest 手动触发同步的请求体
type TriggerSyncRequest struct {
	// Scope 同步范围
	Scope string `json:"scope" binding:"required,oneof=full myInfo friendships groups unreadMessages readStatus"`
}

// SyncHandler 同步引擎管理接口处理器
type SyncHandler struct {
	syncer *sync.Syncer
	repos  *repository.Repositories
}

// NewSyncHandler 创建同步管理处理器实例
func NewSyncHandler(syncer *sync.Syncer, repos *repository.Repositories) *SyncHandler {
	return &SyncHandler{syncer: syncer, repos: repos}
}

// Trigger 手动触发一轮同步
// POST /sync/trigger
// 请求体: TriggerSyncRequest
func (h *SyncHandler) Trigger(c *gin.Context) {
	var req TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	switch req.Scope {
	case "full":
		h.syncer.RunFullPass()
	case "myInfo":
		h.syncer.SyncMyInfo(nil)
	case "friendships":
		h.syncer.SyncFriendships(nil)
	case "groups":
		h.syncer.SyncGroups(nil)
	case "unreadMessages":
		h.syncer.SyncUnreadMessages(nil)
	case "readStatus":
		h.syncer.SyncMessagesReadStatus()
	}
	HandleSuccess(c, gin.H{"scope": req.Scope})
}

// Status 查询引擎状态
// GET /sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	HandleSuccess(c, h.syncer.Status())
}

// Skill 查询技能目录条目
// GET /skills/:uuid
// 返回远端表示（含分类），用于核对目录映射
func (h *SyncHandler) Skill(c *gin.Context) {
	uuid := c.Param("uuid")
	if uuid == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	skill, err := h.repos.Skill.FindByUuid(uuid)
	if err != nil {
		HandleError(c, err)
		return
	}
	if skill.CategoryUuid == "" {
		HandleSuccess(c, sync.SkillToSnapshot(skill, nil))
		return
	}
	category, err := h.repos.Skill.FindCategoryByUuid(skill.CategoryUuid)
	if err != nil && !errorx.IsNotFound(err) {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, sync.SkillToSnapshot(skill, category))
}
