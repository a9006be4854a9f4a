package sync

import (
	"kama_sync_engine/internal/dao/mysql/repository"
	"kama_sync_engine/pkg/constants"
)

// storeTask 在存储串行队列上执行的一段对账工作
type storeTask func(repos *repository.Repositories)

// StoreOwner 本地存储的单写者
// 所有改动本地实体图的工作都提交到这里的任务通道，由一个 goroutine
// 按提交顺序串行执行。没有第二条写入路径，跨对账的并发纪律就是这条队列。
// 一轮对账内的操作按提交顺序执行；不同轮次之间可能在队列边界交错，
// 所以实体是否存在必须在用前重查，不能依赖上一轮的结论。
type StoreOwner struct {
	repos *repository.Repositories
	tasks chan storeTask
	quit  chan struct{}
}

// NewStoreOwner 创建存储单写者
func NewStoreOwner(repos *repository.Repositories) *StoreOwner {
	return &StoreOwner{
		repos: repos,
		tasks: make(chan storeTask, constants.CHANNEL_SIZE),
		quit:  make(chan struct{}),
	}
}

// Start 启动串行执行循环，应在独立 goroutine 中运行
func (o *StoreOwner) Start() {
	for {
		select {
		case task, ok := <-o.tasks:
			if !ok {
				return
			}
			task(o.repos)
		case <-o.quit:
			return
		}
	}
}

// Submit 提交一段存储工作，按提交顺序执行
// 任务一旦提交不可取消，不再需要结果的调用方丢弃回调即可
func (o *StoreOwner) Submit(task storeTask) {
	o.tasks <- task
}

// Stop 停止执行循环
func (o *StoreOwner) Stop() {
	close(o.quit)
}
