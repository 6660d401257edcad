package job

import (
	"context"
	"log"
	"time"

	"fanstream/internal/config"
	"fanstream/internal/infrastructure/mq"
	"fanstream/internal/repository"
)

// OutboxSender 发件箱投递任务
// 轮询本地消息表，把 PENDING 消息投递到 Kafka，失败计数重试
type OutboxSender struct {
	outboxRepo  *repository.OutboxRepository
	businessCfg *config.BusinessConfig
	interval    time.Duration
	batchSize   int
	stopCh      chan struct{}
}

func NewOutboxSender(outboxRepo *repository.OutboxRepository, businessCfg *config.BusinessConfig) *OutboxSender {
	return &OutboxSender{
		outboxRepo:  outboxRepo,
		businessCfg: businessCfg,
		interval:    2 * time.Second,
		batchSize:   100,
		stopCh:      make(chan struct{}),
	}
}

func (s *OutboxSender) Start() {
	go s.run()
	log.Println("发件箱投递任务已启动")
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

func (s *OutboxSender) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processBatch()
		case <-s.stopCh:
			log.Println("发件箱投递任务已停止")
			return
		}
	}
}

func (s *OutboxSender) processBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		log.Printf("查询待发送消息失败: %v", err)
		return
	}

	for _, message := range messages {
		if err := mq.SendMessage(message.Topic, message.MessageKey, message.Payload); err != nil {
			log.Printf("消息投递失败: id=%d topic=%s err=%v", message.ID, message.Topic, err)
			if err := s.outboxRepo.MarkAsFailed(ctx, message.ID, s.businessCfg.MaxRetryCount); err != nil {
				log.Printf("更新消息重试状态失败: id=%d err=%v", message.ID, err)
			}
			continue
		}

		if err := s.outboxRepo.MarkAsSent(ctx, message.ID); err != nil {
			// 消息已投出去但状态没更新成功，下一轮会重复投递，
			// 消费端按 message_key 幂等处理
			log.Printf("更新消息发送状态失败: id=%d err=%v", message.ID, err)
		}
	}
}
