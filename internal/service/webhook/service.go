// Package webhook 提供事件入队与投递。
// 变更事件先进 Redis 队列，由后台 worker 逐条签名投递到订阅方。
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/repository"
)

// Event 一条变更事件
type Event struct {
	ID        string                 `json:"id"`
	Type      model.WebhookEvent     `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewEvent 创建事件
func NewEvent(eventType model.WebhookEvent, data map[string]interface{}) *Event {
	return &Event{
		ID:        "evt_" + uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Sink 事件入队接口，按请求注入，便于测试替换
type Sink interface {
	Enqueue(ctx context.Context, evt *Event) error
}

// NopSink 丢弃全部事件，测试和未配置 Redis 时使用
type NopSink struct{}

// Enqueue 实现 Sink 接口
func (NopSink) Enqueue(ctx context.Context, evt *Event) error { return nil }

// RedisSink 把事件写入 Redis 列表
type RedisSink struct {
	client   *redis.Client
	queueKey string
}

// NewRedisSink 创建 Redis 事件队列
func NewRedisSink(client *redis.Client, queueKey string) *RedisSink {
	return &RedisSink{client: client, queueKey: queueKey}
}

// Enqueue 实现 Sink 接口
func (s *RedisSink) Enqueue(ctx context.Context, evt *Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.client.LPush(ctx, s.queueKey, data).Err()
}

// Service Webhook 服务：订阅管理 + 投递
type Service struct {
	repo    *repository.Repositories
	client  *redis.Client
	httpCli *http.Client

	queueKey string
}

// NewService 创建 Webhook 服务
func NewService(repo *repository.Repositories, client *redis.Client, queueKey string, deliverTimeout time.Duration) *Service {
	return &Service{
		repo:     repo,
		client:   client,
		httpCli:  &http.Client{Timeout: deliverTimeout},
		queueKey: queueKey,
	}
}

// ========== 订阅管理 ==========

// CreateWebhookRequest 创建 Webhook 请求
type CreateWebhookRequest struct {
	URL         string   `json:"url" binding:"required,url"`
	Secret      string   `json:"secret" binding:"required"`
	Description string   `json:"description"`
	Events      []string `json:"events" binding:"required"`
}

// Create 创建 Webhook
func (s *Service) Create(ctx context.Context, req *CreateWebhookRequest) (*model.Webhook, error) {
	webhook := &model.Webhook{
		ID:          uuid.New().String(),
		URL:         req.URL,
		Secret:      req.Secret,
		Description: req.Description,
		Events:      model.StringList(req.Events),
		Enabled:     true,
	}
	if err := s.repo.Webhook.Create(webhook); err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	return webhook, nil
}

// Get 获取 Webhook
func (s *Service) Get(ctx context.Context, id string) (*model.Webhook, error) {
	return s.repo.Webhook.GetByID(id)
}

// List 列出全部 Webhook
func (s *Service) List(ctx context.Context) ([]*model.Webhook, error) {
	return s.repo.Webhook.List()
}

// UpdateWebhookRequest 更新 Webhook 请求
type UpdateWebhookRequest struct {
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Events      []string `json:"events"`
	Enabled     *bool    `json:"enabled"`
}

// Update 更新 Webhook
func (s *Service) Update(ctx context.Context, id string, req *UpdateWebhookRequest) (*model.Webhook, error) {
	webhook, err := s.repo.Webhook.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.URL != "" {
		webhook.URL = req.URL
	}
	if req.Description != "" {
		webhook.Description = req.Description
	}
	if len(req.Events) > 0 {
		webhook.Events = model.StringList(req.Events)
	}
	if req.Enabled != nil {
		webhook.Enabled = *req.Enabled
	}
	if err := s.repo.Webhook.Update(webhook); err != nil {
		return nil, fmt.Errorf("failed to update webhook: %w", err)
	}
	return webhook, nil
}

// Delete 删除 Webhook
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Webhook.Delete(id)
}

// Ping 向订阅方投递一条测试事件
func (s *Service) Ping(ctx context.Context, id string) error {
	webhook, err := s.repo.Webhook.GetByID(id)
	if err != nil {
		return err
	}
	evt := NewEvent("ping", map[string]interface{}{"webhook_id": webhook.ID})
	return s.deliver(ctx, webhook, evt)
}

// ========== 投递 ==========

// Run 投递 worker 主循环，阻塞直到 ctx 取消
func (s *Service) Run(ctx context.Context) {
	if s.client == nil {
		return
	}
	log.Printf("Webhook worker started, queue=%s", s.queueKey)
	for {
		if ctx.Err() != nil {
			log.Println("Webhook worker stopped")
			return
		}
		entries, err := s.client.BRPop(ctx, 5*time.Second, s.queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Printf("Webhook queue error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		// BRPop 返回 [key, value]
		if len(entries) != 2 {
			continue
		}

		var evt Event
		if err := json.Unmarshal([]byte(entries[1]), &evt); err != nil {
			log.Printf("Webhook worker: dropping malformed event: %v", err)
			continue
		}
		s.dispatch(ctx, &evt)
	}
}

// dispatch 把事件投递到每个订阅了该事件的 Webhook
func (s *Service) dispatch(ctx context.Context, evt *Event) {
	webhooks, err := s.repo.Webhook.ListEnabled()
	if err != nil {
		log.Printf("Webhook worker: failed to load webhooks: %v", err)
		return
	}
	for _, webhook := range webhooks {
		if !webhook.SubscribedTo(evt.Type) {
			continue
		}
		if err := s.deliver(ctx, webhook, evt); err != nil {
			log.Printf("Webhook delivery to %s failed: %v", webhook.URL, err)
		}
	}
}

// deliver 带 HMAC-SHA256 签名投递单条事件
func (s *Service) deliver(ctx context.Context, webhook *model.Webhook, evt *Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Argilla-Event", string(evt.Type))
	req.Header.Set("X-Argilla-Signature", Sign(webhook.Secret, body))

	resp, err := s.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign 计算请求体的 HMAC-SHA256 签名
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
