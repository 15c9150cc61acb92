// Package service 聚合各领域服务
package service

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/argilla-io/argilla-server/internal/config"
	"github.com/argilla-io/argilla-server/internal/repository"
	searchengine "github.com/argilla-io/argilla-server/internal/search"
	"github.com/argilla-io/argilla-server/internal/service/auth"
	"github.com/argilla-io/argilla-server/internal/service/dataset"
	"github.com/argilla-io/argilla-server/internal/service/record"
	"github.com/argilla-io/argilla-server/internal/service/response"
	"github.com/argilla-io/argilla-server/internal/service/search"
	"github.com/argilla-io/argilla-server/internal/service/suggestion"
	"github.com/argilla-io/argilla-server/internal/service/webhook"
	"github.com/argilla-io/argilla-server/internal/service/workspace"
)

// Services 服务集合
type Services struct {
	Auth       *auth.Service
	Workspace  *workspace.Service
	Dataset    *dataset.Service
	Record     *record.Service
	Response   *response.Service
	Suggestion *suggestion.Service
	Search     *search.Service
	Webhook    *webhook.Service
}

// NewServices 创建服务集合。
// client 为空时事件只落日志不投递，测试环境用。
func NewServices(repo *repository.Repositories, cfg *config.Config, client *redis.Client, backend searchengine.Backend) *Services {
	var events webhook.Sink = webhook.NopSink{}
	if client != nil {
		events = webhook.NewRedisSink(client, cfg.Webhooks.QueueKey)
	}

	return &Services{
		Auth:       auth.NewService(repo, cfg.Auth.Secret, time.Duration(cfg.Auth.TokenExpiry)*time.Second),
		Workspace:  workspace.NewService(repo),
		Dataset:    dataset.NewService(repo, backend, events),
		Record:     record.NewService(repo, backend, events, cfg.Search.RecordsBatch),
		Response:   response.NewService(repo, backend, events, cfg.Search.ResponseBatch),
		Suggestion: suggestion.NewService(repo, backend),
		Search:     search.NewService(repo, backend, cfg.Search.LimitMax),
		Webhook:    webhook.NewService(repo, client, cfg.Webhooks.QueueKey, time.Duration(cfg.Webhooks.DeliverTimeout)*time.Second),
	}
}
