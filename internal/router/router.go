package router

import (
	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/handler"
	"github.com/argilla-io/argilla-server/internal/middleware"
	"github.com/argilla-io/argilla-server/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")

	// 认证
	v1.POST("/auth/token", h.Auth.Login)

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(svc))
	{
		authed.GET("/me", h.Auth.Me)

		// 用户
		users := authed.Group("/users")
		{
			users.POST("", h.Auth.CreateUser)
			users.GET("", h.Auth.ListUsers)
		}

		// 工作区
		workspaces := authed.Group("/workspaces")
		{
			workspaces.POST("", h.Workspace.CreateWorkspace)
			workspaces.GET("", h.Workspace.ListWorkspaces)
			workspaces.GET("/:id", h.Workspace.GetWorkspace)
			workspaces.DELETE("/:id", h.Workspace.DeleteWorkspace)
			workspaces.POST("/:id/members", h.Workspace.AddMember)
			workspaces.DELETE("/:id/members/:userID", h.Workspace.RemoveMember)
		}

		// 数据集
		datasets := authed.Group("/datasets")
		{
			datasets.POST("", h.Dataset.CreateDataset)
			datasets.GET("", h.Dataset.ListDatasets)
			datasets.GET("/:id", h.Dataset.GetDataset)
			datasets.PATCH("/:id", h.Dataset.UpdateDataset)
			datasets.PUT("/:id/publish", h.Dataset.PublishDataset)
			datasets.DELETE("/:id", h.Dataset.DeleteDataset)
			datasets.GET("/:id/progress", h.Dataset.GetProgress)
			datasets.GET("/:id/users/:userID/metrics", h.Dataset.GetUserMetrics)

			// 结构配置
			datasets.POST("/:id/fields", h.Dataset.CreateField)
			datasets.GET("/:id/fields", h.Dataset.ListFields)
			datasets.POST("/:id/questions", h.Dataset.CreateQuestion)
			datasets.GET("/:id/questions", h.Dataset.ListQuestions)
			datasets.POST("/:id/metadata-properties", h.Dataset.CreateMetadataProperty)
			datasets.GET("/:id/metadata-properties", h.Dataset.ListMetadataProperties)
			datasets.POST("/:id/vector-settings", h.Dataset.CreateVectorSettings)
			datasets.GET("/:id/vector-settings", h.Dataset.ListVectorSettings)

			// 记录
			datasets.POST("/:id/records", h.Record.BulkCreateRecords)
			datasets.GET("/:id/records", h.Record.ListRecords)
			datasets.POST("/:id/records/search", h.Search.SearchRecords)

			// 批量响应
			datasets.POST("/:id/responses/bulk", h.Response.BulkUpsertResponses)
		}

		// 问题
		questions := authed.Group("/questions")
		{
			questions.PATCH("/:id", h.Dataset.UpdateQuestion)
			questions.DELETE("/:id", h.Dataset.DeleteQuestion)
		}

		// 记录
		records := authed.Group("/records")
		{
			records.GET("/:id", h.Record.GetRecord)
			records.PATCH("/:id", h.Record.UpdateRecordMetadata)
			records.DELETE("/:id", h.Record.DeleteRecord)
			records.PUT("/:id/vectors", h.Record.UpsertRecordVector)
			records.POST("/:id/responses", h.Response.CreateResponse)
			records.PUT("/:id/suggestions", h.Suggestion.UpsertSuggestion)
			records.GET("/:id/suggestions", h.Suggestion.ListSuggestions)
			records.DELETE("/:id/suggestions/:questionID", h.Suggestion.DeleteSuggestion)
		}

		// 响应
		responses := authed.Group("/responses")
		{
			responses.PUT("/:id", h.Response.UpdateResponse)
			responses.DELETE("/:id", h.Response.DeleteResponse)
		}

		// Webhook
		webhooks := authed.Group("/webhooks")
		{
			webhooks.POST("", h.Webhook.CreateWebhook)
			webhooks.GET("", h.Webhook.ListWebhooks)
			webhooks.PATCH("/:id", h.Webhook.UpdateWebhook)
			webhooks.DELETE("/:id", h.Webhook.DeleteWebhook)
			webhooks.POST("/:id/ping", h.Webhook.PingWebhook)
		}
	}

	return r
}
