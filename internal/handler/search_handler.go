package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/search"
	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/policy"
	searchsvc "github.com/argilla-io/argilla-server/internal/service/search"
)

// SearchHandler 检索处理器
type SearchHandler struct {
	svc *service.Services
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(svc *service.Services) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// ========== wire 请求格式 ==========

// searchRequest 检索请求体
type searchRequest struct {
	Query          *wireQuery          `json:"query,omitempty"`
	Filters        []wireFilter        `json:"filters,omitempty"`
	Sort           []wireSort          `json:"sort,omitempty"`
	ResponseStatus *wireResponseStatus `json:"response_status,omitempty"`
	Offset         int                 `json:"offset"`
	Limit          int                 `json:"limit"`
}

// wireQuery 文本查询或向量相似查询
type wireQuery struct {
	Text   *wireTextQuery   `json:"text,omitempty"`
	Vector *wireVectorQuery `json:"vector,omitempty"`
}

// wireTextQuery 全文查询
type wireTextQuery struct {
	Q     string `json:"q"`
	Field string `json:"field,omitempty"`
}

// wireVectorQuery 向量相似查询，value 和 record_id 二选一
type wireVectorQuery struct {
	Name     string    `json:"name"`
	Value    []float64 `json:"value,omitempty"`
	RecordID string    `json:"record_id,omitempty"`
	Order    string    `json:"order,omitempty"`
}

// wireScope 过滤/排序作用域
type wireScope struct {
	Entity   string `json:"entity"`
	Question string `json:"question,omitempty"`
	Property string `json:"property,omitempty"`
}

// wireFilter terms 或 range 过滤器
type wireFilter struct {
	Type   string    `json:"type"`
	Scope  wireScope `json:"scope"`
	Values []string  `json:"values,omitempty"`
	Ge     *float64  `json:"ge,omitempty"`
	Le     *float64  `json:"le,omitempty"`
}

// wireSort 排序项
type wireSort struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"`
}

// wireResponseStatus 响应状态过滤，用户缺省为当前用户
type wireResponseStatus struct {
	Statuses []string `json:"statuses"`
}

// SearchRecords 检索数据集记录
func (h *SearchHandler) SearchRecords(c *gin.Context) {
	datasetID := c.Param("id")

	ds, err := h.svc.Dataset.Get(c.Request.Context(), datasetID)
	if err != nil {
		Error(c, err)
		return
	}
	user, ok := authorize(c, h.svc, policy.OpRecordSearch, ds.WorkspaceID)
	if !ok {
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	q, err := buildQuery(&req)
	if err != nil {
		Error(c, err)
		return
	}
	if q.ResponseStatus != nil {
		q.ResponseStatus.User = user
	}

	opts := searchsvc.Options{Offset: req.Offset, Limit: req.Limit}
	if err := parseIncludes(c.QueryArray("include"), user, &opts); err != nil {
		Error(c, err)
		return
	}

	result, err := h.svc.Search.SearchRecords(c.Request.Context(), datasetID, q, opts)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// buildQuery 把 wire 请求转换为后端无关的查询模型
func buildQuery(req *searchRequest) (*search.Query, error) {
	q := &search.Query{}

	if req.Query != nil {
		if req.Query.Text != nil {
			q.Text = &search.TextQuery{Q: req.Query.Text.Q, Field: req.Query.Text.Field}
		}
		if req.Query.Vector != nil {
			order := search.MostSimilar
			switch req.Query.Vector.Order {
			case "", string(search.MostSimilar):
			case string(search.LeastSimilar):
				order = search.LeastSimilar
			default:
				return nil, &search.InvalidFilterError{Reason: "vector order must be most_similar or least_similar"}
			}
			q.Vector = &search.VectorQuery{
				Name:     req.Query.Vector.Name,
				Value:    req.Query.Vector.Value,
				RecordID: req.Query.Vector.RecordID,
				Order:    order,
			}
		}
	}

	if len(req.Filters) > 0 {
		and := &search.AndFilter{}
		for i := range req.Filters {
			filter, err := buildFilter(&req.Filters[i])
			if err != nil {
				return nil, err
			}
			and.Filters = append(and.Filters, filter)
		}
		q.Filter = and
	}

	for _, s := range req.Sort {
		order, err := search.ParseSort(s.Field, s.Order)
		if err != nil {
			return nil, err
		}
		q.Sort = append(q.Sort, order)
	}

	if req.ResponseStatus != nil {
		statuses := make([]search.ResponseStatusFilter, 0, len(req.ResponseStatus.Statuses))
		for _, s := range req.ResponseStatus.Statuses {
			statuses = append(statuses, search.ResponseStatusFilter(s).Normalize())
		}
		q.ResponseStatus = &search.UserResponseStatusFilter{Statuses: statuses}
	}

	return q, nil
}

// buildFilter 转换单个过滤器
func buildFilter(f *wireFilter) (search.Filter, error) {
	scope, err := buildScope(&f.Scope)
	if err != nil {
		return nil, err
	}

	switch f.Type {
	case "terms":
		return &search.TermsFilter{Scope: scope, Values: f.Values}, nil
	case "range":
		return &search.RangeFilter{Scope: scope, Ge: f.Ge, Le: f.Le}, nil
	default:
		return nil, &search.InvalidFilterError{Reason: "filter type must be terms or range"}
	}
}

// buildScope 转换作用域
func buildScope(s *wireScope) (search.FilterScope, error) {
	switch s.Entity {
	case "response":
		return &search.ResponseScope{Question: s.Question}, nil
	case "suggestion":
		return &search.SuggestionScope{Question: s.Question, Property: s.Property}, nil
	case "metadata":
		return &search.MetadataScope{Property: s.Property}, nil
	case "record":
		return &search.RecordScope{Property: s.Property}, nil
	default:
		return nil, &search.InvalidFilterError{Reason: "scope entity must be one of: response, suggestion, metadata, record"}
	}
}

// parseIncludes 解析 include 查询参数。
// 支持 responses、my_responses、suggestions、vectors、vectors:name1,name2。
func parseIncludes(tokens []string, user *model.User, opts *searchsvc.Options) error {
	for _, token := range tokens {
		switch {
		case token == "responses":
			opts.WithResponses = true
		case token == "my_responses":
			opts.WithResponses = true
			opts.ResponsesUser = user
		case token == "suggestions":
			opts.WithSuggestions = true
		case token == "vectors":
			opts.WithVectors = true
		case strings.HasPrefix(token, "vectors:"):
			opts.WithVectors = true
			names := strings.TrimPrefix(token, "vectors:")
			for _, name := range strings.Split(names, ",") {
				if name != "" {
					opts.VectorNames = append(opts.VectorNames, name)
				}
			}
		default:
			return &search.InvalidFilterError{Reason: "unknown include: " + token}
		}
	}
	return nil
}
