package search

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/search"
	"github.com/argilla-io/argilla-server/internal/testutil"
)

// ========== 测试用假存储 ==========

type fakeDatasetStore struct {
	dataset *model.Dataset
}

func (s *fakeDatasetStore) GetByID(id string) (*model.Dataset, error) {
	if s.dataset == nil || s.dataset.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.dataset, nil
}

type fakeRecordStore struct {
	records []*model.Record
	vectors map[string]*model.Vector // recordID -> vector

	listCalls int
}

func (s *fakeRecordStore) ListByIDs(datasetID string, ids []string) ([]*model.Record, error) {
	s.listCalls++
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*model.Record
	for _, r := range s.records {
		if r.DatasetID == datasetID && want[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeRecordStore) GetVector(recordID, vectorSettingsID string) (*model.Vector, error) {
	if v, ok := s.vectors[recordID]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeRecordStore) ListVectors(recordIDs []string, vectorSettingsIDs []string) ([]*model.Vector, error) {
	var out []*model.Vector
	for _, id := range recordIDs {
		if v, ok := s.vectors[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeResponseStore struct {
	responses []*model.Response

	userCalls []string
	allCalls  int
}

func (s *fakeResponseStore) ListByRecordIDs(recordIDs []string) ([]*model.Response, error) {
	s.allCalls++
	return s.filter(recordIDs, ""), nil
}

func (s *fakeResponseStore) ListByRecordIDsAndUser(recordIDs []string, userID string) ([]*model.Response, error) {
	s.userCalls = append(s.userCalls, userID)
	return s.filter(recordIDs, userID), nil
}

func (s *fakeResponseStore) filter(recordIDs []string, userID string) []*model.Response {
	want := make(map[string]bool, len(recordIDs))
	for _, id := range recordIDs {
		want[id] = true
	}
	var out []*model.Response
	for _, r := range s.responses {
		if want[r.RecordID] && (userID == "" || r.UserID == userID) {
			out = append(out, r)
		}
	}
	return out
}

type fakeSuggestionStore struct {
	suggestions []*model.Suggestion
}

func (s *fakeSuggestionStore) ListByRecordIDs(recordIDs []string) ([]*model.Suggestion, error) {
	want := make(map[string]bool, len(recordIDs))
	for _, id := range recordIDs {
		want[id] = true
	}
	var out []*model.Suggestion
	for _, sg := range s.suggestions {
		if want[sg.RecordID] {
			out = append(out, sg)
		}
	}
	return out, nil
}

type fixture struct {
	dataset   *model.Dataset
	records   *fakeRecordStore
	responses *fakeResponseStore
	backend   *testutil.FakeBackend
	service   *Service
}

func newFixture(recordCount int) *fixture {
	ds := testutil.NewDataset()
	records := &fakeRecordStore{vectors: map[string]*model.Vector{}}
	for i := 0; i < recordCount; i++ {
		records.records = append(records.records, testutil.NewRecord(ds.ID))
	}
	responses := &fakeResponseStore{}
	backend := &testutil.FakeBackend{}
	svc := NewServiceWithStores(
		&fakeDatasetStore{dataset: ds}, records, responses,
		&fakeSuggestionStore{}, backend, 500,
	)
	return &fixture{dataset: ds, records: records, responses: responses, backend: backend, service: svc}
}

func hitsFor(records []*model.Record, indexes ...int) *search.Result {
	result := &search.Result{Total: int64(len(indexes))}
	for i, idx := range indexes {
		result.Hits = append(result.Hits, search.Hit{
			RecordID: records[idx].ID,
			Score:    float64(len(indexes) - i),
		})
	}
	return result
}

// ========== 检索执行 ==========

func TestSearchRecords_PreservesHitOrder(t *testing.T) {
	f := newFixture(3)
	// 引擎顺序和存储顺序不同
	f.backend.SearchResult = hitsFor(f.records.records, 2, 0, 1)

	result, err := f.service.SearchRecords(context.Background(), f.dataset.ID, nil, Options{Limit: 10})
	if err != nil {
		t.Fatalf("SearchRecords() unexpected error: %v", err)
	}

	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	wantOrder := []string{f.records.records[2].ID, f.records.records[0].ID, f.records.records[1].ID}
	if len(result.Items) != len(wantOrder) {
		t.Fatalf("got %d items, want %d", len(result.Items), len(wantOrder))
	}
	for i, item := range result.Items {
		if item.Record.ID != wantOrder[i] {
			t.Errorf("item[%d] = %s, want %s", i, item.Record.ID, wantOrder[i])
		}
	}
	if result.Items[0].Score != 3 {
		t.Errorf("item[0] score = %v, want 3", result.Items[0].Score)
	}
}

func TestSearchRecords_DropsRecordsMissingFromStore(t *testing.T) {
	f := newFixture(2)
	hits := hitsFor(f.records.records, 0, 1)
	hits.Hits = append(hits.Hits, search.Hit{RecordID: "stale-id", Score: 0.5})
	hits.Total = 3
	f.backend.SearchResult = hits

	result, err := f.service.SearchRecords(context.Background(), f.dataset.ID, nil, Options{Limit: 10})
	if err != nil {
		t.Fatalf("SearchRecords() unexpected error: %v", err)
	}

	// 主存储里没有的命中被静默跳过，总数仍以引擎为准
	if len(result.Items) != 2 {
		t.Errorf("got %d items, want 2", len(result.Items))
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
}

func TestSearchRecords_PaginationBounds(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "negative offset", opts: Options{Offset: -1, Limit: 10}},
		{name: "zero limit", opts: Options{Limit: 0}},
		{name: "limit above max", opts: Options{Limit: 501}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(1)
			_, err := f.service.SearchRecords(context.Background(), f.dataset.ID, nil, tt.opts)
			if err == nil {
				t.Fatal("SearchRecords() expected error, got nil")
			}
			var verr *search.InvalidFilterError
			if !errors.As(err, &verr) {
				t.Errorf("error = %T, want *search.InvalidFilterError", err)
			}
			if len(f.backend.SearchCalls) != 0 {
				t.Errorf("backend was called %d times, want 0", len(f.backend.SearchCalls))
			}
		})
	}
}

func TestSearchRecords_ValidationFailureSkipsBackend(t *testing.T) {
	f := newFixture(1)
	q := &search.Query{
		Filter: &search.AndFilter{Filters: []search.Filter{
			&search.TermsFilter{Scope: &search.ResponseScope{Question: "nope"}, Values: []string{"1"}},
		}},
	}

	_, err := f.service.SearchRecords(context.Background(), f.dataset.ID, q, Options{Limit: 10})
	if err == nil {
		t.Fatal("SearchRecords() expected error, got nil")
	}
	var verr *search.QuestionNotFoundError
	if !errors.As(err, &verr) {
		t.Errorf("error = %T, want *search.QuestionNotFoundError", err)
	}
	if len(f.backend.SearchCalls) != 0 {
		t.Errorf("backend was called %d times, want 0", len(f.backend.SearchCalls))
	}
}

func TestSearchRecords_UnpublishedDataset(t *testing.T) {
	f := newFixture(0)
	f.dataset.Status = model.DatasetDraft

	_, err := f.service.SearchRecords(context.Background(), f.dataset.ID, nil, Options{Limit: 10})
	if err == nil {
		t.Fatal("SearchRecords() expected error for draft dataset")
	}
	if len(f.backend.SearchCalls) != 0 {
		t.Errorf("backend was called %d times, want 0", len(f.backend.SearchCalls))
	}
}

func TestSearchRecords_PassesPaginationToBackend(t *testing.T) {
	f := newFixture(1)
	f.backend.SearchResult = hitsFor(f.records.records, 0)

	_, err := f.service.SearchRecords(context.Background(), f.dataset.ID, nil, Options{Offset: 40, Limit: 20})
	if err != nil {
		t.Fatalf("SearchRecords() unexpected error: %v", err)
	}

	if len(f.backend.SearchCalls) != 1 {
		t.Fatalf("backend was called %d times, want 1", len(f.backend.SearchCalls))
	}
	call := f.backend.SearchCalls[0]
	if call.Offset != 40 || call.Limit != 20 {
		t.Errorf("backend called with offset=%d limit=%d, want 40/20", call.Offset, call.Limit)
	}
	if call.DatasetID != f.dataset.ID {
		t.Errorf("backend called with dataset %s, want %s", call.DatasetID, f.dataset.ID)
	}
}

// ========== 附带内容 ==========

func TestSearchRecords_IncludesResponsesForUser(t *testing.T) {
	f := newFixture(2)
	f.backend.SearchResult = hitsFor(f.records.records, 0, 1)

	user := testutil.NewUser("alice", model.RoleAnnotator)
	other := testutil.NewUser("bob", model.RoleAnnotator)
	recordID := f.records.records[0].ID
	f.responses.responses = []*model.Response{
		testutil.NewResponse(recordID, user.ID, model.ResponseSubmitted),
		testutil.NewResponse(recordID, other.ID, model.ResponseSubmitted),
	}

	result, err := f.service.SearchRecords(context.Background(), f.dataset.ID, nil, Options{
		Limit:         10,
		WithResponses: true,
		ResponsesUser: user,
	})
	if err != nil {
		t.Fatalf("SearchRecords() unexpected error: %v", err)
	}

	if len(f.responses.userCalls) != 1 || f.responses.userCalls[0] != user.ID {
		t.Fatalf("user-scoped response query calls = %v, want [%s]", f.responses.userCalls, user.ID)
	}
	got := result.Items[0].Record.Responses
	if len(got) != 1 || got[0].UserID != user.ID {
		t.Errorf("attached responses = %+v, want only user %s", got, user.ID)
	}
	if len(result.Items[1].Record.Responses) != 0 {
		t.Errorf("record without responses got %d attached", len(result.Items[1].Record.Responses))
	}
}

func TestSearchRecords_UnknownVectorNameInIncludes(t *testing.T) {
	f := newFixture(1)
	f.backend.SearchResult = hitsFor(f.records.records, 0)

	_, err := f.service.SearchRecords(context.Background(), f.dataset.ID, nil, Options{
		Limit:       10,
		WithVectors: true,
		VectorNames: []string{"nope"},
	})
	if err == nil {
		t.Fatal("SearchRecords() expected error for unknown vector name")
	}
	var verr *search.VectorSettingsNotFoundError
	if !errors.As(err, &verr) {
		t.Errorf("error = %T, want *search.VectorSettingsNotFoundError", err)
	}
}

// ========== 相似检索 ==========

func TestSearchRecords_SimilarityByRecordReference(t *testing.T) {
	f := newFixture(2)
	f.backend.SearchResult = hitsFor(f.records.records, 1)

	ref := f.records.records[0]
	f.records.vectors[ref.ID] = &model.Vector{
		RecordID:         ref.ID,
		VectorSettingsID: f.dataset.VectorSettings[0].ID,
		Value:            model.VectorValue{0.1, 0.2, 0.3, 0.4},
	}

	q := &search.Query{Vector: &search.VectorQuery{
		Name:     "embedding",
		RecordID: ref.ID,
		Order:    search.MostSimilar,
	}}
	_, err := f.service.SearchRecords(context.Background(), f.dataset.ID, q, Options{Limit: 10})
	if err != nil {
		t.Fatalf("SearchRecords() unexpected error: %v", err)
	}

	if len(f.backend.SearchCalls) != 1 {
		t.Fatalf("backend was called %d times, want 1", len(f.backend.SearchCalls))
	}
	body := f.backend.SearchCalls[0].Body
	if _, ok := body["query"].(map[string]interface{})["script_score"]; !ok {
		t.Errorf("request body is not a script_score query: %#v", body["query"])
	}
}

func TestSearchRecords_SimilarityMissingVector(t *testing.T) {
	f := newFixture(1)

	q := &search.Query{Vector: &search.VectorQuery{
		Name:     "embedding",
		RecordID: "r-without-vector",
		Order:    search.MostSimilar,
	}}
	_, err := f.service.SearchRecords(context.Background(), f.dataset.ID, q, Options{Limit: 10})
	if err == nil {
		t.Fatal("SearchRecords() expected error, got nil")
	}

	var missing *search.MissingVectorError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %T, want *search.MissingVectorError", err)
	}
	if missing.Code() != "missing_vector" {
		t.Errorf("code = %q, want %q", missing.Code(), "missing_vector")
	}
	if len(f.backend.SearchCalls) != 0 {
		t.Errorf("backend was called %d times, want 0", len(f.backend.SearchCalls))
	}
}
