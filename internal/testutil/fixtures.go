// Package testutil 提供测试夹具和假搜索后端
package testutil

import (
	"github.com/google/uuid"

	"github.com/argilla-io/argilla-server/internal/model"
)

// NewDataset 构造一个已发布数据集，带常用的结构定义
func NewDataset() *model.Dataset {
	dsID := uuid.New().String()
	intMin := float64(0)
	intMax := float64(100)
	ds := &model.Dataset{
		ID:                       dsID,
		Name:                     "test-dataset",
		Status:                   model.DatasetReady,
		WorkspaceID:              uuid.New().String(),
		DistributionStrategy:     model.DistributionOverlap,
		DistributionMinSubmitted: 1,
		AllowExtraMetadata:       true,
		Fields: []model.Field{
			{
				ID:        uuid.New().String(),
				Name:      "prompt",
				Required:  true,
				Settings:  model.FieldSettings{Type: model.FieldText},
				DatasetID: dsID,
			},
			{
				ID:        uuid.New().String(),
				Name:      "response",
				Settings:  model.FieldSettings{Type: model.FieldText},
				DatasetID: dsID,
			},
		},
		Questions: []model.Question{
			{
				ID:       uuid.New().String(),
				Name:     "quality",
				Required: true,
				Settings: model.QuestionSettings{
					Type:   model.QuestionRating,
					Rating: &model.RatingQuestionSettings{Options: []model.RatingOption{
						{Value: 1}, {Value: 2}, {Value: 3}, {Value: 4}, {Value: 5},
					}},
				},
				DatasetID: dsID,
			},
			{
				ID:   uuid.New().String(),
				Name: "category",
				Settings: model.QuestionSettings{
					Type: model.QuestionLabelSelection,
					LabelSelection: &model.LabelSelectionSettings{
						Options: []model.LabelOption{{Value: "good"}, {Value: "bad"}},
					},
				},
				DatasetID: dsID,
			},
		},
		MetadataProperties: []model.MetadataProperty{
			{
				ID:   uuid.New().String(),
				Name: "source",
				Settings: model.MetadataPropertySettings{
					Type:  model.MetadataTerms,
					Terms: &model.TermsMetadataSettings{Values: []string{"wiki", "news"}},
				},
				DatasetID: dsID,
			},
			{
				ID:   uuid.New().String(),
				Name: "tokens",
				Settings: model.MetadataPropertySettings{
					Type:    model.MetadataInteger,
					Integer: &model.NumericMetadataSettings{Min: &intMin, Max: &intMax},
				},
				DatasetID: dsID,
			},
		},
		VectorSettings: []model.VectorSettings{
			{
				ID:         uuid.New().String(),
				Name:       "embedding",
				Dimensions: 4,
				DatasetID:  dsID,
			},
		},
	}
	return ds
}

// NewUser 构造一个用户
func NewUser(username string, role model.UserRole) *model.User {
	return &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
}

// NewRecord 构造一条记录
func NewRecord(datasetID string) *model.Record {
	return &model.Record{
		ID:        uuid.New().String(),
		Fields:    model.JSONMap{"prompt": "hello", "response": "world"},
		Status:    model.RecordPending,
		DatasetID: datasetID,
	}
}

// NewResponse 构造一条响应
func NewResponse(recordID, userID string, status model.ResponseStatus) *model.Response {
	return &model.Response{
		ID:       uuid.New().String(),
		Values:   model.JSONMap{"quality": map[string]interface{}{"value": 5}},
		Status:   status,
		RecordID: recordID,
		UserID:   userID,
	}
}
