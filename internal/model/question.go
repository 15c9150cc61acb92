package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType 问题类型
type QuestionType string

const (
	// QuestionText 自由文本问题
	QuestionText QuestionType = "text"
	// QuestionRating 评分问题
	QuestionRating QuestionType = "rating"
	// QuestionLabelSelection 单选标签问题
	QuestionLabelSelection QuestionType = "label_selection"
	// QuestionMultiLabelSelection 多选标签问题
	QuestionMultiLabelSelection QuestionType = "multi_label_selection"
	// QuestionRanking 排序问题
	QuestionRanking QuestionType = "ranking"
	// QuestionSpan 片段标注问题
	QuestionSpan QuestionType = "span"
)

// TextQuestionSettings 文本问题配置
type TextQuestionSettings struct {
	UseMarkdown bool `json:"use_markdown,omitempty"`
}

// RatingOption 评分选项
type RatingOption struct {
	Value int `json:"value"`
}

// RatingQuestionSettings 评分问题配置
type RatingQuestionSettings struct {
	Options []RatingOption `json:"options"`
}

// LabelOption 标签选项
type LabelOption struct {
	Value string `json:"value"`
	Text  string `json:"text,omitempty"`
}

// LabelSelectionSettings 标签问题配置（单选与多选共用）
type LabelSelectionSettings struct {
	Options        []LabelOption `json:"options"`
	VisibleOptions *int          `json:"visible_options,omitempty"`
}

// RankingQuestionSettings 排序问题配置
type RankingQuestionSettings struct {
	Options []LabelOption `json:"options"`
}

// SpanQuestionSettings 片段标注问题配置
type SpanQuestionSettings struct {
	Field            string        `json:"field"`
	Options          []LabelOption `json:"options"`
	AllowOverlapping bool          `json:"allow_overlapping,omitempty"`
	VisibleOptions   *int          `json:"visible_options,omitempty"`
}

// QuestionSettings 问题配置，按 Type 区分变体，有且仅有对应变体的负载非空
type QuestionSettings struct {
	Type                QuestionType             `json:"type"`
	Text                *TextQuestionSettings    `json:"text,omitempty"`
	Rating              *RatingQuestionSettings  `json:"rating,omitempty"`
	LabelSelection      *LabelSelectionSettings  `json:"label_selection,omitempty"`
	MultiLabelSelection *LabelSelectionSettings  `json:"multi_label_selection,omitempty"`
	Ranking             *RankingQuestionSettings `json:"ranking,omitempty"`
	Span                *SpanQuestionSettings    `json:"span,omitempty"`
}

// Validate 校验问题配置，要求变体负载与类型一致
func (s *QuestionSettings) Validate() error {
	switch s.Type {
	case QuestionText:
		if s.Text == nil {
			return fmt.Errorf("text question requires text settings")
		}
	case QuestionRating:
		if s.Rating == nil || len(s.Rating.Options) == 0 {
			return fmt.Errorf("rating question requires at least one option")
		}
	case QuestionLabelSelection:
		if s.LabelSelection == nil || len(s.LabelSelection.Options) == 0 {
			return fmt.Errorf("label_selection question requires at least one option")
		}
	case QuestionMultiLabelSelection:
		if s.MultiLabelSelection == nil || len(s.MultiLabelSelection.Options) == 0 {
			return fmt.Errorf("multi_label_selection question requires at least one option")
		}
	case QuestionRanking:
		if s.Ranking == nil || len(s.Ranking.Options) == 0 {
			return fmt.Errorf("ranking question requires at least one option")
		}
	case QuestionSpan:
		if s.Span == nil || len(s.Span.Options) == 0 {
			return fmt.Errorf("span question requires at least one option")
		}
		if s.Span.Field == "" {
			return fmt.Errorf("span question requires a target field")
		}
	default:
		return fmt.Errorf("unknown question type: %q", s.Type)
	}
	return nil
}

// OptionValues 返回问题的合法选项值集合，文本问题返回 nil
func (s *QuestionSettings) OptionValues() []string {
	switch s.Type {
	case QuestionRating:
		values := make([]string, 0, len(s.Rating.Options))
		for _, o := range s.Rating.Options {
			values = append(values, fmt.Sprintf("%d", o.Value))
		}
		return values
	case QuestionLabelSelection:
		return labelValues(s.LabelSelection.Options)
	case QuestionMultiLabelSelection:
		return labelValues(s.MultiLabelSelection.Options)
	case QuestionRanking:
		return labelValues(s.Ranking.Options)
	case QuestionSpan:
		return labelValues(s.Span.Options)
	}
	return nil
}

func labelValues(options []LabelOption) []string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, o.Value)
	}
	return values
}

// ValidateAnswer 校验一个回答值是否符合问题配置
func (s *QuestionSettings) ValidateAnswer(value interface{}) error {
	switch s.Type {
	case QuestionText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("text answer must be a string")
		}
	case QuestionRating:
		num, ok := toInt(value)
		if !ok {
			return fmt.Errorf("rating answer must be an integer")
		}
		for _, o := range s.Rating.Options {
			if o.Value == num {
				return nil
			}
		}
		return fmt.Errorf("rating value %d is not a configured option", num)
	case QuestionLabelSelection:
		label, ok := value.(string)
		if !ok {
			return fmt.Errorf("label_selection answer must be a string")
		}
		if !containsString(labelValues(s.LabelSelection.Options), label) {
			return fmt.Errorf("label %q is not a configured option", label)
		}
	case QuestionMultiLabelSelection:
		labels, ok := toStringSlice(value)
		if !ok || len(labels) == 0 {
			return fmt.Errorf("multi_label_selection answer must be a non-empty list of strings")
		}
		allowed := labelValues(s.MultiLabelSelection.Options)
		for _, label := range labels {
			if !containsString(allowed, label) {
				return fmt.Errorf("label %q is not a configured option", label)
			}
		}
	case QuestionRanking:
		items, ok := value.([]interface{})
		if !ok || len(items) == 0 {
			return fmt.Errorf("ranking answer must be a non-empty list")
		}
	case QuestionSpan:
		spans, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("span answer must be a list of spans")
		}
		allowed := labelValues(s.Span.Options)
		for _, raw := range spans {
			span, ok := raw.(map[string]interface{})
			if !ok {
				return fmt.Errorf("span answer entries must be objects")
			}
			label, _ := span["label"].(string)
			if !containsString(allowed, label) {
				return fmt.Errorf("span label %q is not a configured option", label)
			}
		}
	default:
		return fmt.Errorf("unknown question type: %q", s.Type)
	}
	return nil
}

// Value 实现 driver.Valuer 接口
func (s QuestionSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *QuestionSettings) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Question 标注问题定义
type Question struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	Name        string           `gorm:"index:idx_question_dataset_name,unique;size:100;not null" json:"name"`
	Title       string           `gorm:"size:255" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Required    bool             `gorm:"default:false" json:"required"`
	Settings    QuestionSettings `gorm:"type:jsonb" json:"settings"`
	DatasetID   string           `gorm:"index:idx_question_dataset_name,unique;size:36;not null" json:"dataset_id"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Question) TableName() string {
	return "questions"
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	}
	return 0, false
}

func toStringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}
