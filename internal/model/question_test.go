package model

import "testing"

func ratingSettings(values ...int) QuestionSettings {
	options := make([]RatingOption, 0, len(values))
	for _, v := range values {
		options = append(options, RatingOption{Value: v})
	}
	return QuestionSettings{Type: QuestionRating, Rating: &RatingQuestionSettings{Options: options}}
}

func labelSettings(labels ...string) QuestionSettings {
	options := make([]LabelOption, 0, len(labels))
	for _, l := range labels {
		options = append(options, LabelOption{Value: l})
	}
	return QuestionSettings{Type: QuestionLabelSelection, LabelSelection: &LabelSelectionSettings{Options: options}}
}

// ========== 配置校验 ==========

func TestQuestionSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings QuestionSettings
		wantErr  bool
	}{
		{
			name:     "text with payload",
			settings: QuestionSettings{Type: QuestionText, Text: &TextQuestionSettings{}},
		},
		{
			name:     "text without payload",
			settings: QuestionSettings{Type: QuestionText},
			wantErr:  true,
		},
		{
			name:     "rating with options",
			settings: ratingSettings(1, 2, 3),
		},
		{
			name:     "rating without options",
			settings: QuestionSettings{Type: QuestionRating, Rating: &RatingQuestionSettings{}},
			wantErr:  true,
		},
		{
			name:     "label selection with options",
			settings: labelSettings("good", "bad"),
		},
		{
			name: "span with field and options",
			settings: QuestionSettings{Type: QuestionSpan, Span: &SpanQuestionSettings{
				Field:   "prompt",
				Options: []LabelOption{{Value: "person"}},
			}},
		},
		{
			name: "span without field",
			settings: QuestionSettings{Type: QuestionSpan, Span: &SpanQuestionSettings{
				Options: []LabelOption{{Value: "person"}},
			}},
			wantErr: true,
		},
		{
			name:     "unknown type",
			settings: QuestionSettings{Type: "slider"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

// ========== 回答校验 ==========

func TestQuestionSettings_ValidateAnswer(t *testing.T) {
	multiLabel := QuestionSettings{
		Type: QuestionMultiLabelSelection,
		MultiLabelSelection: &LabelSelectionSettings{
			Options: []LabelOption{{Value: "a"}, {Value: "b"}},
		},
	}
	span := QuestionSettings{
		Type: QuestionSpan,
		Span: &SpanQuestionSettings{
			Field:   "prompt",
			Options: []LabelOption{{Value: "person"}, {Value: "place"}},
		},
	}

	tests := []struct {
		name     string
		settings QuestionSettings
		answer   interface{}
		wantErr  bool
	}{
		{name: "text string", settings: QuestionSettings{Type: QuestionText, Text: &TextQuestionSettings{}}, answer: "fine"},
		{name: "text non-string", settings: QuestionSettings{Type: QuestionText, Text: &TextQuestionSettings{}}, answer: 3, wantErr: true},
		{name: "rating configured value", settings: ratingSettings(1, 2, 3), answer: 2},
		// JSON 解码出来的数字是 float64
		{name: "rating float64 whole number", settings: ratingSettings(1, 2, 3), answer: float64(3)},
		{name: "rating fractional", settings: ratingSettings(1, 2, 3), answer: 2.5, wantErr: true},
		{name: "rating out of range", settings: ratingSettings(1, 2, 3), answer: 7, wantErr: true},
		{name: "label configured", settings: labelSettings("good", "bad"), answer: "good"},
		{name: "label unknown", settings: labelSettings("good", "bad"), answer: "ugly", wantErr: true},
		{name: "multi label all configured", settings: multiLabel, answer: []interface{}{"a", "b"}},
		{name: "multi label one unknown", settings: multiLabel, answer: []interface{}{"a", "c"}, wantErr: true},
		{name: "multi label empty", settings: multiLabel, answer: []interface{}{}, wantErr: true},
		{
			name:     "span with configured label",
			settings: span,
			answer: []interface{}{
				map[string]interface{}{"label": "person", "start": float64(0), "end": float64(5)},
			},
		},
		{
			name:     "span with unknown label",
			settings: span,
			answer: []interface{}{
				map[string]interface{}{"label": "animal", "start": float64(0), "end": float64(5)},
			},
			wantErr: true,
		},
		{name: "span non-object entry", settings: span, answer: []interface{}{"person"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.ValidateAnswer(tt.answer)
			if tt.wantErr && err == nil {
				t.Error("ValidateAnswer() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAnswer() unexpected error: %v", err)
			}
		})
	}
}

func TestQuestionSettings_OptionValues(t *testing.T) {
	rating := ratingSettings(1, 5)
	got := rating.OptionValues()
	want := []string{"1", "5"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("OptionValues() = %v, want %v", got, want)
	}

	text := QuestionSettings{Type: QuestionText, Text: &TextQuestionSettings{}}
	if values := text.OptionValues(); values != nil {
		t.Errorf("text OptionValues() = %v, want nil", values)
	}
}
