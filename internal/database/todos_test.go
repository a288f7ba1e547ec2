package database

import (
	"testing"

	"github.com/rwalling/tasklog/internal/models"
)

func TestUpdateTodoParamsEmpty(t *testing.T) {
	t.Parallel()

	text := "hello"
	priority := 2
	items := models.StringList{"rope"}

	tests := []struct {
		name     string
		params   UpdateTodoParams
		expected bool
	}{
		{
			name:     "no fields",
			params:   UpdateTodoParams{},
			expected: true,
		},
		{
			name:     "text only",
			params:   UpdateTodoParams{Text: &text},
			expected: false,
		},
		{
			name:     "priority only",
			params:   UpdateTodoParams{Priority: &priority},
			expected: false,
		},
		{
			name:     "structured field only",
			params:   UpdateTodoParams{RequiredItems: &items},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.params.empty(); got != tt.expected {
				t.Errorf("empty() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestMarshalStructuredDefaults(t *testing.T) {
	t.Parallel()

	required, procedure, subtasks, err := marshalStructured(&models.Todo{})
	if err != nil {
		t.Fatalf("marshalStructured returned error: %v", err)
	}
	if string(required) != "[]" {
		t.Errorf("Expected nil requiredItems to marshal as [], got %s", required)
	}
	if string(procedure) != "[]" {
		t.Errorf("Expected nil procedure to marshal as [], got %s", procedure)
	}
	if string(subtasks) != "[]" {
		t.Errorf("Expected nil subtasks to marshal as [], got %s", subtasks)
	}
}

func TestMarshalStructuredContents(t *testing.T) {
	t.Parallel()

	todo := &models.Todo{
		RequiredItems: models.StringList{"rope", "tape"},
		Subtasks:      models.SubtaskList{{ID: "s1", Text: "first", Completed: true}},
	}
	required, _, subtasks, err := marshalStructured(todo)
	if err != nil {
		t.Fatalf("marshalStructured returned error: %v", err)
	}
	if string(required) != `["rope","tape"]` {
		t.Errorf("Unexpected requiredItems JSON: %s", required)
	}
	if string(subtasks) != `[{"id":"s1","text":"first","completed":true}]` {
		t.Errorf("Unexpected subtasks JSON: %s", subtasks)
	}
}
