package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		"title": {
			Type:      TypeString,
			Required:  true,
			MinLength: 1,
			MaxLength: 200,
			Sanitize:  SanitizeText,
		},
		"content_type": {
			Type:     TypeString,
			Required: true,
			Enum:     []string{"sermon", "study"},
		},
		"notes": {
			Type:     TypeString,
			Sanitize: SanitizeHTML,
		},
		"options": {
			Type: TypeObject,
			Nested: Schema{
				"tone": {Type: TypeString, Enum: []string{"pastoral", "evangelistic"}},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		strict     bool
		wantValid  bool
		wantErrors []string
	}{
		{
			name:      "валидный payload",
			payload:   map[string]any{"title": "Faith", "content_type": "sermon"},
			strict:    true,
			wantValid: true,
		},
		{
			name:       "отсутствует обязательное поле",
			payload:    map[string]any{"content_type": "sermon"},
			strict:     true,
			wantValid:  false,
			wantErrors: []string{"field title is required"},
		},
		{
			name:       "пустая строка считается отсутствующей",
			payload:    map[string]any{"title": "   ", "content_type": "sermon"},
			strict:     true,
			wantValid:  false,
			wantErrors: []string{"field title is required"},
		},
		{
			name:       "значение вне enum",
			payload:    map[string]any{"title": "Faith", "content_type": "podcast"},
			strict:     true,
			wantValid:  false,
			wantErrors: []string{"field content_type must be one of: sermon, study"},
		},
		{
			name:       "неверный тип",
			payload:    map[string]any{"title": 42, "content_type": "sermon"},
			strict:     true,
			wantValid:  false,
			wantErrors: []string{"field title must be a string"},
		},
		{
			name:       "необъявленное поле отклоняет запрос целиком",
			payload:    map[string]any{"title": "Faith", "content_type": "sermon", "isAdmin": true},
			strict:     true,
			wantValid:  false,
			wantErrors: []string{"unexpected field: isAdmin"},
		},
		{
			name:      "нестрогий режим пропускает лишние поля",
			payload:   map[string]any{"title": "Faith", "content_type": "sermon", "extra": 1},
			strict:    false,
			wantValid: true,
		},
		{
			name: "ошибка вложенной схемы получает префикс родителя",
			payload: map[string]any{
				"title":        "Faith",
				"content_type": "sermon",
				"options":      map[string]any{"tone": "angry"},
			},
			strict:     true,
			wantValid:  false,
			wantErrors: []string{"field options.tone must be one of: pastoral, evangelistic"},
		},
		{
			name: "все нарушения накапливаются",
			payload: map[string]any{
				"content_type": "podcast",
				"isAdmin":      true,
			},
			strict:    true,
			wantValid: false,
			wantErrors: []string{
				"unexpected field: isAdmin",
				"field content_type must be one of: sermon, study",
				"field title is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.payload, testSchema(), tt.strict)
			assert.Equal(t, tt.wantValid, res.Valid)
			for _, want := range tt.wantErrors {
				assert.Contains(t, res.Errors, want)
			}
			if tt.wantValid {
				assert.Empty(t, res.Errors)
				require.NotNil(t, res.Data)
			} else {
				assert.Nil(t, res.Data)
			}
		})
	}
}

func TestValidateDataContainsOnlyDeclaredFields(t *testing.T) {
	payload := map[string]any{
		"title":        "  Walking   in\tFaith  ",
		"content_type": "sermon",
		"injected":     "value",
	}
	res := Validate(payload, testSchema(), false)
	require.True(t, res.Valid)
	assert.Equal(t, "Walking in Faith", res.Data["title"])
	assert.NotContains(t, res.Data, "injected")
}

func TestSanitizeTextIdempotent(t *testing.T) {
	clean := "Walking in Faith"
	assert.Equal(t, clean, sanitizeText(clean, 200))
	assert.Equal(t, clean, sanitizeText(sanitizeText("  Walking \x00 in\n\nFaith ", 200), 200))
}

func TestSanitizeHTML(t *testing.T) {
	payload := map[string]any{
		"title":        "Faith",
		"content_type": "sermon",
		"notes":        `before <script type="text/javascript">alert(1)</script> <a href="javascript:run()" onclick="x()">link</a> after`,
	}
	res := Validate(payload, testSchema(), true)
	require.True(t, res.Valid)
	notes := res.Data["notes"].(string)
	assert.NotContains(t, notes, "<script")
	assert.NotContains(t, notes, "alert(1)")
	assert.NotContains(t, notes, "onclick")
	assert.NotContains(t, notes, "javascript:")
	assert.Contains(t, notes, "before")
	assert.Contains(t, notes, "after")
}

func TestValidateTruncatesToMaxLength(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	payload := map[string]any{"title": string(long), "content_type": "sermon"}
	res := Validate(payload, testSchema(), true)
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "field title must be at most 200 characters")
}

func TestValidateCustomCheck(t *testing.T) {
	schema := Schema{
		"count": {
			Type:  TypeNumber,
			Check: func(v any) bool { return v.(float64) >= 1 },
		},
	}
	res := Validate(map[string]any{"count": float64(0)}, schema, true)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "field count is not valid")

	res = Validate(map[string]any{"count": float64(2)}, schema, true)
	assert.True(t, res.Valid)
}
