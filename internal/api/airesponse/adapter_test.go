package airesponse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "fenced object",
			input:    "```json\n{\"mode\": \"train\"}\n```",
			expected: `{"mode": "train"}`,
		},
		{
			name:     "object surrounded by prose",
			input:    "Here is your plan:\n{\"a\": 1}\nEnjoy!",
			expected: `{"a": 1}`,
		},
		{
			name:     "empty input",
			input:    "   ",
			expected: "{}",
		},
		{
			name:     "no braces",
			input:    "take the train, about 500 km",
			expected: "{}",
		},
		{
			name:     "unbalanced braces",
			input:    `{"a": 1`,
			expected: "{}",
		},
		{
			name:     "invalid json between braces",
			input:    `{not json}`,
			expected: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSON(tt.input))
		})
	}
}

func TestSchemaProject(t *testing.T) {
	schema := Schema{
		"recommendedMode":  {Type: String, Default: "car"},
		"distanceEstimate": {Type: Number, Default: 250.0},
		"confidenceScore":  {Type: Number, Default: 0.8},
		"reasoning":        {Type: String, Default: "Based on your travel preferences"},
	}

	t.Run("complete object", func(t *testing.T) {
		rec, ok := schema.Project(`{"recommendedMode":"train","distanceEstimate":512.5,"confidenceScore":0.9,"reasoning":"fast"}`)
		assert.True(t, ok)
		assert.Equal(t, "train", rec.String("recommendedMode"))
		assert.Equal(t, 512.5, rec.Float("distanceEstimate"))
		assert.Equal(t, 0.9, rec.Float("confidenceScore"))
	})

	t.Run("integer accepted for number field", func(t *testing.T) {
		rec, ok := schema.Project(`{"distanceEstimate": 800}`)
		assert.True(t, ok)
		assert.Equal(t, 800.0, rec.Float("distanceEstimate"))
	})

	t.Run("numeric string accepted for number field", func(t *testing.T) {
		rec, _ := schema.Project(`{"distanceEstimate": "450"}`)
		assert.Equal(t, 450.0, rec.Float("distanceEstimate"))
	})

	t.Run("missing keys take defaults", func(t *testing.T) {
		rec, ok := schema.Project(`{"recommendedMode":"bus"}`)
		assert.True(t, ok)
		assert.Equal(t, "bus", rec.String("recommendedMode"))
		assert.Equal(t, 250.0, rec.Float("distanceEstimate"))
		assert.Equal(t, "Based on your travel preferences", rec.String("reasoning"))
	})

	t.Run("garbage yields defaults and not-ok", func(t *testing.T) {
		rec, ok := schema.Project("the model had a bad day")
		assert.False(t, ok)
		assert.Equal(t, "car", rec.String("recommendedMode"))
	})

	t.Run("deterministic on same input", func(t *testing.T) {
		input := `{"recommendedMode":"flight","distanceEstimate":"oops"}`
		rec1, _ := schema.Project(input)
		rec2, _ := schema.Project(input)
		assert.Equal(t, rec1, rec2)
	})
}

func TestCoercions(t *testing.T) {
	assert.Equal(t, 3, CoerceInt(3.9, 0), "float truncates to int")
	assert.Equal(t, 7, CoerceInt("7", 0))
	assert.Equal(t, 5, CoerceInt("7.5", 5), "non-integral string takes default")
	assert.Equal(t, 1.5, CoerceFloat(1.5, 0))
	assert.Equal(t, 2.0, CoerceFloat(nil, 2.0))
	assert.Equal(t, "x", CoerceString(nil, "x"))
	assert.Equal(t, "4", CoerceString(4.0, ""))
	assert.Equal(t, []string{"a", "2"}, CoerceStringList([]any{"a", 2.0}))
	assert.Empty(t, CoerceStringList("not a list"))
}

func TestObjectList(t *testing.T) {
	obj := ParseObject(`{"items":[{"name":"a"},"skip",{"name":"b"}]}`)
	items := ObjectList(obj["items"])
	assert.Len(t, items, 2)
	assert.Equal(t, "a", items[0]["name"])

	assert.Nil(t, ObjectList("nope"))
}

func TestModeFromText(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"I suggest the TRAIN for this route", "train"},
		{"a bus would be cheapest", "bus"},
		{"take a flight", "flight"},
		{"board a plane", "flight"},
		{"just drive there", "car"},
		{"no transport mentioned", "car"},
		// later keyword in the scan order wins
		{"skip the train, better to drive", "car"},
		{"not the bus, book a flight", "flight"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ModeFromText(tt.text), "text: %s", tt.text)
	}
}

func TestDistanceFromText(t *testing.T) {
	assert.Equal(t, 500.0, DistanceFromText("about 500 km by train", 250))
	assert.Equal(t, 120.0, DistanceFromText("roughly 120km", 250))
	assert.Equal(t, 250.0, DistanceFromText("no distance here", 250))
	// first integer before the first km marker wins
	assert.Equal(t, 120.0, DistanceFromText("between 120 and 300 km", 250))
}

func TestPlaceKeywordFromText(t *testing.T) {
	kw, ok := PlaceKeywordFromText("visit the old fort and the market")
	assert.True(t, ok)
	assert.Equal(t, "Fort", kw)

	_, ok = PlaceKeywordFromText("nothing notable")
	assert.False(t, ok)
}
