package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSONResponse("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSONResponse("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSONResponse(`  {"a":1}  `))
}

func TestParseObjectivesResponse(t *testing.T) {
	raw := "```json\n[{\"text\": \"Trình bày được khái niệm X\", \"confidence\": 0.9}, {\"text\": \"  \", \"confidence\": 0.5}, {\"text\": \"Giải thích được cơ chế Y\", \"confidence\": 0.8}]\n```"

	objs, err := ParseObjectivesResponse(raw)
	require.NoError(t, err)
	// Phần tử text rỗng bị bỏ
	require.Len(t, objs, 2)
	assert.Equal(t, "Trình bày được khái niệm X", objs[0].Text)
	assert.InDelta(t, 0.9, objs[0].Confidence, 1e-9)
}

func TestParseObjectivesResponseErrors(t *testing.T) {
	_, err := ParseObjectivesResponse("không phải json")
	assert.Error(t, err)

	// Toàn phần tử rỗng cũng là lỗi
	_, err = ParseObjectivesResponse(`[{"text": "", "confidence": 0.9}]`)
	assert.Error(t, err)
}

func TestParseQuestionResponse(t *testing.T) {
	raw := "```json\n{\"question\": \"Khái niệm X là gì?\", \"content\": {\"options\": [{\"text\": \"A\", \"is_correct\": true}]}, \"correct_answer\": \"A\", \"explanation\": \"Vì A đúng\", \"confidence\": 0.85}\n```"

	q, err := ParseQuestionResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Khái niệm X là gì?", q.Question)
	assert.Equal(t, "A", q.CorrectAnswer)
	assert.JSONEq(t, `{"options": [{"text": "A", "is_correct": true}]}`, string(q.Content))
}

func TestParseQuestionResponseEmpty(t *testing.T) {
	_, err := ParseQuestionResponse(`{"question": "", "confidence": 0.9}`)
	assert.Error(t, err)

	_, err = ParseQuestionResponse("abc")
	assert.Error(t, err)
}

func TestParseClassifyResponse(t *testing.T) {
	labels, err := ParseClassifyResponse("```json\n[\"Trình bày được X\", \"\", \"Giải thích được Y\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"Trình bày được X", "Giải thích được Y"}, labels)

	_, err = ParseClassifyResponse("{}")
	assert.Error(t, err)
}
