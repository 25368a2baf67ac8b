package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/model"
)

func TestParseFieldsPlainJSON(t *testing.T) {
	fields, err := ParseFields(`[{"name":"age","label":"Age","type":"number","required":true}]`)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "age", fields[0].Name)
	assert.Equal(t, model.FieldTypeNumber, fields[0].Type)
	assert.True(t, fields[0].Required)
}

func TestParseFieldsStripsCodeFence(t *testing.T) {
	content := "```json\n[{\"name\":\"smoker\",\"label\":\"Do you smoke?\",\"type\":\"boolean\"}]\n```"
	fields, err := ParseFields(content)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "smoker", fields[0].Name)
}

func TestParseFieldsNormalizesUnknownType(t *testing.T) {
	fields, err := ParseFields(`[{"name":"notes","label":"Notes","type":"textarea"}]`)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, model.FieldTypeText, fields[0].Type)
}

func TestParseFieldsRejectsGarbage(t *testing.T) {
	_, err := ParseFields("not json at all")
	assert.Error(t, err)
}
