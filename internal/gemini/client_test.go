package gemini

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestDecodeResponse(t *testing.T) {
	raw := `{"name":"cache","meaningKr":["캐시"],"example":["hit the cache"],"antonymEn":[""],"tags":["cs"]}`

	got, err := DecodeResponse("  " + raw + "\n")

	require.NoError(t, err)
	assert.JSONEq(t, raw, string(got))
}

func TestDecodeResponse_Errors(t *testing.T) {
	_, err := DecodeResponse("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = DecodeResponse("not json")
	assert.ErrorContains(t, err, "decode gemini response")

	_, err = DecodeResponse(`["an","array"]`)
	assert.Error(t, err, "only a JSON object is accepted")
}

func TestEntry_Aligned(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"name":"port","meaningKr":["포트","항구"],"example":["open port 22","a busy port"],"antonymEn":["",""]}`), &e))
	assert.True(t, e.Aligned())

	e.Example = e.Example[:1]
	assert.False(t, e.Aligned())
}

func TestResponseSchema(t *testing.T) {
	s := ResponseSchema()

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"name", "meaningKr", "example", "antonymEn", "tags"}, s.Required)
	for _, field := range []string{"meaningKr", "example", "antonymEn", "tags"} {
		require.Contains(t, s.Properties, field)
		assert.Equal(t, genai.TypeArray, s.Properties[field].Type)
		assert.Equal(t, genai.TypeString, s.Properties[field].Items.Type)
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "gemini-3-flash-preview")

	assert.Error(t, err)
}
