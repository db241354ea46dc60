package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordPayload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "complete record",
			body: `{"name":"cat","meaningKr":"고양이","example":"a cat","antonymEn":"dog","modifiedTime":"2024-01-01 00:00:00"}`,
		},
		{
			name: "empty text fields are allowed",
			body: `{"name":"cat","meaningKr":"","example":"","antonymEn":"","modifiedTime":"2024-01-01 00:00:00"}`,
		},
		{
			name:    "missing name",
			body:    `{"meaningKr":"x","example":"x","antonymEn":"x","modifiedTime":"2024-01-01 00:00:00"}`,
			wantErr: "name",
		},
		{
			name:    "missing meaningKr",
			body:    `{"name":"cat","example":"x","antonymEn":"x","modifiedTime":"2024-01-01 00:00:00"}`,
			wantErr: "meaningKr",
		},
		{
			name:    "null example",
			body:    `{"name":"cat","meaningKr":"x","example":null,"antonymEn":"x","modifiedTime":"2024-01-01 00:00:00"}`,
			wantErr: "example",
		},
		{
			name:    "missing antonymEn",
			body:    `{"name":"cat","meaningKr":"x","example":"x","modifiedTime":"2024-01-01 00:00:00"}`,
			wantErr: "antonymEn",
		},
		{
			name:    "missing modifiedTime",
			body:    `{"name":"cat","meaningKr":"x","example":"x","antonymEn":"x"}`,
			wantErr: "modifiedTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p WordPayload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))

			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWordPayload_Word_SetsSyncedTime(t *testing.T) {
	meaning, example, antonym := "고양이", "a cat sat", "dog"
	stale := "1999-01-01 00:00:00"
	p := WordPayload{
		Name:         "cat",
		MeaningKr:    &meaning,
		Example:      &example,
		AntonymEn:    &antonym,
		ModifiedTime: "2024-01-01 00:00:00",
		SyncedTime:   &stale,
		IsDeleted:    true,
	}

	w := p.Word()

	assert.Equal(t, "cat", w.Name)
	assert.Equal(t, "고양이", w.MeaningKr)
	assert.True(t, w.IsDeleted)
	require.NotNil(t, w.SyncedTime)
	assert.Equal(t, "2024-01-01 00:00:00", *w.SyncedTime)
}

func TestWord_JSONFieldNames(t *testing.T) {
	note := "n"
	data, err := json.Marshal(Word{Name: "cat", ModifiedTime: "t", Note: &note})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"name", "meaningKr", "example", "antonymEn", "tags", "createdTime", "modifiedTime", "isDeleted", "syncedTime", "note"} {
		assert.Contains(t, fields, key)
	}
	assert.Nil(t, fields["tags"])
}

func TestWord_PayloadRoundTrip(t *testing.T) {
	tags := "cs"
	w := Word{Name: "cache", MeaningKr: "캐시", Example: "hit the cache", AntonymEn: "", Tags: &tags, ModifiedTime: "2024-02-02 10:00:00"}

	back := w.Payload().Word()

	assert.Equal(t, w.Name, back.Name)
	assert.Equal(t, w.MeaningKr, back.MeaningKr)
	assert.Equal(t, w.Tags, back.Tags)
	require.NotNil(t, back.SyncedTime)
	assert.Equal(t, w.ModifiedTime, *back.SyncedTime)
}
