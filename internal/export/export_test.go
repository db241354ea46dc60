package export

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordsync/api/internal/model"
)

func ptr(s string) *string { return &s }

func sampleWords() []model.Word {
	return []model.Word{
		{
			Name:         "firewall",
			MeaningKr:    "방화벽",
			Example:      "The firewall blocked the port.",
			Tags:         ptr("network,security"),
			CreatedTime:  ptr("2024-01-01 09:00:00"),
			ModifiedTime: "2024-01-02 10:00:00",
			SyncedTime:   ptr("2024-01-02 10:00:00"),
		},
		{
			Name:         "phishing",
			MeaningKr:    "피싱",
			Example:      "A phishing mail arrived.",
			ModifiedTime: "2024-01-03 11:00:00",
			IsDeleted:    true,
			SyncedTime:   ptr("2024-01-03 11:00:00"),
			Note:         ptr("old entry"),
		},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRender_Golden(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"words_json", FormatJSON},
		{"words_csv", FormatCSV},
		{"words_md", FormatMarkdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tt.format, sampleWords()))
			newGoldie(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestRender_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Render(&buf, FormatJSON, nil))

	assert.Equal(t, "[]\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Download(t *testing.T) {
	assert.Equal(t, "words.csv", FormatCSV.Filename())
	assert.Equal(t, "text/markdown; charset=utf-8", FormatMarkdown.ContentType())
	assert.Equal(t, "application/json; charset=utf-8", FormatJSON.ContentType())
}
