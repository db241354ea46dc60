// Package export renders the word snapshot as a downloadable document.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wordsync/api/internal/model"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

var ErrUnknownFormat = errors.New("invalid format, use json, csv, or md")

// ParseFormat accepts "json", "csv", "md" and "markdown", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// Filename is the attachment name used for downloads.
func (f Format) Filename() string {
	return "words." + string(f)
}

// Render writes words to w in the given format.
func Render(w io.Writer, f Format, words []model.Word) error {
	switch f {
	case FormatJSON:
		return renderJSON(w, words)
	case FormatCSV:
		return renderCSV(w, words)
	case FormatMarkdown:
		return renderMarkdown(w, words)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func renderJSON(w io.Writer, words []model.Word) error {
	if words == nil {
		words = []model.Word{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(words)
}

var csvHeader = []string{
	"name", "meaningKr", "example", "antonymEn", "tags",
	"createdTime", "modifiedTime", "isDeleted", "syncedTime", "note",
}

func renderCSV(w io.Writer, words []model.Word) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, word := range words {
		err := writer.Write([]string{
			word.Name,
			word.MeaningKr,
			word.Example,
			word.AntonymEn,
			deref(word.Tags),
			deref(word.CreatedTime),
			word.ModifiedTime,
			strconv.FormatBool(word.IsDeleted),
			deref(word.SyncedTime),
			deref(word.Note),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func renderMarkdown(w io.Writer, words []model.Word) error {
	var buf bytes.Buffer

	buf.WriteString("# Vocabulary\n\n")
	fmt.Fprintf(&buf, "**Total:** %d words\n\n", len(words))

	for _, word := range words {
		title := word.Name
		if word.IsDeleted {
			title += " (deleted)"
		}
		fmt.Fprintf(&buf, "## %s\n\n", title)

		writeField(&buf, "Meaning", word.MeaningKr)
		writeField(&buf, "Example", word.Example)
		writeField(&buf, "Antonym", word.AntonymEn)
		writeField(&buf, "Tags", deref(word.Tags))
		writeField(&buf, "Note", deref(word.Note))
		writeField(&buf, "Modified", word.ModifiedTime)

		buf.WriteString("---\n\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func writeField(buf *bytes.Buffer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "**%s:** %s\n\n", label, value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
