package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordsync/api/internal/export"
	"github.com/wordsync/api/internal/model"
	"github.com/wordsync/api/internal/reconcile"
	"github.com/wordsync/api/internal/store"
	"gopkg.in/yaml.v3"
)

type harness struct {
	store       *store.MemoryStore
	invalidated int
	openErr     error
	stdout      bytes.Buffer
	stderr      bytes.Buffer
}

func newHarness() *harness {
	return &harness{store: store.NewMemoryStore(nil)}
}

func (h *harness) open(context.Context) (*Env, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	return &Env{
		Engine: reconcile.New(h.store),
		Invalidate: func(context.Context) error {
			h.invalidated++
			return nil
		},
		Close: func() error { return nil },
	}, nil
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	cmd := NewRootCommand(h.open)
	cmd.SetArgs(args)
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)
	cmd.SetIn(strings.NewReader(""))
	return cmd.Execute()
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func ptr(s string) *string { return &s }

func payload(name, modified, meaning string) model.WordPayload {
	return model.WordPayload{
		Name:         name,
		MeaningKr:    ptr(meaning),
		Example:      ptr(""),
		AntonymEn:    ptr(""),
		ModifiedTime: modified,
	}
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(newHarness().open)

	for _, name := range []string{"import", "audit", "export"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestImport(t *testing.T) {
	h := newHarness()
	path := writeJSON(t, []model.WordPayload{
		payload("alpha", "2024-01-01 00:00:00", "첫째"),
		payload("beta", "2024-01-02 00:00:00", "둘째"),
		payload("gamma", "2024-01-03 00:00:00", "셋째"),
	})

	require.NoError(t, h.run("import", "--batch", "2", path))

	assert.Contains(t, h.stdout.String(), "imported 3 records: 3 applied, 0 discarded")
	assert.Equal(t, 1, h.invalidated)
	all, err := h.store.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImport_IsIdempotent(t *testing.T) {
	h := newHarness()
	path := writeJSON(t, []model.WordPayload{payload("alpha", "2024-01-01 00:00:00", "첫째")})

	require.NoError(t, h.run("import", path))
	require.NoError(t, h.run("import", path))

	assert.Contains(t, h.stdout.String(), "0 applied, 1 discarded")
	assert.Equal(t, 1, h.invalidated, "a discard-only import leaves the cache alone")
}

func TestImport_ValidatesWholeFileFirst(t *testing.T) {
	h := newHarness()
	broken := model.WordPayload{Name: "broken", ModifiedTime: "2024-01-01 00:00:00"}
	path := writeJSON(t, []model.WordPayload{
		payload("alpha", "2024-01-01 00:00:00", "첫째"),
		payload("beta", "2024-01-02 00:00:00", "둘째"),
		broken,
	})

	err := h.run("import", "--batch", "1", path)

	var verr *reconcile.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Index)
	all, err := h.store.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImport_BadInput(t *testing.T) {
	h := newHarness()
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":`), 0o644))

	assert.ErrorContains(t, h.run("import", path), "parse")
	assert.ErrorContains(t, h.run("import", "--batch", "0", path), "batch size")
	assert.ErrorContains(t, h.run("import", filepath.Join(t.TempDir(), "missing.json")), "read")
}

func TestImport_OpenError(t *testing.T) {
	h := newHarness()
	h.openErr = errors.New("connection refused")
	path := writeJSON(t, []model.WordPayload{})

	assert.ErrorContains(t, h.run("import", path), "connection refused")
}

func seed(t *testing.T, h *harness, words ...model.Word) {
	t.Helper()
	for i := range words {
		_, err := h.store.Upsert(context.Background(), &words[i])
		require.NoError(t, err)
	}
}

func TestAudit(t *testing.T) {
	words := []model.Word{
		{Name: "clean", MeaningKr: "깨끗함", ModifiedTime: "2024-01-02 00:00:00", CreatedTime: ptr("2024-01-01 00:00:00")},
		{Name: "empty", MeaningKr: " ", ModifiedTime: "2024-01-02 00:00:00"},
		{Name: "gone", MeaningKr: "", ModifiedTime: "2024-01-02 00:00:00", IsDeleted: true},
		{Name: "iso", MeaningKr: "뜻", ModifiedTime: "2024-01-02T00:00:00Z"},
		{Name: "future", MeaningKr: "뜻", ModifiedTime: "2024-01-02 00:00:00", CreatedTime: ptr("2024-02-01 00:00:00")},
		{Name: " padded", MeaningKr: "뜻", ModifiedTime: "2024-01-02 00:00:00"},
	}
	for i := range words {
		words[i].SyncedTime = ptr(words[i].ModifiedTime)
	}
	words = append(words, model.Word{Name: "unsynced", MeaningKr: "뜻", ModifiedTime: "2024-01-02 00:00:00"})

	report := Audit(words, "2006-01-02 15:04:05")

	assert.Equal(t, 7, report.Total)
	assert.Equal(t, []Issue{
		{Word: " padded", Type: IssueUntrimmedName, Details: `name " padded"`},
		{Word: "empty", Type: IssueEmptyMeaning, Details: "meaningKr is empty"},
		{Word: "future", Type: IssueCreatedAfterModified, Details: "createdTime 2024-02-01 00:00:00 > modifiedTime 2024-01-02 00:00:00"},
		{Word: "iso", Type: IssueUnsortableTime, Details: `modifiedTime "2024-01-02T00:00:00Z" does not match "2006-01-02 15:04:05"`},
		{Word: "unsynced", Type: IssueSyncedBehind, Details: "syncedTime is null"},
	}, report.Issues)
	assert.Equal(t, 1, report.Counts[IssueEmptyMeaning])
}

func TestAuditCommand_YAML(t *testing.T) {
	h := newHarness()
	seed(t, h, model.Word{Name: "empty", ModifiedTime: "2024-01-02 00:00:00"})

	require.NoError(t, h.run("audit", "--format", "yaml"))

	var report AuditReport
	require.NoError(t, yaml.Unmarshal(h.stdout.Bytes(), &report))
	assert.Equal(t, 1, report.Total)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueEmptyMeaning, report.Issues[0].Type)
}

func TestAuditCommand_JSONClean(t *testing.T) {
	h := newHarness()
	seed(t, h, model.Word{Name: "ok", MeaningKr: "좋음", ModifiedTime: "2024-01-02 00:00:00"})

	require.NoError(t, h.run("audit", "--format", "json", "--strict"))

	var report AuditReport
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &report))
	assert.Empty(t, report.Issues)
}

func TestAuditCommand_Strict(t *testing.T) {
	h := newHarness()
	seed(t, h, model.Word{Name: "empty", ModifiedTime: "2024-01-02 00:00:00"})

	err := h.run("audit", "--strict")

	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, h.stdout.String(), "empty_meaning")
}

func TestAuditCommand_InvalidFormat(t *testing.T) {
	h := newHarness()

	assert.ErrorContains(t, h.run("audit", "--format", "xml"), "invalid format")
}

func TestExportCommand(t *testing.T) {
	h := newHarness()
	seed(t, h, model.Word{Name: "alpha", MeaningKr: "첫째", ModifiedTime: "2024-01-02 00:00:00"})

	require.NoError(t, h.run("export", "--format", "md"))
	assert.Contains(t, h.stdout.String(), "## alpha")

	out := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, h.run("export", "--format", "csv", "-o", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "alpha,첫째")
	assert.Empty(t, h.stdout.String())
}

func TestExportCommand_RoundTripsThroughImport(t *testing.T) {
	src := newHarness()
	seed(t, src, model.Word{Name: "alpha", MeaningKr: "첫째", ModifiedTime: "2024-01-02 00:00:00", Note: ptr("memo")})
	out := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, src.run("export", "-o", out))

	dst := newHarness()
	require.NoError(t, dst.run("import", out))

	all, err := dst.store.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "memo", *all[0].Note)
}

func TestExportCommand_InvalidFormat(t *testing.T) {
	h := newHarness()

	assert.ErrorIs(t, h.run("export", "--format", "pdf"), export.ErrUnknownFormat)
}
