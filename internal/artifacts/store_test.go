// File: internal/artifacts/store_test.go
package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

func newTestStore(t *testing.T, export bool) *Store {
	t.Helper()
	base := t.TempDir()
	cfg := config.RunConfig{
		OutputDir:     filepath.Join(base, "out"),
		DatasetDir:    filepath.Join(base, "dataset"),
		ExportDataset: export,
	}
	s, err := NewStore(cfg, "Create a new issue titled Crash!", zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"Create a new issue", "create_a_new_issue"},
		{"  !!weird---name??  ", "weird_name"},
		{"UPPER case", "upper_case"},
		{"", "run"},
		{"!!!", "run"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), "input: %q", tc.in)
	}

	long := SanitizeFilename("this is a very long goal description that keeps going and going")
	assert.LessOrEqual(t, len(long), 40)
}

func TestNewStoreCreatesDirectories(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, true)

	info, err := os.Stat(s.RunDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NotEmpty(t, s.RunID())

	info, err = os.Stat(s.datasetDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Contains(t, filepath.Base(s.datasetDir), "create_a_new_issue")
}

func TestStoreWritesStepArtifacts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, false)

	s.BeginStep(3)
	s.RecordJSON("plan.json", map[string]string{"instruction": "click save"})
	s.RecordScreenshot("raw.png", []byte{0x89, 0x50})
	s.RecordNote("attempting save")

	stepDir := filepath.Join(s.RunDir(), "steps", "step_03")
	data, err := os.ReadFile(filepath.Join(stepDir, "plan.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "click save")

	_, err = os.Stat(filepath.Join(stepDir, "raw.png"))
	assert.NoError(t, err)

	note, err := os.ReadFile(filepath.Join(stepDir, "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "attempting save", string(note))
}

func TestStoreMirrorsIntoDataset(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, true)

	s.BeginStep(1)
	s.RecordNote("step one")
	s.WriteMeta(map[string]string{"goal": "create issue"})

	_, err := os.Stat(filepath.Join(s.datasetDir, "steps", "step_01", "note.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.datasetDir, "meta.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.RunDir(), "meta.json"))
	assert.NoError(t, err)
}

func TestStoreRecordRanking(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, false)

	s.BeginStep(1)
	all := []schemas.ScoredElement{
		{ElementRecord: schemas.ElementRecord{ID: "1", Role: schemas.RoleButton, Name: "Save"}, Score: 5, Selected: true},
	}
	s.RecordRanking(all, all)

	stepDir := filepath.Join(s.RunDir(), "steps", "step_01")
	for _, name := range []string{"elements_scored.json", "candidates.json"} {
		data, err := os.ReadFile(filepath.Join(stepDir, name))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Save"`)
	}
}
