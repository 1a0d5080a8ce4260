package findings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFinding(id, severity, status string) Finding {
	f := New(id, "gen", "123456789012", "aws", "us-east-1", time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC))
	f.Title = "[Lambda.2] Lambda functions should use active tracing with AWS X-Ray"
	f.Severity = Severity{Label: severity}
	f.Compliance = Compliance{Status: status}
	if status == "FAILED" {
		f.Workflow = Workflow{Status: "NEW"}
		f.RecordState = "ACTIVE"
	} else {
		f.Workflow = Workflow{Status: "RESOLVED"}
		f.RecordState = "ARCHIVED"
	}
	return f
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "findings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, []Finding{
		testFinding("f1", "LOW", "FAILED"),
		testFinding("f2", "MEDIUM", "PASSED"),
	})
	require.NoError(t, err)

	all, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := store.List(ctx, Filter{ComplianceStatus: "FAILED"})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "f1", failed[0].Id)
	assert.Equal(t, "ACTIVE", failed[0].RecordState)

	medium, err := store.List(ctx, Filter{Severity: "MEDIUM"})
	require.NoError(t, err)
	require.Len(t, medium, 1)
	assert.Equal(t, "f2", medium[0].Id)
}

func TestStore_UpsertKeepsOneRowPerID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []Finding{testFinding("f1", "LOW", "FAILED")}))
	// Same finding ID flips to passing on the next run.
	require.NoError(t, store.Save(ctx, []Finding{testFinding("f1", "LOW", "PASSED")}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "PASSED", all[0].Compliance.Status)
}

func TestOpenStore_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "findings.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
