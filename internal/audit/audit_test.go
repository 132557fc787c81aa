package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/openjob/pkg/log"
)

func record(t *testing.T, e Entry, msg string) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(log.Config{Level: "info", Output: &buf}))

	Record(ctx, e, msg)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestRecord_Rebuild(t *testing.T) {
	entry := record(t, Entry{Action: ActionRebuildIndex, Subject: "ops", Index: "openjob_v1_1700000000000", Count: 42}, "index rebuilt")

	assert.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	assert.Equal(t, ActionRebuildIndex, entry[FieldAction])
	assert.Equal(t, "ops", entry[log.FieldSubject])
	assert.Equal(t, "openjob_v1_1700000000000", entry[log.FieldIndex])
	assert.EqualValues(t, 42, entry[log.FieldCount])
	assert.Equal(t, "index rebuilt", entry["message"])
	assert.NotContains(t, entry, FieldTable)
	assert.NotContains(t, entry, FieldJobs)
}

func TestRecord_ZeroRowsSeeded(t *testing.T) {
	entry := record(t, Entry{Action: ActionInitCategories, Subject: "ops", Table: TableCategories}, "categories initialised")

	assert.Equal(t, TableCategories, entry[FieldTable])
	assert.EqualValues(t, 0, entry[log.FieldCount])
	assert.NotContains(t, entry, log.FieldIndex)
}

func TestRecord_ConfigHasNoCount(t *testing.T) {
	entry := record(t, Entry{Action: ActionApplyConfig, Subject: "ops", Index: "openjob"}, "index config applied")

	assert.Equal(t, "openjob", entry[log.FieldIndex])
	assert.NotContains(t, entry, log.FieldCount)
}

func TestRecord_ScheduleUpdate(t *testing.T) {
	entry := record(t, Entry{Action: ActionUpdateSchedule, Subject: "ops", Jobs: []string{"category-init", "index-sync"}}, "scheduled jobs updated")

	assert.Equal(t, []interface{}{"category-init", "index-sync"}, entry[FieldJobs])
}
