package audit

import (
	"context"

	"github.com/weiawesome/openjob/pkg/log"
)

// Audit actions for operational endpoints.
const (
	ActionBulkCreate     = "index.bulk_create"
	ActionApplyConfig    = "index.apply_config"
	ActionDeleteIndex    = "index.delete"
	ActionRebuildIndex   = "index.rebuild"
	ActionSeedJobs       = "job.seed"
	ActionInitCategories = "job.init_categories"
	ActionUpdateSchedule = "schedule.update"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldTable  = "table"
	FieldJobs   = "jobs"
)

// Tables written by the job store actions.
const (
	TableJobs       = "jobs"
	TableCategories = "categories"
)

// writes are the actions that report how many documents or rows they wrote.
// A zero count is still logged for them.
var writes = map[string]bool{
	ActionBulkCreate:     true,
	ActionRebuildIndex:   true,
	ActionSeedJobs:       true,
	ActionInitCategories: true,
}

// Entry is one operational change to the search index or the job store.
type Entry struct {
	Action  string
	Subject string
	// Index is the alias or physical index the action touched.
	Index string
	// Table is the job store table the action wrote to.
	Table string
	Count int64
	// Jobs are the periodic jobs left registered by a schedule update.
	Jobs []string
}

// Record emits e as a structured audit log entry via the context logger.
func Record(ctx context.Context, e Entry, msg string) {
	l := log.Ctx(ctx)
	evt := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, e.Action).
		Str(log.FieldSubject, e.Subject)
	if e.Index != "" {
		evt = evt.Str(log.FieldIndex, e.Index)
	}
	if e.Table != "" {
		evt = evt.Str(FieldTable, e.Table)
	}
	if writes[e.Action] {
		evt = evt.Int64(log.FieldCount, e.Count)
	}
	if e.Jobs != nil {
		evt = evt.Strs(FieldJobs, e.Jobs)
	}
	evt.Msg(msg)
}
