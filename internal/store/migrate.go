package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableSessionResults = "session_results"
	tableLLMRequests    = "llm_request_events"
	tableRewards        = "reward_events"
	tableSequence       = "global_sequence"
)

// eventColumns are shared by every event table: an auto-increment id, the
// global sequence number and the UTC wall-clock time of the event.
func eventColumns() []*schema.Column {
	return []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
}

func eventTable(name string, columns ...*schema.Column) *schema.Table {
	cols := append(eventColumns(), columns...)
	return &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: name + "_timestamp", Columns: []*schema.Column{cols[2]}},
		},
	}
}

func withIndex(t *schema.Table, column string, unique bool) *schema.Table {
	for _, c := range t.Columns {
		if c.Name == column {
			t.Indexes = append(t.Indexes, &schema.Index{
				Name:    t.Name + "_" + column,
				Unique:  unique,
				Columns: []*schema.Column{c},
			})
			return t
		}
	}
	panic(fmt.Sprintf("store: table %s has no column %s", t.Name, column))
}

func str(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Default: ""}
}

func integer(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt, Default: 0}
}

var (
	sessionResultsTable = withIndex(withIndex(eventTable(tableSessionResults,
		str("session_id"),
		str("mode"),
		str("subject"),
		str("topic"),
		integer("points_earned"),
		integer("score"),
		integer("opponent_score"),
		integer("questions_attempted"),
		integer("questions_correct"),
		integer("questions_wrong"),
		integer("questions_skipped"),
		&schema.Column{Name: "accuracy", Type: field.TypeFloat64, Default: 0},
		str("outcome"),
		&schema.Column{Name: "duration_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "expired", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "subscribed", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "completed_at", Type: field.TypeTime},
	), "session_id", true), "mode", false)

	llmRequestsTable = withIndex(withIndex(eventTable(tableLLMRequests,
		str("provider"),
		str("model"),
		str("purpose"),
		integer("input_tokens"),
		integer("output_tokens"),
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		str("error_message"),
	), "provider", false), "purpose", false)

	rewardsTable = withIndex(withIndex(eventTable(tableRewards,
		str("session_id"),
		str("kind"),
		str("badge"),
		str("rarity"),
		integer("amount"),
		str("reason"),
	), "session_id", false), "kind", false)

	sequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	sequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    sequenceColumns,
		PrimaryKey: []*schema.Column{sequenceColumns[0]},
	}

	tables = []*schema.Table{
		sessionResultsTable,
		llmRequestsTable,
		rewardsTable,
		sequenceTable,
	}
)

// migrate brings the database schema up to date with tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}
