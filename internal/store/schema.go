package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	exercisesTable   = "exercises"
	llmRequestsTable = "llm_requests"
)

var (
	exerciseColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "slug", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	exercisesSchema = &schema.Table{
		Name:       exercisesTable,
		Columns:    exerciseColumns,
		PrimaryKey: []*schema.Column{exerciseColumns[0]},
		Indexes: []*schema.Index{
			{Name: "exercise_updated_at", Columns: []*schema.Column{exerciseColumns[5]}},
		},
	}

	llmRequestColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestsSchema = &schema.Table{
		Name:       llmRequestsTable,
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_timestamp", Columns: []*schema.Column{llmRequestColumns[2]}},
			{Name: "llmrequest_purpose", Columns: []*schema.Column{llmRequestColumns[5]}},
			{Name: "llmrequest_success", Columns: []*schema.Column{llmRequestColumns[9]}},
		},
	}

	tables = []*schema.Table{exercisesSchema, llmRequestsSchema}
)

// migrate creates or upgrades every table.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// builder returns a SQL builder for the store's dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}
