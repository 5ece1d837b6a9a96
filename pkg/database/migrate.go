package database

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/internal/schema"
)

type entity struct {
	table  string
	schema ent.Interface
}

// entities lists every persisted schema with its table name.
var entities = []entity{
	{repo.TableRegions, schema.Region{}},
	{repo.TableClinics, schema.Clinic{}},
	{repo.TableServices, schema.Service{}},
	{repo.TablePatients, schema.Patient{}},
	{repo.TableVisits, schema.Visit{}},
	{repo.TableRegistrationErrs, schema.VisitRegistrationError{}},
	{repo.TableRegistrationLogs, schema.VisitRegistrationErrorLog{}},
	{repo.TableSurveys, schema.Survey{}},
	{repo.TableQuestions, schema.SurveyQuestion{}},
	{repo.TableResponses, schema.SurveyQuestionResponse{}},
	{repo.TableFeedback, schema.GenericFeedback{}},
}

// Tables builds the migration tables from the ent schema descriptors.
// Edges that carry a field become foreign keys on the owning table.
func Tables() ([]*entschema.Table, error) {
	tables := make([]*entschema.Table, 0, len(entities))
	byType := make(map[string]*entschema.Table, len(entities))

	for _, e := range entities {
		t, err := buildTable(e)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		byType[reflect.TypeOf(e.schema).Name()] = t
	}

	for i, e := range entities {
		t := tables[i]
		for _, ed := range e.schema.Edges() {
			d := ed.Descriptor()
			if d.Field == "" {
				continue
			}
			ref, ok := byType[d.Type]
			if !ok {
				return nil, fmt.Errorf("table %s: edge %q references unknown type %s", t.Name, d.Name, d.Type)
			}
			col, ok := t.Column(d.Field)
			if !ok {
				return nil, fmt.Errorf("table %s: edge %q field %s is not a column", t.Name, d.Name, d.Field)
			}
			onDelete := entschema.SetNull
			if !col.Nullable {
				onDelete = entschema.NoAction
			}
			t.AddForeignKey(&entschema.ForeignKey{
				Symbol:     fmt.Sprintf("%s_%s_%s", t.Name, ref.Name, d.Field),
				Columns:    []*entschema.Column{col},
				RefTable:   ref,
				RefColumns: ref.PrimaryKey,
				OnDelete:   onDelete,
			})
		}
	}

	return tables, nil
}

func buildTable(e entity) (*entschema.Table, error) {
	t := entschema.NewTable(e.table)

	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range e.schema.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, e.schema.Fields()...)
	indexes = append(indexes, e.schema.Indexes()...)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("table %s: field %s: %w", e.table, d.Name, d.Err)
		}
		col := &entschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
			Comment:  d.Comment,
		}
		for _, en := range d.Enums {
			col.Enums = append(col.Enums, en.V)
		}
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			col.Default = d.Default
		}
		if d.Name == "id" {
			t.AddPrimary(col)
			continue
		}
		if d.Info.Type == field.TypeJSON {
			col.Nullable = true
		}
		t.AddColumn(col)
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		name := e.table + "_" + strings.Join(d.Fields, "_")
		if d.StorageKey != "" {
			name = d.StorageKey
		}
		t.AddIndex(name, d.Unique, d.Fields)
	}

	return t, nil
}

// Migrate creates or updates the application tables. Columns and indexes
// are never dropped.
func Migrate(ctx context.Context, client *repo.Client) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := entschema.NewMigrate(client.Driver(), entschema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("running migration: %w", err)
	}
	return nil
}
