package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ephyslab/synapdb/internal/entity"
	"github.com/ephyslab/synapdb/internal/model"
)

// scanRecord decodes the current row into a record, running every column
// through its registry decode transform. Null columns stay unset.
func scanRecord(e *model.Entity, rows *sql.Rows) (*entity.Record, error) {
	raw := make([]any, len(e.Fields))
	ptrs := make([]any, len(e.Fields))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	r := entity.New(e)
	for i := range e.Fields {
		f := &e.Fields[i]
		v, err := f.Type.DecodeValue(raw[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		switch f.Name {
		case "id":
			n, ok := v.(int64)
			if !ok {
				return nil, fmt.Errorf("column id: unexpected value %T", v)
			}
			r.ID = n
		case "time_created":
			if t, ok := v.(time.Time); ok {
				r.TimeCreated = t
			}
		case "time_modified":
			if t, ok := v.(time.Time); ok {
				r.TimeModified = t
			}
		case "meta":
			if m, ok := v.(map[string]any); ok {
				r.Meta = m
			}
		default:
			r.LoadValue(f.Name, v)
		}
	}
	return r, nil
}
