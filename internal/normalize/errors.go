package normalize

import (
	"fmt"
	"strings"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// SchemaError reports that no input column could be mapped to a required field.
type SchemaError struct {
	Missing []model.Field
	Columns []string
}

func (e *SchemaError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		missing[i] = fmt.Sprintf("'%s'", f)
	}
	msg := fmt.Sprintf("file must contain %s column", strings.Join(missing, " and "))
	if len(e.Columns) > 0 {
		msg += fmt.Sprintf(" (found: %s)", strings.Join(e.Columns, ", "))
	}
	return msg
}

// requiredFields must resolve for a table to be normalized.
var requiredFields = []model.Field{model.FieldDate, model.FieldProductName}

func checkRequired(m Mapping) error {
	var missing []model.Field
	for _, f := range requiredFields {
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &SchemaError{Missing: missing, Columns: m.Columns}
}
