package pipeline

import (
	"errors"

	"github.com/sells-group/sales-analyzer/internal/ingest"
	"github.com/sells-group/sales-analyzer/internal/model"
	"github.com/sells-group/sales-analyzer/internal/normalize"
)

// Classify maps a pipeline error to the kind recorded in the run log.
func Classify(err error) model.ErrorKind {
	var schemaErr *normalize.SchemaError
	var parseErr *ingest.ParseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ingest.ErrTooLarge):
		return model.ErrorKindTooLarge
	case errors.As(err, &schemaErr):
		return model.ErrorKindSchema
	case errors.As(err, &parseErr):
		return model.ErrorKindParse
	default:
		return model.ErrorKindOther
	}
}
