// Package validator enforces the data contracts between the extractor,
// the policy engine and the report writer using embedded CUE schemas.
//
// Validation failures are loud on purpose. If extracted facts drift
// from the schema the policy engine would silently receive undefined
// fields and rules would stop firing; a hard error at the boundary is
// the only way to notice. When validation fails, fix the extractor or
// the schema, never the symptom.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed module_schema.cue
var moduleSchemaFS embed.FS

//go:embed report_schema.cue
var reportSchemaFS embed.FS

// FactsValidator validates extracted module facts against the facts
// schema before they are handed to the policy engine.
type FactsValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewFactsValidator creates a validator with the embedded facts schema
func NewFactsValidator() (*FactsValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := moduleSchemaFS.ReadFile("module_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded facts schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling facts schema: %w", schema.Err())
	}

	return &FactsValidator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks that the module facts conform to the facts schema.
// Returns nil if valid, or a detailed error explaining what failed.
func (v *FactsValidator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling facts to JSON: %w", err)
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling facts as CUE: %w", dataValue.Err())
	}

	factsDef := v.schema.LookupPath(cue.ParsePath("#Facts"))
	if factsDef.Err() != nil {
		return fmt.Errorf("looking up #Facts definition: %w", factsDef.Err())
	}

	unified := factsDef.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("facts schema validation failed: %w", err)
	}

	return nil
}

// ValidationErrors returns detailed information about all validation errors
func (v *FactsValidator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	factsDef := v.schema.LookupPath(cue.ParsePath("#Facts"))
	if factsDef.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", factsDef.Err())}
	}

	unified := factsDef.Unify(dataValue)
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// ReportValidator validates the final analysis report against the
// report schema before it is written out.
type ReportValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewReportValidator creates a validator with the embedded report schema
func NewReportValidator() (*ReportValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := reportSchemaFS.ReadFile("report_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded report schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling report schema: %w", schema.Err())
	}

	return &ReportValidator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks that the report conforms to the report schema
func (v *ReportValidator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling report to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates report JSON bytes directly against the schema
func (v *ReportValidator) ValidateJSON(jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling JSON as CUE: %w", dataValue.Err())
	}

	reportDef := v.schema.LookupPath(cue.ParsePath("#Report"))
	if reportDef.Err() != nil {
		return fmt.Errorf("looking up #Report definition: %w", reportDef.Err())
	}

	unified := reportDef.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("report schema validation failed: %w", err)
	}

	return nil
}
