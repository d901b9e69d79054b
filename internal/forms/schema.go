package forms

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed form.schema.json
var formSchemaSource []byte

var (
	formSchemaOnce sync.Once
	formSchema     *jsonschema.Schema
	formSchemaErr  error
)

// SchemaIssue is a single form definition violation.
type SchemaIssue struct {
	Location string
	Message  string
}

// SchemaError lists every violation found in a form definition.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func compiledFormSchema() (*jsonschema.Schema, error) {
	formSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("form.schema.json", bytes.NewReader(formSchemaSource)); err != nil {
			formSchemaErr = err
			return
		}
		formSchema, formSchemaErr = compiler.Compile("form.schema.json")
	})
	return formSchema, formSchemaErr
}

// ValidateDefinition checks raw form.json bytes against the form schema.
func ValidateDefinition(data []byte) error {
	schema, err := compiledFormSchema()
	if err != nil {
		return fmt.Errorf("forms: compile schema: %w", err)
	}
	var document any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return err
	}
	if err := schema.Validate(document); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &SchemaError{Issues: collectIssues(validationErr)}
		}
		return err
	}
	return nil
}

func collectIssues(err *jsonschema.ValidationError) []SchemaIssue {
	issues := []SchemaIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, SchemaIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
