package memory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is returned when a memory document does not have the
// expected shape.
var ErrInvalidDocument = errors.New("invalid memory document")

const documentSchema = `{
  "type": "object",
  "properties": {
    "conversations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "timestamp": {"type": "string"},
          "user": {"type": "string"},
          "assistant": {"type": "string"},
          "metadata": {"type": ["object", "null"]}
        }
      }
    },
    "context": {"type": ["object", "null"]},
    "metadata": {"type": ["object", "null"]}
  }
}`

const importSchema = `{
  "allOf": [
    ` + documentSchema + `,
    {"required": ["conversations"]}
  ]
}`

var (
	storedDocument   = mustCompile(documentSchema)
	importedDocument = mustCompile(importSchema)
)

func mustCompile(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("memory: bad document schema: %v", err))
	}
	return schema
}

func validateDocument(data []byte, requireConversations bool) error {
	schema := storedDocument
	if requireConversations {
		schema = importedDocument
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		// The document is not JSON at all.
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, dumpErrors(errs))
}

func dumpErrors(errs []string) string {
	truncated := ""
	if len(errs) > 3 {
		truncated = fmt.Sprintf(" ... and %d more", len(errs)-3)
		errs = errs[:3]
	}
	return strings.Join(errs, "; ") + truncated
}
