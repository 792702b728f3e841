// Package manifest validates manifest documents before a writer stores
// them under the archive's well-known manifest path.
package manifest

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	jsoniter "github.com/json-iterator/go"
)

//go:embed schema.cue
var schemaCUE string

// Validate checks that data is a JSON object satisfying the manifest
// schema. The schema is open: unknown fields pass, known fields must
// have the right type.
func Validate(data []byte) error {
	if !jsoniter.ConfigFastest.Valid(data) {
		return fmt.Errorf("manifest is not valid JSON")
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Manifest"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}

	// JSON is a subset of CUE, so the document compiles directly.
	doc := ctx.CompileBytes(data)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("manifest does not match schema: %w", err)
	}
	return nil
}
