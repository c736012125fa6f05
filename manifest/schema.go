package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schemaSource constrains sol25.toml. Definitions are closed, so unknown
// tables and keys are rejected.
const schemaSource = `
#Manifest: {
	project?: {
		name?:    string
		version?: string
	}
	check?: {
		"strict-classes"?: bool
	}
	output?: {
		format?: "xml" | "cbor"
		indent?: int & >=0 & <=8
		dump?:   string
	}
	server?: {
		addr?: string
	}
}
`

// Validate checks decoded configuration data against the manifest schema.
func Validate(raw map[string]interface{}) error {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Manifest"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("manifest schema: %w", err)
	}

	v := schema.Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
