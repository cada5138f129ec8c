package envapi

import (
	"embed"
	"fmt"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
	schemadmt "github.com/ipld/go-ipld-prime/schema/dmt"
	schemadsl "github.com/ipld/go-ipld-prime/schema/dsl"
)

// TypeSystem describes the API data types and their representation strategies in IPLD Schema form.
// It is parsed from envapi.ipldsch, which is embedded into the binary at build time.

//go:embed envapi.ipldsch
var schFs embed.FS

var SchemaDMT, TypeSystem = func() (*schemadmt.Schema, *schema.TypeSystem) {
	r, err := schFs.Open("envapi.ipldsch")
	if err != nil {
		panic(fmt.Sprintf("failed to open embedded envapi.ipldsch: %s", err))
	}
	schemaDmt, err := schemadsl.Parse("envapi.ipldsch", r)
	if err != nil {
		panic(fmt.Sprintf("failed to parse api schema: %s", err))
	}
	ts := new(schema.TypeSystem)
	ts.Init()
	if err := schemadmt.Compile(ts, schemaDmt); err != nil {
		panic(fmt.Sprintf("failed to compile api schema: %s", err))
	}
	return schemaDmt, ts
}()

// Node returns the representation node of a value bound to the named schema type.
// The result can be handed to the CLI as a command result.
func Node(ptr interface{}, typeName string) datamodel.Node {
	return bindnode.Wrap(ptr, TypeSystem.TypeByName(typeName)).Representation()
}

// MarshalJSON serializes a value bound to the named schema type.
//
// Errors:
//
//   - envforge-error-serialization -- when the value does not fit the schema type
func MarshalJSON(ptr interface{}, typeName string) ([]byte, error) {
	data, err := ipld.Marshal(json.Encode, ptr, TypeSystem.TypeByName(typeName))
	if err != nil {
		return nil, ErrorSerialization(fmt.Sprintf("encoding %s", typeName), err)
	}
	return data, nil
}
