package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used by envforge
const (
	AttrKeyEnvforgeErrorCode     = "envforge.error.code"
	AttrKeyEnvforgeExecName      = "envforge.exec.name"
	AttrKeyEnvforgeExecOperation = "envforge.exec.operation"
	AttrKeyEnvforgeExecExitCode  = "envforge.exec.exitcode"
	AttrKeyEnvforgeEnvName       = "envforge.env.name"
	AttrKeyEnvforgeEnvPrefix     = "envforge.env.prefix"
	AttrKeyEnvforgeSpecFile      = "envforge.spec.file"
)

// Attribute values
const (
	AttrValueExecNameConda          = "conda"
	AttrValueExecNamePython         = "python"
	AttrValueExecNameNbstripout     = "nbstripout"
	AttrValueExecOperationEnvList   = "env list"
	AttrValueExecOperationEnvCreate = "env create"
	AttrValueExecOperationEnvUpdate = "env update"
)

// Enumerated attributes
var (
	AttrFullExecNameConda          = attribute.String(AttrKeyEnvforgeExecName, AttrValueExecNameConda)
	AttrFullExecNamePython         = attribute.String(AttrKeyEnvforgeExecName, AttrValueExecNamePython)
	AttrFullExecNameNbstripout     = attribute.String(AttrKeyEnvforgeExecName, AttrValueExecNameNbstripout)
	AttrFullExecOperationEnvList   = attribute.String(AttrKeyEnvforgeExecOperation, AttrValueExecOperationEnvList)
	AttrFullExecOperationEnvCreate = attribute.String(AttrKeyEnvforgeExecOperation, AttrValueExecOperationEnvCreate)
	AttrFullExecOperationEnvUpdate = attribute.String(AttrKeyEnvforgeExecOperation, AttrValueExecOperationEnvUpdate)
)
