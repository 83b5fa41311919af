// Package apiv1 embeds the OpenAPI v2 description of the tokend HTTP API.
package apiv1

import _ "embed"

// OpenAPI contains the OpenAPI v2 JSON document served at /openapi.json. It is
// embedded at compile time so the binary works with scratch-based images.
//
//go:embed openapi.json
var OpenAPI []byte
