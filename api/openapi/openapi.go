// Package openapi embeds the API specification served by the HTTP server.
package openapi

import _ "embed"

//go:embed openapi.yaml
var Spec []byte
