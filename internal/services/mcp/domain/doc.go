// Package domain defines the MCP tool and resource surface for list
// management: input/output schemas, tool declarations, and handlers that
// bind tools to a list store.
package domain
