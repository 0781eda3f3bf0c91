// Package service hosts the MCP server: tool and resource registration,
// transport selection, and the HTTP guardrails applied in front of the
// streamable transport.
package service
