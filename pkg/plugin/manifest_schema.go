package plugin

// ManifestSchema is the JSON Schema a tool manifest must satisfy before any
// of its tools are registered.
const ManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "version", "endpoint", "tools"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z0-9-]+$",
      "description": "Unique manifest identifier"
    },
    "version": {
      "type": "string",
      "pattern": "^\\d+\\.\\d+\\.\\d+$",
      "description": "Semver version"
    },
    "description": {
      "type": "string",
      "description": "What this tool bundle provides"
    },
    "endpoint": {
      "type": "string",
      "minLength": 1,
      "description": "HTTP endpoint tool calls are forwarded to"
    },
    "timeout_seconds": {
      "type": "integer",
      "minimum": 1,
      "description": "Per-call timeout for the remote endpoint"
    },
    "headers": {
      "type": "object",
      "additionalProperties": { "type": "string" },
      "description": "Extra headers sent with every forwarded call"
    },
    "tools": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "description"],
        "properties": {
          "name": {
            "type": "string",
            "pattern": "^[a-z0-9_]+$"
          },
          "description": {
            "type": "string",
            "minLength": 1
          },
          "parameters": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "type"],
              "properties": {
                "name": { "type": "string", "minLength": 1 },
                "type": {
                  "type": "string",
                  "enum": ["string", "number", "integer", "boolean", "array", "object"]
                },
                "description": { "type": "string" },
                "required": { "type": "boolean" },
                "enum": {
                  "type": "array",
                  "items": { "type": "string" }
                },
                "items": {
                  "type": "string",
                  "enum": ["string", "number", "integer", "boolean", "object"]
                },
                "default": {}
              }
            }
          }
        }
      }
    }
  }
}`
