package notes

const bundleSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "notes": {
      "type": "array",
      "items": { "$ref": "#/definitions/note" }
    },
    "tables": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "general":  { "$ref": "#/definitions/scopedTable" },
        "advanced": { "$ref": "#/definitions/table" },
        "forms":    { "$ref": "#/definitions/scopedTable" },
        "aliases":  { "$ref": "#/definitions/table" }
      }
    }
  },
  "definitions": {
    "strings": {
      "type": "array",
      "items": { "type": "string" }
    },
    "table": {
      "type": "object",
      "additionalProperties": { "type": "string", "minLength": 1 }
    },
    "scopedTable": {
      "type": "object",
      "additionalProperties": { "$ref": "#/definitions/table" }
    },
    "example": {
      "type": "object",
      "additionalProperties": false,
      "required": ["question"],
      "properties": {
        "question": { "type": "string" },
        "steps": { "$ref": "#/definitions/strings" },
        "final_answer": { "type": "string" }
      }
    },
    "section": {
      "type": "object",
      "additionalProperties": false,
      "required": ["title"],
      "properties": {
        "title": { "type": "string" },
        "content": { "type": "string" },
        "worked_examples": {
          "type": "array",
          "items": { "$ref": "#/definitions/example" }
        }
      }
    },
    "note": {
      "type": "object",
      "additionalProperties": false,
      "required": ["topic", "subject", "grade_level"],
      "properties": {
        "id": { "type": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$" },
        "topic": { "type": "string" },
        "subject": { "type": "string" },
        "grade_level": { "type": "string" },
        "form": { "type": "string" },
        "summary": { "type": "string" },
        "sections": {
          "type": "array",
          "items": { "$ref": "#/definitions/section" }
        },
        "key_points": { "$ref": "#/definitions/strings" },
        "exam_tips": { "$ref": "#/definitions/strings" },
        "visual_descriptions": { "$ref": "#/definitions/strings" }
      }
    }
  }
}`
