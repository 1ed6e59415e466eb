package llm

// methodSchema is the JSON schema the model reply must satisfy.
const methodSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "summary", "steps", "recommendations"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "summary": {"type": "string"},
    "frequency": {"type": "string"},
    "requiredQualifications": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "content"],
        "properties": {
          "stepNumber": {"type": "integer"},
          "title": {"type": "string", "minLength": 1},
          "content": {"type": "string"},
          "estimatedDuration": {"type": "string"},
          "safety": {"$ref": "#/definitions/strings"},
          "toolsRequired": {"$ref": "#/definitions/strings"},
          "materialsNeeded": {"$ref": "#/definitions/strings"},
          "inspectionCheckpoints": {"$ref": "#/definitions/strings"},
          "bsReferences": {"$ref": "#/definitions/strings"},
          "linkedHazards": {"$ref": "#/definitions/strings"},
          "qualifications": {"$ref": "#/definitions/strings"},
          "observations": {"$ref": "#/definitions/strings"},
          "defectCodes": {"$ref": "#/definitions/strings"}
        }
      }
    }
  },
  "definitions": {
    "strings": {"type": "array", "items": {"type": "string"}}
  }
}`
