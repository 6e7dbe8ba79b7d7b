package llm

// DocumentSchema is the JSON Schema (draft 2020-12 subset) of the document extraction
// response. Numbers are accepted as strings too; coercion parses them afterwards.
func DocumentSchema() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"itemNumber":    scalarProp(),
			"description":   map[string]any{"type": "string", "minLength": 1},
			"unitOfMeasure": nullable("string"),
			"quantity":      scalarProp(),
			"unitPrice":     scalarProp(),
		},
		"required": []string{"description"},
	}
	lot := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"number":      scalarProp(),
			"description": nullable("string"),
			"items":       map[string]any{"type": "array", "items": item},
		},
		"required": []string{"items"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"identifier":             nullable("string"),
			"managingAuthority":      nullable("string"),
			"managingAuthoritySigla": nullable("string"),
			"processNumber":          nullable("string"),
			"legalBasis":             map[string]any{"type": []string{"array", "null"}, "items": map[string]any{"type": "string"}},
			"supplierName":           nullable("string"),
			"supplierTaxId":          map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`},
			"validityMonths":         scalarProp(),
			"subjectMatter":          nullable("string"),
			"effectiveDateRange": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"start": nullable("string"),
					"end":   nullable("string"),
				},
			},
			"lots":       map[string]any{"type": "array", "items": lot},
			"confidence": confidenceProp(),
		},
		"required": []string{"identifier", "lots"},
	}
}

// ItemSpecSchema is the JSON Schema of the item normalization response.
func ItemSpecSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category":        map[string]any{"type": "string", "minLength": 1},
			"technology":      nullable("string"),
			"format":          nullable("string"),
			"lensType":        nullable("string"),
			"ptz":             nullable("boolean"),
			"varifocal":       nullable("boolean"),
			"minResolutionMp": scalarProp(),
			"poe":             nullable("boolean"),
			"irRangeMeters":   scalarProp(),
			"powerDrawWatts":  scalarProp(),
			"portCount":       scalarProp(),
			"transferSpeed":   nullable("string"),
			"storageTb":       scalarProp(),
			"observations":    nullable("string"),
			"confidence":      confidenceProp(),
		},
		"required": []string{"category"},
	}
}

func nullable(t string) map[string]any {
	return map[string]any{"type": []string{t, "null"}}
}

func scalarProp() map[string]any {
	return map[string]any{"type": []string{"string", "number", "null"}}
}

func confidenceProp() map[string]any {
	return map[string]any{"type": []string{"number", "null"}, "minimum": 0.0, "maximum": 1.0}
}
