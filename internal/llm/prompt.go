package llm

import "strings"

// Prompt builders for the five document types. Each system prompt names the
// exact fields to pull out of the page and the exact JSON shape expected back;
// the page text travels in the user prompt, truncated the same way for every
// type.

const maxPromptText = 6000

const systemPreamble = "Eres un extractor de datos de documentos laborales españoles " +
	"(nóminas, seguridad social, convenios colectivos). Devuelve SOLO el JSON pedido, " +
	"sin explicaciones. Nunca devuelvas null en campos que sí aparecen en el texto; " +
	"omite los campos que no aparezcan."

func buildUserPrompt(pageText string) string {
	var b strings.Builder
	b.WriteString("Texto de la página:\n")
	if len(pageText) > maxPromptText {
		b.WriteString(pageText[:maxPromptText])
		b.WriteString("\n…(truncado)")
	} else {
		b.WriteString(pageText)
	}
	return b.String()
}

func buildIncomeSystemPrompt(docLabel string) string {
	parts := []string{
		systemPreamble,
		"El texto pertenece a un documento " + docLabel + ".",
		"Extrae: nombre completo del trabajador, percepción íntegra (salario bruto anual), " +
			"ejercicio fiscal, NIF/CIF de la empresa y nombre de la empresa.",
		"Los importes pueden venir en notación europea (\"24.214,44\"); cópialos tal cual aparecen.",
		`Devuelve un objeto JSON con los campos: {"worker_name": string, ` +
			`"percepcion_integra": string, "year": number, "company_id": string, "company_name": string}.`,
	}
	return strings.Join(parts, " ")
}

func buildRNTSystemPrompt() string {
	parts := []string{
		systemPreamble,
		"El texto pertenece a una Relación Nominal de Trabajadores (RNT) de la Seguridad Social.",
		"Por CADA trabajador que aparezca en la página extrae: su código de trabajador " +
			"(identificador de 5 letras mayúsculas, cópialo LITERALMENTE como aparece), " +
			"la base de contingencias comunes, los días cotizados, el período de liquidación " +
			"(formato MM/AAAA-MM/AAAA), el ejercicio, el CCC o NIF de la empresa y su nombre.",
		`Devuelve un array JSON de objetos: [{"worker_id": string, ` +
			`"base_contingencias_comunes": string, "dias_cotizados": number, "periodo": string, ` +
			`"year": number, "company_id": string, "company_name": string}].`,
	}
	return strings.Join(parts, " ")
}

func buildIDCSystemPrompt() string {
	parts := []string{
		systemPreamble,
		"El texto pertenece a un Informe de Datos de Cotización (IDC).",
		"Extrae el porcentaje total de cotización (suma de todos los tipos aplicables).",
		`Devuelve un objeto JSON: {"porcentaje_total": string}.`,
	}
	return strings.Join(parts, " ")
}

func buildConvenioSystemPrompt() string {
	parts := []string{
		systemPreamble,
		"El texto pertenece a un convenio colectivo.",
		"Extrae la jornada anual pactada en horas (patrones como \"1.708 h\" o \"1.760 horas\"; " +
			"\"1.708\" significa mil setecientas ocho) y el último año de vigencia del convenio " +
			"(del rango de vigencia o de una fecha \"vigente hasta\").",
		`Devuelve un objeto JSON: {"horas_convenio_anuales": string, "year": number}. ` +
			`Omite "year" si la página no indica la vigencia.`,
	}
	return strings.Join(parts, " ")
}

// Schemas are deliberately lenient about scalar types: completion services
// oscillate between "24.214,44" and 24214.44, and the decoder normalizes both.

func stringOrNumber() map[string]any {
	return map[string]any{"type": []string{"string", "number"}}
}

func incomeSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"worker_name":        map[string]any{"type": "string", "minLength": 1},
			"worker_id":          map[string]any{"type": "string"},
			"percepcion_integra": stringOrNumber(),
			"year":               stringOrNumber(),
			"company_id":         stringOrNumber(),
			"company_name":       map[string]any{"type": "string"},
		},
		"required": []string{"worker_name", "percepcion_integra", "year"},
	}
}

func rntSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"worker_id":                  map[string]any{"type": "string", "minLength": 1},
				"base_contingencias_comunes": stringOrNumber(),
				"dias_cotizados":             stringOrNumber(),
				"periodo":                    map[string]any{"type": "string", "minLength": 1},
				"year":                       stringOrNumber(),
				"company_id":                 stringOrNumber(),
				"company_name":               map[string]any{"type": "string"},
			},
			"required": []string{"worker_id", "base_contingencias_comunes", "dias_cotizados", "periodo"},
		},
	}
}

func idcSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"porcentaje_total": stringOrNumber(),
		},
		"required": []string{"porcentaje_total"},
	}
}

func convenioSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"horas_convenio_anuales": stringOrNumber(),
			"year":                   stringOrNumber(),
		},
	}
}
