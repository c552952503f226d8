package gems

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	schoolSystemPrompt = "Eres experto en mejora escolar y en la prueba SIMCE. " +
		"Genera un plan de mejora educativa con 3 secciones: Diagnóstico, Estrategias, Métricas. " +
		"Formato: claro, práctico, en español."

	simceSystemPrompt = "Eres experto en SIMCE y currículum. " +
		"Genera un plan Gem SIMCE con 6 secciones: Diagnóstico, Objetivos, Plan de Acción, Rúbrica, Cronograma, Indicadores. " +
		"Formato: claro, práctico, en español."
)

// SystemPrompt returns the fixed instruction for a variant.
func SystemPrompt(v Variant) string {
	if v == VariantSIMCE {
		return simceSystemPrompt
	}
	return schoolSystemPrompt
}

// SchoolPrompt renders the user prompt for a school improvement plan.
func SchoolPrompt(in SchoolInput) string {
	var b strings.Builder
	b.WriteString("Genera un plan de mejora educativa para:\n")
	fmt.Fprintf(&b, "Escuela: %s\n", in.SchoolName)
	fmt.Fprintf(&b, "Asignatura: %s\n", in.Subject)
	fmt.Fprintf(&b, "Nivel actual SIMCE: %s puntos\n", score(in.CurrentLevel))
	fmt.Fprintf(&b, "Nivel objetivo: %s puntos\n", score(in.TargetLevel))
	b.WriteString("\nIncluye: 1) Diagnóstico, 2) Estrategias, 3) Métricas")
	return b.String()
}

// SIMCEPrompt renders the user prompt for a SIMCE Lenguaje plan. Optional
// fields are left out when empty.
func SIMCEPrompt(in SIMCEInput) string {
	parts := []string{fmt.Sprintf("SIMCE %s LENGUAJE: %s%% logro", in.Nivel, number(in.Resultado))}
	if in.Estudiantes != nil {
		parts = append(parts, fmt.Sprintf("%d estudiantes", *in.Estudiantes))
	}
	if in.Vulnerabilidad != "" {
		parts = append(parts, fmt.Sprintf("%s vulnerabilidad", in.Vulnerabilidad))
	}
	p := strings.Join(parts, ", ") + "."
	if in.Recursos != "" {
		p += " Recursos disponibles: " + in.Recursos + "."
	}
	return p + " Genera Gem SIMCE."
}

func number(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func score(v *int) string {
	if v == nil {
		return "0"
	}
	return strconv.Itoa(*v)
}
