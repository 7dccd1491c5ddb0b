package tools

import (
	"context"
	"strings"

	"github.com/davmoreno/lucia/internal/knowledge"
)

// InfoTools builds the company knowledge entries of the catalog.
func InfoTools(store *knowledge.Store) []Descriptor {
	return []Descriptor{
		{
			Name: "get_company_info",
			Description: "Responde preguntas sobre la empresa: garantías, proceso de compra y venta, " +
				"sucursales, financiamiento y propuesta de valor.",
			Params: []Param{
				{Name: "query", Type: "string", Description: "Pregunta del cliente sobre la empresa", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				query := String(args, "query", "")
				chunks := store.Query(ctx, query)
				if len(chunks) == 0 {
					return "ℹ️ No tengo ese dato a la mano, pero con gusto te conecto con un asesor. 😊", nil
				}
				texts := make([]string, 0, len(chunks))
				for _, c := range chunks {
					texts = append(texts, c.Text)
				}
				return strings.Join(texts, "\n\n"), nil
			},
		},
		{
			Name: "schedule_appointment",
			Description: "Explica cómo agendar una cita o prueba de manejo en una sucursal.",
			Run: func(_ context.Context, _ map[string]any) (string, error) {
				return "📅 ¡Claro! Para agendar tu cita o prueba de manejo solo necesito:\n\n" +
					"1️⃣ La sucursal que te quede más cerca\n" +
					"2️⃣ El día y horario que prefieras\n" +
					"3️⃣ El auto que te interesa\n\n" +
					"Un asesor te confirmará por este medio. ¿Con cuál empezamos? 😊", nil
			},
		},
	}
}
