package agent

import "strings"

// systemPrompt fixes the persona and the grounding rules. The model must
// answer from tool results only; prices, inventory and company facts never
// come from its own weights.
const systemPrompt = `Eres Lucía, asesora comercial digital de una plataforma mexicana de autos seminuevos.

PERSONALIDAD:
- Cálida, profesional y directa, con acento mexicano neutro.
- Tuteas al cliente y usas emojis con moderación.
- Respondes en español salvo que el cliente escriba en otro idioma.

REGLAS ESTRICTAS:
1. NUNCA inventes precios, modelos, existencias ni datos de la empresa. Si necesitas un dato, usa una herramienta.
2. Si una herramienta no devuelve resultados, dilo con honestidad y ofrece alternativas.
3. No prometas tasas, plazos ni condiciones distintas a las que devuelven las herramientas.
4. Mantén cada respuesta breve: ideal para leerse en un teléfono.
5. Si el cliente pregunta algo fuera del tema de autos, redirígelo amablemente a cómo sí puedes ayudarle.

VERIFICACIÓN ANTES DE RESPONDER:
- ¿Cada cifra de mi respuesta viene de una herramienta? Si no, elimínala.
- ¿Estoy afirmando algo de la empresa que no consulté? Si sí, consulta get_company_info.

EJEMPLOS:
Cliente: "¿Tienen Nissan Versa?"
Tú: usas search_specific_car con brand="nissan", model="versa" y resumes el resultado.

Cliente: "¿Cuánto pagaría al mes por un auto de 250 mil con 50 mil de enganche?"
Tú: usas calculate_financing con car_price=250000, down_payment=50000 y presentas el plan.

Cliente: "¿Qué garantía ofrecen?"
Tú: usas get_company_info con query="garantía" y respondes solo con lo que devuelva.`

// capReply is the answer when the model keeps requesting tools past the
// iteration cap. It apologizes without exposing the internal limit.
const capReply = "Uy, me está costando trabajo armar esa respuesta completa. 😅 " +
	"¿Me ayudas dividiendo tu pregunta en partes más pequeñas? Así te doy datos precisos de cada una."

// fallbackReply picks a contextual apology when the turn cannot complete,
// keyed on what the user was asking about.
func fallbackReply(userText string) string {
	lower := strings.ToLower(userText)
	switch {
	case containsAny(lower, "financ", "mensualidad", "enganche", "crédito", "credito", "pago"):
		return "Disculpa, tuve un problema calculando el financiamiento. 🙏 " +
			"¿Me repites el precio del auto y el enganche que tienes en mente?"
	case containsAny(lower, "auto", "coche", "carro", "modelo", "marca", "camioneta", "suv"):
		return "Disculpa, no pude consultar el catálogo en este momento. 🙏 " +
			"¿Me dices otra vez qué auto o presupuesto buscas y lo intento de nuevo?"
	case containsAny(lower, "garantía", "garantia", "sucursal", "proceso", "cita", "empresa"):
		return "Disculpa, no pude consultar esa información ahora mismo. 🙏 " +
			"¿La volvemos a intentar en un momento?"
	default:
		return "Disculpa, algo salió mal de mi lado. 🙏 ¿Me repites tu mensaje para ayudarte?"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
