package knowledge

import "time"

// fallbackUpdated marks when the curated content below was last reviewed.
var fallbackUpdated = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

// FallbackChunks is the curated knowledge set used whenever the scraped
// corpus or the vector backend is unavailable. Content is in Mexican
// Spanish because that is what the agent answers in.
func FallbackChunks() []Chunk {
	texts := []struct {
		category Category
		text     string
	}{
		{CategoryWarranty,
			"Todos nuestros autos seminuevos incluyen garantía de 3 meses con posibilidad de " +
				"extenderla hasta por un año. Cada vehículo pasa una inspección de 240 puntos " +
				"antes de publicarse, y si no quedas satisfecho puedes devolverlo dentro de los " +
				"primeros 7 días o 300 kilómetros."},
		{CategoryFinancing,
			"Ofrecemos financiamiento con tasa fija del 10% anual en plazos de 3, 4, 5 o 6 años. " +
				"El enganche típico es del 20% del precio del auto. No hay penalización por pago " +
				"anticipado y la aprobación se resuelve en aproximadamente 24 horas. Necesitas " +
				"identificación oficial, comprobante de domicilio y comprobante de ingresos."},
		{CategoryLocations,
			"Tenemos sucursales y centros de inspección en Ciudad de México, Estado de México, " +
				"Guadalajara, Monterrey, Puebla, Querétaro y Cuernavaca. También entregamos a " +
				"domicilio en la mayoría de las ciudades del país."},
		{CategoryValueProposition,
			"Somos la plataforma líder de autos seminuevos en México: precios transparentes, " +
				"inspección certificada de 240 puntos, garantía incluida, proceso 100% digital y " +
				"opción de recibir tu auto en la puerta de tu casa. Además aceptamos tu auto " +
				"actual a cuenta."},
		{CategoryProcess,
			"El proceso de compra es 100% digital: eliges tu auto en el sitio, apartas con un " +
				"pago inicial, completas tu solicitud de financiamiento si lo necesitas y " +
				"recibes el auto en sucursal o a domicilio. Todo el papeleo lo hacemos nosotros " +
				"y puedes agendar una prueba de manejo antes de decidir."},
		{CategoryOther,
			"Si quieres vender tu auto, lo inspeccionamos, te damos una oferta el mismo día y " +
				"nos encargamos de todos los trámites. También puedes dejarlo a cuenta de un " +
				"seminuevo de nuestro catálogo."},
	}

	chunks := make([]Chunk, 0, len(texts))
	for _, t := range texts {
		chunks = append(chunks, Chunk{
			Text:      t.text,
			Category:  t.category,
			Source:    SourceFallback,
			UpdatedAt: fallbackUpdated,
		})
	}
	return chunks
}
