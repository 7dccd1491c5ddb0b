package httpapi

import (
	"encoding/xml"
	"net/http"
	"strings"
	"unicode/utf8"
)

// twilioMessageLimit is the per-message character cap on the WhatsApp
// channel. Replies longer than this go out as consecutive messages.
const twilioMessageLimit = 1500

// twimlResponse is the reply document the webhook provider expects.
type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// handleWhatsAppWebhook receives inbound WhatsApp messages as form posts
// with Body and From fields and answers with a TwiML document. The sender's
// phone number becomes the session identity, so each WhatsApp contact keeps
// one continuous conversation.
func (s *Server) handleWhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	body := strings.TrimSpace(r.PostFormValue("Body"))
	from := strings.TrimSpace(r.PostFormValue("From"))
	if from == "" {
		respondError(w, http.StatusBadRequest, "missing_from", "From field is required")
		return
	}

	phone := strings.TrimPrefix(from, "whatsapp:")
	sessionID := "whatsapp_" + phone
	s.logger.Printf("httpapi: whatsapp message from=%s chars=%d", maskPhone(phone), utf8.RuneCountInString(body))

	reply, err := s.orchestrator.HandleMessage(r.Context(), sessionID, body)
	if err != nil {
		s.logger.Printf("httpapi: whatsapp turn failed from=%s err=%v", maskPhone(phone), err)
		reply = "Disculpa, algo salió mal de mi lado. 🙏 ¿Me repites tu mensaje?"
	}

	writeTwiML(w, splitMessage(reply, twilioMessageLimit))
}

func writeTwiML(w http.ResponseWriter, messages []string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twimlResponse{Messages: messages})
}

// splitMessage cuts text into channel-sized chunks, preferring paragraph
// and then word boundaries so no chunk starts or ends mid-word.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		if cut == limit {
			for i := limit; i > limit/2; i-- {
				if runes[i-1] == ' ' {
					cut = i
					break
				}
			}
		}
		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}
	return chunks
}

// maskPhone hides the middle digits of a phone number in logs.
func maskPhone(phone string) string {
	if len(phone) <= 5 {
		return "***"
	}
	return phone[:3] + "****" + phone[len(phone)-2:]
}
