package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tbourn/hotel-concierge/internal/domain"
	"github.com/tbourn/hotel-concierge/internal/llm"
	"github.com/tbourn/hotel-concierge/internal/tenant"
)

// Fixed guest-facing texts.
const (
	ReplyUnauthorized  = "Μη εξουσιοδοτημένο ξενοδοχείο."
	ReplyHotelNotFound = "Δεν βρέθηκε το ξενοδοχείο. Έλεγξε το hotel_id."
	ReplyServerError   = "Υπήρξε προσωρινό πρόβλημα. Δοκίμασε ξανά σε λίγο."
	ReplyLimit         = "Έχουμε φτάσει το ημερήσιο όριο AI για σήμερα.\n" +
		"Ρώτα κάτι από τα FAQ (check-in, check-out, parking, breakfast) ή δοκίμασε ξανά αύριο."
	ReplyEmptyModel = "Συγγνώμη, δεν κατάφερα να απαντήσω. Θέλεις να το πεις λίγο διαφορετικά;"
)

const receptionistInstructions = "You are a friendly, concise hotel receptionist. " +
	"Answer in Greek unless the user writes in English. " +
	"If the guest asks for something you cannot know (prices, availability, booking confirmation), ask ONE short follow-up question. " +
	"Keep responses short (1-4 sentences)."

// Language codes produced by DetectLang.
const (
	LangGreek   = "el"
	LangEnglish = "en"
)

// DetectLang classifies msg as English when it has Latin letters and no
// Greek letters, and as Greek otherwise.
func DetectLang(msg string) string {
	var latin, greek bool
	for _, r := range msg {
		switch {
		case unicode.Is(unicode.Greek, r):
			greek = true
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			latin = true
		}
	}
	if latin && !greek {
		return LangEnglish
	}
	return LangGreek
}

// EffectiveLang clamps the detected language of msg to the plan's languages,
// falling back to English.
func EffectiveLang(msg string, plan tenant.Plan) string {
	if lang := DetectLang(msg); plan.Allows(lang) {
		return lang
	}
	return LangEnglish
}

// dummyReply is the placeholder used when no model credential is configured.
func dummyReply(hotelID, msg string) string {
	return fmt.Sprintf("(%s) Λάβαμε το μήνυμα: \"%s\"", hotelID, msg)
}

// buildPrompt assembles the receptionist instructions and the hotel context.
func buildPrompt(h *domain.Hotel, sessionID, msg string) llm.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Hotel name: %s\n", h.Name)
	fmt.Fprintf(&b, "Hotel plan: %s\n", h.Plan)
	fmt.Fprintf(&b, "Supported languages: %s\n", strings.Join(h.LanguageList(), ", "))
	fmt.Fprintf(&b, "Welcome message: %s\n", h.WelcomeMessage)
	fmt.Fprintf(&b, "Hotel ID: %s\n", h.ID)
	fmt.Fprintf(&b, "Session ID: %s\n", sessionID)
	fmt.Fprintf(&b, "Guest message: %s\n\n", msg)
	b.WriteString("Reply as the hotel's receptionist.")
	return llm.Prompt{Instructions: receptionistInstructions, Input: b.String()}
}
