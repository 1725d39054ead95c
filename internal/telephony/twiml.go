package telephony

import (
	"encoding/xml"
	"strings"
)

// TwiML renders the voice-response document that instructs Twilio to play
// the audio at audioURL and nothing else.
func TwiML(audioURL string) string {
	var esc strings.Builder
	xml.EscapeText(&esc, []byte(audioURL))
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Play>` + esc.String() + `</Play></Response>`
}
