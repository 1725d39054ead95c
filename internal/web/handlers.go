package web

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voicecast/voicecast/internal/auth"
	"github.com/voicecast/voicecast/internal/captcha"
	"github.com/voicecast/voicecast/internal/config"
	"github.com/voicecast/voicecast/internal/models"
	"github.com/voicecast/voicecast/internal/speech"
	"github.com/voicecast/voicecast/internal/telephony"
)

type handlers struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions *auth.Sessions
	identity IdentityProvider
	captcha  captcha.Verifier
	speech   speech.Synthesizer
	calls    telephony.Caller
}

func (h *handlers) index(c *gin.Context) {
	user, ok := h.sessions.CurrentUser(c.Request)
	data := gin.H{
		"SignedIn":         ok,
		"RecaptchaSiteKey": h.cfg.RecaptchaSiteKey,
	}
	if ok {
		data["User"] = user
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *handlers) login(c *gin.Context) {
	state, err := auth.NewState()
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.sessions.SaveState(c.Writer, c.Request, state); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.identity.AuthCodeURL(state))
}

func (h *handlers) loginCallback(c *gin.Context) {
	want, ok := h.sessions.TakeState(c.Writer, c.Request)
	if !ok || c.Query("state") != want {
		c.String(http.StatusBadRequest, "invalid oauth state")
		return
	}

	claims, err := h.identity.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.sessions.SaveUser(c.Writer, c.Request, claims); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.sessions.ClearUser(c.Writer, c.Request); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// placeCall runs the call flow in strict order: session gate, captcha,
// synthesis, telephony, log insert. The captcha must pass before anything
// that costs money runs.
func (h *handlers) placeCall(c *gin.Context) {
	user, ok := h.sessions.CurrentUser(c.Request)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	to := c.PostForm("to")
	message := c.PostForm("message")

	passed, err := h.captcha.Verify(c.Request.Context(), c.PostForm("g-recaptcha-response"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !passed {
		c.String(http.StatusOK, "reCAPTCHA failed.")
		return
	}

	audio, err := h.speech.Synthesize(c.Request.Context(), message)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Fresh name per request so concurrent calls never collide.
	filename := fmt.Sprintf("audio_%s.mp3", uuid.New())
	if err := os.WriteFile(filepath.Join(h.cfg.StaticDir, filename), audio, 0o644); err != nil {
		h.fail(c, err)
		return
	}

	// Twilio fetches the TwiML later with no context, so the callback URL
	// has to carry the public audio URL itself.
	audioURL := h.cfg.BaseURL + "/static/" + filename
	callbackURL := h.cfg.BaseURL + "/twiml?audio_url=" + url.QueryEscape(audioURL)

	sid, err := h.calls.PlaceCall(c.Request.Context(), to, callbackURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	log.Printf("web: placed call %s to %s for %s", sid, to, user.Email)

	entry := models.CallLog{
		UserEmail: user.Email,
		ToNumber:  to,
		Message:   message,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		h.fail(c, err)
		return
	}

	c.String(http.StatusOK, "Calling %s...", to)
}

func (h *handlers) twiml(c *gin.Context) {
	doc := telephony.TwiML(c.Query("audio_url"))
	c.Data(http.StatusOK, "application/xml", []byte(doc))
}

func (h *handlers) history(c *gin.Context) {
	user, ok := h.sessions.CurrentUser(c.Request)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	logs, err := UserHistory(h.db, user.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "history.html", gin.H{
		"User": user,
		"Logs": logs,
	})
}

// fail logs the underlying error and returns an opaque 500. Adapter failures
// past the captcha gate are not compensated: an already written audio file
// or placed call stays as is.
func (h *handlers) fail(c *gin.Context, err error) {
	log.Printf("web: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.String(http.StatusInternalServerError, "internal server error")
}
