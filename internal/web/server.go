// Package web serves the voicecast HTTP surface: the call form, the Google
// sign-in flow, call placement, the TwiML callback, and per-user history.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/voicecast/voicecast/internal/auth"
	"github.com/voicecast/voicecast/internal/captcha"
	"github.com/voicecast/voicecast/internal/config"
	"github.com/voicecast/voicecast/internal/speech"
	"github.com/voicecast/voicecast/internal/telephony"
)

// IdentityProvider is the slice of the OAuth flow the handlers need.
// *auth.Provider implements it; tests substitute a fake.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.Claims, error)
}

// StartOpts holds configuration and injected adapters for the web server.
type StartOpts struct {
	DB       *gorm.DB
	Config   *config.Config
	Sessions *auth.Sessions
	Identity IdentityProvider
	Captcha  captcha.Verifier
	Speech   speech.Synthesizer
	Calls    telephony.Caller
	Out      io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := newRouter(opts)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", opts.Config.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "voicecast running at %s\n", opts.Config.BaseURL)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

// newRouter validates opts and builds the gin engine with all routes.
func newRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("web: db is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("web: config is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("web: sessions are required")
	}
	if opts.Identity == nil || opts.Captcha == nil || opts.Speech == nil || opts.Calls == nil {
		return nil, fmt.Errorf("web: all adapters are required")
	}

	// Audio files are written here at request time.
	if err := os.MkdirAll(opts.Config.StaticDir, 0o755); err != nil {
		return nil, fmt.Errorf("web: create static dir: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, opts)
	return router, nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
