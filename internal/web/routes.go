package web

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all routes on the gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	h := &handlers{
		db:       opts.DB,
		cfg:      opts.Config,
		sessions: opts.Sessions,
		identity: opts.Identity,
		captcha:  opts.Captcha,
		speech:   opts.Speech,
		calls:    opts.Calls,
	}

	// Embedded stylesheet.
	cssFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/assets", http.FS(cssFS))

	// Synthesized audio is written to the static dir and fetched back by
	// Twilio, so it is served straight from disk.
	router.Static("/static", opts.Config.StaticDir)

	router.GET("/", h.index)
	router.GET("/login", h.login)
	router.GET("/login/callback", h.loginCallback)
	router.GET("/logout", h.logout)
	router.POST("/call", h.placeCall)
	router.GET("/twiml", h.twiml)
	router.GET("/history", h.history)
}
