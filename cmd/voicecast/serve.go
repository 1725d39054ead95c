package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voicecast/voicecast/internal/auth"
	"github.com/voicecast/voicecast/internal/captcha"
	"github.com/voicecast/voicecast/internal/config"
	"github.com/voicecast/voicecast/internal/db"
	"github.com/voicecast/voicecast/internal/speech"
	"github.com/voicecast/voicecast/internal/telephony"
	"github.com/voicecast/voicecast/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the voicecast web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.RequireSecrets(); err != nil {
				return err
			}

			conn, err := db.Connect(cfg.SQLite)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(conn); err != nil {
				return err
			}

			verifier, err := captcha.New(captcha.Opts{
				Secret: cfg.Secrets.RecaptchaSecret,
			})
			if err != nil {
				return err
			}
			synth, err := speech.New(speech.Opts{
				APIKey:  cfg.Secrets.ElevenLabsAPIKey,
				VoiceID: cfg.Secrets.ElevenLabsVoiceID,
				Settings: speech.VoiceSettings{
					Stability:       cfg.Voice.Stability,
					SimilarityBoost: cfg.Voice.SimilarityBoost,
				},
			})
			if err != nil {
				return err
			}
			caller, err := telephony.New(telephony.Opts{
				AccountSID: cfg.Secrets.TwilioAccountSID,
				AuthToken:  cfg.Secrets.TwilioAuthToken,
				From:       cfg.Secrets.TwilioPhoneNumber,
			})
			if err != nil {
				return err
			}

			identity := auth.NewProvider(
				cfg.Secrets.GoogleClientID,
				cfg.Secrets.GoogleClientSecret,
				fmt.Sprintf("%s/login/callback", cfg.BaseURL),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return web.Start(ctx, web.StartOpts{
				DB:       conn,
				Config:   cfg,
				Sessions: auth.NewSessions(cfg.Secrets.SessionKey),
				Identity: identity,
				Captcha:  verifier,
				Speech:   synth,
				Calls:    caller,
				Out:      cmd.OutOrStdout(),
			})
		},
	}
}
