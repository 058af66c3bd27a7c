package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	ggoogle "golang.org/x/oauth2/google"
)

type GoogleOAuth struct {
	cfg      *oauth2.Config
	stateKey []byte
}

func NewGoogle(clientID, clientSecret, redirectURI, stateSecret string) *GoogleOAuth {
	return &GoogleOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     ggoogle.Endpoint,
		},
		stateKey: []byte(stateSecret),
	}
}

// MakeState signs the raw state with HMAC to protect the callback
// against CSRF.
func (g *GoogleOAuth) MakeState(raw string) string {
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	return raw + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *GoogleOAuth) VerifyState(got string) bool {
	i := strings.IndexByte(got, '.')
	if i < 0 {
		return false
	}
	sigb, err := base64.RawURLEncoding.DecodeString(got[i+1:])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(got[:i]))
	return hmac.Equal(mac.Sum(nil), sigb)
}

func (g *GoogleOAuth) ClientID() string {
	if g.cfg == nil {
		return ""
	}
	return g.cfg.ClientID
}

func (g *GoogleOAuth) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

type GoogleUser struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// ExchangeAndVerify trades the code for tokens and extracts the
// identity from the id_token. Claims-only verification: aud must match
// our client id and iss must be Google. Signature verification against
// Google certs is left to a future hardening pass.
func (g *GoogleOAuth) ExchangeAndVerify(ctx context.Context, code string, expectedAud string) (*GoogleUser, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("no id_token")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("parse id_token: %w", err)
	}
	iss, _ := claims["iss"].(string)
	aud, _ := claims["aud"].(string)
	email, _ := claims["email"].(string)
	emailVerified, _ := claims["email_verified"].(bool)
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	if iss != "https://accounts.google.com" && iss != "accounts.google.com" {
		return nil, errors.New("bad iss")
	}
	if aud != expectedAud {
		return nil, errors.New("bad aud")
	}
	if email == "" || sub == "" {
		return nil, errors.New("missing email/sub")
	}

	return &GoogleUser{
		Sub: sub, Email: email, EmailVerified: emailVerified, Name: name, Picture: picture,
	}, nil
}
