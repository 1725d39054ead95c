package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// makeIDToken builds an unsigned JWT carrying the given claims, the shape
// Google's token endpoint returns in the id_token field.
func makeIDToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	enc := func(v interface{}) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}
	header := map[string]string{"alg": "RS256", "typ": "JWT"}
	return enc(header) + "." + enc(claims) + "."
}

func TestAuthCodeURL(t *testing.T) {
	p := NewProvider("client-123", "secret", "https://app.example.com/login/callback")
	raw := p.AuthCodeURL("state-abc")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse auth URL: %v", err)
	}
	if u.Host != "accounts.google.com" {
		t.Errorf("host = %q, want accounts.google.com", u.Host)
	}
	q := u.Query()
	if q.Get("client_id") != "client-123" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-abc" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("redirect_uri") != "https://app.example.com/login/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	scope := q.Get("scope")
	for _, want := range []string{"openid", "email", "profile"} {
		if !strings.Contains(scope, want) {
			t.Errorf("scope %q missing %q", scope, want)
		}
	}
}

func TestDecodeIDToken(t *testing.T) {
	raw := makeIDToken(t, map[string]interface{}{
		"sub":     "10203040",
		"email":   "alice@example.com",
		"name":    "Alice Example",
		"picture": "https://lh3.example.com/alice.jpg",
	})

	claims, err := decodeIDToken(raw)
	if err != nil {
		t.Fatalf("decodeIDToken: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Name != "Alice Example" {
		t.Errorf("Name = %q", claims.Name)
	}
	if claims.Picture != "https://lh3.example.com/alice.jpg" {
		t.Errorf("Picture = %q", claims.Picture)
	}
	if claims.Subject != "10203040" {
		t.Errorf("Subject = %q", claims.Subject)
	}
}

func TestDecodeIDToken_Errors(t *testing.T) {
	if _, err := decodeIDToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}

	noEmail := makeIDToken(t, map[string]interface{}{"sub": "1", "name": "No Email"})
	if _, err := decodeIDToken(noEmail); err == nil {
		t.Error("expected error for token without email")
	}
}

func TestExchange(t *testing.T) {
	idToken := makeIDToken(t, map[string]interface{}{
		"sub":   "777",
		"email": "bob@example.com",
		"name":  "Bob",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.Form.Get("code"); got != "code-xyz" {
			t.Errorf("code = %q, want code-xyz", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"at-1","token_type":"Bearer","expires_in":3600,"id_token":%q}`, idToken)
	}))
	defer srv.Close()

	p := NewProvider("client", "secret", "http://localhost/login/callback")
	p.cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}

	claims, err := p.Exchange(context.Background(), "code-xyz")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if claims.Email != "bob@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestExchange_NoIDToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	p := NewProvider("client", "secret", "http://localhost/login/callback")
	p.cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}

	if _, err := p.Exchange(context.Background(), "code"); err == nil {
		t.Fatal("expected error when token response has no id_token")
	}
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	b, err := NewState()
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("state length = %d, want 32 hex chars", len(a))
	}
	if a == b {
		t.Error("two states identical, want random")
	}
}
