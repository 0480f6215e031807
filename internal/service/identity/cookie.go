package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// The profile rides in one cookie, JSON-encoded and URL-escaped, the same
// record the frontend historically kept client-side.

// WriteCookie stores the profile on the response.
func WriteCookie(w http.ResponseWriter, name string, p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(string(raw)),
		Path:     "/",
		Expires:  p.ExpiresAt,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ReadCookie restores the profile from the request, if present and valid.
func ReadCookie(r *http.Request, name string) (Profile, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return Profile{}, false
	}

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return Profile{}, false
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, false
	}
	return p, true
}

// ClearCookie expires the profile cookie.
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})
}
