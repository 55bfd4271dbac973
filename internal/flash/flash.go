// Package flash carries one-shot user messages across a redirect using a
// short-lived cookie. Messages survive exactly one render: reading clears
// the cookie.
package flash

import (
	"encoding/base64"
	"net/http"
)

const cookieName = "curio_flash"

// Set queues msg to be shown on the next rendered page.
func Set(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued message, if any, and clears it.
func Pop(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	msg, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil || len(msg) == 0 {
		return "", false
	}
	return string(msg), true
}
