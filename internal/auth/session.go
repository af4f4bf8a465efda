package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// builds the cookie store backing identity sessions
func NewSessionStore(secret string, secure bool) (*sessions.CookieStore, error) {
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must be set")
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(defaultTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return store, nil
}

// records the user in the session cookie and returns the session id
func StartSession(store sessions.Store, w http.ResponseWriter, r *http.Request, userID string) (string, error) {
	sess, err := store.Get(r, SessionName)
	if err != nil {
		// a stale cookie signed with an old secret still yields a fresh session
		sess, err = store.New(r, SessionName)
		if sess == nil {
			return "", err
		}
	}

	sess.Values[sessionUserKey] = userID
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return sessionID(w), nil
}

// expires the session cookie
func EndSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	sess, err := store.Get(r, SessionName)
	if err != nil && sess == nil {
		return err
	}

	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// user id held by the request's session cookie, if any
func SessionUserID(store sessions.Store, r *http.Request) (string, bool) {
	sess, err := store.Get(r, SessionName)
	if err != nil || sess == nil {
		return "", false
	}

	userID, ok := sess.Values[sessionUserKey].(string)
	return userID, ok && userID != ""
}

// cookie stores have no server-side id; the encoded cookie value stands in for it
func sessionID(w http.ResponseWriter) string {
	header := http.Header{"Set-Cookie": w.Header().Values("Set-Cookie")}
	for _, cookie := range (&http.Response{Header: header}).Cookies() {
		if cookie.Name == SessionName {
			return cookie.Value
		}
	}
	return ""
}
