package http

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	applog "fintrack/internal/log"
)

const flashSessionName = "fintrack_flash"

// Flash categories double as CSS classes.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// newFlashStore keeps flashes in a signed cookie. A nil key gets a random
// one, so flashes do not survive a restart.
func newFlashStore(key []byte, secure bool) *sessions.CookieStore {
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// addFlash queues f for the next page. Flashes already queued by this
// request are kept.
func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	sess, err := s.flashes.Get(r, flashSessionName)
	if err != nil {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Discarding unreadable flash cookie",
			applog.FieldError, err)
	}
	sess.AddFlash(f)
	if err := sess.Save(r, w); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to save flash",
			applog.FieldError, err)
	}
}

// popFlashes returns the queued flashes and clears the cookie.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := s.flashes.Get(r, flashSessionName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}

	if len(sess.Values) == 0 {
		sess.Options.MaxAge = -1
	}
	if err := sess.Save(r, w); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to clear flashes",
			applog.FieldError, err)
	}
	return out
}
