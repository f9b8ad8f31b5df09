package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/entities"
)

// A journal session carries only who is writing: the account id, its
// username and when the login happened. Entries are never cached in it.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
)

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "journal_session"

const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

func init() {
	gob.Register(time.Time{})
}

// SessionManager keeps journal login sessions in the journal database, next
// to the entries, so a restart of the server does not log anyone out.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager stores sessions in the sessions table of journalDB,
// which is the *sql.DB underneath the journal's gorm handle.
func NewSessionManager(journalDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := journalDB.Exec(sessionsSchema); err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(journalDB)
	sm.Lifetime = cfg.SessionLifetime
	// idle sessions expire after half the lifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = SessionCookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession starts a journal session for user once their password
// (and PIN, when set) has been verified. The token is renewed first.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	ctx := r.Context()
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}

	// stored as int so GetInt reads it back
	sm.Put(ctx, SessionKeyUserID, int(user.ID))
	sm.Put(ctx, SessionKeyUsername, user.Username)
	sm.Put(ctx, SessionKeyLoginAt, time.Now())
	return nil
}

// DestroySession logs the writer out.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID returns the logged-in account id, or 0.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyUserID))
}

func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != 0
}

// SessionData is what the journal knows about the current writer.
type SessionData struct {
	UserID   uint
	Username string
	LoginAt  time.Time
}

// GetSessionData returns nil when nobody is logged in.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	userID := sm.GetUserID(r)
	if userID == 0 {
		return nil
	}

	loginAt, _ := sm.Get(r.Context(), SessionKeyLoginAt).(time.Time)
	return &SessionData{
		UserID:   userID,
		Username: sm.GetUsername(r),
		LoginAt:  loginAt,
	}
}
