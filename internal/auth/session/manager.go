package session

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/config"
)

const (
	DefaultCookieName = "wardboard_session"

	keyUserID   = "user_id"
	keyUsername = "username"
	keyRole     = "role"
	keyTheme    = "theme"

	maxAge = 7 * 24 * 60 * 60
)

// Identity is the signed-in user as recorded in the session cookie.
type Identity struct {
	UserID   snowflake.ID
	Username string
	Role     authdomain.Role
}

// Manager keeps the login identity and UI preferences in a signed cookie.
type Manager struct {
	name  string
	store cookie.Store
}

func NewManager(cfg config.Config) *Manager {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   cfg.AuthCookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return &Manager{name: DefaultCookieName, store: store}
}

func (m *Manager) CookieName() string {
	return m.name
}

// Middleware must run before any handler touching the session.
func (m *Manager) Middleware() gin.HandlerFunc {
	return sessions.Sessions(m.name, m.store)
}

func (m *Manager) Login(c *gin.Context, user *authdomain.User) error {
	sess := sessions.Default(c)
	theme, _ := sess.Get(keyTheme).(string)
	sess.Clear()
	sess.Set(keyUserID, user.ID.String())
	sess.Set(keyUsername, user.Username)
	sess.Set(keyRole, string(user.Role))
	if theme != "" {
		sess.Set(keyTheme, theme)
	}
	return sess.Save()
}

func (m *Manager) Logout(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Delete(keyUserID)
	sess.Delete(keyUsername)
	sess.Delete(keyRole)
	return sess.Save()
}

// Current returns the identity stored in the session, if any.
func (m *Manager) Current(c *gin.Context) (Identity, bool) {
	sess := sessions.Default(c)
	rawID, _ := sess.Get(keyUserID).(string)
	if rawID == "" {
		return Identity{}, false
	}
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return Identity{}, false
	}
	username, _ := sess.Get(keyUsername).(string)
	role, _ := sess.Get(keyRole).(string)
	return Identity{UserID: id, Username: username, Role: authdomain.Role(role)}, true
}

// Theme returns the stored theme or fallback.
func (m *Manager) Theme(c *gin.Context, fallback string) string {
	if theme, ok := sessions.Default(c).Get(keyTheme).(string); ok && theme != "" {
		return theme
	}
	return fallback
}

func (m *Manager) SetTheme(c *gin.Context, theme string) error {
	sess := sessions.Default(c)
	sess.Set(keyTheme, theme)
	return sess.Save()
}
