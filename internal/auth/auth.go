package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shouni/go-repair-kit/pkg/domain"
)

const (
	// EnvAuthDomain と EnvAuthClientID は IDプロバイダ設定の環境変数名なのだ。
	// テナント固有の値なので、コードに直書きしてはいけないのだ。
	EnvAuthDomain   = "AUTH_DOMAIN"
	EnvAuthClientID = "AUTH_CLIENT_ID"

	callbackAddr = ":8976"
	redirectURL  = "http://localhost:8976/callback"

	sessionDirName  = ".repair-kit"
	sessionFileName = "session.json"
)

// defaultScopes は name と picture を取得するための OIDC スコープなのだ。
var defaultScopes = []string{"openid", "profile"}

// Config は IDプロバイダ（テナント）への接続設定なのだ。
type Config struct {
	Domain   string // 例: your-tenant.auth0.com
	ClientID string
}

// LoadConfig は環境変数から IDプロバイダ設定を読み込むのだ。
// 未設定の項目があれば ConfigurationError を返すのだ。
func LoadConfig() (Config, error) {
	tenantDomain := os.Getenv(EnvAuthDomain)
	if tenantDomain == "" {
		return Config{}, &domain.ConfigurationError{
			Key:    EnvAuthDomain,
			Reason: "IDプロバイダのテナントドメインが設定されていません",
		}
	}
	clientID := os.Getenv(EnvAuthClientID)
	if clientID == "" {
		return Config{}, &domain.ConfigurationError{
			Key:    EnvAuthClientID,
			Reason: "IDプロバイダのクライアントIDが設定されていません",
		}
	}
	return Config{Domain: tenantDomain, ClientID: clientID}, nil
}

// User はログイン中の利用者の表示情報なのだ。
type User struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Session は保存されるログインセッションなのだ。
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Expiry      time.Time `json:"expiry"`
	User        User      `json:"user"`
}

// SessionManager はログインセッションの永続化と認証状態の判定を担うのだ。
type SessionManager struct {
	mu          sync.Mutex
	sessionFile string
	httpClient  *http.Client
	clientID    string

	// 各エンドポイントはテストで差し替えられるようフィールドに持つのだ
	authorizeURL string
	tokenURL     string
	userinfoURL  string
	logoutURL    string

	session *Session
}

// NewSessionManager は設定から SessionManager を初期化するのだ。
// 既存のセッションファイルがあれば読み込むのだ（なくてもエラーにしない）。
func NewSessionManager(cfg Config) (*SessionManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("ホームディレクトリを特定できませんでした: %w", err)
	}

	sm := &SessionManager{
		sessionFile:  filepath.Join(home, sessionDirName, sessionFileName),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		clientID:     cfg.ClientID,
		authorizeURL: fmt.Sprintf("https://%s/authorize", cfg.Domain),
		tokenURL:     fmt.Sprintf("https://%s/oauth/token", cfg.Domain),
		userinfoURL:  fmt.Sprintf("https://%s/userinfo", cfg.Domain),
		logoutURL:    fmt.Sprintf("https://%s/v2/logout", cfg.Domain),
	}
	_ = sm.Load()
	return sm, nil
}

// Load はセッションファイルを読み込むのだ。
func (sm *SessionManager) Load() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	data, err := os.ReadFile(sm.sessionFile)
	if err != nil {
		return err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return err
	}
	sm.session = &session
	return nil
}

// Save はセッションをファイルへ保存するのだ。トークンを含むので 0600 で書くのだ。
func (sm *SessionManager) Save() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.session == nil {
		return nil
	}

	data, err := json.MarshalIndent(sm.session, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(sm.sessionFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(sm.sessionFile, data, 0600)
}

// Clear はメモリ上とファイル上のセッションを破棄するのだ。
func (sm *SessionManager) Clear() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.session = nil
	if err := os.Remove(sm.sessionFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsAuthenticated は有効期限内のセッションを持っているかを返すのだ。
func (sm *SessionManager) IsAuthenticated() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.session != nil &&
		sm.session.AccessToken != "" &&
		time.Now().Before(sm.session.Expiry)
}

// CurrentUser はログイン中の利用者情報を返すのだ。未ログインなら ok=false なのだ。
func (sm *SessionManager) CurrentUser() (User, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.session == nil || sm.session.AccessToken == "" || !time.Now().Before(sm.session.Expiry) {
		return User{}, false
	}
	return sm.session.User, true
}
