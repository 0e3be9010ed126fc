package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-repair-kit/pkg/domain"
)

// newTestSessionManager はテスト用エンドポイントへ向けた SessionManager を作るのだ。
func newTestSessionManager(t *testing.T, tokenURL, userinfoURL string) *SessionManager {
	t.Helper()
	return &SessionManager{
		sessionFile:  filepath.Join(t.TempDir(), "session.json"),
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		clientID:     "test-client-id",
		authorizeURL: "https://tenant.example.com/authorize",
		tokenURL:     tokenURL,
		userinfoURL:  userinfoURL,
		logoutURL:    "https://tenant.example.com/v2/logout",
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("両方の環境変数が揃っていれば読み込めるのだ", func(t *testing.T) {
		t.Setenv(EnvAuthDomain, "tenant.example.com")
		t.Setenv(EnvAuthClientID, "client-123")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if cfg.Domain != "tenant.example.com" || cfg.ClientID != "client-123" {
			t.Errorf("読み込んだ設定が不正: %+v", cfg)
		}
	})

	t.Run("テナントドメイン未設定は ConfigurationError なのだ", func(t *testing.T) {
		t.Setenv(EnvAuthDomain, "")
		t.Setenv(EnvAuthClientID, "client-123")

		_, err := LoadConfig()
		var confErr *domain.ConfigurationError
		if !errors.As(err, &confErr) {
			t.Fatalf("ConfigurationError が欲しいが %T: %v", err, err)
		}
		if confErr.Key != EnvAuthDomain {
			t.Errorf("Key = %q, want %q", confErr.Key, EnvAuthDomain)
		}
	})

	t.Run("クライアントID未設定は ConfigurationError なのだ", func(t *testing.T) {
		t.Setenv(EnvAuthDomain, "tenant.example.com")
		t.Setenv(EnvAuthClientID, "")

		_, err := LoadConfig()
		var confErr *domain.ConfigurationError
		if !errors.As(err, &confErr) {
			t.Fatalf("ConfigurationError が欲しいが %T: %v", err, err)
		}
		if confErr.Key != EnvAuthClientID {
			t.Errorf("Key = %q, want %q", confErr.Key, EnvAuthClientID)
		}
	})
}

func TestStartLogin(t *testing.T) {
	sm := newTestSessionManager(t, "https://unused", "https://unused")

	flow, err := sm.StartLogin()
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if flow.Verifier == "" || flow.State == "" {
		t.Fatal("Verifier / State が空なのだ")
	}

	u, err := url.Parse(flow.AuthURL)
	if err != nil {
		t.Fatalf("認可URLが解析できない: %v", err)
	}
	q := u.Query()

	if q.Get("client_id") != "test-client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
	if q.Get("redirect_uri") != redirectURL {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("code_challenge_method") != "S256" {
		t.Errorf("code_challenge_method = %q", q.Get("code_challenge_method"))
	}
	if q.Get("state") != flow.State {
		t.Errorf("state = %q, want %q", q.Get("state"), flow.State)
	}
	if !strings.Contains(q.Get("scope"), "openid") || !strings.Contains(q.Get("scope"), "profile") {
		t.Errorf("scope = %q", q.Get("scope"))
	}

	// チャレンジは検証コードのSHA-256と一致するはずなのだ
	hash := sha256.Sum256([]byte(flow.Verifier))
	wantChallenge := base64.RawURLEncoding.EncodeToString(hash[:])
	if q.Get("code_challenge") != wantChallenge {
		t.Errorf("code_challenge = %q, want %q", q.Get("code_challenge"), wantChallenge)
	}
}

func TestWaitForCallback(t *testing.T) {
	sm := newTestSessionManager(t, "https://unused", "https://unused")

	t.Run("コールバックが来なければタイムアウトで抜けるのだ", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := sm.WaitForCallback(ctx, "state-1")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("タイムアウト後でもポートを取り直して待ち受けられるのだ", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		type result struct {
			code string
			err  error
		}
		resCh := make(chan result, 1)
		go func() {
			code, err := sm.WaitForCallback(ctx, "state-2")
			resCh <- result{code: code, err: err}
		}()

		// サーバーの起動を待ちながらコールバックを届けるのだ
		callbackURL := "http://localhost:8976/callback?state=state-2&code=auth-code-42"
		var resp *http.Response
		var err error
		for i := 0; i < 50; i++ {
			resp, err = http.Get(callbackURL)
			if err == nil {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
		if err != nil {
			t.Fatalf("コールバックを届けられなかったのだ: %v", err)
		}
		resp.Body.Close()

		res := <-resCh
		if res.err != nil {
			t.Fatalf("予期しないエラー: %v", res.err)
		}
		if res.code != "auth-code-42" {
			t.Errorf("code = %q, want auth-code-42", res.code)
		}
	})
}

func TestExchangeCode(t *testing.T) {
	t.Run("コード交換でセッションが保存されるのだ", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("フォーム解析に失敗: %v", err)
			}
			if r.PostForm.Get("grant_type") != "authorization_code" {
				t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
			}
			if r.PostForm.Get("code") != "auth-code-1" {
				t.Errorf("code = %q", r.PostForm.Get("code"))
			}
			if r.PostForm.Get("code_verifier") != "verifier-1" {
				t.Errorf("code_verifier = %q", r.PostForm.Get("code_verifier"))
			}
			if r.PostForm.Get("client_id") != "test-client-id" {
				t.Errorf("client_id = %q", r.PostForm.Get("client_id"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "token-xyz",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}))
		defer tokenSrv.Close()

		userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer token-xyz" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			json.NewEncoder(w).Encode(map[string]string{
				"name":    "Zunda Mon",
				"picture": "https://cdn.example.com/zunda.png",
			})
		}))
		defer userSrv.Close()

		sm := newTestSessionManager(t, tokenSrv.URL, userSrv.URL)

		session, err := sm.ExchangeCode(context.Background(), "auth-code-1", "verifier-1")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if session.User.Name != "Zunda Mon" {
			t.Errorf("User.Name = %q", session.User.Name)
		}
		if session.User.Picture != "https://cdn.example.com/zunda.png" {
			t.Errorf("User.Picture = %q", session.User.Picture)
		}
		if !sm.IsAuthenticated() {
			t.Error("交換後に認証済みになっていない")
		}

		info, err := os.Stat(sm.sessionFile)
		if err != nil {
			t.Fatalf("セッションファイルが存在しない: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("セッションファイルの権限 = %o, want 0600", info.Mode().Perm())
		}
	})

	t.Run("トークンエンドポイントの失敗は TransportError なのだ", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusForbidden)
		}))
		defer tokenSrv.Close()

		sm := newTestSessionManager(t, tokenSrv.URL, "https://unused")

		_, err := sm.ExchangeCode(context.Background(), "bad-code", "verifier")
		var transport *domain.TransportError
		if !errors.As(err, &transport) {
			t.Fatalf("TransportError が欲しいが %T: %v", err, err)
		}
		if sm.IsAuthenticated() {
			t.Error("失敗したのに認証済みになっている")
		}
	})
}

func TestSessionManager_状態判定(t *testing.T) {
	t.Run("セッションがなければ未認証なのだ", func(t *testing.T) {
		sm := newTestSessionManager(t, "https://unused", "https://unused")
		if sm.IsAuthenticated() {
			t.Error("空のセッションで認証済みになっている")
		}
		if _, ok := sm.CurrentUser(); ok {
			t.Error("空のセッションでユーザーが取れている")
		}
	})

	t.Run("期限切れセッションは未認証なのだ", func(t *testing.T) {
		sm := newTestSessionManager(t, "https://unused", "https://unused")
		sm.session = &Session{
			AccessToken: "stale",
			Expiry:      time.Now().Add(-time.Hour),
			User:        User{Name: "Old"},
		}
		if sm.IsAuthenticated() {
			t.Error("期限切れで認証済みになっている")
		}
		if _, ok := sm.CurrentUser(); ok {
			t.Error("期限切れでユーザーが取れている")
		}
	})

	t.Run("保存と読み込みでセッションが往復するのだ", func(t *testing.T) {
		sm := newTestSessionManager(t, "https://unused", "https://unused")
		sm.session = &Session{
			AccessToken: "token",
			Expiry:      time.Now().Add(time.Hour),
			User:        User{Name: "Zunda Mon", Picture: "https://cdn.example.com/z.png"},
		}
		if err := sm.Save(); err != nil {
			t.Fatalf("保存に失敗: %v", err)
		}

		reloaded := newTestSessionManager(t, "https://unused", "https://unused")
		reloaded.sessionFile = sm.sessionFile
		if err := reloaded.Load(); err != nil {
			t.Fatalf("読み込みに失敗: %v", err)
		}
		user, ok := reloaded.CurrentUser()
		if !ok || user.Name != "Zunda Mon" {
			t.Errorf("往復したユーザーが不正: %+v ok=%v", user, ok)
		}
	})
}

func TestLogout(t *testing.T) {
	sm := newTestSessionManager(t, "https://unused", "https://unused")
	sm.session = &Session{
		AccessToken: "token",
		Expiry:      time.Now().Add(time.Hour),
		User:        User{Name: "Zunda Mon"},
	}
	if err := sm.Save(); err != nil {
		t.Fatalf("保存に失敗: %v", err)
	}

	logoutURL, err := sm.Logout("https://app.example.com/goodbye")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	u, err := url.Parse(logoutURL)
	if err != nil {
		t.Fatalf("ログアウトURLが解析できない: %v", err)
	}
	if u.Query().Get("client_id") != "test-client-id" {
		t.Errorf("client_id = %q", u.Query().Get("client_id"))
	}
	if u.Query().Get("returnTo") != "https://app.example.com/goodbye" {
		t.Errorf("returnTo = %q", u.Query().Get("returnTo"))
	}

	if sm.IsAuthenticated() {
		t.Error("ログアウト後も認証済みになっている")
	}
	if _, err := os.Stat(sm.sessionFile); !os.IsNotExist(err) {
		t.Error("ログアウト後もセッションファイルが残っている")
	}
}
