package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shouni/go-repair-kit/pkg/domain"
)

// AuthFlowResult は認可フロー開始時に生成される値の束なのだ。
// Verifier と State はコールバック処理まで保持する必要があるのだ。
type AuthFlowResult struct {
	Verifier string
	State    string
	AuthURL  string
}

// StartLogin は PKCE チャレンジ（S256）と認可URLを生成するのだ。
func (sm *SessionManager) StartLogin() (*AuthFlowResult, error) {
	verifierBytes := make([]byte, 32)
	if _, err := rand.Read(verifierBytes); err != nil {
		return nil, err
	}
	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)

	hash := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(hash[:])

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return nil, err
	}
	state := base64.RawURLEncoding.EncodeToString(stateBytes)

	u, err := url.Parse(sm.authorizeURL)
	if err != nil {
		return nil, fmt.Errorf("認可URLの解析に失敗しました: %w", err)
	}
	q := u.Query()
	q.Set("client_id", sm.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURL)
	q.Set("scope", strings.Join(defaultScopes, " "))
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return &AuthFlowResult{
		Verifier: verifier,
		State:    state,
		AuthURL:  u.String(),
	}, nil
}

// WaitForCallback はループバックのHTTPサーバーを立てて認可コードの戻りを待つのだ。
func (sm *SessionManager) WaitForCallback(ctx context.Context, expectedState string) (string, error) {
	// タイムアウトで先に抜けた後にコールバックが届いても、ハンドラーが
	// 送信でブロックしないよう容量1のバッファを持たせるのだ。
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		state := q.Get("state")
		code := q.Get("code")
		errStr := q.Get("error")

		if state != expectedState {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			errChan <- fmt.Errorf("state が一致しません")
			return
		}

		if errStr != "" {
			http.Error(w, "Login failed: "+errStr, http.StatusBadRequest)
			errChan <- fmt.Errorf("ログインが拒否されました: %s", errStr)
			return
		}

		if code == "" {
			http.Error(w, "No code received", http.StatusBadRequest)
			errChan <- fmt.Errorf("認可コードが届きませんでした")
			return
		}

		w.Write([]byte("Login successful! You can close this window and return to the terminal."))
		codeChan <- code
	})

	server := &http.Server{Addr: callbackAddr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	defer server.Close()

	select {
	case code := <-codeChan:
		return code, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ExchangeCode は認可コードをトークンへ交換し、ユーザー情報を取得して
// セッションとして保存するのだ。通信の失敗は TransportError になるのだ。
func (sm *SessionManager) ExchangeCode(ctx context.Context, code, verifier string) (*Session, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", sm.clientID)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURL)
	form.Set("code_verifier", verifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sm.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := sm.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "トークン交換", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.TransportError{
			Op:  "トークン交換",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("トークン応答の解析に失敗しました: %w", err)
	}

	user, err := sm.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	session := &Session{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		Expiry:      time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		User:        user,
	}

	sm.mu.Lock()
	sm.session = session
	sm.mu.Unlock()

	if err := sm.Save(); err != nil {
		return nil, fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}
	return session, nil
}

// fetchUserInfo は userinfo エンドポイントから表示名とアイコンを取得するのだ。
func (sm *SessionManager) fetchUserInfo(ctx context.Context, accessToken string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sm.userinfoURL, nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := sm.httpClient.Do(req)
	if err != nil {
		return User{}, &domain.TransportError{Op: "ユーザー情報の取得", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return User{}, &domain.TransportError{
			Op:  "ユーザー情報の取得",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("ユーザー情報の解析に失敗しました: %w", err)
	}
	return user, nil
}

// LogoutURL は returnTo 付きのログアウトURLを生成するのだ。
// returnTo はログアウト後にブラウザを戻す先なのだ（空なら省略）。
func (sm *SessionManager) LogoutURL(returnTo string) string {
	u, err := url.Parse(sm.logoutURL)
	if err != nil {
		return sm.logoutURL
	}
	q := u.Query()
	q.Set("client_id", sm.clientID)
	if returnTo != "" {
		q.Set("returnTo", returnTo)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Logout はローカルのセッションを破棄し、ブラウザで開くべきログアウトURLを返すのだ。
// プロバイダ側のセッション失効はそのURLを開いたときに行われるのだ。
func (sm *SessionManager) Logout(returnTo string) (string, error) {
	if err := sm.Clear(); err != nil {
		return "", err
	}
	return sm.LogoutURL(returnTo), nil
}
