// Package remote - HTTP-клиент сервера PixelVault.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/exp/slog"

	"pixelvault/internal/app/client/config"
	"pixelvault/internal/app/client/vault"
	"pixelvault/internal/domain/account"
	"pixelvault/internal/domain/entry"
)

const userAgent = "PixelVault-Client/1.0"

// rotationChunkBytes - бюджет шифротекстов в одной части ротации. Тело части
// на сервере ограничено 64 MiB, запись - 50 MiB.
const rotationChunkBytes = 32 << 20

// Client не хранит токен: он передается в каждый вызов из vault.Session.
type Client struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
}

func New(cfg *config.Config, log *slog.Logger) *Client {
	client := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}
	return NewWithHTTPClient(cfg.BaseURL(), client, log)
}

func NewWithHTTPClient(baseURL string, client *http.Client, log *slog.Logger) *Client {
	return &Client{
		client:  client,
		log:     log.With("component", "remote"),
		baseURL: baseURL,
	}
}

// HealthCheck проверяет доступность сервера
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/health", "", nil, nil)
}

func (c *Client) Register(ctx context.Context, req account.RegisterRequest) (Registration, error) {
	var out Registration
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", req, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, identity, secret string) (Login, error) {
	var out Login
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{Identity: identity, Secret: secret}, &out)
	return out, err
}

// VerifyMaster разблокирует хранилище для сессии и возвращает соль для вывода ключа.
func (c *Client) VerifyMaster(ctx context.Context, token, master string) ([]byte, error) {
	var out verifyMasterResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-master", token, verifyMasterRequest{MasterSecret: master}, &out); err != nil {
		return nil, err
	}
	return out.KDFSalt, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) Session(ctx context.Context, token string) (State, error) {
	var out State
	err := c.do(ctx, http.MethodGet, "/api/auth/session", token, nil, &out)
	return out, err
}

func (c *Client) Profile(ctx context.Context, token string) (account.Profile, error) {
	var out account.Profile
	err := c.do(ctx, http.MethodGet, "/api/users/profile", token, nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, token string, upd account.ProfileUpdate) (account.Profile, error) {
	var out account.Profile
	err := c.do(ctx, http.MethodPut, "/api/users/profile", token, upd, &out)
	return out, err
}

// ChangePassword меняет пароль аккаунта
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	return c.do(ctx, http.MethodPut, "/api/users/password", token, changeSecretRequest{Current: current, Next: next}, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, token, secret string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/account", token, deleteAccountRequest{Secret: secret}, nil)
}

// RotateMaster меняет мастер-пароль по частям: открывает ротацию, загружает
// новые шифротексты частями не больше rotationChunkBytes и фиксирует все
// одной транзакцией на сервере. При ошибке ротация отменяется.
func (c *Client) RotateMaster(ctx context.Context, token, current, next string, rewrites []entry.Rewrite) error {
	var st rotationResponse
	err := c.do(ctx, http.MethodPost, "/api/users/master/rotations", token, changeSecretRequest{Current: current, Next: next}, &st)
	if err != nil {
		return err
	}
	path := "/api/users/master/rotations/" + url.PathEscape(st.RotationID)

	for _, chunk := range chunkRewrites(rewrites, rotationChunkBytes) {
		if err := c.do(ctx, http.MethodPut, path+"/entries", token, stageRequest{Rewrites: chunk}, nil); err != nil {
			c.abortRotation(ctx, token, path)
			return err
		}
	}

	if err := c.do(ctx, http.MethodPost, path+"/commit", token, nil, nil); err != nil {
		c.abortRotation(ctx, token, path)
		return err
	}
	return nil
}

// abortRotation отменяет ротацию даже после отмены ctx.
func (c *Client) abortRotation(ctx context.Context, token, path string) {
	if err := c.do(context.WithoutCancel(ctx), http.MethodDelete, path, token, nil, nil); err != nil {
		c.log.Warn("не удалось отменить ротацию", "error", err)
	}
}

// chunkRewrites делит шифротексты на части с суммарным размером не больше limit.
// Запись крупнее limit уходит отдельной частью.
func chunkRewrites(rewrites []entry.Rewrite, limit int) [][]entry.Rewrite {
	var (
		chunks [][]entry.Rewrite
		cur    []entry.Rewrite
		size   int
	)
	for _, rw := range rewrites {
		n := len(rw.ID) + len(rw.Ciphertext)
		if len(cur) > 0 && size+n > limit {
			chunks = append(chunks, cur)
			cur, size = nil, 0
		}
		cur = append(cur, rw)
		size += n
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

func (c *Client) List(ctx context.Context, token string) ([]entry.Record, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/api/entries", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *Client) Get(ctx context.Context, token, id string) (entry.Record, error) {
	var out entry.Record
	err := c.do(ctx, http.MethodGet, entryPath(id), token, nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, token string, kind entry.Kind, ciphertext string) (entry.Record, error) {
	var out entry.Record
	err := c.do(ctx, http.MethodPost, "/api/entries", token, createEntryRequest{Kind: kind, Ciphertext: ciphertext}, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, token, id, ciphertext string) (entry.Record, error) {
	var out entry.Record
	err := c.do(ctx, http.MethodPut, entryPath(id), token, updateEntryRequest{Ciphertext: ciphertext}, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, entryPath(id), token, nil, nil)
}

func (c *Client) DeleteAll(ctx context.Context, token string) (int64, error) {
	var out deleteAllResponse
	if err := c.do(ctx, http.MethodDelete, "/api/entries", token, nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) Summary(ctx context.Context, token string) (entry.Summary, error) {
	var out entry.Summary
	err := c.do(ctx, http.MethodGet, "/api/entries/summary", token, nil, &out)
	return out, err
}

func entryPath(id string) string {
	return "/api/entries/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("Отправка запроса", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp, path, result)
}

func (c *Client) parseResponse(resp *http.Response, path string, result any) error {
	// тело ответа не логируем: в нем токены и шифротексты
	c.log.Debug("Получен ответ", "status", resp.StatusCode, "path", path)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Path: path}
		var p problem
		if err := json.NewDecoder(resp.Body).Decode(&p); err == nil {
			apiErr.Detail = p.Detail
		}
		return apiErr
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	return nil
}

var _ vault.Backend = (*Client)(nil)
