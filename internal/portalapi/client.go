// 包 portalapi：门户 REST 接口客户端（会话 Cookie + CSRF），负责拉取按城市聚合的会员数据
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"saha-map/internal/logger"
	"saha-map/internal/regionindex"
)

const (
	csrfCookie = "csrftoken"
	csrfHeader = "X-CSRFToken"
	csrfPath   = "csrf/"
	loginPath  = "login/"
	// DefaultFeedPath：按城市聚合的会员接口
	DefaultFeedPath = "members/by-city/"
)

var (
	// ErrFeedUnsuccessful：接口返回 success=false
	ErrFeedUnsuccessful = errors.New("member feed reported success=false")
	// ErrUnauthorized：会话无效且无法登录
	ErrUnauthorized = errors.New("portal rejected the session")
)

// Config：客户端参数
type Config struct {
	BaseURL  string
	FeedPath string
	Username string
	Password string
	Timeout  time.Duration
}

// Client：带 Cookie 罐的门户客户端
// 约束：对 POST/PUT/PATCH/DELETE 先确保 csrftoken Cookie，再以 X-CSRFToken 头回传。
type Client struct {
	base     *url.URL
	feedPath string
	username string
	password string
	hc       *http.Client
}

// New：创建客户端；BaseURL 形如 http://127.0.0.1:8000/api/
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("portal base url is empty")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("portal base url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	feed := strings.TrimPrefix(cfg.FeedPath, "/")
	if feed == "" {
		feed = DefaultFeedPath
	}
	return &Client{
		base:     base,
		feedPath: feed,
		username: cfg.Username,
		password: cfg.Password,
		hc:       &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

func (c *Client) resolve(path string) *url.URL {
	return c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.hc.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// csrfToken：读取 Cookie 中的令牌，缺失时先请求 csrf/ 获取
// 获取失败只记录日志，请求照常发出，由服务端决定是否拒绝。
func (c *Client) csrfToken(ctx context.Context) string {
	if tok := c.cookie(csrfCookie); tok != "" {
		return tok
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(csrfPath).String(), nil)
	if err == nil {
		var resp *http.Response
		resp, err = c.hc.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}
	if err != nil {
		logger.L().Warn("portal_csrf_fetch_failed", "err", err)
		return ""
	}
	return c.cookie(csrfCookie)
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// do：发送请求并返回响应体；非 2xx 视为错误
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	u := c.resolve(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if unsafeMethod(method) {
		if tok := c.csrfToken(ctx); tok != "" {
			req.Header.Set(csrfHeader, tok)
		}
		req.Header.Set("Referer", c.base.String())
	}
	t0 := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("portal %s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	logger.L().Debug("portal_resp", "method", method, "path", u.Path, "status", resp.StatusCode, "bytes", len(data), "duration_ms", time.Since(t0).Milliseconds())
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("portal %s %s: %w", method, u.Path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return data, resp.StatusCode, fmt.Errorf("portal %s %s: %w (status %d)", method, u.Path, ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		return data, resp.StatusCode, fmt.Errorf("portal %s %s: status %d", method, u.Path, resp.StatusCode)
	}
	return data, resp.StatusCode, nil
}

// HasCredentials：是否配置了服务账号
func (c *Client) HasCredentials() bool { return c.username != "" }

// Login：以服务账号建立会话；未配置账号时直接返回
func (c *Client) Login(ctx context.Context) error {
	if !c.HasCredentials() {
		return nil
	}
	_, _, err := c.do(ctx, http.MethodPost, loginPath, map[string]string{"username": c.username, "password": c.password})
	if err != nil {
		return fmt.Errorf("portal login: %w", err)
	}
	logger.L().Info("portal_login_ok", "user", c.username)
	return nil
}

type feedEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// FetchCityMembers：拉取会员数据并按接口键顺序构建索引
// 会话失效且配置了账号时登录后重试一次。
func (c *Client) FetchCityMembers(ctx context.Context) (*regionindex.CityMemberIndex, error) {
	data, _, err := c.do(ctx, http.MethodGet, c.feedPath, nil)
	if errors.Is(err, ErrUnauthorized) && c.HasCredentials() {
		if lerr := c.Login(ctx); lerr != nil {
			return nil, lerr
		}
		data, _, err = c.do(ctx, http.MethodGet, c.feedPath, nil)
	}
	if err != nil {
		return nil, err
	}
	return DecodeFeed(data)
}

// DecodeFeed：解析 {success, data} 信封
func DecodeFeed(raw []byte) (*regionindex.CityMemberIndex, error) {
	var env feedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode member feed: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrFeedUnsuccessful, msg)
		}
		return nil, ErrFeedUnsuccessful
	}
	return regionindex.DecodeCityMembers(env.Data)
}
