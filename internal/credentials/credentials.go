package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/craiggwilson/augment-opencode/pkg/utils"
)

// Session 对应 auggie login 写入的会话文件（~/.augment/session.json）。
// TenantURL 形如 https://d1.api.augmentcode.com/，带尾部斜杠。
type Session struct {
	AccessToken string `json:"accessToken"`
	TenantURL   string `json:"tenantURL"`
}

var (
	cacheMu     sync.Mutex
	cached      *Session
	cachedPath  string
	cachedMtime time.Time
)

// DefaultPath 返回默认会话文件路径 ~/.augment/session.json。
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".augment", "session.json"), nil
}

// Get 返回会话凭证；path 为空时使用默认路径。
// 结果按文件 mtime 缓存，文件被 auggie 重新登录覆盖后下次调用自动重新加载。
func Get(path string) (*Session, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat credentials %s: %w", path, err)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached != nil && cachedPath == path && info.ModTime().Equal(cachedMtime) {
		return cached, nil
	}

	s, err := load(path)
	if err != nil {
		return nil, err
	}
	cached = s
	cachedPath = path
	cachedMtime = info.ModTime()
	return s, nil
}

// Reload 清空缓存，下次 Get 强制重新读文件。
func Reload() {
	cacheMu.Lock()
	cached = nil
	cachedPath = ""
	cacheMu.Unlock()
}

func load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if strings.TrimSpace(s.AccessToken) == "" {
		return nil, fmt.Errorf("credentials %s: missing accessToken, run `auggie login` first", path)
	}
	if strings.TrimSpace(s.TenantURL) == "" {
		return nil, fmt.Errorf("credentials %s: missing tenantURL", path)
	}

	// access token 是上游签发的 JWT；这里只读 exp 做过期提示，不做签名校验（密钥在上游）。
	if exp, ok := tokenExpiry(s.AccessToken); ok && time.Now().After(exp) {
		utils.Logger.Warnf("credentials: access token expired at %s, upstream will reject requests until re-login", exp.Format(time.RFC3339))
	}

	return &s, nil
}

// tokenExpiry 从 JWT 的 exp 声明取过期时间；token 不是 JWT 或没有 exp 时返回 false。
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
