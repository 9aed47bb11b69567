// Package quic 实现 QUIC 传输层
//
// SessionStore 用于 0-RTT 重连：缓存 TLS session ticket，
// 下一次对同一服务端的握手可以携带早期数据。
package quic

import (
	"crypto/tls"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// 确保实现 tls.ClientSessionCache 接口
var _ tls.ClientSessionCache = (*SessionStore)(nil)

// SessionStore TLS 会话缓存
//
// 底层是带 TTL 的 LRU：条目数超限时淘汰最久未用的，
// 超过 TTL 的条目在读取时视为不存在。
type SessionStore struct {
	cache *lru.LRU[string, *tls.ClientSessionState]
	clk   clock.Clock

	mu      sync.Mutex
	hits    uint64
	misses  uint64
	lastPut time.Time
}

// SessionStoreStats 会话缓存统计
type SessionStoreStats struct {
	// Entries 当前条目数
	Entries int
	// Hits 命中次数
	Hits uint64
	// Misses 未命中次数
	Misses uint64
	// LastPut 最近一次写入时间，零值表示尚未写入
	LastPut time.Time
}

// NewSessionStore 创建会话缓存
//
// size <= 0 时使用默认容量，ttl <= 0 时使用默认过期时间。
func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	return newSessionStore(size, ttl, clock.New())
}

func newSessionStore(size int, ttl time.Duration, clk clock.Clock) *SessionStore {
	def := DefaultConfig()
	if size <= 0 {
		size = def.SessionCacheSize
	}
	if ttl <= 0 {
		ttl = def.SessionCacheTTL
	}
	return &SessionStore{
		cache: lru.NewLRU[string, *tls.ClientSessionState](size, nil, ttl),
		clk:   clk,
	}
}

// Get 获取缓存的会话
func (s *SessionStore) Get(sessionKey string) (*tls.ClientSessionState, bool) {
	state, ok := s.cache.Get(sessionKey)

	s.mu.Lock()
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	s.mu.Unlock()

	return state, ok
}

// Put 存储会话
//
// tls 包用 nil 表示清除该键的缓存。
func (s *SessionStore) Put(sessionKey string, cs *tls.ClientSessionState) {
	if cs == nil {
		s.cache.Remove(sessionKey)
		return
	}
	s.cache.Add(sessionKey, cs)

	s.mu.Lock()
	s.lastPut = s.clk.Now()
	s.mu.Unlock()
}

// Stats 返回缓存统计
func (s *SessionStore) Stats() SessionStoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStoreStats{
		Entries: s.cache.Len(),
		Hits:    s.hits,
		Misses:  s.misses,
		LastPut: s.lastPut,
	}
}
