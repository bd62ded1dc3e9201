package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部データ提供元への呼び出し用に設定されたHTTPクライアントを作成します。
// http.DefaultClient にはタイムアウトがないため、必ずこのクライアントを使うこと。
// 同期は単一スレッドで直列に走るため、多くの接続は不要だがkeep-aliveで
// 同一ホストへの連続リクエストを再利用する。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
