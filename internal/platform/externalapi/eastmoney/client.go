package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	instrumententity "stock_sync/internal/feature/instruments/domain/entity"
	instrumentusecase "stock_sync/internal/feature/instruments/usecase"
	priceentity "stock_sync/internal/feature/prices/domain/entity"
	syncerusecase "stock_sync/internal/feature/syncer/usecase"
	"stock_sync/internal/platform/externalapi/eastmoney/dto"
)

// 市場別のフィルタ式。push2 の fs パラメータに渡します。
const (
	fsAllA = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"
	fsSH   = "m:1+t:2,m:1+t:23"
	fsSZ   = "m:0+t:6,m:0+t:80"
)

// Client はEastmoney APIから株式データを取得するクライアントです。
// instruments.DirectoryProvider と syncer.MarketDataProvider を実装します。
type Client struct {
	cfg    Config
	client *http.Client
}

var (
	_ instrumentusecase.DirectoryProvider = (*Client)(nil)
	_ syncerusecase.MarketDataProvider    = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// FetchInstrumentList は全A株のコードと名称を返します（プライマリフィード）。
func (c *Client) FetchInstrumentList(ctx context.Context) ([]instrumententity.Instrument, error) {
	items, err := c.fetchList(ctx, fsAllA, "f12,f14")
	if err != nil {
		return nil, err
	}
	out := make([]instrumententity.Instrument, 0, len(items))
	for _, it := range items {
		if it.Code == "" {
			continue
		}
		out = append(out, instrumententity.Instrument{
			Code: string(it.Code),
			Name: string(it.Name),
		})
	}
	return out, nil
}

// FetchExchangeDirectory は指定取引所（"SH" または "SZ"）の銘柄詳細を返します。
func (c *Client) FetchExchangeDirectory(ctx context.Context, market string) ([]instrumententity.Instrument, error) {
	var fs string
	switch market {
	case "SH":
		fs = fsSH
	case "SZ":
		fs = fsSZ
	default:
		return nil, fmt.Errorf("unknown market %q", market)
	}

	items, err := c.fetchList(ctx, fs, "f12,f14,f100,f102")
	if err != nil {
		return nil, err
	}
	m := market
	out := make([]instrumententity.Instrument, 0, len(items))
	for _, it := range items {
		if it.Code == "" {
			continue
		}
		row := instrumententity.Instrument{
			Code:   string(it.Code),
			Name:   string(it.Name),
			Market: &m,
		}
		if v := string(it.Industry); v != "" {
			row.Industry = &v
		}
		if v := string(it.Area); v != "" {
			row.Area = &v
		}
		out = append(out, row)
	}
	return out, nil
}

// FetchListingDates はコードから上場日（"2006-01-02"形式）への対応表を返します。
func (c *Client) FetchListingDates(ctx context.Context) (map[string]string, error) {
	items, err := c.fetchList(ctx, fsAllA, "f12,f26")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, it := range items {
		raw := string(it.ListDate)
		if it.Code == "" || raw == "" || raw == "0" {
			continue
		}
		d, err := time.Parse("20060102", raw)
		if err != nil {
			continue // 不正な日付は黙って飛ばす
		}
		out[string(it.Code)] = d.Format(priceentity.DateLayout)
	}
	return out, nil
}

// FetchPriceHistory は [start, end] の日次前復権OHLCVを返します。
func (c *Client) FetchPriceHistory(ctx context.Context, code string, start, end time.Time) ([]priceentity.PricePoint, error) {
	q := url.Values{}
	q.Set("secid", secID(code))
	q.Set("klt", "101")  // 日足
	q.Set("fqt", "1")    // 前復権
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))

	u := fmt.Sprintf("%s/api/qt/stock/kline/get?%s", c.cfg.HistBaseURL, q.Encode())

	var body dto.KlineResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, nil
	}

	points := make([]priceentity.PricePoint, 0, len(body.Data.Klines))
	for _, line := range body.Data.Klines {
		p, err := parseKline(code, line)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// FetchConceptNames は銘柄が属する板块（概念・業種）の名称一覧を返します。
func (c *Client) FetchConceptNames(ctx context.Context, code string) ([]string, error) {
	q := url.Values{}
	q.Set("secid", secID(code))
	q.Set("spt", "3") // 所属板块
	q.Set("fields", "f12,f14")

	u := fmt.Sprintf("%s/api/qt/slist/get?%s", c.cfg.ConceptBaseURL, q.Encode())

	var body dto.ListResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, nil
	}

	names := make([]string, 0, len(body.Data.Diff))
	for _, it := range body.Data.Diff {
		if n := string(it.Name); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}

// fetchList は clist エンドポイントを1ページ（最大5万件）で取得します。
func (c *Client) fetchList(ctx context.Context, fs, fields string) ([]dto.ListItem, error) {
	q := url.Values{}
	q.Set("pn", "1")
	q.Set("pz", "50000")
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fid", "f12")
	q.Set("fs", fs)
	q.Set("fields", fields)

	u := fmt.Sprintf("%s/api/qt/clist/get?%s", c.cfg.ListBaseURL, q.Encode())

	var body dto.ListResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, nil
	}
	return body.Data.Diff, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("eastmoney http %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode eastmoney response: %w", err)
	}
	return nil
}

// secID はコードをEastmoneyのsecid形式に変換します。上海は "1."、深圳は "0." を前置します。
func secID(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") {
		return "1." + code
	}
	return "0." + code
}

// parseKline は "日付,始値,終値,高値,安値,出来高,成交額,振幅,涨跌幅,涨跌額,換手率" 形式の
// 1行をPricePointに変換します。
func parseKline(code, line string) (priceentity.PricePoint, error) {
	f := strings.Split(line, ",")
	if len(f) < 6 {
		return priceentity.PricePoint{}, fmt.Errorf("malformed kline %q", line)
	}

	p := priceentity.PricePoint{Code: code, Date: f[0]}
	if _, err := time.Parse(priceentity.DateLayout, p.Date); err != nil {
		return priceentity.PricePoint{}, fmt.Errorf("parse kline date %q: %w", f[0], err)
	}

	var err error
	if p.Open, err = strconv.ParseFloat(f[1], 64); err != nil {
		return priceentity.PricePoint{}, fmt.Errorf("parse open %q: %w", f[1], err)
	}
	if p.Close, err = strconv.ParseFloat(f[2], 64); err != nil {
		return priceentity.PricePoint{}, fmt.Errorf("parse close %q: %w", f[2], err)
	}
	if p.High, err = strconv.ParseFloat(f[3], 64); err != nil {
		return priceentity.PricePoint{}, fmt.Errorf("parse high %q: %w", f[3], err)
	}
	if p.Low, err = strconv.ParseFloat(f[4], 64); err != nil {
		return priceentity.PricePoint{}, fmt.Errorf("parse low %q: %w", f[4], err)
	}
	if p.Volume, err = strconv.ParseFloat(f[5], 64); err != nil {
		return priceentity.PricePoint{}, fmt.Errorf("parse volume %q: %w", f[5], err)
	}

	// 以降の列は提供元が省略することがあるため、欠損は0のままにする
	if len(f) > 6 {
		p.Amount, _ = strconv.ParseFloat(f[6], 64)
	}
	if len(f) > 8 {
		p.PctChange, _ = strconv.ParseFloat(f[8], 64)
	}
	if len(f) > 10 {
		p.TurnoverRate, _ = strconv.ParseFloat(f[10], 64)
	}
	return p, nil
}
