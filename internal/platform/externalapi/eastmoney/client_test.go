package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig(serverURL string) Config {
	return Config{
		ListBaseURL:    serverURL,
		HistBaseURL:    serverURL,
		ConceptBaseURL: serverURL,
		Timeout:        10 * time.Second,
	}
}

func TestClient_FetchInstrumentList_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/qt/clist/get") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("fields") != "f12,f14" {
			t.Errorf("expected fields f12,f14, got %s", r.URL.Query().Get("fields"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"rc": 0,
			"data": {
				"total": 2,
				"diff": [
					{"f12": "000001", "f14": "平安银行"},
					{"f12": "600519", "f14": "贵州茅台"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	list, err := client.FetchInstrumentList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(list))
	}
	if list[0].Code != "000001" || list[0].Name != "平安银行" {
		t.Errorf("unexpected first instrument: %+v", list[0])
	}
}

func TestClient_FetchInstrumentList_NumericCode(t *testing.T) {
	t.Parallel()

	// 提供元はコードを数値で返すことがある
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"rc": 0, "data": {"total": 1, "diff": [{"f12": 600519, "f14": "贵州茅台"}]}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	list, err := client.FetchInstrumentList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Code != "600519" {
		t.Errorf("expected numeric code to decode as string, got %+v", list)
	}
}

func TestClient_FetchExchangeDirectory(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fs := r.URL.Query().Get("fs"); fs != fsSH {
			t.Errorf("expected SH filter, got %s", fs)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"rc": 0,
			"data": {
				"total": 1,
				"diff": [
					{"f12": "600519", "f14": "贵州茅台", "f100": "酿酒行业", "f102": "贵州"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	list, err := client.FetchExchangeDirectory(context.Background(), "SH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 instrument, got %d", len(list))
	}
	row := list[0]
	if row.Industry == nil || *row.Industry != "酿酒行业" {
		t.Errorf("expected industry 酿酒行业, got %v", row.Industry)
	}
	if row.Area == nil || *row.Area != "贵州" {
		t.Errorf("expected area 贵州, got %v", row.Area)
	}
	if row.Market == nil || *row.Market != "SH" {
		t.Errorf("expected market SH, got %v", row.Market)
	}
}

func TestClient_FetchExchangeDirectory_UnknownMarket(t *testing.T) {
	t.Parallel()

	client := NewClient(testConfig("http://unused.invalid"), &http.Client{})

	_, err := client.FetchExchangeDirectory(context.Background(), "NYSE")
	if err == nil {
		t.Fatal("expected error for unknown market, got nil")
	}
	if !strings.Contains(err.Error(), "unknown market") {
		t.Errorf("expected unknown market error, got %v", err)
	}
}

func TestClient_FetchListingDates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"rc": 0,
			"data": {
				"total": 3,
				"diff": [
					{"f12": "000001", "f26": "19910403"},
					{"f12": "600519", "f26": 20010827},
					{"f12": "689009", "f26": "0"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	dates, err := client.FetchListingDates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %d: %v", len(dates), dates)
	}
	if dates["000001"] != "1991-04-03" {
		t.Errorf("expected 1991-04-03, got %s", dates["000001"])
	}
	if dates["600519"] != "2001-08-27" {
		t.Errorf("expected 2001-08-27, got %s", dates["600519"])
	}
}

func TestClient_FetchPriceHistory_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("secid") != "1.600519" {
			t.Errorf("expected secid 1.600519, got %s", q.Get("secid"))
		}
		if q.Get("klt") != "101" {
			t.Errorf("expected klt 101, got %s", q.Get("klt"))
		}
		if q.Get("fqt") != "1" {
			t.Errorf("expected fqt 1, got %s", q.Get("fqt"))
		}
		if q.Get("beg") != "20240110" || q.Get("end") != "20240115" {
			t.Errorf("unexpected window beg=%s end=%s", q.Get("beg"), q.Get("end"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"rc": 0,
			"data": {
				"code": "600519",
				"name": "贵州茅台",
				"klines": [
					"2024-01-10,1650.00,1660.00,1665.00,1645.00,25000,41200000.0,1.21,0.61,10.00,0.20",
					"2024-01-11,1660.00,1655.00,1668.00,1652.00,23000,38100000.0,0.96,-0.30,-5.00,0.18"
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	points, err := client.FetchPriceHistory(context.Background(), "600519", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}

	p := points[0]
	if p.Code != "600519" || p.Date != "2024-01-10" {
		t.Errorf("unexpected key: %s %s", p.Code, p.Date)
	}
	if p.Open != 1650.00 || p.Close != 1660.00 || p.High != 1665.00 || p.Low != 1645.00 {
		t.Errorf("unexpected OHLC: %+v", p)
	}
	if p.Volume != 25000 {
		t.Errorf("expected volume 25000, got %f", p.Volume)
	}
	if p.Amount != 41200000.0 {
		t.Errorf("expected amount 41200000.0, got %f", p.Amount)
	}
	if p.PctChange != 0.61 {
		t.Errorf("expected pct change 0.61, got %f", p.PctChange)
	}
	if p.TurnoverRate != 0.20 {
		t.Errorf("expected turnover rate 0.20, got %f", p.TurnoverRate)
	}
}

func TestClient_FetchPriceHistory_Empty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"rc": 0, "data": null}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	points, err := client.FetchPriceHistory(context.Background(), "000001",
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected 0 points, got %d", len(points))
	}
}

func TestClient_FetchPriceHistory_MalformedKline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kline    string
		errField string
	}{
		{"too few fields", "2024-01-10,1650.00", "malformed kline"},
		{"bad date", "not-a-date,1.0,2.0,3.0,4.0,5", "parse kline date"},
		{"bad open", "2024-01-10,abc,2.0,3.0,4.0,5", "parse open"},
		{"bad close", "2024-01-10,1.0,abc,3.0,4.0,5", "parse close"},
		{"bad high", "2024-01-10,1.0,2.0,abc,4.0,5", "parse high"},
		{"bad low", "2024-01-10,1.0,2.0,3.0,abc,5", "parse low"},
		{"bad volume", "2024-01-10,1.0,2.0,3.0,4.0,abc", "parse volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"rc": 0, "data": {"code": "000001", "klines": ["` + tt.kline + `"]}}`))
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL), server.Client())

			_, err := client.FetchPriceHistory(context.Background(), "000001",
				time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errField) {
				t.Errorf("expected error containing %q, got %v", tt.errField, err)
			}
		})
	}
}

func TestClient_FetchConceptNames(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/qt/slist/get") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("secid") != "0.000001" {
			t.Errorf("expected secid 0.000001, got %s", r.URL.Query().Get("secid"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"rc": 0,
			"data": {
				"total": 3,
				"diff": [
					{"f12": "BK0475", "f14": "银行"},
					{"f12": "BK0804", "f14": "深成500"},
					{"f12": "BK0000", "f14": ""}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	names, err := client.FetchConceptNames(context.Background(), "000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d: %v", len(names), names)
	}
	if names[0] != "银行" || names[1] != "深成500" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad request", http.StatusBadRequest},
		{"forbidden", http.StatusForbidden},
		{"internal server error", http.StatusInternalServerError},
		{"service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL), server.Client())

			_, err := client.FetchInstrumentList(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "eastmoney http") {
				t.Errorf("expected HTTP error message, got %v", err)
			}
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	_, err := client.FetchConceptNames(context.Background(), "000001")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.FetchInstrumentList(ctx)
	if err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}

func TestSecID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"600519", "1.600519"},
		{"688981", "1.688981"},
		{"900901", "1.900901"},
		{"000001", "0.000001"},
		{"300750", "0.300750"},
		{"002594", "0.002594"},
	}

	for _, tt := range tests {
		if got := secID(tt.code); got != tt.want {
			t.Errorf("secID(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Timeout != 15*time.Second {
		t.Errorf("expected timeout 15s, got %v", cfg.Timeout)
	}
	if !strings.Contains(cfg.ListBaseURL, "push2") {
		t.Errorf("unexpected list base URL %s", cfg.ListBaseURL)
	}
}
