// Package dto defines data transfer objects for the Eastmoney quote API responses.
package dto

import (
	"bytes"
	"encoding/json"
)

// FlexString tolerates the API's habit of returning either a JSON string,
// a number, or "-" / null for absent values. Absent values decode to "".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "-" {
			s = ""
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// ListItem is one row of a clist/slist response.
type ListItem struct {
	Code     FlexString `json:"f12"`
	Name     FlexString `json:"f14"`
	Industry FlexString `json:"f100"`
	Area     FlexString `json:"f102"`
	ListDate FlexString `json:"f26"` // yyyymmdd
}

// ListResponse is the envelope of the clist/slist endpoints.
type ListResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Total int        `json:"total"`
		Diff  []ListItem `json:"diff"`
	} `json:"data"`
}

// KlineResponse is the envelope of the stock/kline/get endpoint.
// Each kline is a comma-separated record:
// date,open,close,high,low,volume,amount,amplitude,pct_change,change,turnover_rate
type KlineResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}
