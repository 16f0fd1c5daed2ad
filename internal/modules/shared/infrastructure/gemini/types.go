package gemini

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// generateContentRequest generateContent のリクエストボディ
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateContentResponse generateContent のレスポンス（読むのは先頭テキストのみ）
type generateContentResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// newRequest 式から1件のテキストpartを持つリクエストを作成
func newRequest(prompt string) generateContentRequest {
	return generateContentRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
	}
}

// errMalformed 応答JSONに candidates[0].content.parts[0].text が無い
var errMalformed = errors.New("response has no candidates[0].content.parts[0].text")

// parseResponse 応答ボディを検証し、先頭テキストを取り出す
//
// JSONとして解析できない場合は解析エラー、構造や型が期待と違う場合は errMalformed を返す。
func parseResponse(body []byte) (string, error) {
	if !json.Valid(body) {
		var raw json.RawMessage
		return "", json.Unmarshal(body, &raw)
	}

	// 型の合わない値はスキップされ、残りは読み込まれる
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return "", errMalformed
		}
	}
	if len(resp.Candidates) == 0 {
		return "", errMalformed
	}
	c := resp.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return "", errMalformed
	}
	text := c.Parts[0].Text
	if text == nil || *text == "" {
		return "", errMalformed
	}
	return *text, nil
}

// redactError *url.Error に含まれるURLからAPIキーを取り除く
func redactError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	redacted := *ue
	redacted.URL = redactURL(ue.URL)
	return &redacted
}

// redactURL クエリパラメータ key の値を伏せる
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.Index(raw, "?"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
