package errx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

func TestStatusToCode(t *testing.T) {
	tests := []struct {
		status int
		want   Code
	}{
		{0, CodeNetwork},
		{400, CodeValidation},
		{401, CodeAuth},
		{403, CodeForbidden},
		{404, CodeNotFound},
		{408, CodeTimeout},
		{409, CodeConflict},
		{429, CodeRateLimit},
		{500, CodeServer},
		{502, CodeServer},
		{503, CodeServer},
		{599, CodeServer},
		{402, CodeAPI},
		{418, CodeAPI},
		{422, CodeAPI},
		{302, CodeAPI},
		{600, CodeAPI},
	}

	for _, tt := range tests {
		if got := StatusToCode(tt.status); got != tt.want {
			t.Errorf("StatusToCode(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestStatusToCode_TotalAndClosed(t *testing.T) {
	for s := 0; s < 1000; s++ {
		first := StatusToCode(s)
		if !first.Valid() {
			t.Fatalf("StatusToCode(%d) = %q, not in the enumeration", s, first)
		}
		if again := StatusToCode(s); again != first {
			t.Fatalf("StatusToCode(%d) not deterministic: %s then %s", s, first, again)
		}
	}
}

func TestCodes_AllCataloged(t *testing.T) {
	if len(Codes()) != 10 {
		t.Fatalf("expected 10 codes, got %d", len(Codes()))
	}
	for _, c := range Codes() {
		if !c.Valid() {
			t.Errorf("code %s missing from catalog", c)
		}
	}
}

func TestRetryableCodes(t *testing.T) {
	retryable := map[Code]bool{
		CodeTimeout:   true,
		CodeRateLimit: true,
		CodeNetwork:   true,
		CodeServer:    true,
	}
	for _, c := range Codes() {
		if got := c.Retryable(); got != retryable[c] {
			t.Errorf("%s.Retryable() = %v, want %v", c, got, retryable[c])
		}
	}
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), CodeTimeout},
		{"cancelled", context.Canceled, CodeAPI},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, CodeNetwork},
		{"plain", errors.New("boom"), CodeAPI},
		{"typed", New(CodeConflict, "x"), CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := From(tt.err).Code; got != tt.want {
				t.Errorf("From(%v).Code = %s, want %s", tt.err, got, tt.want)
			}
		})
	}

	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestWrap_KeepsSpecificCode(t *testing.T) {
	inner := FromStatus(404, "memory not found")
	outer := Wrap(inner, "get memory", CodeAPI)
	if outer.Code != CodeNotFound {
		t.Errorf("Code = %s, want NOT_FOUND", outer.Code)
	}
	if outer.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", outer.StatusCode)
	}
	if !errors.Is(outer, New(CodeNotFound, "")) {
		t.Error("errors.Is should match on code")
	}
}

func TestMarshalJSON_ValidationDetails(t *testing.T) {
	e := Validation("invalid request",
		FieldError{Field: "title", Message: "is required"},
		FieldError{Field: "tags.3", Message: "must be at most 50 characters"},
	).WithRequestID("req-1")

	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got struct {
		Code      string       `json:"code"`
		Message   string       `json:"message"`
		Details   []FieldError `json:"details"`
		RequestID string       `json:"requestId"`
		Timestamp string       `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", got.Code)
	}
	if len(got.Details) != 2 || got.Details[1].Field != "tags.3" {
		t.Errorf("details = %+v", got.Details)
	}
	if got.RequestID != "req-1" || got.Timestamp == "" {
		t.Errorf("requestId/timestamp not serialized: %s", b)
	}
}

func TestUserMessage_IncludesHint(t *testing.T) {
	msg := FromStatus(401, "token expired").UserMessage()
	if !strings.Contains(msg, "token expired") || !strings.Contains(msg, "re-authenticate") {
		t.Errorf("UserMessage() = %q", msg)
	}

	msg = Validation("invalid request", FieldError{Field: "query", Message: "is required"}).UserMessage()
	if !strings.Contains(msg, "query is required") {
		t.Errorf("UserMessage() = %q", msg)
	}
}
