package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithUserTagsContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(Config{Level: "info", Output: &buf}))
	ctx = WithUser(ctx, "u-1", "ann@example.com")

	l := Ctx(ctx)
	l.Info().Msg("property created")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if line[FieldUserID] != "u-1" || line[FieldUserEmail] != "ann@example.com" {
		t.Errorf("log line = %v", line)
	}
}

func TestWithUserWithoutEmail(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithUser(WithLogger(context.Background(), New(Config{Output: &buf})), "u-2", "")

	l := Ctx(ctx)
	l.Info().Msg("x")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if _, ok := line[FieldUserEmail]; ok || line[FieldUserID] != "u-2" {
		t.Errorf("log line = %v", line)
	}
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	l := Ctx(context.Background())
	if l.GetLevel() != L().GetLevel() {
		t.Errorf("Ctx() level = %v, want global %v", l.GetLevel(), L().GetLevel())
	}
}
