package dryrun

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestWithDryRun(t *testing.T) {
	ctx := WithDryRun(context.Background(), true)
	if !IsEnabled(ctx) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
}

func TestIsEnabled_DefaultFalse(t *testing.T) {
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestWithDryRun_Disabled(t *testing.T) {
	ctx := WithDryRun(context.Background(), false)
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Method: "POST",
		URL:    "https://store.vendhq.com/api/2.0/customers",
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer abcd****wxyz",
		},
		Body:     map[string]any{"first_name": "Ada"},
		Warnings: []string{"API version 0.9 is deprecated"},
	}

	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"[DRY-RUN] Would send POST https://store.vendhq.com/api/2.0/customers",
		`"first_name": "Ada"`,
		"! API version 0.9 is deprecated",
		"No request sent (dry-run mode)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	auth := strings.Index(output, "Authorization:")
	ct := strings.Index(output, "Content-Type:")
	if auth < 0 || ct < 0 || auth > ct {
		t.Errorf("headers should be sorted, got:\n%s", output)
	}
}

func TestPreview_WriteWithoutBody(t *testing.T) {
	p := &Preview{Method: "GET", URL: "https://store.vendhq.com/api/2.0/outlets"}

	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(buf.String(), "Warnings:") {
		t.Errorf("unexpected warnings section:\n%s", buf.String())
	}
}

func TestPreview_JSON(t *testing.T) {
	p := &Preview{Method: "DELETE", URL: "u"}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"method":"DELETE","url":"u"}` {
		t.Errorf("json = %s", data)
	}
}
