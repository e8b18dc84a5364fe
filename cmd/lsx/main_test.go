package main

import (
	"context"
	"errors"
	"os"
	"testing"
)

func stubExecute(t *testing.T) {
	t.Helper()
	origExec := executeCmd
	origMap := mapExitCode
	origTerminate := terminate
	t.Cleanup(func() {
		executeCmd = origExec
		mapExitCode = origMap
		terminate = origTerminate
	})
}

func TestRun_Success(t *testing.T) {
	stubExecute(t)

	var gotArgs []string
	executeCmd = func(ctx context.Context, args []string) error {
		if ctx.Err() != nil {
			t.Fatalf("context already done: %v", ctx.Err())
		}
		gotArgs = append([]string(nil), args...)
		return nil
	}
	mapExitCode = func(_ error) int {
		t.Fatal("mapExitCode should not be called on success")
		return 99
	}

	code := run([]string{"get", "/products", "-p", "page_size=5"})
	if code != 0 {
		t.Fatalf("run() code = %d, want 0", code)
	}

	want := []string{"get", "/products", "-p", "page_size=5"}
	if len(gotArgs) != len(want) {
		t.Fatalf("args len = %d, want %d", len(gotArgs), len(want))
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, gotArgs[i], want[i])
		}
	}
}

func TestRun_ErrorUsesMappedExitCode(t *testing.T) {
	stubExecute(t)

	executeErr := errors.New("boom")
	executeCmd = func(_ context.Context, _ []string) error {
		return executeErr
	}

	called := false
	mapExitCode = func(err error) int {
		called = true
		if !errors.Is(err, executeErr) {
			t.Fatalf("mapExitCode got err %v, want %v", err, executeErr)
		}
		return 4
	}

	if code := run([]string{"get", "/nope"}); code != 4 {
		t.Fatalf("run() code = %d, want 4", code)
	}
	if !called {
		t.Fatal("expected mapExitCode to be called")
	}
}

func TestMain_UsesTerminateWithRunCode(t *testing.T) {
	stubExecute(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	var gotArgs []string
	executeCmd = func(_ context.Context, args []string) error {
		gotArgs = append([]string(nil), args...)
		return errors.New("boom")
	}
	mapExitCode = func(_ error) int { return 7 }

	called := false
	gotCode := 0
	terminate = func(code int) {
		called = true
		gotCode = code
	}

	os.Args = []string{"lsx", "auth", "status", "--json"}
	main()

	if !called {
		t.Fatal("expected terminate to be called")
	}
	if gotCode != 7 {
		t.Fatalf("terminate code = %d, want 7", gotCode)
	}
	if len(gotArgs) != 3 || gotArgs[0] != "auth" || gotArgs[2] != "--json" {
		t.Fatalf("args = %v, want [auth status --json]", gotArgs)
	}
}
