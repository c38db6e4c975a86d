package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wg-ddns.log")
	if err := Init(Options{Level: "debug", File: path, JSON: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	if GetLogPath() != path {
		t.Errorf("GetLogPath = %q, want %q", GetLogPath(), path)
	}

	Info("hello %s", "world")
	Drift("wg0", "203.0.113.5", "203.0.113.9")
	Restart("wg0", 1, 0, nil)
	Restart("wg0", 0, 0, errors.New("spawn failed"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`"message":"hello world"`,
		`"old":"203.0.113.5"`,
		`"new":"203.0.113.9"`,
		`"down_exit":1`,
		`"error":"spawn failed"`,
		`"tunnel":"wg0"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wg-ddns.log")
	if err := Init(Options{Level: "warn", File: path, JSON: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Debug("hidden debug")
	Info("hidden info")
	Warning("shown warning")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below warn leaked:\n%s", out)
	}
	if !strings.Contains(out, "shown warning") {
		t.Errorf("warning missing:\n%s", out)
	}
}

func TestRecoverSwallowsPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wg-ddns.log")
	if err := Init(Options{File: path, JSON: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	func() {
		defer Recover("worker")
		panic("boom")
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "PANIC in worker: boom") {
		t.Errorf("panic not logged:\n%s", data)
	}
}

func TestRecoverErrorReportsPanic(t *testing.T) {
	err := func() (err error) {
		defer RecoverError("worker", &err)
		panic("boom")
	}()
	if err == nil || !strings.Contains(err.Error(), "worker panicked: boom") {
		t.Fatalf("err = %v", err)
	}

	err = func() (err error) {
		defer RecoverError("worker", &err)
		return nil
	}()
	if err != nil {
		t.Errorf("no panic must leave err nil, got %v", err)
	}
}
