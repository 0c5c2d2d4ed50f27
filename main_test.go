package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giygas/patient-dashboard/config"
)

const upstreamBody = `[
	{"name": "Jessica Taylor", "gender": "Female", "age": 28,
	 "diagnosis_history": [
		{"month": "March", "year": 2023, "blood_pressure": {"systolic": {"value": 160}, "diastolic": {"value": 78}}},
		{"month": "January", "year": 2024, "blood_pressure": {"systolic": {"value": 120}, "diastolic": {"value": 80}}}
	 ]},
	{"name": "Emily Williams", "gender": "Female", "age": 18}
]`

func testConfig(url string) *config.Config {
	return &config.Config{
		PatientsURL:        url,
		PatientsCredential: config.DefaultCredential,
		TargetPatient:      config.DefaultTarget,
	}
}

func TestRunRender(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer up.Close()

	var buf bytes.Buffer
	if err := runRender(context.Background(), testConfig(up.URL), &buf); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "Jessica Taylor", "120/80", "Emily Williams", "Systolic"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunRenderFailureStillWritesPage(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer up.Close()

	var buf bytes.Buffer
	err := runRender(context.Background(), testConfig(up.URL), &buf)
	if err == nil {
		t.Fatal("expected an error for an upstream 500")
	}
	if !strings.Contains(err.Error(), "network") {
		t.Errorf("error = %v, want the network kind", err)
	}
	if !strings.Contains(buf.String(), "Failed to load vitals: network error: 500") {
		t.Error("failure page should still be written")
	}
}

func TestRenderCommandWritesFile(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer up.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "page.html")

	t.Setenv("PATIENTS_API_URL", up.URL)
	t.Setenv("ENV", "test")
	t.Setenv("LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("PROBE_INTERVAL_MINUTES", "0")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"render", "--env-file", filepath.Join(dir, "missing.env"), "--out", out})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render command error = %v", err)
	}

	page, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.Contains(page, []byte("Jessica Taylor")) {
		t.Error("rendered file should contain the target patient")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"serve", "render"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("missing %s subcommand", name)
		}
	}
}

type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error { return errors.New("disk full") }

func TestRenderToFileReportsCloseError(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer up.Close()

	out := &failingCloser{}
	orig := createOutput
	createOutput = func(string) (io.WriteCloser, error) { return out, nil }
	t.Cleanup(func() { createOutput = orig })

	err := renderToFile(context.Background(), testConfig(up.URL), "page.html")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("renderToFile() error = %v, want the close error", err)
	}
	if !strings.Contains(out.String(), "Jessica Taylor") {
		t.Error("page should be written before close")
	}
}
