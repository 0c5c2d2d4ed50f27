package fetcher

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const samplePatients = `[
	{"name": "Jessica Taylor", "gender": "Female", "age": 28,
	 "emergency_contact": "(415) 555-1234",
	 "diagnosis_history": [
		{"month": "March", "year": 2023,
		 "blood_pressure": {"systolic": {"value": 160, "levels": "Higher than Average"}, "diastolic": {"value": 78}},
		 "heart_rate": {"value": 78}}
	 ]},
	{"name": "Emily Williams", "gender": "Female", "age": 18}
]`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL, Credential: "coalition:skills-test"})
}

func TestFetchPatientsSendsBasicAuth(t *testing.T) {
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("coalition:skills-test"))
	var got string

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(samplePatients))
	})

	records, err := client.FetchPatients(context.Background())
	if err != nil {
		t.Fatalf("FetchPatients() error = %v", err)
	}
	if got != want {
		t.Errorf("Authorization = %q, want %q", got, want)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Name != "Jessica Taylor" {
		t.Errorf("first record = %q", records[0].Name)
	}
	if v := records[0].DiagnosisHistory[0].BP().Sys().Val(); v == nil || *v != 160 {
		t.Errorf("systolic = %v, want 160", v)
	}
	if p := records[0].Contact().ContactPhone(); p == nil || *p != "(415) 555-1234" {
		t.Errorf("emergency phone = %v", p)
	}
}

func TestFetchPatientsErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantNet    bool
		wantParse  bool
		wantSubstr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantNet: true, wantSubstr: "500"},
		{name: "unauthorized", status: http.StatusUnauthorized, wantNet: true, wantSubstr: "401"},
		{name: "malformed json", status: http.StatusOK, body: "{not json", wantParse: true, wantSubstr: "parse error"},
		{name: "object instead of array", status: http.StatusOK, body: `{"name":"x"}`, wantParse: true},
		{name: "wrong field type", status: http.StatusOK, body: `[{"name": 12}]`, wantParse: true},
		{name: "stray closing brace after array", status: http.StatusOK, body: `[{"name":"Jessica Taylor"}]}`, wantParse: true},
		{name: "text after array", status: http.StatusOK, body: `[] not json`, wantParse: true},
		{name: "two arrays", status: http.StatusOK, body: `[][]`, wantParse: true},
		{name: "string age", status: http.StatusOK, body: `[{"name":"Emily Williams","age":"45"}]`, wantParse: true},
		{name: "string year", status: http.StatusOK, body: `[{"name":"Jessica Taylor","diagnosis_history":[{"month":"March","year":"2023"}]}]`, wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			records, err := client.FetchPatients(context.Background())
			if err == nil {
				t.Fatalf("expected error, got %d records", len(records))
			}

			var netErr *NetworkError
			var parseErr *ParseError
			if tt.wantNet {
				if !errors.As(err, &netErr) {
					t.Fatalf("expected NetworkError, got %T: %v", err, err)
				}
				if netErr.StatusCode != tt.status {
					t.Errorf("StatusCode = %d, want %d", netErr.StatusCode, tt.status)
				}
			}
			if tt.wantParse && !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %T: %v", err, err)
			}
			if tt.wantSubstr != "" && !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantSubstr)
			}
		})
	}
}

func TestFetchPatientsAllowsTrailingWhitespace(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[{\"name\":\"Jessica Taylor\"}]\n\n"))
	})

	records, err := client.FetchPatients(context.Background())
	if err != nil {
		t.Fatalf("FetchPatients() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "Jessica Taylor" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestFetchPatientsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{URL: url, Credential: "a:b"}).FetchPatients(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if netErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", netErr.StatusCode)
	}
}

func TestFetchPatientsCancelledContext(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePatients))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPatients(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFetchPatientsLatin1Body(t *testing.T) {
	body, err := charmap.ISO8859_1.NewEncoder().String(`[{"name": "Zoë Müller"}]`)
	if err != nil {
		t.Fatal(err)
	}

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=iso-8859-1")
		_, _ = w.Write([]byte(body))
	})

	records, err := client.FetchPatients(context.Background())
	if err != nil {
		t.Fatalf("FetchPatients() error = %v", err)
	}
	if records[0].Name != "Zoë Müller" {
		t.Errorf("Name = %q, want %q", records[0].Name, "Zoë Müller")
	}
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	c := NewClient(Config{URL: "http://example.invalid"}, WithHTTPClient(custom))
	if c.httpClient != custom {
		t.Error("WithHTTPClient was not applied")
	}
}
