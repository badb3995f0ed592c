//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/session"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL    string
	archiveURL string
	moduleID   string
	recordID   string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	archiveURL = os.Getenv("ARCHIVE_DATABASE_URL")

	os.Exit(m.Run())
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func TestE2EFlow(t *testing.T) {
	var paper model.ModulePaper

	// Step 1: Browse catalog
	t.Run("ListModules", func(t *testing.T) {
		resp, err := get("/modules")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body envelope[struct {
			Modules []model.ModuleSummary `json:"modules"`
		}]
		decodeJSON(t, resp, &body)
		if len(body.Data.Modules) == 0 {
			t.Fatal("catalog is empty")
		}
		moduleID = body.Data.Modules[0].ID
	})

	// Step 2: Fetch the paper
	t.Run("GetPaper", func(t *testing.T) {
		resp, err := get("/modules/" + moduleID)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		var body envelope[model.ModulePaper]
		decodeJSON(t, resp, &body)
		paper = body.Data
		if len(paper.Questions) == 0 {
			t.Fatal("paper has no questions")
		}
	})

	// Step 3: Start
	t.Run("StartSession", func(t *testing.T) {
		resp, err := post("/session/start", model.StartSessionRequest{ModuleID: moduleID})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body envelope[session.View]
		decodeJSON(t, resp, &body)
		if body.Data.Status != session.StatusActive {
			t.Fatalf("status = %s", body.Data.Status)
		}
	})

	// Step 4: Answer every question with option 0
	t.Run("AnswerAll", func(t *testing.T) {
		zero := 0
		for _, q := range paper.Questions {
			resp, err := post("/session/answers", model.RecordAnswerRequest{QuestionID: q.ID, OptionIndex: &zero})
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("answer %s: status %d", q.ID, resp.StatusCode)
			}
		}
	})

	// Step 5: Report a clipboard signal
	t.Run("ReportPaste", func(t *testing.T) {
		resp, err := post("/session/signals", model.ReportSignalRequest{Signal: model.SignalPaste})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		var body envelope[struct {
			Verdict struct {
				Cancel bool `json:"cancel"`
			} `json:"verdict"`
		}]
		decodeJSON(t, resp, &body)
		if !body.Data.Verdict.Cancel {
			t.Error("paste should be cancelled")
		}
	})

	// Step 6: Submit
	t.Run("Submit", func(t *testing.T) {
		resp, err := post("/session/submit", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		var body envelope[session.View]
		decodeJSON(t, resp, &body)
		if body.Data.Result == nil {
			t.Fatalf("no result: %+v", body.Data)
		}
		if body.Data.Result.Total != len(paper.Questions) {
			t.Errorf("total = %d, want %d", body.Data.Result.Total, len(paper.Questions))
		}
		recordID = body.Data.Result.Record.ID
	})

	// Step 7: History has the record
	t.Run("History", func(t *testing.T) {
		resp, err := get("/history?per_page=100")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		var body envelope[struct {
			Records []model.HistoryRecord `json:"records"`
		}]
		decodeJSON(t, resp, &body)
		for _, r := range body.Data.Records {
			if r.ID == recordID {
				return
			}
		}
		t.Fatalf("record %s missing from history", recordID)
	})

	// Step 8: Archive mirror (only when configured)
	t.Run("ArchiveMirror", func(t *testing.T) {
		if archiveURL == "" {
			t.Skip("ARCHIVE_DATABASE_URL not set")
		}
		ctx := context.Background()
		conn, err := pgx.Connect(ctx, archiveURL)
		if err != nil {
			t.Fatalf("db connect: %v", err)
		}
		defer conn.Close(ctx)

		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			var n int
			err := conn.QueryRow(ctx,
				`SELECT COUNT(*) FROM assessment_history WHERE record_id = $1`, recordID,
			).Scan(&n)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if n == 1 {
				return
			}
			time.Sleep(500 * time.Millisecond)
		}
		t.Fatalf("record %s was not archived", recordID)
	})
}

// Helpers

func post(path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest("POST", baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func get(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
