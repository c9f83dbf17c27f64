package main

import (
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/triage/internal/e2etest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "TRIAGE_ADDR":
		return "localhost:0", true
	case "TRIAGE_SQLITE_URL":
		return ":memory:", true
	default:
		// OPENAI_API_KEY stays unset so the server uses the built-in sample cases.
		return "", false
	}
}

// sampleDiagnoses are the correct answers of the built-in sample cases. The
// tests pick the right option by intersecting the answer sheet with this set.
var sampleDiagnoses = map[string]bool{
	"Dengue Fever":         true,
	"Pulmonary Embolism":   true,
	"Bacterial Meningitis": true,
}

func startServer(t *testing.T) *e2etest.Server {
	t.Helper()
	srv, err := e2etest.StartServer(context.Background(), io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	return srv
}

// formAction finds the single form whose action ends with suffix and returns
// its exact action URL path.
func formAction(t *testing.T, doc *goquery.Document, suffix string) string {
	t.Helper()
	sel := doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		action, ok := s.Attr("action")
		return ok && strings.HasSuffix(action, suffix)
	})
	require.Equal(t, 1, sel.Length(), "expected exactly one form with action suffix %q", suffix)
	action, ok := sel.Attr("action")
	require.True(t, ok)
	return action
}

func staminaValue(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	return strings.TrimSpace(doc.Find(".stamina-value").Text())
}

func Test_application_home(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	doc, err := srv.Client().GetDoc(ctx, "/")
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find("form[action='/cases']").Length())
	assert.Equal(t, 1, doc.Find("form[action='/cases'] input[name=csrf_token]").Length())
	assert.Contains(t, doc.Find("main").Text(), "No cases on file")
}

func Test_application_healthy(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	resp, err := srv.Client().Get(ctx, "/api/healthy")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func Test_application_caseNotFound(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	resp, err := srv.Client().Get(ctx, "/cases/doesnotexist")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_application_playCase(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()
	client := srv.Client()

	// Admit a patient. The POST redirects to the case room.
	home, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	room, err := client.SubmitForm(ctx, home, "/cases", url.Values{
		"topic":      {"infectious diseases"},
		"difficulty": {"Medium"},
	})
	require.NoError(t, err)

	require.Equal(t, "100", staminaValue(t, room))
	title := strings.TrimSpace(room.Find(".patient-card h2").Text())
	require.NotEmpty(t, title)
	assert.False(t, sampleDiagnoses[title], "case title must not spoil the diagnosis")

	// The case is now listed in the waiting room.
	home, err = client.GetDoc(ctx, "/")
	require.NoError(t, err)
	assert.Contains(t, home.Find(".case-list").Text(), title)

	// Ask the first interview question.
	askAction := room.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		action, ok := s.Attr("action")
		return ok && strings.Contains(action, "/ask?index=")
	}).First().AttrOr("action", "")
	require.NotEmpty(t, askAction)
	room, err = client.SubmitForm(ctx, room, askAction, nil)
	require.NoError(t, err)
	assert.Equal(t, "90", staminaValue(t, room))
	assert.GreaterOrEqual(t, room.Find(".case-log li").Length(), 3, "clinic intro plus doctor and patient lines")

	// A paid question cannot be bought twice, its form is gone.
	assert.Equal(t, 0, room.Find("form[action='"+askAction+"']").Length())

	// Physical examination reveals findings.
	physicalAction := formAction(t, room, "/physical")
	room, err = client.SubmitForm(ctx, room, physicalAction, nil)
	require.NoError(t, err)
	assert.Equal(t, "65", staminaValue(t, room))

	// No debrief before the session ends.
	require.Equal(t, 0, room.Find(".debrief").Length())

	// Pick the correct answer off the answer sheet and win.
	var correct string
	room.Find("select#answer option").Each(func(_ int, s *goquery.Selection) {
		if sampleDiagnoses[strings.TrimSpace(s.Text())] {
			correct = strings.TrimSpace(s.Text())
		}
	})
	require.NotEmpty(t, correct, "answer sheet must contain exactly one known diagnosis")

	diagnoseAction := formAction(t, room, "/diagnose")
	room, err = client.SubmitForm(ctx, room, diagnoseAction, url.Values{"answer": {correct}})
	require.NoError(t, err)
	assert.Contains(t, room.Find(".debrief h3").Text(), "Case solved")
	assert.Contains(t, room.Find(".debrief").Text(), correct)
	assert.Equal(t, "65", staminaValue(t, room), "a correct diagnosis costs nothing")

	// The action forms are gone once the case is closed.
	assert.Equal(t, 0, room.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		action, ok := s.Attr("action")
		return ok && strings.HasSuffix(action, "/diagnose")
	}).Length())

	// Retrying starts over with full stamina.
	retryAction := formAction(t, room, "/retry")
	room, err = client.SubmitForm(ctx, room, retryAction, nil)
	require.NoError(t, err)
	assert.Equal(t, "100", staminaValue(t, room))
	assert.Equal(t, 0, room.Find(".debrief").Length())
}
