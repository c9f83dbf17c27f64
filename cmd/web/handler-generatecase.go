package main

import (
	"fmt"
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/intake"
	"github.com/myrjola/triage/internal/random"
	"log/slog"
	"net/http"
)

// generateCase asks the generator for a fresh case, runs it through intake to
// make sure it is playable, and files it in the case store.
func (app *application) generateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	topic := r.PostFormValue("topic")
	difficulty := r.PostFormValue("difficulty")
	if difficulty == "" {
		difficulty = "Medium"
	}

	payload, err := app.generator.GenerateCase(ctx, topic, difficulty)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "generate case", slog.String("topic", topic)))
		return
	}

	id, err := random.Letters(12) //nolint:mnd // 12 characters
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// Reject unplayable payloads before they reach the store.
	c, err := intake.Normalize(id, payload, nil)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "normalize generated case", slog.String("topic", topic)))
		return
	}

	if err = app.cases.Insert(ctx, id, c.DisplayTitle, difficulty, payload); err != nil {
		app.serverError(w, r, errors.Wrap(err, "insert case", slog.String("id", id)))
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/cases/%s", id), http.StatusSeeOther)
}
