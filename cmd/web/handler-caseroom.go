package main

import (
	"fmt"
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/intake"
	"github.com/myrjola/triage/internal/random"
	"github.com/myrjola/triage/internal/repositories"
	"github.com/myrjola/triage/internal/session"
	"log/slog"
	"net/http"
	"strconv"
)

type caseroomTemplateData struct {
	BaseTemplateData

	Snapshot session.Snapshot
}

// playerID returns the stable identifier for the browser session, minting one
// on first use. Each player gets their own run through a case.
func (app *application) playerID(r *http.Request) (string, error) {
	ctx := r.Context()
	id := app.sessionManager.GetString(ctx, string(playerIDSessionKey))
	if id == "" {
		var err error
		if id, err = random.Letters(16); err != nil { //nolint:mnd // 16 characters
			return "", errors.Wrap(err, "mint player id")
		}
		app.sessionManager.Put(ctx, string(playerIDSessionKey), id)
	}
	return id, nil
}

// caseSession finds or starts the play session for the requested case. A nil
// session with a nil error means the case does not exist.
func (app *application) caseSession(r *http.Request) (*session.Session, error) {
	ctx := r.Context()
	caseID := r.PathValue("caseID")

	playerID, err := app.playerID(r)
	if err != nil {
		return nil, err
	}
	key := playerID + "/" + caseID

	if sess := app.sessions.Get(key); sess != nil {
		return sess, nil
	}

	payload, err := app.cases.Payload(ctx, caseID)
	if err != nil {
		if errors.Is(err, repositories.ErrCaseNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load case payload", slog.String("case_id", caseID))
	}
	c, err := intake.Normalize(caseID, payload, nil)
	if err != nil {
		return nil, errors.Wrap(err, "normalize case", slog.String("case_id", caseID))
	}

	return app.sessions.GetOrStart(key, func() *session.Session {
		return session.New(c)
	}), nil
}

// renderCaseRoom writes the room either as an htmx partial or as a full page.
func (app *application) renderCaseRoom(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	data := caseroomTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Snapshot:         sess.Snapshot(),
	}
	h := app.htmx.NewHandler(w, r)
	if h.IsHxRequest() {
		app.renderPartial(w, r, "caseroom", "page", data)
		return
	}
	app.render(w, r, http.StatusOK, "caseroom", data)
}

func (app *application) caseRoom(w http.ResponseWriter, r *http.Request) {
	sess, err := app.caseSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if sess == nil {
		app.notFound(w, r)
		return
	}
	app.renderCaseRoom(w, r, sess)
}

// playError folds a session engine error into the response. Running out of
// stamina is part of play and the room is re-rendered, invalid commands are
// the client's fault.
func (app *application) playError(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	switch {
	case errors.Is(err, session.ErrOutOfStamina):
		app.renderCaseRoom(w, r, sess)
	case errors.Is(err, session.ErrInvalidCommand):
		app.clientError(w, r, http.StatusUnprocessableEntity)
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) askInterview(w http.ResponseWriter, r *http.Request) {
	sess, err := app.caseSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if sess == nil {
		app.notFound(w, r)
		return
	}

	// The ask forms carry the question index in the action URL query.
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	if _, err = sess.AskInterview(index); err != nil {
		app.playError(w, r, sess, err)
		return
	}
	app.renderCaseRoom(w, r, sess)
}

func (app *application) revealPhysical(w http.ResponseWriter, r *http.Request) {
	sess, err := app.caseSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if sess == nil {
		app.notFound(w, r)
		return
	}

	if _, err = sess.RevealPhysical(); err != nil {
		app.playError(w, r, sess, err)
		return
	}
	app.renderCaseRoom(w, r, sess)
}

func (app *application) revealLabs(w http.ResponseWriter, r *http.Request) {
	sess, err := app.caseSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if sess == nil {
		app.notFound(w, r)
		return
	}

	if _, err = sess.RevealLabs(); err != nil {
		app.playError(w, r, sess, err)
		return
	}
	app.renderCaseRoom(w, r, sess)
}

func (app *application) submitDiagnosis(w http.ResponseWriter, r *http.Request) {
	sess, err := app.caseSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if sess == nil {
		app.notFound(w, r)
		return
	}

	answer := r.PostFormValue("answer")
	if _, err = sess.SubmitDiagnosis(answer); err != nil {
		app.playError(w, r, sess, err)
		return
	}
	app.renderCaseRoom(w, r, sess)
}

// retryCase discards the player's session for this case and starts over.
func (app *application) retryCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	playerID, err := app.playerID(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessions.Drop(playerID + "/" + caseID)
	http.Redirect(w, r, fmt.Sprintf("/cases/%s", caseID), http.StatusSeeOther)
}
