package main

import (
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/models"
	"net/http"
)

type homeTemplateData struct {
	BaseTemplateData

	Cases []models.CaseSummary
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	cases, err := app.cases.List(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list cases"))
		return
	}

	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Cases:            cases,
	}

	app.render(w, r, http.StatusOK, "home", data)
}
