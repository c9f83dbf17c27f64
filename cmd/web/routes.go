package main

import (
	htmx "github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/myrjola/triage/ui"
	"io/fs"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	staticFiles, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(staticFiles))
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", fileServer)))

	mux.HandleFunc("GET /api/healthy", app.healthy)

	dynamic := alice.New(app.sessionManager.LoadAndSave, noSurf, htmx.MiddleWare, app.commonContext)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.home))
	mux.Handle("POST /cases", dynamic.ThenFunc(app.generateCase))
	mux.Handle("GET /cases/{caseID}", dynamic.ThenFunc(app.caseRoom))
	mux.Handle("POST /cases/{caseID}/ask", dynamic.ThenFunc(app.askInterview))
	mux.Handle("POST /cases/{caseID}/physical", dynamic.ThenFunc(app.revealPhysical))
	mux.Handle("POST /cases/{caseID}/labs", dynamic.ThenFunc(app.revealLabs))
	mux.Handle("POST /cases/{caseID}/diagnose", dynamic.ThenFunc(app.submitDiagnosis))
	mux.Handle("POST /cases/{caseID}/retry", dynamic.ThenFunc(app.retryCase))

	base := alice.New(app.recoverPanic, app.logRequest, app.secureHeaders)

	return base.Then(mux)
}
