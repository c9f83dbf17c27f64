package main

import (
	"bytes"
	"fmt"
	"github.com/myrjola/triage/internal/contexthelpers"
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/ssr"
	"github.com/myrjola/triage/ui"
	"html/template"
	"log/slog"
	"net/http"
)

type BaseTemplateData struct {
	CurrentPath string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to a directory inside ui/templates/pages. It has to include a template named "page".
func pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}

	// The FuncMap has to exist before parsing. The render functions override
	// these with the per-request values.
	t, err := template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() string {
			panic("not implemented")
		},
		"csrf": func() string {
			panic("not implemented")
		},
	}).ParseFS(ui.Files, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "parse page template", slog.String("page", pageName))
	}
	return t, nil
}

func withRequestFuncs(t *template.Template, r *http.Request) *template.Template {
	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	return t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // we trust the csrf since it's not provided by user.
		},
	})
}

// render writes the full page named by file wrapped in the base layout.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, file string, data any) {
	app.renderTemplate(w, r, status, file, "base", data)
}

// renderPartial writes a single named template without the base layout, used
// for htmx swaps.
func (app *application) renderPartial(w http.ResponseWriter, r *http.Request, file string, name string, data any) {
	app.renderTemplate(w, r, http.StatusOK, file, name, data)
}

func (app *application) renderTemplate(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	file string,
	name string,
	data any,
) {
	t, err := pageTemplate(file)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "parse template", slog.String("template", file)))
		return
	}
	t = withRequestFuncs(t, r)

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", file)))
		return
	}

	expandFn := ssr.ExpandCustomElements
	if name != "base" {
		expandFn = ssr.ExpandFragment
	}
	out := new(bytes.Buffer)
	if err = expandFn(out, buf); err != nil {
		app.serverError(w, r, errors.Wrap(err, "expand custom elements", slog.String("template", file)))
		return
	}

	w.WriteHeader(status)

	_, _ = out.WriteTo(w)
}
