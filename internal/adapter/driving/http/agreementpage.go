package httphandler

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// AgreementPage renders the public page of a repository's agreement. Commit
// status target URLs point here.
func (h *Handler) AgreementPage(w http.ResponseWriter, r *http.Request) {
	repo := model.Repository{Owner: r.PathValue("owner"), Name: r.PathValue("repo")}

	agreement, err := h.agreements.FindByRepository(r.Context(), repo.Owner, repo.Name)
	if err != nil {
		h.logger.Error("failed to load agreement", "repo", repo.FullName(), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if agreement == nil {
		http.Error(w, "no agreement for "+repo.FullName(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := agreementView(*agreement).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render agreement", "repo", repo.FullName(), "error", err)
	}
}

// agreementView is the page. The agreement text is rendered from markdown and
// sanitised before it is embedded raw; every other value is escaped.
func agreementView(a model.Agreement) templ.Component {
	title := "Contributor License Agreement for " + a.Repository().FullName()

	return pageLayout(title, templ.Join(
		element("h1", "", text(title)),
		element("article", "agreement", templ.Raw(renderMarkdown(a.Text))),
		requiredFields(a.RequiredFields),
	))
}

// requiredFields lists the information a signer must provide.
func requiredFields(fields []string) templ.Component {
	if len(fields) == 0 {
		return templ.NopComponent
	}

	items := make([]templ.Component, 0, len(fields))
	for _, f := range fields {
		items = append(items, element("li", "", text(f)))
	}

	return element("section", "required-fields",
		element("h2", "", text("Required information")),
		element("ul", "", items...),
	)
}

func pageLayout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>` +
			templ.EscapeString(title) + `</title></head><body>`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// element renders a fixed tag around its children. Tags and classes are
// constants from this file, never user input.
func element(tag, class string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		open := "<" + tag
		if class != "" {
			open += ` class="` + class + `"`
		}
		if _, err := io.WriteString(w, open+">"); err != nil {
			return err
		}
		for _, c := range children {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

// text renders s escaped.
func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}
