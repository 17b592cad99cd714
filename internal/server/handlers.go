package server

import (
	"errors"
	"mime"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/export"
	"github.com/roboco-io/pubrender/internal/render/pdf"
	"github.com/roboco-io/pubrender/internal/render/preview"
	"github.com/roboco-io/pubrender/internal/store"
)

type handlers struct {
	opts *Options
	hub  *hub
}

// document loads and merges the publication named in the path, applying
// the template query parameter over the default profile.
func (h *handlers) document(ctx echo.Context) (render.Document, error) {
	profile := h.opts.Profile
	if t := ctx.QueryParam("template"); t != "" {
		tpl, err := render.ParseTemplate(t)
		if err != nil {
			return render.Document{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		profile.Template = tpl
	}

	in, err := store.LoadInput(ctx.Request().Context(), h.opts.Store, ctx.Param("id"))
	if err != nil {
		return render.Document{}, err
	}
	return render.NewDocument(in, profile, h.opts.Now()), nil
}

func (h *handlers) preview(ctx echo.Context) error {
	doc, err := h.document(ctx)
	if err != nil {
		return err
	}
	base := "/publications/" + url.PathEscape(ctx.Param("id"))
	query := ""
	if q := ctx.QueryString(); q != "" {
		query = "?" + q
	}
	page := preview.Page(doc, preview.Options{
		Actions: []preview.Action{
			{Label: "Export HTML", URL: base + "/export.html" + query, Filename: export.Filename(doc)},
			{Label: "Export PDF", URL: base + "/export.pdf" + query, Filename: pdf.Filename(doc)},
		},
		LiveURL:     base + "/live",
		DocumentURL: base + "/preview/document" + query,
	})
	return ctx.HTML(http.StatusOK, page)
}

// previewDocument serves the preview markup without the page shell, for
// live pages to swap in after a save.
func (h *handlers) previewDocument(ctx echo.Context) error {
	doc, err := h.document(ctx)
	if err != nil {
		return err
	}
	return ctx.HTML(http.StatusOK, preview.Subtree(doc))
}

func (h *handlers) exportHTML(ctx echo.Context) error {
	doc, err := h.document(ctx)
	if err != nil {
		return err
	}
	data, err := export.NewRenderer().Render(ctx.Request().Context(), doc)
	if err != nil {
		return err
	}
	return attachment(ctx, export.Filename(doc), echo.MIMETextHTMLCharsetUTF8, data)
}

func (h *handlers) exportPDF(ctx echo.Context) error {
	opts := h.opts.PDF
	if p := ctx.QueryParam("page"); p != "" {
		format, err := pdf.ParsePageFormat(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.PageFormat = format
	}
	if o := ctx.QueryParam("orientation"); o != "" {
		orientation, err := pdf.ParseOrientation(o)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.Orientation = orientation
	}

	doc, err := h.document(ctx)
	if err != nil {
		return err
	}
	data, err := pdf.New(opts).Render(ctx.Request().Context(), doc)
	if err != nil {
		return err
	}
	return attachment(ctx, pdf.Filename(doc), "application/pdf", data)
}

func (h *handlers) validate(ctx echo.Context) error {
	p, err := h.opts.Store.Publication(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := model.Validate(p); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"valid": true})
}

func (h *handlers) save(ctx echo.Context) error {
	var p model.Publication
	if err := ctx.Bind(&p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = ctx.Param("id")
	}
	if p.ID != ctx.Param("id") {
		return echo.NewHTTPError(http.StatusBadRequest, "publication id does not match the path")
	}
	if p.Status == "" {
		p.Status = model.StatusDraft
	}
	if !p.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status: "+string(p.Status))
	}
	existing, err := h.opts.Store.Publication(ctx.Request().Context(), p.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return err
	case existing.Status != p.Status && !existing.Status.CanTransition(p.Status):
		return echo.NewHTTPError(http.StatusConflict, "cannot move publication from "+string(existing.Status)+" to "+string(p.Status))
	}
	if err := h.opts.Store.SavePublication(ctx.Request().Context(), p); err != nil {
		return err
	}
	topics := []string{publicationTopic(p.ID)}
	if p.EventID != "" {
		topics = append(topics, eventTopic(p.EventID))
	}
	h.hub.publish(notification{Type: "updated", PublicationID: p.ID}, topics...)
	return ctx.NoContent(http.StatusNoContent)
}

func attachment(ctx echo.Context, filename, contentType string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	return ctx.Blob(http.StatusOK, contentType, data)
}
