package http

import (
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/legacy"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// itemPayload is the admin form body. Dates accept the same layouts as the
// legacy snapshot.
type itemPayload struct {
	Locale      string `json:"locale"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Excerpt     string `json:"excerpt"`
	Body        string `json:"body"`
	MediaRef    string `json:"media_ref"`
	PublishedAt string `json:"published_at"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	ButtonText  string `json:"button_text"`
	ButtonLink  string `json:"button_link"`
}

func (p itemPayload) toItem() (*content.Item, error) {
	item := &content.Item{
		Locale:     p.Locale,
		Slug:       p.Slug,
		Title:      p.Title,
		Subtitle:   p.Subtitle,
		Excerpt:    p.Excerpt,
		Body:       p.Body,
		MediaRef:   p.MediaRef,
		ButtonText: p.ButtonText,
		ButtonLink: p.ButtonLink,
	}
	errs := validation.Errors{}
	dates := []struct {
		field  string
		value  string
		target **time.Time
	}{
		{"published_at", p.PublishedAt, &item.PublishedAt},
		{"start_date", p.StartDate, &item.StartDate},
		{"end_date", p.EndDate, &item.EndDate},
	}
	for _, date := range dates {
		parsed, err := legacy.ParseDate(date.value)
		if err != nil {
			errs[date.field] = validation.NewError("validation_date", "must be a date")
			continue
		}
		*date.target = parsed
	}
	if err := errs.Filter(); err != nil {
		return nil, domain.Validation(err, "invalid item")
	}
	return item, nil
}

type reorderPayload struct {
	IDs []uuid.UUID `json:"ids"`
}

type dragPayload struct {
	TargetIndex int `json:"target_index"`
}

func parseKind(c echo.Context) (domain.Kind, error) {
	kind, ok := domain.ParseKind(c.Param("kind"))
	if !ok {
		return "", domain.NotFound("collection", c.Param("kind"), "")
	}
	return kind, nil
}

func (api *API) handleList(c echo.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return writeError(c, err)
	}
	loc := api.sync.NegotiateLocale(requestLocale(c), c.Request().Header.Get(headerAcceptLanguage))
	items, err := api.sync.List(c.Request().Context(), kind, loc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// handleGet accepts an id or a slug.
func (api *API) handleGet(c echo.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	ref := c.Param("ref")
	if id, err := uuid.Parse(ref); err == nil {
		item, err := api.sync.Get(ctx, id)
		if err != nil {
			return writeError(c, err)
		}
		if item.Kind != kind {
			return writeError(c, domain.NotFound(string(kind), ref, ""))
		}
		return c.JSON(http.StatusOK, item)
	}
	loc := api.sync.NegotiateLocale(requestLocale(c), c.Request().Header.Get(headerAcceptLanguage))
	item, err := api.sync.GetBySlug(ctx, kind, loc, ref)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (api *API) handleCreate(c echo.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return writeError(c, err)
	}
	var payload itemPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(payload.Locale) == "" {
		payload.Locale = requestLocale(c)
	}
	input, err := payload.toItem()
	if err != nil {
		return writeError(c, err)
	}
	item, err := api.sync.Create(c.Request().Context(), principal(c), kind, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (api *API) handleUpdate(c echo.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var payload itemPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, "invalid body")
	}
	input, err := payload.toItem()
	if err != nil {
		return writeError(c, err)
	}
	item, err := api.sync.Update(c.Request().Context(), principal(c), kind, id, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (api *API) handleDelete(c echo.Context) error {
	if _, err := parseKind(c); err != nil {
		return writeError(c, err)
	}
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	if err := api.sync.Delete(c.Request().Context(), principal(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (api *API) handleReorder(c echo.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return writeError(c, err)
	}
	var payload reorderPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, "invalid body")
	}
	items, err := api.sync.Reorder(c.Request().Context(), principal(c), kind, requestLocale(c), payload.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (api *API) handleMoveUp(c echo.Context) error {
	return api.handleMove(c, func(id uuid.UUID) ([]*content.Item, error) {
		return api.sync.MoveUp(c.Request().Context(), principal(c), id)
	})
}

func (api *API) handleMoveDown(c echo.Context) error {
	return api.handleMove(c, func(id uuid.UUID) ([]*content.Item, error) {
		return api.sync.MoveDown(c.Request().Context(), principal(c), id)
	})
}

func (api *API) handleDrag(c echo.Context) error {
	var payload dragPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, "invalid body")
	}
	return api.handleMove(c, func(id uuid.UUID) ([]*content.Item, error) {
		return api.sync.Drag(c.Request().Context(), principal(c), id, payload.TargetIndex)
	})
}

func (api *API) handleMove(c echo.Context, move func(uuid.UUID) ([]*content.Item, error)) error {
	if _, err := parseKind(c); err != nil {
		return writeError(c, err)
	}
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	items, err := move(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
