package http

import (
	"io"
	"net/http"

	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/labstack/echo/v4"
)

type translationsResponse struct {
	Locale       string          `json:"locale"`
	Tier         i18n.Tier       `json:"tier"`
	Translations i18n.Dictionary `json:"translations"`
}

func (api *API) handleTranslations(c echo.Context) error {
	loc := api.sync.NegotiateLocale(requestLocale(c), c.Request().Header.Get(headerAcceptLanguage))
	dict, tier := api.sync.Translations(c.Request().Context(), loc)
	return c.JSON(http.StatusOK, translationsResponse{Locale: loc, Tier: tier, Translations: dict})
}

// handleTranslationsSetup reads a YAML or JSON mapping from the body.
func (api *API) handleTranslationsSetup(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes))
	if err != nil {
		return badRequest(c, "unreadable body")
	}
	dict, err := i18n.DecodeDictionary(payload)
	if err != nil {
		return badRequest(c, err.Error())
	}
	loc := requestLocale(c)
	err = api.sync.SetupTranslations(c.Request().Context(), principal(c), c.QueryParam("secret"), loc, dict)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"locale": loc, "keys": len(dict)})
}

func (api *API) handleSettingsGet(c echo.Context) error {
	loc := api.sync.NegotiateLocale(requestLocale(c), c.Request().Header.Get(headerAcceptLanguage))
	result, err := api.sync.Settings(c.Request().Context(), loc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (api *API) handleSettingsUpdate(c echo.Context) error {
	var payload settings.Settings
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, "invalid body")
	}
	loc := requestLocale(c)
	if loc == "" {
		loc = payload.Locale
	}
	result, err := api.sync.UpdateSettings(c.Request().Context(), principal(c), loc, payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type uploadResponse struct {
	Ref string `json:"ref"`
}

func (api *API) handleMediaUpload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer file.Close()
	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	ref, err := api.sync.UploadMedia(c.Request().Context(), principal(c), header.Filename, payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, uploadResponse{Ref: ref})
}
