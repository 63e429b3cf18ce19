package di_test

import "github.com/goliatone/go-portal/internal/settings"

func settingsInput() settings.Settings {
	return settings.Settings{
		SiteName:     "Portal",
		PrimaryColor: "#123456",
		AccentColor:  "#abc",
	}
}
