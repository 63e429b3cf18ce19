package i18n

import "errors"

var errNoStore = errors.New("i18n: no dictionary store configured")
