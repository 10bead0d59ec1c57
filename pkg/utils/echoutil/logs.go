package echoutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc is a middleware logging requests and responses in INFO level.
//
// Failed requests (status >= 500 or with error) are logged in WARN level.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		meth := req.Method
		path := req.URL
		begin := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", begin.Format(time.RFC3339Nano), meth, path)

		err := next(c)

		end := time.Now()
		status := c.Response().Status
		if he := new(echo.HTTPError); err != nil && asHTTPError(err, &he) {
			status = he.Code
		}
		logf := c.Logger().Infof
		if err != nil || 500 <= status {
			logf = c.Logger().Warnf
		}
		logf(
			"> response status = %d (for request @[%s] %s %s) in %v / error = %v",
			status, begin.Format(time.RFC3339Nano), meth, path, end.Sub(begin), internalOf(err),
		)
		return err
	}
}

func asHTTPError(err error, he **echo.HTTPError) bool {
	h, ok := err.(*echo.HTTPError)
	if ok {
		*he = h
	}
	return ok
}

// internalOf returns the internal error of HTTPError, if any.
func internalOf(err error) error {
	if he, ok := err.(*echo.HTTPError); ok && he.Internal != nil {
		return he.Internal
	}
	return err
}

// SetLevel sets the log level of echo's logger.
//
// loglevel is one of "debug", "info", "warn", "error" or "off" (case insensitive).
// Empty means "warn".
func SetLevel(e *echo.Echo, loglevel string) error {
	switch strings.ToLower(loglevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		return fmt.Errorf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
	return nil
}
