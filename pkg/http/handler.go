package http

import "github.com/labstack/echo/v4"

// Handler registers its routes on the server's Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(e *echo.Echo)

func (f HandlerFunc) RegisterRoutes(e *echo.Echo) { f(e) }
