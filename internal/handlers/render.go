package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/yukikurage/todo-list/internal/constants"
	"github.com/yukikurage/todo-list/internal/middleware"
	"github.com/yukikurage/todo-list/internal/utils"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save flash message")
	}
}

func popFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)

	var flashes []Flash
	for _, category := range []string{constants.FlashSuccess, constants.FlashError} {
		for _, f := range session.Flashes(category) {
			if msg, ok := f.(string); ok {
				flashes = append(flashes, Flash{Category: category, Message: msg})
			}
		}
	}
	if len(flashes) > 0 {
		if err := session.Save(); err != nil {
			log.Error().Err(err).Msg("failed to clear flash messages")
		}
	}
	return flashes
}

// render executes an HTML page with the data every page expects.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	userID, _ := middleware.GetUserID(c)
	data["UserID"] = userID
	data["Flashes"] = popFlashes(c)
	c.HTML(status, name, data)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// safeNext returns target if it is a local path, otherwise fallback.
func safeNext(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}

// pager is the pagination block of the list page.
type pager struct {
	Page       int
	Limit      int
	TotalPages int
}

func newPager(params utils.PaginationParams, total int64) pager {
	return pager{Page: params.Page, Limit: params.Limit, TotalPages: params.TotalPages(total)}
}

func (p pager) Prev() int { return p.Page - 1 }
func (p pager) Next() int { return p.Page + 1 }

// fieldErrors maps a binding error to messages keyed by struct field name.
// Errors that are not tied to a field are reported under "Form".
func fieldErrors(err error) map[string]string {
	errs := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["Form"] = "Please correct the errors below."
		return errs
	}

	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			errs[fe.Field()] = "This field is required."
		case "max":
			errs[fe.Field()] = fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		case "oneof":
			errs[fe.Field()] = "Select a valid choice."
		case "email":
			errs[fe.Field()] = "Enter a valid email address."
		default:
			errs[fe.Field()] = "Invalid value."
		}
	}
	return errs
}
