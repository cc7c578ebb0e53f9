package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/infrastructure/notify"
)

// NotificationFeed is the transient message buffer.
type NotificationFeed interface {
	Since(after uint64) []notify.Notification
	Drain() []notify.Notification
}

// ViewTracker is the navigator as the page sees it.
type ViewTracker interface {
	Current() string
	Navigate(view string)
	History() []string
}

type UIHandler struct {
	feed NotificationFeed
	nav  ViewTracker
}

func NewUIHandler(feed NotificationFeed, nav ViewTracker) *UIHandler {
	return &UIHandler{feed: feed, nav: nav}
}

type notificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

type viewRequest struct {
	View string `json:"view" validate:"required,startswith=/"`
}

type viewResponse struct {
	View    string   `json:"view"`
	History []string `json:"history"`
}

// Notifications returns toasts newer than after.
//
// @Summary      Notifications
// @Tags         ui
// @Produce      json
// @Param        after  query     int  false  "Last id already shown"
// @Success      200    {object}  notificationsResponse
// @Router       /v1/notifications [get]
func (h *UIHandler) Notifications(c echo.Context) error {
	after, _ := strconv.ParseUint(c.QueryParam("after"), 10, 64)
	return c.JSON(http.StatusOK, notificationsResponse{Notifications: h.feed.Since(after)})
}

// DrainNotifications returns and clears every buffered toast.
//
// @Summary      Drain notifications
// @Tags         ui
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Router       /v1/notifications [delete]
func (h *UIHandler) DrainNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, notificationsResponse{Notifications: h.feed.Drain()})
}

// View reports the active view the orchestrators last navigated to.
//
// @Summary      Active view
// @Tags         ui
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /v1/view [get]
func (h *UIHandler) View(c echo.Context) error {
	return c.JSON(http.StatusOK, viewResponse{View: h.nav.Current(), History: h.nav.History()})
}

// SetView records a page change made by the user.
//
// @Summary      Change view
// @Tags         ui
// @Accept       json
// @Produce      json
// @Param        body  body      viewRequest  true  "View path"
// @Success      200   {object}  viewResponse
// @Failure      400   {object}  ErrorBody
// @Router       /v1/view [put]
func (h *UIHandler) SetView(c echo.Context) error {
	var req viewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	h.nav.Navigate(req.View)
	return c.JSON(http.StatusOK, viewResponse{View: h.nav.Current(), History: h.nav.History()})
}
