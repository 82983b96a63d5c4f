package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"journai/internal/store"
)

const (
	webhookSecretHeader = "X-Webhook-Secret"

	eventUserCreated = "user.created"
	eventUserUpdated = "user.updated"
	eventUserDeleted = "user.deleted"
)

type webhookEvent struct {
	Type string          `json:"type"`
	Data webhookUserData `json:"data"`
}

type webhookUserData struct {
	ID             string `json:"id"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	ImageURL  *string `json:"image_url"`
}

func (d webhookUserData) primaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return strings.TrimSpace(d.EmailAddresses[0].EmailAddress)
}

// buildFullName joins first and last name, using whichever one is present
// when the other is missing.
func buildFullName(first, last *string) string {
	var parts []string
	if first != nil && strings.TrimSpace(*first) != "" {
		parts = append(parts, strings.TrimSpace(*first))
	}
	if last != nil && strings.TrimSpace(*last) != "" {
		parts = append(parts, strings.TrimSpace(*last))
	}
	return strings.Join(parts, " ")
}

// webhookResult is the outcome of one event. Status 0 means success.
type webhookResult struct {
	status int
	detail string
	action string
}

// handleWebhook applies identity provider user lifecycle events. Events
// without the fields they need and unknown event types are acknowledged so
// the sender does not retry them.
func (a *App) handleWebhook(c *gin.Context) {
	if a.cfg.WebhookSecret != "" {
		given := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(a.cfg.WebhookSecret)) != 1 {
			writeError(c, http.StatusUnauthorized, "Invalid webhook secret")
			return
		}
	}

	var event webhookEvent
	if !mustJSON(c, &event) {
		return
	}

	ctx := c.Request.Context()
	var (
		result webhookResult
		err    error
	)
	switch event.Type {
	case eventUserCreated:
		result, err = a.webhookUserCreated(ctx, event.Data)
	case eventUserUpdated:
		result, err = a.webhookUserUpdated(ctx, event.Data)
	case eventUserDeleted:
		result, err = a.webhookUserDeleted(ctx, event.Data)
	default:
		result = webhookResult{action: "ignored"}
	}
	if err != nil {
		a.internalError(c, "webhook.failed", "Failed to process webhook", err,
			slog.String("type", event.Type),
			slog.String("user_id", event.Data.ID),
		)
		return
	}
	if result.status != 0 {
		a.logger.WarnContext(ctx, "webhook.rejected",
			slog.String("type", event.Type),
			slog.String("user_id", event.Data.ID),
			slog.String("detail", result.detail),
		)
		writeError(c, result.status, result.detail)
		return
	}

	a.logger.InfoContext(ctx, "webhook.processed",
		slog.String("type", event.Type),
		slog.String("user_id", event.Data.ID),
		slog.String("action", result.action),
	)
	c.JSON(http.StatusOK, gin.H{
		"type":   event.Type,
		"action": result.action,
	})
}

func (a *App) webhookUserCreated(ctx context.Context, data webhookUserData) (webhookResult, error) {
	id := strings.TrimSpace(data.ID)
	email := data.primaryEmail()
	if id == "" || email == "" {
		return webhookResult{action: "ignored"}, nil
	}

	user := store.User{
		ID:    id,
		Email: email,
		Name:  buildFullName(data.FirstName, data.LastName),
	}
	if data.ImageURL != nil {
		user.ImageURL = strings.TrimSpace(*data.ImageURL)
	}

	_, err := a.store.CreateUser(ctx, user)
	if err == nil {
		return webhookResult{action: "created"}, nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return webhookResult{}, err
	}

	// Redelivery of an event for a user we already have.
	if _, getErr := a.store.GetUser(ctx, id); getErr == nil {
		return a.applyUserUpdate(ctx, id, store.UserUpdate{
			Email:    &user.Email,
			Name:     &user.Name,
			ImageURL: &user.ImageURL,
		})
	}
	return webhookResult{status: http.StatusConflict, detail: "Email is already in use"}, nil
}

func (a *App) webhookUserUpdated(ctx context.Context, data webhookUserData) (webhookResult, error) {
	id := strings.TrimSpace(data.ID)
	if id == "" {
		return webhookResult{action: "ignored"}, nil
	}

	var update store.UserUpdate
	if email := data.primaryEmail(); email != "" {
		update.Email = &email
	}
	if data.FirstName != nil || data.LastName != nil {
		name := buildFullName(data.FirstName, data.LastName)
		update.Name = &name
	}
	if data.ImageURL != nil {
		image := strings.TrimSpace(*data.ImageURL)
		update.ImageURL = &image
	}
	return a.applyUserUpdate(ctx, id, update)
}

func (a *App) applyUserUpdate(ctx context.Context, id string, update store.UserUpdate) (webhookResult, error) {
	_, err := a.store.UpdateUser(ctx, id, update)
	switch {
	case err == nil:
		return webhookResult{action: "updated"}, nil
	case errors.Is(err, store.ErrNotFound):
		return webhookResult{status: http.StatusNotFound, detail: "User not found"}, nil
	case errors.Is(err, store.ErrConflict):
		return webhookResult{status: http.StatusConflict, detail: "Email is already in use"}, nil
	default:
		return webhookResult{}, err
	}
}

func (a *App) webhookUserDeleted(ctx context.Context, data webhookUserData) (webhookResult, error) {
	id := strings.TrimSpace(data.ID)
	if id == "" {
		return webhookResult{action: "ignored"}, nil
	}
	err := a.store.DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return webhookResult{action: "already_deleted"}, nil
	}
	if err != nil {
		return webhookResult{}, err
	}
	return webhookResult{action: "deleted"}, nil
}
