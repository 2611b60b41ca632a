package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skiddy/skiddy/core/record"
	emailsvc "github.com/skiddy/skiddy/services/email"
	testutil "github.com/skiddy/skiddy/tests"
)

func TestReviewAPI(t *testing.T) {
	app := setup(t)
	seedCatalog(app)
	app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent, "c1"))

	t.Run("create and list", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/courses/c1/reviews", map[string]interface{}{
			"rating":  5,
			"comment": "   great course  ",
		})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created record.Review
		decode(t, rec, &created)
		assert.Equal(t, "u1", created.User, "review author must come from the session")
		assert.Equal(t, "great course", created.Comment)

		rec = app.do(http.MethodGet, "/v1/courses/c1/reviews", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var reviews []record.Review
		decode(t, rec, &reviews)
		if assert.Len(t, reviews, 1) {
			assert.Equal(t, created.ID, reviews[0].ID)
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/courses/c1/reviews", map[string]interface{}{
			"rating":  6,
			"comment": "nope",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "rating")
	})

	t.Run("update and delete", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/courses/c1/reviews", map[string]interface{}{
			"rating":  3,
			"comment": "ok",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
		var rev record.Review
		decode(t, rec, &rev)

		rec = app.do(http.MethodPut, "/v1/reviews/"+rev.ID, map[string]interface{}{
			"rating":  4,
			"comment": "better on second watch",
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &rev)
		assert.Equal(t, 4, rev.Rating)

		rec = app.do(http.MethodDelete, "/v1/reviews/"+rev.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("only the author may change a review", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/courses/c1/reviews", map[string]interface{}{
			"rating":  5,
			"comment": "mine",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
		var rev record.Review
		decode(t, rec, &rev)

		// another student cannot touch it
		app.loginAs(t, testutil.NewUser("u2", "joe", record.RoleStudent, "c1"))
		rec = app.do(http.MethodPut, "/v1/reviews/"+rev.ID, map[string]interface{}{
			"rating":  1,
			"comment": "vandalized",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

		rec = app.do(http.MethodDelete, "/v1/reviews/"+rev.ID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		// admins moderate
		app.loginAs(t, testutil.NewUser("u9", "root", record.RoleAdmin))
		rec = app.do(http.MethodDelete, "/v1/reviews/"+rev.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestSupportAPI(t *testing.T) {
	app := setup(t)
	usr := app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent))

	t.Run("new ticket opens as open and acknowledges by email", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		rec := app.do(http.MethodPost, "/v1/support/tickets", map[string]string{
			"subject":  "Video will not play",
			"message":  "Lesson two stops at 0:30",
			"priority": "HIGH", // normalized to lowercase
			"status":   "resolved", // caller-supplied status is ignored
		})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var ticket record.SupportTicket
		decode(t, rec, &ticket)
		assert.Equal(t, record.TicketStatusOpen, ticket.Status)
		assert.Equal(t, "high", ticket.Priority)
		assert.Equal(t, usr.ID, ticket.User)

		if msg := emailsvc.LastSentMessage(); assert.NotNil(t, msg) {
			assert.Equal(t, usr.Email, msg.To[0].Address)
			assert.Contains(t, msg.Subject, "Video will not play")
		}
	})

	t.Run("invalid priority", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/support/tickets", map[string]string{
			"subject":  "Hello",
			"message":  "World",
			"priority": "asap",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("lists only the caller's tickets", func(t *testing.T) {
		other := record.SupportTicket{User: "someone-else", Subject: "Not mine", Priority: "low", Status: "open"}
		app.client.Seed(record.CollectionSupportTickets, other)

		rec := app.do(http.MethodGet, "/v1/support/tickets", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var tickets []record.SupportTicket
		decode(t, rec, &tickets)
		for _, tk := range tickets {
			assert.Equal(t, usr.ID, tk.User)
		}
	})

	t.Run("status change is admin only", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/support/tickets", map[string]string{
			"subject": "Escalate me", "message": "please", "priority": "urgent",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
		var ticket record.SupportTicket
		decode(t, rec, &ticket)

		rec = app.do(http.MethodPatch, "/v1/support/tickets/"+ticket.ID+"/status", map[string]string{"status": "resolved"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		app.loginAs(t, testutil.NewUser("u9", "root", record.RoleAdmin))
		rec = app.do(http.MethodPatch, "/v1/support/tickets/"+ticket.ID+"/status", map[string]string{"status": "resolved"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &ticket)
		assert.Equal(t, record.TicketStatusResolved, ticket.Status)
	})
}

func TestProfileAPI(t *testing.T) {
	app := setup(t)
	app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent))

	rec := app.do(http.MethodPatch, "/v1/profile", map[string]string{"name": "Jane Doe"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User record.User `json:"user"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "Jane Doe", resp.User.Name)

	// the session's copy of the model follows the update without a re-login
	if usr := app.sessions.CurrentUser(); assert.NotNil(t, usr) {
		assert.Equal(t, "Jane Doe", usr.Name)
	}

	t.Run("username rules still apply", func(t *testing.T) {
		rec := app.do(http.MethodPatch, "/v1/profile", map[string]string{"username": "a!"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotificationAPI(t *testing.T) {
	app := setup(t)
	usr := app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent))

	rec := app.do(http.MethodPost, "/v1/notifications/device", map[string]string{"token": "fcm-token-1"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var stored record.User
	err := app.client.GetRecord(context.Background(), record.CollectionUsers, usr.ID, record.Query{}, &stored)
	assert.NoError(t, err)
	assert.Equal(t, "fcm-token-1", stored.PushToken)

	t.Run("replaces the previous token", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/notifications/device", map[string]string{"token": "fcm-token-2"})
		assert.Equal(t, http.StatusCreated, rec.Code)

		_ = app.client.GetRecord(context.Background(), record.CollectionUsers, usr.ID, record.Query{}, &stored)
		assert.Equal(t, "fcm-token-2", stored.PushToken)
	})

	t.Run("unregister clears it", func(t *testing.T) {
		rec := app.do(http.MethodDelete, "/v1/notifications/device", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		_ = app.client.GetRecord(context.Background(), record.CollectionUsers, usr.ID, record.Query{}, &stored)
		assert.Empty(t, stored.PushToken)
	})

	t.Run("token is required", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/notifications/device", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSettingsAPI(t *testing.T) {
	app := setup(t)
	app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent))

	t.Run("empty collection is a 404", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/settings", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	st := record.Settings{PrivacyPolicy: "v1 text"}
	st.ID = "s1"
	app.client.Seed(record.CollectionSettings, st)

	t.Run("retrieve", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/settings", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got record.Settings
		decode(t, rec, &got)
		assert.Equal(t, "v1 text", got.PrivacyPolicy)
	})

	t.Run("update is admin only", func(t *testing.T) {
		rec := app.do(http.MethodPatch, "/v1/settings/s1", map[string]string{"privacy_policy": "v2 text"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		app.loginAs(t, testutil.NewUser("u9", "root", record.RoleAdmin))
		rec = app.do(http.MethodPatch, "/v1/settings/s1", map[string]string{"privacy_policy": "v2 text"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got record.Settings
		decode(t, rec, &got)
		assert.Equal(t, "v2 text", got.PrivacyPolicy)
	})
}

func TestEnrollmentAPI(t *testing.T) {
	app := setup(t)
	seedCatalog(app)
	app.loginAs(t, testutil.NewUser("u9", "root", record.RoleAdmin))

	// admin enrolls a student
	rec := app.do(http.MethodPost, "/v1/enrollments", map[string]string{"user": "u1", "course": "c1"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var enr record.Enrollment
	decode(t, rec, &enr)
	assert.Equal(t, 0, enr.Progress)

	t.Run("student sees own enrollments only", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent, "c1"))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/enrollments", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var enrollments []record.Enrollment
		decode(t, rec, &enrollments)
		if assert.Len(t, enrollments, 1) {
			assert.Equal(t, "u1", enrollments[0].User)
		}

		rec = app.do(http.MethodPatch, "/v1/enrollments/"+enr.ID+"/progress", map[string]interface{}{
			"progress":         40,
			"completedLessons": []string{"l2"},
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &enr)
		assert.Equal(t, 40, enr.Progress)

		// progress is clamped by validation
		rec = app.do(http.MethodPatch, "/v1/enrollments/"+enr.ID+"/progress", map[string]interface{}{"progress": 140})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create is admin only", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u2", "joe", record.RoleStudent))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodPost, "/v1/enrollments", map[string]string{"user": "u2", "course": "c1"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
