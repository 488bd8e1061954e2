package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/map-point-info/internal/enrich"
	"github.com/i474232898/map-point-info/internal/locale"
	"github.com/i474232898/map-point-info/internal/session"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, sessions *session.Store, loc locale.Locale) {
	v1 := app.Group("/api/v1")

	v1.Post("/sessions", func(c *fiber.Ctx) error {
		sess := sessions.Create()
		return c.Status(fiber.StatusCreated).JSON(renderSession(sess.Snapshot(), loc))
	})

	v1.Get("/sessions/:id", func(c *fiber.Ctx) error {
		sess, err := lookupSession(sessions, c)
		if err != nil {
			return err
		}
		return c.JSON(renderSession(sess.Snapshot(), loc))
	})

	v1.Delete("/sessions/:id", func(c *fiber.Ctx) error {
		if err := sessions.Delete(c.Params("id")); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "unknown session")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to close session")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/sessions/:id/clicks", func(c *fiber.Ctx) error {
		sess, err := lookupSession(sessions, c)
		if err != nil {
			return err
		}

		var req clickRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid click payload")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// A superseded click is not cancelled; it finishes and may overwrite fields.
		if c.QueryBool("async") {
			go sess.Click(context.Background(), *req.Lat, *req.Lng)
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"id":     sess.ID,
				"status": "accepted",
			})
		}

		res := sess.Click(c.UserContext(), *req.Lat, *req.Lng)
		return c.JSON(renderClick(sess.Snapshot(), res, loc))
	})
}

// ErrorHandler renders every handler error as a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func lookupSession(sessions *session.Store, c *fiber.Ctx) (*session.Session, error) {
	sess, err := sessions.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "unknown session")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
	}
	return sess, nil
}

// clickRequest is the body of a map click.
type clickRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required"`
}

type fieldView struct {
	State enrich.Status `json:"state"`
	Text  string        `json:"text"`
	Value string        `json:"value,omitempty"`
}

type sessionView struct {
	ID     string                     `json:"id"`
	Clicks uint64                     `json:"clicks"`
	Marker *session.MarkerPosition    `json:"marker,omitempty"`
	Fields map[enrich.Field]fieldView `json:"fields"`
	Order  []enrich.Field             `json:"order"`
}

type stageErrorView struct {
	Stage enrich.Stage `json:"stage"`
	Error string       `json:"error"`
}

type clickView struct {
	sessionView
	Seq        uint64            `json:"seq"`
	Coordinate enrich.Coordinate `json:"coordinate"`
	Errors     []stageErrorView  `json:"errors,omitempty"`
}

func renderSession(snap session.Snapshot, loc locale.Locale) sessionView {
	fields := make(map[enrich.Field]fieldView, len(enrich.Fields))
	for _, f := range enrich.Fields {
		st := snap.Record[f]
		fields[f] = fieldView{
			State: st.Status,
			Text:  loc.Text(st),
			Value: st.Value,
		}
	}
	return sessionView{
		ID:     snap.ID,
		Clicks: snap.Clicks,
		Marker: snap.Marker,
		Fields: fields,
		Order:  enrich.Fields,
	}
}

func renderClick(snap session.Snapshot, res enrich.ClickResult, loc locale.Locale) clickView {
	view := clickView{
		sessionView: renderSession(snap, loc),
		Seq:         res.Seq,
		Coordinate:  res.Coordinate,
	}
	for _, e := range res.Errors {
		view.Errors = append(view.Errors, stageErrorView{Stage: e.Stage, Error: e.Err.Error()})
	}
	return view
}
