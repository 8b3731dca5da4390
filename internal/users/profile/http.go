// Copyright (c) 2026 MindMeld. All rights reserved.

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindmeld/server/internal/platform/middleware"
	requestutil "github.com/mindmeld/server/internal/platform/request"
	"github.com/mindmeld/server/internal/platform/respond"
	"github.com/mindmeld/server/internal/platform/sec"
	"github.com/mindmeld/server/internal/platform/validate"
	"github.com/mindmeld/server/pkg/pagination"
)

// Handler implements profile-related HTTP endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] configured with profile routes.
//
// # Endpoints
//   - GET   /profile      : Returns the profile with progression.
//   - PATCH /profile      : Partially updates identity fields.
//   - GET   /achievements : Returns the annotated badge catalog.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/profile", handler.getProfile)
	router.Patch("/profile", handler.updateProfile)
	router.Get("/achievements", handler.achievements)

	return router
}

// FeedbackRoutes returns a [chi.Router] for the feedback endpoints.
//
// # Endpoints
//   - POST / : Submits feedback (authenticated).
//   - GET  / : Lists feedback (admin only).
func (handler *Handler) FeedbackRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.submitFeedback)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/", handler.listFeedback)
	})

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	Username   *string `json:"username"`
	Age        *int    `json:"age"`
	Profession *string `json:"profession"`
}

type feedbackRequest struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Rating   *int   `json:"rating,omitempty"`
}

/*
GetProfile returns the authenticated user's profile.

GET /api/v1/users/profile

Response:
  - 200: Profile: Account with progression counters
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
UpdateProfile partially updates the user's identity fields.

PATCH /api/v1/users/profile

Description: Only provided fields are changed. Progression fields are never
editable through this endpoint.

Request:
  - Body: updateProfileRequest (Username?, Age?, Profession?)

Response:
  - 200: Profile: Updated entity
  - 400: ErrInvalidJSON: Validation failure
  - 409: ErrConflict: Username already taken
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Username != nil {
		validator.Required(FieldUsername, *input.Username).
			MinLen(FieldUsername, *input.Username, 3)
	}
	if input.Age != nil {
		validator.Range(FieldAge, *input.Age, 13, 120)
	}
	if input.Profession != nil {
		validator.MaxLen(FieldProfession, *input.Profession, 100)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.Update(request.Context(), userID, UpdateInput{
		Username:   input.Username,
		Age:        input.Age,
		Profession: input.Profession,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
Achievements returns the badge catalog annotated with earned state.

GET /api/v1/users/achievements

Response:
  - 200: []Achievement: Full catalog with per-badge earned flags
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) achievements(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	achievements, err := handler.profileService.Achievements(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, achievements)
}

/*
SubmitFeedback records a product feedback entry.

POST /api/v1/feedback

Request:
  - Body: feedbackRequest (Category, Message, optional Rating)

Response:
  - 201: Feedback: Created entry
  - 400: ErrInvalidJSON: Validation failure
*/
func (handler *Handler) submitFeedback(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input feedbackRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	feedback, err := handler.profileService.SubmitFeedback(request.Context(), userID, FeedbackInput{
		Category: input.Category,
		Message:  input.Message,
		Rating:   input.Rating,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, feedback)
}

/*
ListFeedback returns a page of feedback submissions.

GET /api/v1/feedback?page=&limit=

Response:
  - 200: []Feedback: Page with pagination metadata
  - 403: ErrForbidden: Admin role required
*/
func (handler *Handler) listFeedback(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	items, meta, err := handler.profileService.ListFeedback(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, meta)
}
