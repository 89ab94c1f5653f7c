package wall

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fabriciofarewell/wall-service/internal/config"
	"github.com/fabriciofarewell/wall-service/internal/feed"
	"github.com/fabriciofarewell/wall-service/internal/http/middleware"
	"github.com/fabriciofarewell/wall-service/internal/services/media"
	"github.com/fabriciofarewell/wall-service/internal/services/reaction"
	"github.com/fabriciofarewell/wall-service/internal/services/submission"
	"github.com/fabriciofarewell/wall-service/internal/types"
	"github.com/fabriciofarewell/wall-service/internal/utils/response"
)

// maxFormMemory bounds multipart parsing; the photo cap itself is enforced
// by the media service.
const maxFormMemory = 8 << 20

type SiteInfoResponse struct {
	SiteName  string           `json:"site_name"`
	Locales   []string         `json:"locales"`
	Moods     []types.Mood     `json:"moods"`
	Reactions []types.Reaction `json:"reactions"`
}

type FeedResponse struct {
	Posts   []feed.PostView `json:"posts"`
	Page    int             `json:"page"`
	HasMore bool            `json:"has_more"`
}

type ReactionRequest struct {
	Reaction types.Reaction `json:"reaction" validate:"required"`
}

type ReactionResponse struct {
	MessageID string              `json:"message_id"`
	Reactions types.ReactionCount `json:"reactions"`
}

// SiteInfo reports the wall's display configuration
// @Summary Get site info
// @Tags wall
// @Produce json
// @Success 200 {object} response.Response "Site info"
// @Router / [get]
func SiteInfo(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := SiteInfoResponse{
			SiteName:  cfg.SiteName,
			Locales:   []string{"es", "en"},
			Moods:     types.Moods(),
			Reactions: types.Reactions(),
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Site info", info))
	}
}

// Feed returns the current feed snapshot
// @Summary Get the wall feed
// @Description Filtered and sorted snapshot of the loaded posts with reaction tallies
// @Tags wall
// @Produce json
// @Param q query string false "Case-insensitive substring filter over name and message"
// @Param sort query string false "Sort mode: newest or top" default(newest)
// @Success 200 {object} FeedResponse "Feed snapshot"
// @Failure 400 {object} response.Response "Bad request"
// @Router /feed [get]
func Feed(store *feed.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortMode := feed.Sort(r.URL.Query().Get("sort"))
		if sortMode == "" {
			sortMode = feed.SortNewest
		}
		if !feed.ValidSort(sortMode) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("unknown sort mode")))
			return
		}

		snapshot := FeedResponse{
			Posts:   store.Posts(r.URL.Query().Get("q"), sortMode),
			Page:    store.Page(),
			HasMore: store.HasMore(),
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Feed fetched successfully", snapshot))
	}
}

// LoadMore fetches the next feed page
// @Summary Load the next feed page
// @Description Appends the next page to the feed; overlapping rows are deduplicated
// @Tags wall
// @Produce json
// @Success 200 {object} FeedResponse "Refreshed snapshot"
// @Failure 502 {object} response.Response "Backend fetch failed"
// @Router /feed/more [post]
func LoadMore(store *feed.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.LoadMore(r.Context()); err != nil {
			// Nothing is retried automatically; the visitor can re-click.
			response.WriteJSON(w, http.StatusBadGateway, response.GeneralError(err))
			return
		}

		snapshot := FeedResponse{
			Posts:   store.Posts("", feed.SortNewest),
			Page:    store.Page(),
			HasMore: store.HasMore(),
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Feed page loaded", snapshot))
	}
}

// PostMessage creates a new wall post
// @Summary Post a farewell message
// @Description Multipart form with name, optional message, optional mood and optional photo
// @Tags wall
// @Accept mpfd
// @Produce json
// @Param name formData string true "Author name"
// @Param message formData string false "Message text"
// @Param mood formData string false "Mood tag"
// @Param photo formData file false "Photo (JPEG/PNG/WebP, max 4 MB)"
// @Success 201 {object} types.Post "Post created"
// @Failure 400 {object} response.Response "Validation failure"
// @Failure 429 {object} response.Response "Cooldown not elapsed"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /messages [post]
func PostMessage(svc *submission.Service) http.HandlerFunc {
	type request struct {
		Name    string     `validate:"required,max=40"`
		Message string     `validate:"max=600"`
		Mood    types.Mood `validate:"omitempty,oneof=funny emotional advice memory short"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("missing session")))
			return
		}

		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}

		req := request{
			Name:    r.FormValue("name"),
			Message: r.FormValue("message"),
			Mood:    types.Mood(r.FormValue("mood")),
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		input := submission.Input{
			Name:    req.Name,
			Message: req.Message,
			Mood:    req.Mood,
		}

		file, header, err := r.FormFile("photo")
		switch {
		case err == nil:
			defer file.Close()
			input.Photo = &submission.Photo{
				Reader:      file,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
			}
		case errors.Is(err, http.ErrMissingFile):
			// photo is optional
		default:
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid photo upload")))
			return
		}

		post, err := svc.Submit(r.Context(), sessionID, input)
		if err != nil {
			status := submissionStatus(err)
			response.WriteJSON(w, status, response.GeneralError(err))
			return
		}

		slog.Info("Post created", slog.String("post_id", post.ID))
		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Your message is now on the wall", post))
	}
}

func submissionStatus(err error) int {
	switch {
	case errors.Is(err, submission.ErrCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, submission.ErrNameRequired),
		errors.Is(err, submission.ErrEmptyContent),
		errors.Is(err, submission.ErrInvalidMood),
		errors.Is(err, media.ErrUnsupportedType),
		errors.Is(err, media.ErrTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AddReaction records one emoji reaction on a post
// @Summary React to a post
// @Description Bumps the tally immediately; the write is fire-and-forget
// @Tags wall
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param reaction body ReactionRequest true "Reaction kind"
// @Success 202 {object} ReactionResponse "Bumped tally"
// @Failure 400 {object} response.Response "Bad request"
// @Router /messages/{id}/reactions [post]
func AddReaction(svc *reaction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID := r.PathValue("id")
		if messageID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("post ID is required")))
			return
		}

		var req ReactionRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		counts, err := svc.Add(messageID, req.Reaction)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		resp := ReactionResponse{MessageID: messageID, Reactions: counts}
		response.WriteJSON(w, http.StatusAccepted, response.RequestOK("Reaction recorded", resp))
	}
}

// Unconfigured answers every wall route when the backend credentials are
// absent: the same friendly envelope from every component, never a crash.
func Unconfigured() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusServiceUnavailable, response.NotConfigured())
	}
}
