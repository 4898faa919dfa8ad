// Package reviews implements the review and rating view for a single template.
package reviews

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/notify"
	"github.com/dotfiles-manager/dfm/internal/view"
)

// DefaultRating is the star picker's initial value.
const DefaultRating = 5

// API is the subset of the API client the review view uses.
type API interface {
	ListTemplateReviews(ctx context.Context, templateID string) ([]apiclient.Review, error)
	GetTemplateRating(ctx context.Context, templateID string) (*apiclient.Rating, error)
	CreateReview(ctx context.Context, templateID string, in apiclient.ReviewInput) (*apiclient.Review, error)
	UpdateReview(ctx context.Context, id string, in apiclient.ReviewUpdate) (*apiclient.Review, error)
	DeleteReview(ctx context.Context, id string) error
	MarkReviewHelpful(ctx context.Context, id string) error
}

// View is the state of one mounted review view.
type View struct {
	api      API
	identity view.IdentitySource
	notifier notify.Notifier
	confirm  view.Confirmer
	logger   *slog.Logger

	templateID string

	state   view.State
	reviews []apiclient.Review
	rating  *apiclient.Rating
	user    *apiclient.User

	newRating  int
	newComment string
	// ratingSet and commentSet record which draft fields the user touched.
	ratingSet  bool
	commentSet bool
	submitting bool
}

// New creates a review view for templateID.
func New(api API, identity view.IdentitySource, notifier notify.Notifier, confirm view.Confirmer, logger *slog.Logger, templateID string) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		api:        api,
		identity:   identity,
		notifier:   notifier,
		confirm:    confirm,
		logger:     logger,
		templateID: templateID,
		newRating:  DefaultRating,
	}
}

// SetTemplate points the view at another template and reloads it.
func (v *View) SetTemplate(ctx context.Context, templateID string) {
	if templateID == v.templateID {
		return
	}
	v.templateID = templateID
	v.reviews, v.rating, v.user = nil, nil, nil
	v.Load(ctx)
}

// Load fetches the reviews, the rating aggregate and the identity together.
// On failure the previously loaded data stays in place.
func (v *View) Load(ctx context.Context) {
	v.state = view.Loading

	var (
		reviews []apiclient.Review
		rating  *apiclient.Rating
		user    *apiclient.User
	)
	err := view.Gather(ctx,
		func(ctx context.Context) error {
			var err error
			reviews, err = v.api.ListTemplateReviews(ctx, v.templateID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			rating, err = v.api.GetTemplateRating(ctx, v.templateID)
			return err
		},
		func(ctx context.Context) error {
			user = v.identity.Identity(ctx)
			return nil
		},
	)
	if err != nil {
		v.logger.Warn("loading reviews failed", "template_id", v.templateID, "error", err)
		v.state = view.Failed
		v.notifier.Notify("Failed to load reviews")
		return
	}

	v.reviews, v.rating, v.user = reviews, rating, user
	v.state = view.Ready
}

// State returns the view state.
func (v *View) State() view.State { return v.state }

// TemplateID returns the template being reviewed.
func (v *View) TemplateID() string { return v.templateID }

// Reviews returns the loaded reviews.
func (v *View) Reviews() []apiclient.Review { return v.reviews }

// Rating returns the loaded rating aggregate, or nil.
func (v *View) Rating() *apiclient.Rating { return v.rating }

// User returns the loaded identity, or nil.
func (v *View) User() *apiclient.User { return v.user }

// SetRating selects a star level; values outside 1..5 are ignored.
func (v *View) SetRating(stars int) {
	if stars >= 1 && stars <= 5 {
		v.newRating, v.ratingSet = stars, true
	}
}

// SetComment sets the draft comment.
func (v *View) SetComment(comment string) { v.newComment, v.commentSet = comment, true }

func (v *View) resetDraft() {
	v.newRating, v.newComment = DefaultRating, ""
	v.ratingSet, v.commentSet = false, false
}

// Draft returns the pending rating and comment.
func (v *View) Draft() (int, string) { return v.newRating, v.newComment }

// Submitting reports whether a submission is in flight.
func (v *View) Submitting() bool { return v.submitting }

// Submit posts the draft review and reloads on success.
func (v *View) Submit(ctx context.Context) bool {
	if v.user == nil {
		v.notifier.Notify("Please sign in to leave a review")
		return false
	}

	v.submitting = true
	defer func() { v.submitting = false }()

	_, err := v.api.CreateReview(ctx, v.templateID, apiclient.ReviewInput{
		Rating:  v.newRating,
		Comment: v.newComment,
	})
	if err != nil {
		v.logger.Warn("submitting review failed", "template_id", v.templateID, "error", err)
		v.notifier.Notify("Failed to submit review")
		return false
	}

	v.notifier.Notify("Review submitted successfully")
	v.resetDraft()
	v.Load(ctx)
	return true
}

// Edit sends the draft fields set since the last reset to the user's own
// review; untouched fields keep their stored values. Reloads on success.
func (v *View) Edit(ctx context.Context, reviewID string) bool {
	if v.user == nil {
		v.notifier.Notify("Please sign in to edit your review")
		return false
	}
	r := v.find(reviewID)
	if r == nil || !v.CanModify(r) {
		v.notifier.Notify("You can only edit your own review")
		return false
	}

	var update apiclient.ReviewUpdate
	if v.ratingSet {
		rating := v.newRating
		update.Rating = &rating
	}
	if v.commentSet {
		comment := v.newComment
		update.Comment = &comment
	}
	if update.Rating == nil && update.Comment == nil {
		v.notifier.Notify("Nothing to update")
		return false
	}

	if _, err := v.api.UpdateReview(ctx, reviewID, update); err != nil {
		v.logger.Warn("updating review failed", "review_id", reviewID, "error", err)
		v.notifier.Notify("Failed to update review")
		return false
	}

	v.notifier.Notify("Review updated")
	v.resetDraft()
	v.Load(ctx)
	return true
}

// MarkHelpful records a helpful vote and reloads on success.
func (v *View) MarkHelpful(ctx context.Context, reviewID string) bool {
	if v.user == nil {
		v.notifier.Notify("Please sign in to mark reviews as helpful")
		return false
	}

	if err := v.api.MarkReviewHelpful(ctx, reviewID); err != nil {
		v.logger.Warn("marking review helpful failed", "review_id", reviewID, "error", err)
		v.notifier.Notify("Failed to mark review as helpful")
		return false
	}

	v.notifier.Notify("Marked as helpful")
	v.Load(ctx)
	return true
}

// CanModify reports whether the delete and edit actions are offered for r.
func (v *View) CanModify(r *apiclient.Review) bool {
	return v.user != nil && v.user.ID == r.UserID
}

// Delete removes a review after confirmation and reloads on success.
func (v *View) Delete(ctx context.Context, reviewID string) bool {
	if !v.confirm.Confirm("Are you sure you want to delete this review?") {
		return false
	}

	if err := v.api.DeleteReview(ctx, reviewID); err != nil {
		v.logger.Warn("deleting review failed", "review_id", reviewID, "error", err)
		v.notifier.Notify("Failed to delete review")
		return false
	}

	v.notifier.Notify("Review deleted")
	v.Load(ctx)
	return true
}

func (v *View) find(reviewID string) *apiclient.Review {
	for i := range v.reviews {
		if v.reviews[i].ID == reviewID {
			return &v.reviews[i]
		}
	}
	return nil
}

// Bar is one row of the rating histogram.
type Bar struct {
	Stars int
	Count int
	// Percent is the filled width, 0..100.
	Percent float64
}

// Bars returns the histogram rows from 5 stars down to 1.
func Bars(r *apiclient.Rating) []Bar {
	bars := make([]Bar, 0, 5)
	for stars := 5; stars >= 1; stars-- {
		b := Bar{Stars: stars}
		if r != nil {
			b.Count = r.Distribution[strconv.Itoa(stars)]
			if r.TotalRatings > 0 {
				b.Percent = float64(b.Count) / float64(r.TotalRatings) * 100
			}
		}
		bars = append(bars, b)
	}
	return bars
}
