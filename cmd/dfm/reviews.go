package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/reviews"
	"github.com/spf13/cobra"
)

var reviewsCmd = &cobra.Command{
	Use:     "reviews",
	Aliases: []string{"review"},
	Short:   "Read and write template reviews",
}

var reviewsListJSON bool

var reviewsListCmd = &cobra.Command{
	Use:     "list <template-id>",
	Aliases: []string{"ls"},
	Short:   "Show the rating and reviews of a template",
	Args:    cobra.ExactArgs(1),
	RunE:    runReviewsList,
}

var (
	reviewRating  int
	reviewComment string
)

var reviewsAddCmd = &cobra.Command{
	Use:   "add <template-id>",
	Short: "Review a template",
	Long: `Review a template with 1 to 5 stars and an optional comment.

Examples:
  dfm reviews add 6f1c... --rating 4 --comment "Solid defaults"`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewsAdd,
}

var reviewsEditCmd = &cobra.Command{
	Use:   "edit <template-id> <review-id>",
	Short: "Edit your review of a template",
	Args:  cobra.ExactArgs(2),
	RunE:  runReviewsEdit,
}

var reviewsDeleteCmd = &cobra.Command{
	Use:     "delete <template-id> <review-id>",
	Aliases: []string{"rm"},
	Short:   "Delete your review of a template",
	Args:    cobra.ExactArgs(2),
	RunE:    runReviewsDelete,
}

var reviewsHelpfulCmd = &cobra.Command{
	Use:   "helpful <template-id> <review-id>",
	Short: "Mark a review as helpful",
	Args:  cobra.ExactArgs(2),
	RunE:  runReviewsHelpful,
}

var reviewsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your reviews",
	Args:  cobra.NoArgs,
	RunE:  runReviewsMine,
}

func init() {
	reviewsListCmd.Flags().BoolVar(&reviewsListJSON, "json", false, "Output as JSON")

	for _, c := range []*cobra.Command{reviewsAddCmd, reviewsEditCmd} {
		c.Flags().IntVarP(&reviewRating, "rating", "r", reviews.DefaultRating, "Stars, 1 to 5")
		c.Flags().StringVarP(&reviewComment, "comment", "m", "", "Review text")
	}

	reviewsCmd.AddCommand(reviewsListCmd)
	reviewsCmd.AddCommand(reviewsAddCmd)
	reviewsCmd.AddCommand(reviewsEditCmd)
	reviewsCmd.AddCommand(reviewsDeleteCmd)
	reviewsCmd.AddCommand(reviewsHelpfulCmd)
	reviewsCmd.AddCommand(reviewsMineCmd)
}

// loadReviews mounts the review view for one template.
func loadReviews(ctx context.Context, a *app, templateID string) (*reviews.View, error) {
	v := reviews.New(a.api, a.session, a.notifier, a.confirm, a.logger, templateID)
	v.Load(ctx)
	return v, checkState(v.State())
}

func validRating(stars int) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", stars)
	}
	return nil
}

func runReviewsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	v, err := loadReviews(context.Background(), a, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reviewsListJSON {
		return printJSON(out, struct {
			Rating  *apiclient.Rating  `json:"rating"`
			Reviews []apiclient.Review `json:"reviews"`
		}{v.Rating(), v.Reviews()})
	}

	writeRating(out, v.Rating())
	fmt.Fprintln(out)
	if len(v.Reviews()) == 0 {
		fmt.Fprintln(os.Stderr, "No reviews yet.")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tUSER\tRATING\tHELPFUL\tCOMMENT\tYOURS")
	for i := range v.Reviews() {
		r := &v.Reviews()[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Username, stars(r.Rating), r.Helpful, truncate(r.Comment, 50), mark(v.CanModify(r)))
	}
	return w.Flush()
}

func writeRating(out io.Writer, rating *apiclient.Rating) {
	if rating != nil {
		fmt.Fprintf(out, "Average %.1f from %d ratings\n", rating.AverageRating, rating.TotalRatings)
	}
	for _, b := range reviews.Bars(rating) {
		fmt.Fprintf(out, "%d %s %d\n", b.Stars, bar(b.Percent, 20), b.Count)
	}
}

// bar draws a filled bar of width cells for percent in 0..100.
func bar(percent float64, width int) string {
	filled := int(percent/100*float64(width) + 0.5)
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func stars(n int) string {
	n = max(0, min(n, 5))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func runReviewsAdd(cmd *cobra.Command, args []string) error {
	if err := validRating(reviewRating); err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadReviews(ctx, a, args[0])
	if err != nil {
		return err
	}

	v.SetRating(reviewRating)
	v.SetComment(reviewComment)
	return reported(v.Submit(ctx))
}

func runReviewsEdit(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("rating") && !cmd.Flags().Changed("comment") {
		return fmt.Errorf("give --rating and/or --comment")
	}
	if err := validRating(reviewRating); err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadReviews(ctx, a, args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("rating") {
		v.SetRating(reviewRating)
	}
	if cmd.Flags().Changed("comment") {
		v.SetComment(reviewComment)
	}
	return reported(v.Edit(ctx, args[1]))
}

func runReviewsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadReviews(ctx, a, args[0])
	if err != nil {
		return err
	}

	// Only the author is offered the delete action.
	r := findReview(v.Reviews(), args[1])
	if r == nil || !v.CanModify(r) {
		a.notifier.Notify("You can only delete your own review")
		return errReported
	}
	return reported(v.Delete(ctx, r.ID))
}

func findReview(rs []apiclient.Review, id string) *apiclient.Review {
	for i := range rs {
		if rs[i].ID == id {
			return &rs[i]
		}
	}
	return nil
}

func runReviewsHelpful(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadReviews(ctx, a, args[0])
	if err != nil {
		return err
	}
	return reported(v.MarkHelpful(ctx, args[1]))
}

func runReviewsMine(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	user := a.session.Identity(ctx)
	if user == nil {
		a.notifier.Notify("Please sign in to see your reviews")
		return errReported
	}
	rs, err := a.api.ListUserReviews(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		fmt.Fprintln(os.Stderr, "No reviews yet.")
		return nil
	}

	w := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tTEMPLATE\tRATING\tHELPFUL\tCOMMENT")
	for _, r := range rs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.TemplateID, stars(r.Rating), r.Helpful, truncate(r.Comment, 50))
	}
	return w.Flush()
}
