package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"clam-browse/internal/browse"
	"clam-browse/internal/prefs"
	"clam-browse/internal/widget"
)

type listOptions struct {
	search   string
	category string
	brands   []string
	minPrice float64
	maxPrice float64
	rating   float64
	sort     string
	page     int
	save     bool
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of products matching the filters",
		Long: `Show one page of products. Filters not given on the command line come from the saved
preferences; --save stores the resulting filters and sort mode for next time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.search, "search", "s", "", "case-insensitive text the product name must contain")
	f.StringVarP(&opts.category, "category", "c", browse.AllCategories, "category, or All")
	f.StringSliceVarP(&opts.brands, "brand", "b", nil, "brand to include (repeatable)")
	f.Float64Var(&opts.minPrice, "min-price", browse.DefaultMinPrice, "lowest price, inclusive")
	f.Float64Var(&opts.maxPrice, "max-price", browse.DefaultMaxPrice, "highest price, inclusive")
	f.Float64VarP(&opts.rating, "rating", "r", 0, "minimum rating, inclusive")
	f.StringVar(&opts.sort, "sort", "none", "none, price_asc, price_desc, rating_desc or rating_asc")
	f.IntVarP(&opts.page, "page", "p", 1, "page to show, starting at 1")
	f.BoolVar(&opts.save, "save", false, "remember these filters and sort mode")
	return cmd
}

func runList(cmd *cobra.Command, root *rootOptions, opts *listOptions) error {
	ctx := cmd.Context()
	store := root.store()

	saved, err := prefs.Load(ctx, store)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: ignoring saved preferences: %v\n", err)
	}

	criteria := saved.Criteria
	flags := cmd.Flags()
	if flags.Changed("category") {
		criteria.Category = opts.category
	}
	if flags.Changed("brand") {
		criteria.Brands = opts.brands
	}
	if flags.Changed("min-price") {
		criteria.PriceRange[0] = opts.minPrice
	}
	if flags.Changed("max-price") {
		criteria.PriceRange[1] = opts.maxPrice
	}
	if flags.Changed("rating") {
		criteria.Rating = opts.rating
	}
	mode := saved.Sort
	if flags.Changed("sort") {
		mode = browse.ParseSortMode(opts.sort)
	}

	sessionOpts := widget.Options{PageSize: root.pageSize}
	if opts.save {
		sessionOpts.Store = store
	}
	s := widget.New(root.fetcher(), sessionOpts)
	if err := s.ApplyFilters(ctx, criteria); err != nil {
		return err
	}
	if err := s.SetSort(ctx, mode); err != nil {
		return err
	}
	s.SetSearch(opts.search)
	if err := s.SettleSearch(ctx); err != nil {
		return err
	}
	s.SetPage(opts.page)

	v := s.View()
	if v.Status == widget.StatusFailed {
		return v.Err
	}
	renderList(cmd.OutOrStdout(), v)
	return nil
}

var columns = []string{"ID", "NAME", "CATEGORY", "BRAND", "PRICE", "RATING"}

func row(p browse.Product) []string {
	return []string{
		string(p.ID),
		p.Name,
		p.Category,
		p.Brand,
		strconv.FormatFloat(p.Price, 'f', 2, 64),
		strconv.FormatFloat(p.Rating, 'f', 1, 64),
	}
}

func renderList(w io.Writer, v widget.View) {
	if v.Status == widget.StatusEmpty {
		fmt.Fprintln(w, "No products match the current filters.")
		return
	}

	rows := [][]string{columns}
	for _, p := range v.Items {
		rows = append(rows, row(p))
	}
	writeTable(w, rows)

	if len(v.Items) == 0 {
		fmt.Fprintf(w, "No products on page %d.\n", v.Page)
	}
	fmt.Fprintf(w, "page %d of %d (%d products, sort %s)\n", v.Page, v.TotalPages, v.Total, v.Sort)
}

// writeTable left-aligns every column to its widest cell, measured in terminal cells
func writeTable(w io.Writer, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, cell := range r {
			if i == len(r)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
}
