package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/service"
)

var (
	browseCategory string
	browseSort     string
	browseMinPrice int64
	browseMaxPrice int64
	browseFeatured bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the storefront catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products; the ID column is what cart add takes",
	Args:  cobra.NoArgs,
	RunE:  runProductsList,
}

var productsShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsShow,
}

var productsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories products can be filtered by",
	Args:  cobra.NoArgs,
	RunE:  runProductsCategories,
}

func init() {
	f := productsListCmd.Flags()
	f.IntVar(&listPage, "page", 1, "page number")
	f.StringVarP(&listSearch, "search", "s", "", "search text")
	f.StringVarP(&browseCategory, "category", "c", "", "category slug")
	f.StringVar(&browseSort, "sort", domain.DefaultProductSort, "sort order: -createdAt, price, -price, name or -rating")
	f.Int64Var(&browseMinPrice, "min-price", 0, "lowest price in rupees")
	f.Int64Var(&browseMaxPrice, "max-price", 0, "highest price in rupees")
	f.BoolVar(&browseFeatured, "featured", false, "only the featured shelf")

	productsCmd.AddCommand(productsListCmd, productsShowCmd, productsCategoriesCmd)
	rootCmd.AddCommand(productsCmd)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	catalog := service.NewCatalog(cli.client, cli.notify)

	if browseFeatured {
		products, err := catalog.Featured(ctx)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			cli.println(styles.Muted.Render("No featured products"))
			return nil
		}
		cli.println(productsTable(products))
		return nil
	}

	page, err := catalog.Browse(ctx, domain.ProductQuery{
		Category: browseCategory,
		Search:   listSearch,
		MinPrice: browseMinPrice,
		MaxPrice: browseMaxPrice,
		Sort:     browseSort,
		Page:     listPage,
	})
	if err != nil {
		return err
	}
	if len(page.Products) == 0 {
		cli.println(styles.Muted.Render("No products found"))
		return nil
	}
	cli.println(productsTable(page.Products))
	cli.println(pageFooter(page.Page, page.Pages, page.Total))
	return nil
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	p, err := service.NewCatalog(cli.client, cli.notify).Product(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cli.println(styles.Title.Render(p.Name))
	cli.printf("Price     %s\n", formatINR(p.Price))
	switch {
	case p.Stock == 0:
		cli.printf("Stock     %s\n", styles.Error.Render("Out of stock"))
	case p.LowStock():
		cli.printf("Stock     %s\n", styles.Warning.Render(fmt.Sprintf("Only %d left", p.Stock)))
	default:
		cli.printf("Stock     %d\n", p.Stock)
	}
	if p.Category != "" {
		cli.printf("Category  %s\n", p.Category)
	}
	cli.println(styles.Muted.Render("Add it with: backoffice cart add " + p.ID))
	return nil
}

func runProductsCategories(cmd *cobra.Command, args []string) error {
	cats, err := service.NewCatalog(cli.client, cli.notify).Categories(cmd.Context())
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		cli.println(styles.Muted.Render("No categories found"))
		return nil
	}
	t := newTable("Slug", "Name")
	for _, c := range cats {
		t.Row(c.Slug, c.Name)
	}
	cli.println(t)
	return nil
}
