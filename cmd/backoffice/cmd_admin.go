package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/gate"
	"github.com/ambikamber/ambikamber.com/internal/core/service"
)

var (
	listPage   int
	listSearch string
	listStatus string
	assumeYes  bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Back-office administration (admin accounts only)",
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Revenue, counts and recent orders",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders and change their status",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of orders",
	Args:  cobra.NoArgs,
	RunE:  runOrdersList,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show an order in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersShow,
}

var ordersStatusCmd = &cobra.Command{
	Use:   "status <order-id> <status>",
	Short: "Change an order's status after confirmation",
	Long: `Change an order's status. The change is only sent once confirmed.
Cancelling an order, or moving one out of cancelled, asks twice.`,
	Args: cobra.ExactArgs(2),
	RunE: runOrdersStatus,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users and change their role",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of users",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersRoleCmd = &cobra.Command{
	Use:   "role <user-id> <user|admin>",
	Short: "Change a user's role after two confirmations",
	Long: `Change a user's role. The user must be on the page selected by
--page and --search. Every role change asks twice.`,
	Args: cobra.ExactArgs(2),
	RunE: runUsersRole,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List, delete and toggle categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every category",
	Args:  cobra.NoArgs,
	RunE:  runCategoriesList,
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <category-id>",
	Short: "Delete an empty category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesDelete,
}

var categoriesToggleCmd = &cobra.Command{
	Use:   "toggle <category-id>",
	Short: "Show or hide a category on the storefront",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesToggle,
}

var adminProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List and delete products",
}

var adminProductsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of products, low stock in red",
	Args:  cobra.NoArgs,
	RunE:  runAdminProductsList,
}

var adminProductsDeleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product after confirmation",
	Long: `Delete a product. The product must be on the page selected by
--page and --search. This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminProductsDelete,
}

func init() {
	for _, c := range []*cobra.Command{ordersListCmd, ordersStatusCmd, usersListCmd, usersRoleCmd, adminProductsListCmd, adminProductsDeleteCmd} {
		c.Flags().IntVar(&listPage, "page", 1, "page number")
		c.Flags().StringVarP(&listSearch, "search", "s", "", "search text")
	}
	ordersListCmd.Flags().StringVar(&listStatus, "status", "", "only orders with this status")
	categoriesListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by name or slug")
	categoriesDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	adminProductsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersStatusCmd)
	usersCmd.AddCommand(usersListCmd, usersRoleCmd)
	categoriesCmd.AddCommand(categoriesListCmd, categoriesDeleteCmd, categoriesToggleCmd)
	adminProductsCmd.AddCommand(adminProductsListCmd, adminProductsDeleteCmd)
	adminCmd.AddCommand(dashboardCmd, ordersCmd, usersCmd, categoriesCmd, adminProductsCmd)
	rootCmd.AddCommand(adminCmd)
}

func requireAdmin(ctx context.Context) error {
	_, err := cli.auth.RequireAdmin(ctx)
	if errors.Is(err, service.ErrNotAdmin) {
		return fmt.Errorf("%w: log in with an admin account", err)
	}
	return err
}

func gateOptions() []gate.Option {
	return []gate.Option{gate.WithLogger(cli.logger)}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Bold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func pageFooter(page, pages, total int) string {
	if pages < 1 {
		pages = 1
	}
	return styles.Muted.Render(fmt.Sprintf("Page %d of %d, %d total", page, pages, total))
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	d, err := cli.client.Dashboard(ctx)
	if err != nil {
		cli.notify.Error(ctx, "Failed to load dashboard")
		return err
	}

	cli.println(styles.Title.Render("Dashboard"))
	cli.printf("Revenue   %s\n", formatINR(d.TotalRevenue))
	cli.printf("Orders    %d\n", d.TotalOrders)
	cli.printf("Products  %d\n", d.TotalProducts)
	cli.printf("Users     %d\n", d.TotalUsers)

	if len(d.OrdersByStatus) > 0 {
		t := newTable("Status", "Orders")
		for _, sc := range d.OrdersByStatus {
			t.Row(renderStatus(sc.Status), strconv.Itoa(sc.Count))
		}
		cli.println(t)
	}
	if len(d.RecentOrders) > 0 {
		cli.println(styles.Bold.Render("Recent orders"))
		cli.println(ordersTable(d.RecentOrders))
	}
	return nil
}

func ordersTable(orders []domain.Order) *table.Table {
	t := newTable("ID", "Order", "Customer", "Total", "Status", "Placed")
	for _, o := range orders {
		customer := ""
		if o.User != nil {
			customer = o.User.Name
		}
		t.Row(o.ID, o.Label(), customer, formatINR(o.TotalPrice), renderStatus(o.Status), o.CreatedAt.Format("02 Jan 2006"))
	}
	return t
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	view := service.NewOrdersView(cli.client, cli.notify, gateOptions()...)
	if err := view.Load(ctx, domain.ListQuery{Page: listPage, Search: listSearch, Status: listStatus}); err != nil {
		return err
	}

	page := view.Page()
	if len(page.Orders) == 0 {
		cli.println(styles.Muted.Render("No orders found"))
		return nil
	}
	cli.println(ordersTable(page.Orders))
	cli.println(pageFooter(page.Page, page.Pages, page.Total))
	return nil
}

func runOrdersShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	view := service.NewOrdersView(cli.client, cli.notify, gateOptions()...)
	o, err := view.Open(ctx, args[0])
	if err != nil {
		return err
	}
	printOrder(*o)
	return nil
}

func printOrder(o domain.Order) {
	cli.printf("%s  %s\n", styles.Title.Render("Order "+o.Label()), renderStatus(o.Status))
	if o.User != nil {
		cli.printf("Customer  %s <%s>\n", o.User.Name, o.User.Email)
	}
	a := o.ShippingAddress
	cli.printf("Ship to   %s, %s, %s, %s %s (%s)\n", a.Name, a.Street, a.City, a.State, a.Pincode, a.Phone)
	if o.PaymentInfo.Method != "" {
		cli.printf("Payment   %s %s\n", o.PaymentInfo.Method, o.PaymentInfo.Status)
	}

	t := newTable("Item", "Size", "Qty", "Price", "Subtotal")
	for _, it := range o.Items {
		name := it.Name
		if it.Customization != nil && it.Customization.Text != "" {
			name += styles.Muted.Render(" (" + it.Customization.Text + ")")
		}
		t.Row(name, it.SelectedSize, strconv.Itoa(it.Quantity), formatINR(it.Price), formatINR(it.Price*int64(it.Quantity)))
	}
	cli.println(t)

	cli.printf("Items     %s\n", formatINR(o.ItemsPrice))
	cli.printf("Shipping  %s\n", formatINR(o.ShippingPrice))
	cli.printf("Tax       %s\n", formatINR(o.TaxPrice))
	cli.printf("Total     %s\n", styles.Bold.Render(formatINR(o.TotalPrice)))

	for _, h := range o.StatusHistory {
		line := fmt.Sprintf("  %s  %s", h.Date.Format("02 Jan 2006 15:04"), renderStatus(h.Status))
		if h.Note != "" {
			line += styles.Muted.Render("  " + h.Note)
		}
		cli.println(line)
	}
}

func runOrdersStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	status, err := domain.ParseOrderStatus(args[1])
	if err != nil {
		return fmt.Errorf("%w %q", err, args[1])
	}

	view := service.NewOrdersView(cli.client, cli.notify, gateOptions()...)
	if _, err := view.Open(ctx, args[0]); err != nil {
		return err
	}
	if _, err := view.RequestStatus(ctx, args[0], status); err != nil {
		if errors.Is(err, gate.ErrNoChange) {
			cli.println(styles.Muted.Render("Order is already " + string(status)))
			return nil
		}
		return err
	}

	if _, err := runGate(ctx, view.Gate(), cli.prompt, cli.out); err != nil {
		return err
	}
	if o, ok := view.Detail(); ok {
		cli.printf("Order %s is %s\n", o.Label(), renderStatus(o.Status))
	}
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	view := service.NewUsersView(cli.client, cli.notify, gateOptions()...)
	if err := view.Load(ctx, domain.ListQuery{Page: listPage, Search: listSearch}); err != nil {
		return err
	}

	page := view.Page()
	if len(page.Users) == 0 {
		cli.println(styles.Muted.Render("No users found"))
		return nil
	}
	t := newTable("ID", "Name", "Email", "Phone", "Role", "Joined")
	for _, u := range page.Users {
		t.Row(u.ID, u.Name, u.Email, u.Phone, renderRole(u.Role), u.CreatedAt.Format("02 Jan 2006"))
	}
	cli.println(t)
	cli.println(pageFooter(page.Page, page.Pages, page.Total))
	return nil
}

func runUsersRole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	role, err := domain.ParseRole(args[1])
	if err != nil {
		return fmt.Errorf("%w %q", err, args[1])
	}

	view := service.NewUsersView(cli.client, cli.notify, gateOptions()...)
	if err := view.Load(ctx, domain.ListQuery{Page: listPage, Search: listSearch}); err != nil {
		return err
	}
	if _, err := view.RequestRole(ctx, args[0], role); err != nil {
		switch {
		case errors.Is(err, gate.ErrNoChange):
			cli.println(styles.Muted.Render("User already has role " + role.Title()))
			return nil
		case errors.Is(err, service.ErrNotLoaded):
			return fmt.Errorf("user %s is not on this page, narrow it down with --search", args[0])
		}
		return err
	}

	state, err := runGate(ctx, view.Gate(), cli.prompt, cli.out)
	if err != nil {
		return err
	}
	if state == domain.GateResolvedSuccess {
		if cur, ok := view.Selected(args[0]); ok {
			cli.printf("Role is now %s\n", renderRole(cur))
		}
	}
	return nil
}

func loadCategories(ctx context.Context) (*service.CategoriesView, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	view := service.NewCategoriesView(cli.client, cli.notify)
	if err := view.Load(ctx); err != nil {
		return nil, err
	}
	return view, nil
}

func runCategoriesList(cmd *cobra.Command, args []string) error {
	view, err := loadCategories(cmd.Context())
	if err != nil {
		return err
	}
	cats := view.Filter(listSearch)
	if len(cats) == 0 {
		cli.println(styles.Muted.Render("No categories found"))
		return nil
	}
	t := newTable("ID", "Name", "Slug", "Products", "Status")
	for _, c := range cats {
		status := styles.Success.Render("Active")
		if !c.IsActive {
			status = styles.Muted.Render("Inactive")
		}
		t.Row(c.ID, c.Name, c.Slug, strconv.Itoa(c.ProductCount), status)
	}
	cli.println(t)
	return nil
}

func runCategoriesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	view, err := loadCategories(ctx)
	if err != nil {
		return err
	}
	c, err := view.CheckDeletable(ctx, args[0])
	if err != nil {
		return err
	}
	if !assumeYes {
		ok, err := cli.prompt.Confirm("Delete category?", fmt.Sprintf("%q will be removed permanently.", c.Name), "Delete")
		if err != nil || !ok {
			return err
		}
	}
	return view.Delete(ctx, c.ID)
}

func runCategoriesToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	view, err := loadCategories(ctx)
	if err != nil {
		return err
	}
	return view.ToggleActive(ctx, args[0])
}

func loadAdminProducts(ctx context.Context) (*service.ProductsView, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	view := service.NewProductsView(cli.client, cli.notify)
	if err := view.Load(ctx, domain.ListQuery{Page: listPage, Search: listSearch}); err != nil {
		return nil, err
	}
	return view, nil
}

func productsTable(products []domain.Product) *table.Table {
	t := newTable("ID", "Product", "Category", "Price", "Stock")
	for _, p := range products {
		stock := strconv.Itoa(p.Stock)
		if p.LowStock() {
			stock = styles.Error.Render(stock)
		}
		name := p.Name
		if p.Featured {
			name += styles.Muted.Render(" ★")
		}
		t.Row(p.ID, name, p.Category, formatINR(p.Price), stock)
	}
	return t
}

func runAdminProductsList(cmd *cobra.Command, args []string) error {
	view, err := loadAdminProducts(cmd.Context())
	if err != nil {
		return err
	}
	page := view.Page()
	if len(page.Products) == 0 {
		cli.println(styles.Muted.Render("No products found"))
		return nil
	}
	cli.println(productsTable(page.Products))
	cli.println(pageFooter(page.Page, page.Pages, page.Total))
	return nil
}

func runAdminProductsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	view, err := loadAdminProducts(ctx)
	if err != nil {
		return err
	}
	p, ok := view.Find(args[0])
	if !ok {
		return fmt.Errorf("product %s is not on this page, narrow it down with --search", args[0])
	}
	if !assumeYes {
		ok, err := cli.prompt.Confirm("Delete product?",
			fmt.Sprintf("%q will be deleted with all its data and images. This cannot be undone.", p.Name), "Delete")
		if err != nil || !ok {
			return err
		}
	}
	return view.Delete(ctx, p.ID)
}
