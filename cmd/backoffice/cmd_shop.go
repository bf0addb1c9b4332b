package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/pricing"
	"github.com/ambikamber/ambikamber.com/internal/core/service"
)

var (
	addQuantity int
	addSize     string
	addText     string
	addNotes    string
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and edit your cart",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartUpdate,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cli.cart().Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printCart(c, pricing.QuoteCart(c, cli.cfg.Pricing.Cart))
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.cart().Clear(cmd.Context())
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Enter a shipping address and pay for the cart",
	Args:  cobra.NoArgs,
	RunE:  runCheckout,
}

var myOrdersCmd = &cobra.Command{
	Use:   "my-orders",
	Short: "Your orders",
	Args:  cobra.NoArgs,
	RunE:  runMyOrders,
}

var myOrderShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one of your orders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cli.auth.Current(cmd.Context()); err != nil {
			return err
		}
		o, err := service.NewCustomerOrders(cli.client, cli.notify).Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printOrder(*o)
		return nil
	},
}

var myOrderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an order that has not been processed yet",
	Args:  cobra.ExactArgs(1),
	RunE:  runMyOrderCancel,
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "how many")
	cartAddCmd.Flags().StringVar(&addSize, "size", "", "selected size")
	cartAddCmd.Flags().StringVar(&addText, "text", "", "customization text")
	cartAddCmd.Flags().StringVar(&addNotes, "notes", "", "additional customization notes")
	myOrderCancelCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	cartCmd.AddCommand(cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd)
	myOrdersCmd.AddCommand(myOrderShowCmd, myOrderCancelCmd)
	rootCmd.AddCommand(cartCmd, checkoutCmd, myOrdersCmd)
}

func printCart(c domain.Cart, b pricing.Breakdown) {
	if c.Empty() {
		cli.println(styles.Muted.Render("Your cart is empty"))
		return
	}
	t := newTable("Item ID", "Product", "Size", "Qty", "Price", "Subtotal")
	for _, it := range c.Items {
		t.Row(it.ID, it.Name, it.SelectedSize, strconv.Itoa(it.Quantity), formatINR(it.Price), formatINR(it.Price*int64(it.Quantity)))
	}
	cli.println(t)
	printBreakdown(b)
}

func printBreakdown(b pricing.Breakdown) {
	cli.printf("Items (%d)  %s\n", b.Items, formatINR(b.Subtotal))
	if b.Shipping == 0 {
		cli.printf("Shipping   %s\n", styles.Success.Render("Free"))
	} else {
		cli.printf("Shipping   %s\n", formatINR(b.Shipping))
	}
	if b.Tax > 0 {
		cli.printf("Tax        %s\n", formatINR(b.Tax))
	}
	cli.printf("Total      %s\n", styles.Bold.Render(formatINR(b.Total)))
}

func runCartShow(cmd *cobra.Command, args []string) error {
	cart := cli.cart()
	c, err := cart.Fetch(cmd.Context())
	if err != nil {
		return err
	}
	summary := cart.Summary()
	printCart(c, summary)
	if gap := summary.FreeShippingGap(pricing.FreeShippingThreshold); gap > 0 && !c.Empty() {
		cli.println(styles.Muted.Render(fmt.Sprintf("Add %s more for free shipping", formatINR(gap))))
	}
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	item := domain.AddToCart{ProductID: args[0], Quantity: addQuantity, SelectedSize: addSize}
	if addText != "" || addNotes != "" {
		item.Customization = &domain.Customization{Text: addText, AdditionalNotes: addNotes}
	}
	c, err := cli.cart().Add(cmd.Context(), item)
	if err != nil {
		return err
	}
	cli.println(styles.Muted.Render(fmt.Sprintf("%d item(s) in cart", c.ItemCount())))
	return nil
}

func runCartUpdate(cmd *cobra.Command, args []string) error {
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity %q: %w", args[1], service.ErrInvalidQuantity)
	}
	c, err := cli.cart().Update(cmd.Context(), args[0], qty)
	if err != nil {
		return err
	}
	printCart(c, pricing.QuoteCart(c, cli.cfg.Pricing.Cart))
	return nil
}

func runCheckout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := cli.auth.Current(ctx)
	if err != nil {
		return err
	}
	co, err := service.StartCheckout(ctx, cli.cart(), cli.client, cli.notify, cli.cfg.Pricing.Checkout, &sess.User, cli.logger)
	if errors.Is(err, service.ErrEmptyCart) {
		cli.println(styles.Muted.Render("Your cart is empty"))
		return nil
	}
	if err != nil {
		return err
	}

	// Address step, repeated until it validates.
	for co.Step() == service.StepAddress {
		addr, err := cli.prompt.Address(co.Address())
		if err != nil {
			_ = co.Abandon()
			return abortIsNo(err)
		}
		var verr *service.ValidationError
		if err := co.SubmitAddress(ctx, addr); err != nil && !errors.As(err, &verr) {
			return err
		}
	}

	cli.println(styles.Title.Render("Order summary"))
	printBreakdown(co.Quote())

	method, err := cli.prompt.PaymentMethod()
	if err != nil {
		_ = co.Abandon()
		return abortIsNo(err)
	}

	var order *domain.Order
	switch method {
	case domain.PaymentGateway:
		gw, err := co.BeginGatewayPayment(ctx)
		if err != nil {
			return err
		}
		cli.printf("Gateway order %s for %s (key %s)\n", gw.GatewayOrderID, formatINR(co.Quote().Total), gw.Key)
		v, err := cli.prompt.PaymentResult(*gw)
		if errors.Is(err, huh.ErrUserAborted) || (err == nil && v.GatewayPaymentID == "") {
			co.DismissGatewayPayment(ctx)
			return nil
		}
		if err != nil {
			return err
		}
		if order, err = co.VerifyGatewayPayment(ctx, v); err != nil {
			return err
		}
	default:
		if order, err = co.PayDemo(ctx); err != nil {
			return err
		}
	}

	cli.printf("Order %s placed, total %s\n", styles.Bold.Render(order.Label()), formatINR(order.TotalPrice))
	return nil
}

func runMyOrders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if _, err := cli.auth.Current(ctx); err != nil {
		return err
	}
	orders, err := service.NewCustomerOrders(cli.client, cli.notify).List(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		cli.println(styles.Muted.Render("You have not placed any orders yet"))
		return nil
	}
	t := newTable("ID", "Order", "Items", "Total", "Status", "Placed")
	for _, o := range orders {
		t.Row(o.ID, o.Label(), strconv.Itoa(len(o.Items)), formatINR(o.TotalPrice), renderStatus(o.Status), o.CreatedAt.Format("02 Jan 2006"))
	}
	cli.println(t)
	return nil
}

func runMyOrderCancel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if _, err := cli.auth.Current(ctx); err != nil {
		return err
	}
	if !assumeYes {
		ok, err := cli.prompt.Confirm("Cancel order?", "Are you sure you want to cancel this order?", "Cancel order")
		if err != nil || !ok {
			return err
		}
	}
	o, err := service.NewCustomerOrders(cli.client, cli.notify).Cancel(ctx, args[0])
	if err != nil {
		return err
	}
	cli.printf("Order %s is %s\n", o.Label(), renderStatus(o.Status))
	return nil
}
