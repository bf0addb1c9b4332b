package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/gate"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

var (
	colorAmber  = lipgloss.Color("#D97706")
	colorGreen  = lipgloss.Color("#16A34A")
	colorRed    = lipgloss.Color("#DC2626")
	colorBlue   = lipgloss.Color("#2563EB")
	colorPurple = lipgloss.Color("#9333EA")
	colorIndigo = lipgloss.Color("#4F46E5")
	colorYellow = lipgloss.Color("#CA8A04")
	colorMuted  = lipgloss.Color("#6B7280")
)

var styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Notice   lipgloss.Style
	Critical lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAmber),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorGreen),
	Warning: lipgloss.NewStyle().Foreground(colorYellow),
	Error:   lipgloss.NewStyle().Foreground(colorRed),

	Notice: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAmber).
		Padding(0, 1),
	Critical: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorRed).
		Padding(0, 1),
}

var statusColors = map[domain.OrderStatus]lipgloss.Color{
	domain.OrderStatusPending:    colorYellow,
	domain.OrderStatusConfirmed:  colorBlue,
	domain.OrderStatusProcessing: colorPurple,
	domain.OrderStatusShipped:    colorIndigo,
	domain.OrderStatusDelivered:  colorGreen,
	domain.OrderStatusCancelled:  colorRed,
}

func renderStatus(s domain.OrderStatus) string {
	c, ok := statusColors[s]
	if !ok {
		return string(s)
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}

func renderRole(r domain.Role) string {
	if r == domain.RoleAdmin {
		return lipgloss.NewStyle().Foreground(colorPurple).Render(r.Title())
	}
	return r.Title()
}

// formatINR renders whole rupees with Indian digit grouping, e.g. ₹1,23,456.
func formatINR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	if len(s) <= 3 {
		return sign + "₹" + s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return sign + "₹" + strings.Join(groups, ",") + "," + tail
}

// termNotifier prints notices the way the storefront shows toasts.
type termNotifier struct {
	out io.Writer
}

func (n termNotifier) Success(_ context.Context, msg string) {
	fmt.Fprintln(n.out, styles.Success.Render("✓ "+msg))
}

func (n termNotifier) Error(_ context.Context, msg string) {
	fmt.Fprintln(n.out, styles.Error.Render("✗ "+msg))
}

var _ port.Notifier = termNotifier{}

type prompter interface {
	Confirm(title, description, affirmative string) (bool, error)
	Credentials(email string) (string, string, error)
	Address(prefill domain.ShippingAddress) (domain.ShippingAddress, error)
	PaymentMethod() (domain.PaymentMethod, error)
	PaymentResult(order domain.GatewayOrder) (domain.PaymentVerification, error)
}

// huhPrompter asks on the terminal.
type huhPrompter struct{}

func (huhPrompter) Confirm(title, description, affirmative string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative(affirmative).
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, abortIsNo(err)
}

func (huhPrompter) Credentials(email string) (string, string, error) {
	var password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Value(&email),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
	))
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func (huhPrompter) Address(a domain.ShippingAddress) (domain.ShippingAddress, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&a.Name),
			huh.NewInput().Title("Email").Value(&a.Email),
			huh.NewInput().Title("Phone").Description("10 digits").Value(&a.Phone),
		).Title("Contact"),
		huh.NewGroup(
			huh.NewInput().Title("Street").Value(&a.Street),
			huh.NewInput().Title("City").Value(&a.City),
			huh.NewInput().Title("State").Value(&a.State),
			huh.NewInput().Title("Pincode").Description("6 digits").Value(&a.Pincode),
			huh.NewInput().Title("Country").Value(&a.Country),
		).Title("Shipping address"),
	)
	if err := form.Run(); err != nil {
		return a, err
	}
	return a, nil
}

func (huhPrompter) PaymentMethod() (domain.PaymentMethod, error) {
	method := domain.PaymentDemo
	err := huh.NewSelect[domain.PaymentMethod]().
		Title("Payment method").
		Options(
			huh.NewOption("Demo payment (no charge)", domain.PaymentDemo),
			huh.NewOption("Razorpay", domain.PaymentGateway),
		).
		Value(&method).
		Run()
	return method, err
}

// PaymentResult collects what the hosted widget hands back once the
// customer has paid in the browser.
func (huhPrompter) PaymentResult(order domain.GatewayOrder) (domain.PaymentVerification, error) {
	v := domain.PaymentVerification{GatewayOrderID: order.GatewayOrderID}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Payment id").Value(&v.GatewayPaymentID),
		huh.NewInput().Title("Signature").Value(&v.Signature),
	).Title("Complete the payment, then paste the widget response"))
	if err := form.Run(); err != nil {
		return v, err
	}
	return v, nil
}

func abortIsNo(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func renderNotice(out io.Writer, n gate.Notice) {
	var b strings.Builder
	b.WriteString(styles.Title.Render(n.Title))
	b.WriteString("\n" + n.Summary)
	for _, w := range n.Warnings {
		b.WriteString("\n" + styles.Warning.Render("! "+w))
	}
	if n.FinalHeading != "" {
		b.WriteString("\n\n" + styles.Bold.Render(n.FinalHeading))
		for _, c := range n.Consequences {
			b.WriteString("\n  • " + c)
		}
	}

	box := styles.Notice
	if n.Critical {
		box = styles.Critical
	}
	fmt.Fprintln(out, box.Render(b.String()))
}

// runGate walks the open request through its confirmations. Declining at
// any step cancels it; nothing is committed until every step is accepted.
func runGate(ctx context.Context, g *gate.Gate, p prompter, out io.Writer) (domain.GateState, error) {
	for {
		n, ok := g.Notice()
		if !ok {
			return g.State(), nil
		}
		renderNotice(out, n)

		accepted, err := p.Confirm(n.Title, "", n.ActionLabel)
		if err != nil {
			return g.State(), err
		}
		if !accepted {
			prev, err := g.Cancel(ctx)
			if err != nil {
				return g.State(), err
			}
			fmt.Fprintln(out, styles.Muted.Render("Cancelled, still "+prev))
			return g.State(), nil
		}

		if n.Step >= 2 {
			return g.Confirm(ctx)
		}
		state, err := g.Continue(ctx)
		if err != nil || state != domain.GateAwaitingStep2 {
			return state, err
		}
	}
}
