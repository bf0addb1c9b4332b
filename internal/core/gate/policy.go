package gate

import (
	"fmt"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

// Policy decides how many confirmations a transition needs and what the
// admin is told at each step.
type Policy interface {
	Kind() domain.EntityKind
	Critical(current, proposed string) bool
	Describe(req domain.TransitionRequest) Notice
	SuccessMessage(req domain.TransitionRequest) string
	FailureMessage() string
}

// Notice is the text of the confirmation the admin is looking at. Step-1
// fields are always set; the final fields only when ConfirmStep is 2.
type Notice struct {
	Step         int      `json:"step"`
	Critical     bool     `json:"critical"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Warnings     []string `json:"warnings,omitempty"`
	FinalHeading string   `json:"finalHeading,omitempty"`
	Consequences []string `json:"consequences,omitempty"`
	ActionLabel  string   `json:"actionLabel"`
}

const (
	finalTitle    = "Final Confirmation Required"
	finalQuestion = "Are you absolutely sure you want to proceed?"
)

type OrderPolicy struct{}

func (OrderPolicy) Kind() domain.EntityKind { return domain.EntityOrder }

// Critical holds for any transition into or out of cancelled.
func (OrderPolicy) Critical(current, proposed string) bool {
	cancelled := string(domain.OrderStatusCancelled)
	return current == cancelled || proposed == cancelled
}

func (OrderPolicy) Describe(req domain.TransitionRequest) Notice {
	cancelled := string(domain.OrderStatusCancelled)
	n := Notice{Step: req.ConfirmStep, Critical: req.Critical}

	if req.ConfirmStep >= 2 {
		n.Title = finalTitle
		n.Summary = "This is a critical action that may affect payment processing and customer notifications. " + finalQuestion
		switch {
		case req.ProposedValue == cancelled:
			n.FinalHeading = "Cancelling this order will:"
			n.Consequences = []string{
				"Send cancellation email to customer",
				"Initiate refund if payment was received",
				"Update inventory counts",
			}
		case req.CurrentValue == cancelled:
			n.FinalHeading = "Reactivating this order will:"
			n.Consequences = []string{
				"Mark order as active again",
				"May require manual payment verification",
				"Customer may need to be contacted",
			}
		}
		n.ActionLabel = "Confirm"
		return n
	}

	n.Title = "Update Order Status?"
	if req.Critical {
		n.Title = "Critical Status Change"
	}
	n.Summary = fmt.Sprintf("Change order %s status from %s to %s?", req.EntityLabel, req.CurrentValue, req.ProposedValue)
	if req.ProposedValue == cancelled {
		n.Warnings = append(n.Warnings, "Cancelling will notify the customer and initiate a refund if payment was made.")
	}
	if req.CurrentValue == cancelled {
		n.Warnings = append(n.Warnings, "Reactivating a cancelled order is unusual. Make sure this is intentional.")
	}
	if req.ProposedValue == string(domain.OrderStatusDelivered) {
		n.Warnings = append(n.Warnings, "Customer will be notified that their order has been delivered.")
	}
	n.ActionLabel = "Confirm"
	if req.Critical {
		n.ActionLabel = "Continue"
	}
	return n
}

func (OrderPolicy) SuccessMessage(domain.TransitionRequest) string { return "Order status updated" }
func (OrderPolicy) FailureMessage() string                         { return "Failed to update order status" }

// RolePolicy treats every role change as critical.
type RolePolicy struct{}

func (RolePolicy) Kind() domain.EntityKind { return domain.EntityUser }

func (RolePolicy) Critical(string, string) bool { return true }

func (RolePolicy) Describe(req domain.TransitionRequest) Notice {
	n := Notice{Step: req.ConfirmStep, Critical: true}
	grant := req.ProposedValue == string(domain.RoleAdmin)

	if req.ConfirmStep >= 2 {
		n.Title = finalTitle
		n.Summary = finalQuestion
		if grant {
			n.FinalHeading = "Granting Admin access will allow:"
			n.Consequences = []string{
				"View and manage all orders",
				"Create, edit, and delete products",
				"Manage categories and users",
				"Access dashboard and analytics",
			}
		} else {
			n.FinalHeading = "Revoking Admin access will:"
			n.Consequences = []string{
				"Remove access to admin dashboard",
				"Remove ability to manage products",
				"Remove ability to manage orders",
				"Remove ability to manage other users",
			}
		}
		n.ActionLabel = "Confirm"
		return n
	}

	n.Title = "Change User Role?"
	n.Summary = fmt.Sprintf("Change %s from %s to %s?", req.EntityLabel,
		domain.Role(req.CurrentValue).Title(), domain.Role(req.ProposedValue).Title())
	if grant {
		n.Warnings = []string{"Admins have full access to manage products, orders, and users."}
	} else {
		n.Warnings = []string{"This user will lose all admin privileges."}
	}
	n.ActionLabel = "Continue"
	return n
}

func (RolePolicy) SuccessMessage(req domain.TransitionRequest) string {
	if domain.Role(req.ProposedValue) == domain.RoleAdmin {
		return req.EntityLabel + " is now an Admin"
	}
	return req.EntityLabel + " is now a User"
}

func (RolePolicy) FailureMessage() string { return "Failed to update role" }
