package retail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/storeops/storectl/internal/backend"
	"github.com/storeops/storectl/internal/listview"
)

const (
	ActionApprove listview.Action = "approve"
	ActionReject  listview.Action = "reject"
	ActionDelete  listview.Action = "delete"
)

// ErrUnsupportedAction is returned when a collection has no such row action.
var ErrUnsupportedAction = errors.New("action not supported by collection")

// ActionInput carries the free text some actions submit with the record ID.
type ActionInput struct {
	Note   string
	Reason string
}

type actionInputKey struct{}

// WithActionInput attaches in to ctx for the action handler to submit.
func WithActionInput(ctx context.Context, in ActionInput) context.Context {
	return context.WithValue(ctx, actionInputKey{}, in)
}

func actionInputFrom(ctx context.Context) ActionInput {
	in, _ := ctx.Value(actionInputKey{}).(ActionInput)
	return in
}

// ActionSpec describes a row action of a collection.
type ActionSpec struct {
	Name listview.Action
	// Key is the browser shortcut.
	Key   string
	Label string
	// Destructive actions ask for confirmation.
	Destructive bool
	// NeedsReason actions cannot be submitted without ActionInput.Reason.
	NeedsReason bool

	run func(ctx context.Context, api backend.API, c *Collection, id string, in ActionInput) error
}

// PastTense is the capitalized label as reported after the action succeeds,
// e.g. "Approved".
func (a ActionSpec) PastTense() string {
	label := a.Label
	if label == "" {
		label = string(a.Name)
	}
	if label == "" {
		return ""
	}
	if strings.HasSuffix(label, "e") {
		label += "d"
	} else {
		label += "ed"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

var (
	approveUser = ActionSpec{
		Name: ActionApprove, Key: "a", Label: "approve",
		run: func(ctx context.Context, api backend.API, _ *Collection, id string, in ActionInput) error {
			return submit(ctx, api, "/users/"+url.PathEscape(id)+"/approve", &ApprovalForm{UserID: id, Note: in.Note})
		},
	}
	rejectUser = ActionSpec{
		Name: ActionReject, Key: "x", Label: "reject", Destructive: true, NeedsReason: true,
		run: func(ctx context.Context, api backend.API, _ *Collection, id string, in ActionInput) error {
			return submit(ctx, api, "/users/"+url.PathEscape(id)+"/reject", &RejectionForm{UserID: id, Reason: in.Reason})
		},
	}
	approveRequest = ActionSpec{
		Name: ActionApprove, Key: "a", Label: "approve",
		run: func(ctx context.Context, api backend.API, c *Collection, id string, in ActionInput) error {
			return submit(ctx, api, c.recordPath(id)+"/approve", &ApprovalForm{RequestID: id, Note: in.Note})
		},
	}
	rejectRequest = ActionSpec{
		Name: ActionReject, Key: "x", Label: "reject", Destructive: true, NeedsReason: true,
		run: func(ctx context.Context, api backend.API, c *Collection, id string, in ActionInput) error {
			return submit(ctx, api, c.recordPath(id)+"/reject", &RejectionForm{RequestID: id, Reason: in.Reason})
		},
	}
	deleteAction = ActionSpec{
		Name: ActionDelete, Key: "d", Label: "delete", Destructive: true,
		run: func(ctx context.Context, api backend.API, c *Collection, id string, _ ActionInput) error {
			if strings.TrimSpace(id) == "" {
				return &ValidationError{Problems: []string{"id is required"}}
			}
			return api.Delete(ctx, c.recordPath(id))
		},
	}
)

// Do runs the named row action against the record with id.
func (c *Collection) Do(ctx context.Context, api backend.API, action listview.Action, id string, in ActionInput) error {
	spec, ok := c.Action(string(action))
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrUnsupportedAction, c.Name, action)
	}
	return spec.run(ctx, api, c, id, in)
}

// Bind registers every action of c on b. Handlers read their ActionInput
// from the dispatch context.
func Bind[R any](b *listview.Binding[Record, R], c *Collection, api backend.API) {
	for _, spec := range c.Actions {
		b.Handle(spec.Name, func(ctx context.Context, id string) error {
			return spec.run(ctx, api, c, id, actionInputFrom(ctx))
		})
	}
}

// ApprovalForm is posted to approve a user or a commodity request.
type ApprovalForm struct {
	UserID    string `form:"user_id,omitempty" validate:"required_without=RequestID"`
	RequestID string `form:"request_id,omitempty" validate:"required_without=UserID"`
	Note      string `form:"note,omitempty" validate:"max=500"`
}

// RejectionForm is posted to reject a user or a commodity request.
type RejectionForm struct {
	UserID    string `form:"user_id,omitempty" validate:"required_without=RequestID"`
	RequestID string `form:"request_id,omitempty" validate:"required_without=UserID"`
	Reason    string `form:"reason" validate:"required,max=500"`
}

// ValidationError lists the problems found in an action form.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks an action form.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_without":
			problems = append(problems, fe.Field()+" is required")
		case "max":
			problems = append(problems, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return &ValidationError{Problems: problems}
}

func submit(ctx context.Context, api backend.API, path string, form any) error {
	if err := Validate(form); err != nil {
		return err
	}
	return api.PostForm(ctx, path, form)
}
