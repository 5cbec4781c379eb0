package event

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/go-playground/validator/v10"
)

var ErrInvalid = errors.New("invalid input")

const (
	MinNameLength  = 2
	MaxNameLength  = 100
	MaxMMR         = 15000
	MaxRoles       = 2
	MaxTitleLength = 200
	MinMaxPlayers  = 10
	MaxMaxPlayers  = 1000
)

var (
	nameRule = fmt.Sprintf("min=%d,max=%d", MinNameLength, MaxNameLength)
	mmrRule  = fmt.Sprintf("gte=0,lte=%d", MaxMMR)
)

// Field errors are reported under the json name of the field.
var messages = map[string]string{
	"title":       fmt.Sprintf("title must be 1 to %d characters", MaxTitleLength),
	"max_players": fmt.Sprintf("max players must be between %d and %d", MinMaxPlayers, MaxMaxPlayers),
	"expires_at":  "expiry must be after opening time",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(eventWindow, EventInput{})
	return v
}

func eventWindow(sl validator.StructLevel) {
	in := sl.Current().Interface().(EventInput)
	if in.OpensAt != nil && in.ExpiresAt != nil && !in.ExpiresAt.After(*in.OpensAt) {
		sl.ReportError(in.ExpiresAt, "expires_at", "ExpiresAt", "gtfield", "opens_at")
	}
}

// invalid turns validator output into ErrInvalid. msg overrides the
// per-field message.
func invalid(err error, msg string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	if msg == "" {
		fe := verrs[0]
		msg = messages[fe.Field()]
		if msg == "" {
			msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

// NormalizeName trims name and checks its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, nameRule); err != nil {
		return "", invalid(err, fmt.Sprintf("name must be %d to %d characters", MinNameLength, MaxNameLength))
	}
	return name, nil
}

func ValidateMMR(mmr int) error {
	if err := validate.Var(mmr, mmrRule); err != nil {
		return invalid(err, fmt.Sprintf("mmr must be between 0 and %d", MaxMMR))
	}
	return nil
}

// ParseRoles turns role labels into a set of one or two roles. The count is
// checked after aliases collapse, so it is not a tag rule.
func ParseRoles(labels []string) (team.RoleSet, error) {
	if len(labels) == 0 {
		return 0, ErrNoRoles
	}
	roles, err := team.ParseRoleSet(labels)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if roles.Len() > MaxRoles {
		return 0, fmt.Errorf("%w: at most %d preferred roles", ErrInvalid, MaxRoles)
	}
	return roles, nil
}

// EventInput describes a new registration window. A zero MaxPlayers means
// the default.
type EventInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	MaxPlayers  int        `json:"max_players" validate:"omitempty,min=10,max=1000"`
	OpensAt     *time.Time `json:"opens_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Validate checks the input with its title trimmed; in is not modified.
func (in *EventInput) Validate() error {
	trimmed := *in
	trimmed.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(trimmed); err != nil {
		return invalid(err, "")
	}
	return nil
}
