package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID     uuid.UUID
	Name       string
	Privileges []string
}

func (a Actor) HasPrivilege(code string) bool {
	for _, p := range a.Privileges {
		if p == code {
			return true
		}
	}
	return false
}

// Audit is the value stored in CreatedBy/UpdatedBy/DeletedBy.
func (a Actor) Audit() string {
	if a.UserID == uuid.Nil {
		return "system"
	}
	return a.UserID.String()
}

// List is a page of results with the total row count.
type List[T any] struct {
	Items []T
	Total int64
}

var ErrForbidden = apperror.Forbidden("you are not allowed to access this resource")

// now is replaced in tests. Times are kept in UTC so they compare the same
// way in every database.
var now = func() time.Time { return time.Now().UTC() }

func validate(req interface{}) error {
	if err := validator.Validate(req); err != nil {
		return apperror.BadRequest(err.Error())
	}
	return nil
}

// notFound maps gorm's missing-row error to the service sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// uniqueSlug slugifies name and appends -2, -3, ... until exists says no.
func uniqueSlug(name string, exists func(string) (bool, error)) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, apperror.BadRequest("invalid birth_date format, use YYYY-MM-DD")
	}
	return &parsed, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
