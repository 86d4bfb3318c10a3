package category

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

var ErrNotFound = fmt.Errorf("category %w", apperr.ErrNotFound)

// Owner says who a category belongs to: the system (DefaultOwner) or a
// single user (UserOwner).
type Owner interface {
	owner()
}

// DefaultOwner marks the shared, read-only system categories.
type DefaultOwner struct{}

type UserOwner struct {
	UserID uuid.UUID
}

func (DefaultOwner) owner() {}
func (UserOwner) owner()    {}

type Category struct {
	ID        uuid.UUID
	Name      string
	Type      transaction.Type
	Icon      string
	Color     string
	Owner     Owner
	CreatedAt time.Time
}

func (c *Category) IsDefault() bool {
	_, ok := c.Owner.(DefaultOwner)
	return ok
}

// VisibleTo reports whether userID may read the category.
func (c *Category) VisibleTo(userID uuid.UUID) bool {
	switch o := c.Owner.(type) {
	case DefaultOwner:
		return true
	case UserOwner:
		return o.UserID == userID
	}

	return false
}

// CanModify reports whether userID may update or delete the category.
func (c *Category) CanModify(userID uuid.UUID) bool {
	o, ok := c.Owner.(UserOwner)
	return ok && o.UserID == userID
}
