package contact

import "time"

// Contact is a campaign recipient. ID is nil for synthetic test contacts.
type Contact struct {
	ID                *int
	Nickname          string
	Phone             string
	FullName          *string
	Email             *string
	CanContact        bool
	HasBeenContacted  bool
	CustomField1      *string
	CustomField2      *string
	CustomField3      *string
	CustomField4      *string
	CustomField5      *string
	ImportErrorReason *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Eligible reports whether a campaign may select the contact.
func (c *Contact) Eligible() bool {
	return c.CanContact && !c.HasBeenContacted && c.Phone != ""
}

// Label is used in logs where a contact has no stored identity.
func (c *Contact) Label() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.Phone
}

type IContactService interface {
	FindEligible() (*[]Contact, error)
	MarkContacted(id int) (bool, error)
	FindByPhone(phone string) (*Contact, error)
	GetByID(id int) (*Contact, error)
}
