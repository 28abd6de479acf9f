package contact

import (
	domainContact "go-wa-dispatch/src/domain/contact"
)

func (c *Contact) toDomainMapper() *domainContact.Contact {
	id := c.ID
	return &domainContact.Contact{
		ID:                &id,
		Nickname:          c.Nickname,
		Phone:             c.Phone,
		FullName:          c.FullName,
		Email:             c.Email,
		CanContact:        c.CanContact,
		HasBeenContacted:  c.HasBeenContacted,
		CustomField1:      c.CustomField1,
		CustomField2:      c.CustomField2,
		CustomField3:      c.CustomField3,
		CustomField4:      c.CustomField4,
		CustomField5:      c.CustomField5,
		ImportErrorReason: c.ImportErrorReason,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func fromDomainMapper(c *domainContact.Contact) *Contact {
	model := &Contact{
		Nickname:          c.Nickname,
		Phone:             c.Phone,
		FullName:          c.FullName,
		Email:             c.Email,
		CanContact:        c.CanContact,
		HasBeenContacted:  c.HasBeenContacted,
		CustomField1:      c.CustomField1,
		CustomField2:      c.CustomField2,
		CustomField3:      c.CustomField3,
		CustomField4:      c.CustomField4,
		CustomField5:      c.CustomField5,
		ImportErrorReason: c.ImportErrorReason,
	}
	if c.ID != nil {
		model.ID = *c.ID
	}
	return model
}

func arrayToDomainMapper(contacts *[]Contact) *[]domainContact.Contact {
	out := make([]domainContact.Contact, len(*contacts))
	for i := range *contacts {
		out[i] = *(*contacts)[i].toDomainMapper()
	}
	return &out
}
