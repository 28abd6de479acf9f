package contact

// Accessor reads one template variable from a contact. A nil result renders
// as the empty string.
type Accessor func(c *Contact) *string

func str(s string) *string { return &s }

// TemplateVariables maps placeholder names (lower case, without braces) to the
// contact field they expand to.
var TemplateVariables = map[string]Accessor{
	"nickname":       func(c *Contact) *string { return str(c.Nickname) },
	"phone":          func(c *Contact) *string { return str(c.Phone) },
	"full_name":      func(c *Contact) *string { return c.FullName },
	"email":          func(c *Contact) *string { return c.Email },
	"custom_field_1": func(c *Contact) *string { return c.CustomField1 },
	"custom_field_2": func(c *Contact) *string { return c.CustomField2 },
	"custom_field_3": func(c *Contact) *string { return c.CustomField3 },
	"custom_field_4": func(c *Contact) *string { return c.CustomField4 },
	"custom_field_5": func(c *Contact) *string { return c.CustomField5 },
}

// TestModeVariables are the only placeholders expanded in test mode.
var TestModeVariables = []string{"nickname", "phone"}
