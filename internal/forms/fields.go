package forms

type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindTextarea FieldKind = "textarea"
	KindTel      FieldKind = "tel"
	KindEmail    FieldKind = "email"
)

type Option struct {
	Value string
	Label string
}

// Field describes one input of a registration form.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Required    bool
	Placeholder string
	Options     []Option
	// Section groups fields under a heading.
	Section string
}

const (
	minAge = 0
	maxAge = 150
)

var genderOptions = []Option{
	{Value: "MALE", Label: "Male"},
	{Value: "FEMALE", Label: "Female"},
	{Value: "OTHER", Label: "Other"},
}

var mentalStateOptions = []Option{
	{Value: "ALERT", Label: "Alert/Normal"},
	{Value: "CONFUSED", Label: "Confused"},
	{Value: "DISTRESSED", Label: "Distressed"},
	{Value: "UNCONSCIOUS", Label: "Unconscious"},
	{Value: "INJURED", Label: "Injured"},
}

var missingPersonFields = []Field{
	{Name: "name", Label: "Full Name", Kind: KindText, Required: true, Placeholder: "Enter full name", Section: "Personal Information"},
	{Name: "age", Label: "Age", Kind: KindNumber, Required: true, Placeholder: "Enter age", Section: "Personal Information"},
	{Name: "gender", Label: "Gender", Kind: KindSelect, Required: true, Options: genderOptions, Section: "Personal Information"},
	{Name: "last_seen_date", Label: "Last Seen Date", Kind: KindDate, Required: true, Section: "Personal Information"},
	{
		Name: "last_seen_location", Label: "Last Seen Location", Kind: KindText, Required: true,
		Placeholder: "e.g., Near Ram Ghat, Ujjain", Section: "Last Seen",
	},
	{
		Name: "description", Label: "Physical Description", Kind: KindTextarea,
		Placeholder: "Height, build, complexion, hair color, etc.", Section: "Description",
	},
	{Name: "clothing", Label: "Clothing", Kind: KindText, Placeholder: "What were they wearing?", Section: "Description"},
	{
		Name: "identifying_marks", Label: "Identifying Marks", Kind: KindTextarea,
		Placeholder: "Scars, tattoos, birthmarks, etc.", Section: "Description",
	},
	{Name: "contact_name", Label: "Contact Name", Kind: KindText, Required: true, Placeholder: "Your name", Section: "Contact Information"},
	{Name: "contact_phone", Label: "Contact Phone", Kind: KindTel, Required: true, Placeholder: "Phone number", Section: "Contact Information"},
	{Name: "contact_email", Label: "Contact Email", Kind: KindEmail, Placeholder: "Email address (optional)", Section: "Contact Information"},
}

var foundPersonFields = []Field{
	{Name: "approximate_age", Label: "Approximate Age", Kind: KindNumber, Required: true, Placeholder: "Estimated age", Section: "Person Details"},
	{Name: "gender", Label: "Gender", Kind: KindSelect, Required: true, Options: genderOptions, Section: "Person Details"},
	{Name: "found_date", Label: "Found Date", Kind: KindDate, Required: true, Section: "Person Details"},
	{Name: "mental_state", Label: "Mental State", Kind: KindSelect, Options: mentalStateOptions, Section: "Person Details"},
	{
		Name: "found_location", Label: "Found Location", Kind: KindText, Required: true,
		Placeholder: "Where was the person found?", Section: "Location",
	},
	{
		Name: "current_location", Label: "Current Location", Kind: KindText, Required: true,
		Placeholder: "e.g., Police Station, Help Center", Section: "Location",
	},
	{
		Name: "physical_description", Label: "Physical Description", Kind: KindTextarea,
		Placeholder: "Height, build, complexion, hair color, etc.", Section: "Description",
	},
	{Name: "clothing_description", Label: "Clothing Description", Kind: KindText, Placeholder: "What are they wearing?", Section: "Description"},
	{
		Name: "distinctive_features", Label: "Distinctive Features", Kind: KindTextarea,
		Placeholder: "Scars, tattoos, birthmarks, etc.", Section: "Description",
	},
	{Name: "finder_name", Label: "Your Name", Kind: KindText, Required: true, Placeholder: "Your name", Section: "Finder Information"},
	{Name: "finder_phone", Label: "Phone Number", Kind: KindTel, Required: true, Placeholder: "Phone number", Section: "Finder Information"},
	{Name: "finder_email", Label: "Email", Kind: KindEmail, Placeholder: "Email address (optional)", Section: "Finder Information"},
}
