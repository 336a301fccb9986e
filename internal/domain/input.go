package domain

// Form field names recognized as address data.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldCompany   = "company"
	FieldAddress1  = "address1"
	FieldAddress2  = "address2"
	FieldCity      = "city"
	FieldProvince  = "province"
	FieldZip       = "zip"
	FieldCountry   = "country"
	FieldPhone     = "phone"
)

// AddressFormFields is the allow-list of form fields copied into an AddressInput.
var AddressFormFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldAddress1,
	FieldAddress2,
	FieldCity,
	FieldProvince,
	FieldCountry,
	FieldZip,
	FieldPhone,
	FieldCompany,
}

// AddressInput is the address payload sent to the account service. A nil field was
// not submitted and is left out of the request body.
type AddressInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Company   *string `json:"company,omitempty"`
	Address1  *string `json:"address1,omitempty"`
	Address2  *string `json:"address2,omitempty"`
	City      *string `json:"city,omitempty"`
	Province  *string `json:"province,omitempty"`
	Zip       *string `json:"zip,omitempty"`
	Country   *string `json:"country,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Project returns the entries of input whose keys appear in allowed. Keys missing
// from input stay missing in the result.
func Project(allowed []string, input map[string]string) map[string]string {
	out := make(map[string]string, len(allowed))
	for _, key := range allowed {
		if v, ok := input[key]; ok {
			out[key] = v
		}
	}
	return out
}

// NewAddressInput builds an AddressInput from a submitted form, keeping only the
// recognized address fields.
func NewAddressInput(form map[string]string) AddressInput {
	fields := Project(AddressFormFields, form)
	return AddressInput{
		FirstName: lookup(fields, FieldFirstName),
		LastName:  lookup(fields, FieldLastName),
		Company:   lookup(fields, FieldCompany),
		Address1:  lookup(fields, FieldAddress1),
		Address2:  lookup(fields, FieldAddress2),
		City:      lookup(fields, FieldCity),
		Province:  lookup(fields, FieldProvince),
		Zip:       lookup(fields, FieldZip),
		Country:   lookup(fields, FieldCountry),
		Phone:     lookup(fields, FieldPhone),
	}
}

// FieldNames lists the form names of the fields set on the input, in allow-list order.
func (in AddressInput) FieldNames() []string {
	set := map[string]*string{
		FieldFirstName: in.FirstName,
		FieldLastName:  in.LastName,
		FieldCompany:   in.Company,
		FieldAddress1:  in.Address1,
		FieldAddress2:  in.Address2,
		FieldCity:      in.City,
		FieldProvince:  in.Province,
		FieldZip:       in.Zip,
		FieldCountry:   in.Country,
		FieldPhone:     in.Phone,
	}
	names := make([]string, 0, len(set))
	for _, name := range AddressFormFields {
		if set[name] != nil {
			names = append(names, name)
		}
	}
	return names
}

func lookup(fields map[string]string, key string) *string {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	return &v
}
