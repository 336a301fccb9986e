package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Project Tests
// ============================================================================

func TestProject_DropsUnknownKeys(t *testing.T) {
	got := Project(AddressFormFields, map[string]string{
		"firstName": "A",
		"foo":       "bar",
		"addressId": "add",
	})

	assert.Equal(t, map[string]string{"firstName": "A"}, got)
}

func TestProject_KeepsEmptyValues(t *testing.T) {
	got := Project(AddressFormFields, map[string]string{"address2": ""})

	v, ok := got["address2"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestProject_EmptyInput(t *testing.T) {
	assert.Empty(t, Project(AddressFormFields, nil))
}

// ============================================================================
// NewAddressInput Tests
// ============================================================================

func TestNewAddressInput_AllFields(t *testing.T) {
	in := NewAddressInput(map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"company":   "Engines Ltd",
		"address1":  "1 Main St",
		"address2":  "Flat 2",
		"city":      "London",
		"province":  "Greater London",
		"zip":       "N1",
		"country":   "GB",
		"phone":     "+44000",
	})

	require.NotNil(t, in.FirstName)
	assert.Equal(t, "Ada", *in.FirstName)
	assert.Equal(t, "Lovelace", *in.LastName)
	assert.Equal(t, "Engines Ltd", *in.Company)
	assert.Equal(t, "1 Main St", *in.Address1)
	assert.Equal(t, "Flat 2", *in.Address2)
	assert.Equal(t, "London", *in.City)
	assert.Equal(t, "Greater London", *in.Province)
	assert.Equal(t, "N1", *in.Zip)
	assert.Equal(t, "GB", *in.Country)
	assert.Equal(t, "+44000", *in.Phone)
	assert.Len(t, in.FieldNames(), 10)
}

func TestNewAddressInput_AbsentFieldsAreOmitted(t *testing.T) {
	in := NewAddressInput(map[string]string{"firstName": "B", "foo": "bar"})

	assert.Equal(t, []string{"firstName"}, in.FieldNames())
	assert.Nil(t, in.LastName)

	body, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"first_name":"B"}`, string(body))
}

func TestNewAddressInput_EmptyValueIsSent(t *testing.T) {
	in := NewAddressInput(map[string]string{"address2": ""})

	body, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address2":""}`, string(body))
}

func TestAddressInput_FieldNamesOrder(t *testing.T) {
	in := NewAddressInput(map[string]string{
		"company":   "X",
		"zip":       "0",
		"firstName": "A",
	})

	assert.Equal(t, []string{"firstName", "zip", "company"}, in.FieldNames())
}
