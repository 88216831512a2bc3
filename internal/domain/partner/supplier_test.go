package partner

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() SupplierInput {
	return SupplierInput{SuppID: "sup-001", Name: "PT Sinar", PICName: "Budi", Address: "Bandung", Phone: "0812"}
}

func TestNewSupplier(t *testing.T) {
	s, err := NewSupplier(validInput(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "SUP-001", s.SuppID)
	assert.Equal(t, StatusActive, s.Status)

	_, err = NewSupplier(SupplierInput{Status: "Blocked"}, "u1")
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"suppId", "name", "picName", "address", "phone", "status"}, paths(verr.Issues))
	assert.Equal(t, "Phone number is required", verr.Issues[4].Message)
}

func TestSupplier_Apply(t *testing.T) {
	s, err := NewSupplier(validInput(), "u1")
	require.NoError(t, err)

	inactive := StatusInactive
	phone := " 0813 "
	require.NoError(t, s.Apply(Patch{Status: &inactive, Phone: &phone}, "u2"))
	assert.Equal(t, "0813", s.Phone)
	assert.Equal(t, StatusInactive, s.Status)
	assert.Equal(t, "u2", s.UpdatedBy)

	blank := ""
	assert.Error(t, s.Apply(Patch{Name: &blank}, "u2"))
}

func TestSupplier_SoftDelete(t *testing.T) {
	s, err := NewSupplier(validInput(), "u1")
	require.NoError(t, err)
	s.SoftDelete("u3")
	assert.True(t, s.IsDeleted())
	assert.Equal(t, "u3", s.DeletedBy)
}

func paths(issues shared.Issues) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Path
	}
	return out
}
