package jss_test

import (
	"context"
	"testing"

	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceTypeDescriptors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "categories", jss.TypeCategory.ResourcePath())
	assert.Equal(t, "category", jss.TypeCategory.ObjectKey())
	assert.True(t, jss.TypeCategory.Creatable())

	assert.Equal(t, []string{"serialnumber", "macaddress", "udid"}, jss.TypeComputer.LookupKeys())
	assert.Equal(t, "mobile_devices", jss.TypeMobileDevice.ListKey())

	assert.Equal(t, jss.ExtendableComputers, jss.TypeComputer.Extendable())
	assert.Empty(t, string(jss.TypeCategory.Extendable()))

	assert.False(t, jss.TypePolicy.Creatable())
	assert.Equal(t, []string{"priority"}, jss.TypeDirectoryBinding.RequiredFields())
	assert.Equal(t, []string{"input_type"}, jss.TypeComputerExtensionAttribute.RequiredFields())
}

func TestExtAttrType(t *testing.T) {
	t.Parallel()

	computer, err := jss.ExtAttrType(jss.ExtendableComputers)
	require.NoError(t, err)
	assert.Equal(t, "computerextensionattributes", computer.ResourcePath())

	mobile, err := jss.ExtAttrType(jss.ExtendableMobileDevices)
	require.NoError(t, err)
	assert.Equal(t, "mobiledeviceextensionattributes", mobile.ResourcePath())

	user, err := jss.ExtAttrType(jss.ExtendableUsers)
	require.NoError(t, err)
	assert.Equal(t, "userextensionattributes", user.ResourcePath())

	_, err = jss.ExtAttrType(jss.ExtendableKind("printers"))
	require.ErrorIs(t, err, jss.ErrUnsupportedOperation)
}

func TestDecode_Category(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	conn.setList(jss.TypeCategory, map[string]interface{}{"id": float64(3), "name": "Printers"})

	obj, err := jss.NewObjectFromData(context.Background(), conn, jss.TypeCategory, map[string]interface{}{
		"id":       float64(3),
		"name":     "Printers",
		"priority": float64(9),
	})
	require.NoError(t, err)

	var category jss.Category

	require.NoError(t, jss.Decode(obj, &category))
	assert.Equal(t, 3, category.ID)
	assert.Equal(t, "Printers", category.Name)
	assert.Equal(t, 9, category.Priority)
}

func TestDecode_ComputerGeneral(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	conn.setList(jss.TypeComputer, map[string]interface{}{"id": float64(12), "name": "lab-mac-01"})

	payload := map[string]interface{}{
		"computer": map[string]interface{}{
			"general": map[string]interface{}{
				"id":            float64(12),
				"name":          "lab-mac-01",
				"serial_number": "C02XL0ABJGH5",
				"mac_address":   "00:1B:63:84:45:E6",
				"platform":      "Mac",
				"remote_management": map[string]interface{}{
					"managed": true,
				},
			},
		},
	}

	obj, err := jss.NewObjectFromData(context.Background(), conn, jss.TypeComputer, payload)
	require.NoError(t, err)

	var general jss.ComputerGeneral

	require.NoError(t, jss.Decode(obj, &general))
	assert.Equal(t, 12, general.ID)
	assert.Equal(t, "C02XL0ABJGH5", general.SerialNumber)
	assert.Equal(t, "00:1B:63:84:45:E6", general.MACAddress)
	assert.True(t, general.RemoteManagement.Managed)
}
