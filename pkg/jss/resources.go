package jss

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Built-in resource type descriptors. This is deliberately not the full
// endpoint catalog; it covers the types the library itself exercises, and
// anything else can be reached by supplying a custom ResourceType.
var (
	// TypeCategory: flat payload, creatable.
	TypeCategory ResourceType = resourceType{
		path:      "categories",
		listKey:   "categories",
		objectKey: "category",
		creatable: true,
	}

	// TypeComputer: sectioned payload, extendable, extra lookup keys.
	TypeComputer ResourceType = resourceType{
		path:       "computers",
		listKey:    "computers",
		objectKey:  "computer",
		lookups:    []string{"serialnumber", "macaddress", "udid"},
		creatable:  true,
		extendable: ExtendableComputers,
	}

	// TypeMobileDevice: sectioned payload, extendable.
	TypeMobileDevice ResourceType = resourceType{
		path:       "mobiledevices",
		listKey:    "mobile_devices",
		objectKey:  "mobile_device",
		lookups:    []string{"serialnumber", "udid"},
		creatable:  true,
		extendable: ExtendableMobileDevices,
	}

	// TypePolicy: sectioned payload. Policies are managed through the web
	// console; the minimal wrapper does not create them.
	TypePolicy ResourceType = resourceType{
		path:      "policies",
		listKey:   "policies",
		objectKey: "policy",
	}

	// TypeUser: flat payload, extendable.
	TypeUser ResourceType = resourceType{
		path:       "users",
		listKey:    "users",
		objectKey:  "user",
		creatable:  true,
		extendable: ExtendableUsers,
	}

	// TypeComputerExtensionAttribute: definition of a custom computer
	// field; input type is required.
	TypeComputerExtensionAttribute ResourceType = resourceType{
		path:      "computerextensionattributes",
		listKey:   "computer_extension_attributes",
		objectKey: "computer_extension_attribute",
		required:  []string{"input_type"},
		creatable: true,
	}

	// TypeDirectoryBinding: flat payload; priority is required because
	// bindings without one are silently ignored by enrolled clients.
	TypeDirectoryBinding ResourceType = resourceType{
		path:      "directorybindings",
		listKey:   "directory_bindings",
		objectKey: "directory_binding",
		required:  []string{"priority"},
		creatable: true,
	}
)

// extAttrTypeFor maps an extendable kind to the resource type holding its
// definitions.
func extAttrTypeFor(kind ExtendableKind) (ResourceType, error) {
	switch kind {
	case ExtendableComputers:
		return TypeComputerExtensionAttribute, nil
	case ExtendableMobileDevices:
		return resourceType{
			path:      "mobiledeviceextensionattributes",
			listKey:   "mobile_device_extension_attributes",
			objectKey: "mobile_device_extension_attribute",
		}, nil
	case ExtendableUsers:
		return resourceType{
			path:      "userextensionattributes",
			listKey:   "user_extension_attributes",
			objectKey: "user_extension_attribute",
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q is not an extendable kind", ErrUnsupportedOperation, kind)
	}
}

// ExtAttrType returns the extension-attribute definition type for kind.
func ExtAttrType(kind ExtendableKind) (ResourceType, error) {
	return extAttrTypeFor(kind)
}

// Category is the typed view of a category payload.
type Category struct {
	ID       int    `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Priority int    `mapstructure:"priority"`
}

// ComputerGeneral is the typed view of a computer's general section.
type ComputerGeneral struct {
	ID           int    `mapstructure:"id"`
	Name         string `mapstructure:"name"`
	SerialNumber string `mapstructure:"serial_number"`
	MACAddress   string `mapstructure:"mac_address"`
	UDID         string `mapstructure:"udid"`
	IPAddress    string `mapstructure:"ip_address"`
	Platform     string `mapstructure:"platform"`

	RemoteManagement struct {
		Managed bool `mapstructure:"managed"`
	} `mapstructure:"remote_management"`
}

// PolicyGeneral is the typed view of a policy's general section.
type PolicyGeneral struct {
	ID        int    `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	Enabled   bool   `mapstructure:"enabled"`
	Trigger   string `mapstructure:"trigger"`
	Frequency string `mapstructure:"frequency"`

	Category struct {
		ID   int    `mapstructure:"id"`
		Name string `mapstructure:"name"`
	} `mapstructure:"category"`
}

// DirectoryBinding is the typed view of a directory binding payload.
type DirectoryBinding struct {
	ID       int    `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Priority int    `mapstructure:"priority"`
	Domain   string `mapstructure:"domain"`
	Username string `mapstructure:"username"`
	Type     string `mapstructure:"type"`
}

// Decode fills out from the object's flattened payload. JSON numbers arrive
// as float64, so decoding is weakly typed.
func Decode(obj *Object, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("building payload decoder: %w", err)
	}

	if err := decoder.Decode(obj.Data()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	return nil
}
