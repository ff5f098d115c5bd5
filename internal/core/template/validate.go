// Package template provides pure validation helpers for network templates
// and dev-environment templates (C2).
package template

import (
	"github.com/artpar/smoothstack/internal/core/domain"
)

// ValidateNetworkTemplateFields validates the required fields of a network
// template before it is written to the store. Returns the offending field
// name and a message, or two empty strings if the template is valid.
func ValidateNetworkTemplateFields(tmpl domain.NetworkTemplate) (field, message string) {
	if tmpl.Name == "" {
		return "name", "name is required"
	}
	if tmpl.Driver == "" {
		return "driver", "driver is required"
	}
	if tmpl.Subnet != "" && tmpl.Gateway == "" {
		return "gateway", "gateway is required when subnet is set"
	}
	return "", ""
}

// ValidateDevEnvironmentTemplateFields validates the required fields of a
// dev-environment template before it is written to the store.
func ValidateDevEnvironmentTemplateFields(tmpl domain.DevEnvironmentTemplate) (field, message string) {
	if tmpl.Name == "" {
		return "name", "name is required"
	}
	if tmpl.Image == "" {
		return "image", "image is required"
	}
	switch tmpl.EnvType {
	case domain.EnvTypePython, domain.EnvTypeNodeJS, domain.EnvTypeFullstack, domain.EnvTypeDatabase, domain.EnvTypeCustom:
	default:
		return "env_type", "env_type must be one of python, nodejs, fullstack, database, custom"
	}
	for _, port := range tmpl.Ports {
		if port.ContainerPort <= 0 || port.ContainerPort > 65535 {
			return "ports", "container_port must be between 1 and 65535"
		}
	}
	return "", ""
}

// CanDeleteBuiltin reports whether a template may be deleted from the
// store. Built-in templates (spec.md §6: "the built-in defaults ... may
// not be deleted, only overridden by a user template of the same name")
// can only be shadowed, never removed outright.
func CanDeleteBuiltin(isBuiltin bool) (allowed bool, reason string) {
	if isBuiltin {
		return false, "built-in templates cannot be deleted, only overridden"
	}
	return true, ""
}
