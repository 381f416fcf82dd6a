package issues

import (
	"fmt"
	"strings"
)

// Property names an issue attribute usable in filters.
type Property string

const (
	PropertyFileName    Property = "file"
	PropertyPackageName Property = "package"
	PropertyModuleName  Property = "module"
	PropertyCategory    Property = "category"
	PropertyType        Property = "type"
)

// AllProperties lists the filterable properties in a stable order.
func AllProperties() []Property {
	return []Property{PropertyFileName, PropertyPackageName, PropertyModuleName, PropertyCategory, PropertyType}
}

// Value extracts the property from an issue.
func (p Property) Value(i Issue) string {
	switch p {
	case PropertyFileName:
		return i.FileName
	case PropertyPackageName:
		return i.PackageName
	case PropertyModuleName:
		return i.ModuleName
	case PropertyCategory:
		return i.Category
	case PropertyType:
		return i.Type
	default:
		return ""
	}
}

// ParseProperty accepts the canonical names plus a few aliases
// (fileName, packageName, namespace, moduleName).
func ParseProperty(s string) (Property, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "filename", "file_name":
		return PropertyFileName, nil
	case "package", "packagename", "package_name", "namespace":
		return PropertyPackageName, nil
	case "module", "modulename", "module_name":
		return PropertyModuleName, nil
	case "category":
		return PropertyCategory, nil
	case "type":
		return PropertyType, nil
	default:
		return "", fmt.Errorf("unknown issue property: %q", s)
	}
}
