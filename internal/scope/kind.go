// Package scope selects the syntactic unit a warning is about.
//
// Every selector variant is a pure function of (tree, anchor line). Variants
// that find nothing degrade to the next broader variant; only when the whole
// chain fails is MISSING_SCOPE reported.
package scope

import (
	"fmt"
	"strings"
)

// Kind names a scope selector variant.
type Kind string

const (
	KindMethodOrClass    Kind = "method-or-class"
	KindMethod           Kind = "method"
	KindClass            Kind = "class"
	KindFile             Kind = "file"
	KindInstanceVariable Kind = "instance-variable"
	KindEnvironment      Kind = "environment"
	KindNamePackage      Kind = "name-package"
)

// AllKinds lists every selector variant.
func AllKinds() []Kind {
	return []Kind{
		KindMethodOrClass,
		KindMethod,
		KindClass,
		KindFile,
		KindInstanceVariable,
		KindEnvironment,
		KindNamePackage,
	}
}

// IsValid reports whether k is a known variant.
func (k Kind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Broader returns the variant selection degrades to when k finds nothing.
// The file variant is the end of every chain and returns "".
func (k Kind) Broader() Kind {
	switch k {
	case KindMethod, KindMethodOrClass, KindInstanceVariable:
		return KindClass
	case KindClass, KindNamePackage:
		return KindFile
	case KindEnvironment:
		return KindMethod
	default:
		return ""
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a variant name. Matching ignores case, and underscores are
// accepted in place of dashes.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown scope kind %q", s)
	}
	return k, nil
}
