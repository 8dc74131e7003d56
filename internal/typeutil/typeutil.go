package typeutil

import (
	"go/types"
)

// TypeString renders t the way it is spelled inside pkg: types declared in pkg
// are unqualified, everything else is qualified by package name.
func TypeString(t types.Type, pkg *types.Package) string {
	if t == nil {
		return ""
	}

	return types.TypeString(t, qualifier(pkg))
}

func qualifier(pkg *types.Package) types.Qualifier {
	return func(other *types.Package) string {
		if pkg != nil && other.Path() == pkg.Path() {
			return ""
		}

		return other.Name()
	}
}

// Elem returns the element type if t is a pointer, otherwise returns t.
func Elem(t types.Type) types.Type {
	if ptr, ok := t.Underlying().(*types.Pointer); ok {
		return ptr.Elem()
	}

	return t
}

// IsPointer reports whether t is a pointer type.
func IsPointer(t types.Type) bool {
	_, ok := t.Underlying().(*types.Pointer)

	return ok
}

// IsLocalVar reports whether obj is a variable declared inside a function
// body or signature: not a struct field and not a package-level variable.
func IsLocalVar(obj types.Object) bool {
	v, ok := obj.(*types.Var)
	if !ok || v.IsField() {
		return false
	}
	if v.Pkg() == nil {
		return false
	}

	return v.Parent() != v.Pkg().Scope()
}
