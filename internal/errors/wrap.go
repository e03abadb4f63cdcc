package errors

import stderrors "errors"

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Code returns the code of the first RStateError in err's chain, or "".
func Code(err error) string {
	var re *RStateError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}
