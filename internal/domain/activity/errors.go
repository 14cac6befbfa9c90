package activity

import "errors"

var ErrForbidden = errors.New("not allowed to view the activity log")
